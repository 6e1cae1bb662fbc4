// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package dialogue

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/samber/oops"
	"google.golang.org/api/option"
)

// GeminiGenerator produces NPC dialogue with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator creates a generator against the given model name.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, oops.Code("DIALOGUE_CLIENT_FAILED").Wrap(err)
	}
	return &GeminiGenerator{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Generate invokes the model and returns the first text part.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", oops.Code("DIALOGUE_GENERATE_FAILED").Wrap(err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", oops.Code("DIALOGUE_EMPTY_RESPONSE").Errorf("no content returned")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", oops.Code("DIALOGUE_BAD_RESPONSE").Errorf("unexpected response part type")
	}
	return strings.TrimSpace(string(text)), nil
}

// Close releases the API client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

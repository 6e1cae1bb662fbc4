// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package seeds

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

var (
	schemaOnce sync.Once
	schemaErr  error
	schema     *jschema.Schema
)

// SchemaID is the $id stamped into the generated schema.
const SchemaID = "https://mossgate.dev/schemas/seeds.schema.json"

// GenerateSchema generates the seed-pack JSON Schema from the Pack type.
// cmd/gen-schema writes its output to schemas/seeds.schema.json so editors
// can validate pack files as they are authored.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&Pack{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "Mossgate Seed Pack"
	s.Description = "Schema for world content pack YAML files"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema validates raw pack YAML against the generated schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("pack data is empty")
	}

	var yamlData any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(convertToJSONTypes(yamlData)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		var raw []byte
		raw, schemaErr = GenerateSchema()
		if schemaErr != nil {
			return
		}

		var schemaData any
		if schemaErr = json.Unmarshal(raw, &schemaData); schemaErr != nil {
			return
		}

		c := jschema.NewCompiler()
		if schemaErr = c.AddResource("seeds.schema.json", schemaData); schemaErr != nil {
			return
		}
		schema, schemaErr = c.Compile("seeds.schema.json")
	})
	return schema, schemaErr
}

// convertToJSONTypes rewrites YAML-parsed values into the types the schema
// validator expects. yaml.v3 already produces map[string]any, but nested
// values need the same treatment recursively.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = convertToJSONTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = convertToJSONTypes(v)
		}
		return result
	case int:
		return int64(val)
	default:
		return val
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package dialogue

import "strings"

// SegmentKind distinguishes how a narration segment is rendered.
type SegmentKind int

const (
	// SegmentAction is physical narration, shown as emphasised prose.
	SegmentAction SegmentKind = iota
	// SegmentSpeech is a spoken line, shown quoted and attributed.
	SegmentSpeech
)

// Segment is one rendered unit of NPC narration.
type Segment struct {
	Kind SegmentKind
	Text string
}

// SplitNarration parses generated NPC text into alternating action and
// speech segments. Asterisks delimit actions, double quotes delimit speech,
// and bare text outside both delimiters is treated as action. An unbalanced
// delimiter closes at end of input.
func SplitNarration(text string) []Segment {
	const (
		bare = iota
		star
		quote
	)

	var segments []Segment
	emit := func(kind SegmentKind, s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			segments = append(segments, Segment{Kind: kind, Text: s})
		}
	}

	var buf strings.Builder
	state := bare
	for _, r := range text {
		switch {
		case r == '*' && state != quote:
			emit(SegmentAction, buf.String())
			buf.Reset()
			if state == star {
				state = bare
			} else {
				state = star
			}
		case r == '"' && state != star:
			if state == quote {
				emit(SegmentSpeech, buf.String())
				state = bare
			} else {
				emit(SegmentAction, buf.String())
				state = quote
			}
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	kind := SegmentAction
	if state == quote {
		kind = SegmentSpeech
	}
	emit(kind, buf.String())
	return segments
}

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeHistory verifies that every accepted input shape maps to
// the right normalized turn and that ordering is preserved.
func TestNormalizeHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []any
		want    []Turn
	}{
		{
			name:    "empty history",
			history: nil,
			want:    nil,
		},
		{
			name: "normalized turns pass through",
			history: []any{
				Turn{Role: RoleUser, Text: "hi"},
				Turn{Role: RoleModel, Text: "hello"},
			},
			want: []Turn{
				{Role: RoleUser, Text: "hi"},
				{Role: RoleModel, Text: "hello"},
			},
		},
		{
			name: "messages map type discriminator to roles",
			history: []any{
				Message{Type: "human", Content: "question"},
				Message{Type: "ai", Content: "answer"},
			},
			want: []Turn{
				{Role: RoleUser, Text: "question"},
				{Role: RoleModel, Text: "answer"},
			},
		},
		{
			name: "raw mappings pass through role and nested text",
			history: []any{
				map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": "from wire"}},
				},
			},
			want: []Turn{
				{Role: RoleModel, Text: "from wire"},
			},
		},
		{
			name: "mapping without role or parts falls back to empty user turn",
			history: []any{
				map[string]any{"unexpected": true},
			},
			want: []Turn{
				{Role: RoleUser, Text: ""},
			},
		},
		{
			name:    "opaque entries are stringified as user turns",
			history: []any{42},
			want: []Turn{
				{Role: RoleUser, Text: "42"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHistory(tt.history))
		})
	}
}

// TestBuildPrompt verifies the combined-prompt contract: a non-empty
// history renders into a preamble ahead of the prompt, an empty history
// injects nothing at all.
func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		history []any
		want    string
	}{
		{
			name:   "no history passes prompt through unchanged",
			prompt: "next?",
			want:   "next?",
		},
		{
			name:    "empty history passes prompt through unchanged",
			prompt:  "next?",
			history: []any{},
			want:    "next?",
		},
		{
			name:   "history renders ahead of the prompt",
			prompt: "next?",
			history: []any{
				Turn{Role: RoleUser, Text: "hi"},
				Turn{Role: RoleModel, Text: "hello"},
			},
			want: "Previous conversation:\nuser: hi\nmodel: hello\n\nCurrent user request:\nnext?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPrompt(tt.prompt, tt.history))
		})
	}
}

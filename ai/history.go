package ai

import (
	"fmt"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a human-authored turn
	RoleUser Role = "user"

	// RoleModel marks a model-authored turn
	RoleModel Role = "model"
)

// Turn is one normalized exchange unit in a conversation history:
// a speaker role paired with text. Ordering is significant and is
// preserved oldest-first throughout the adapter.
type Turn struct {
	Role Role
	Text string
}

// Message mirrors upstream chat-message objects that carry a type
// discriminator instead of a role. A Type of "human" denotes a
// human-authored turn; every other value is treated as model-authored.
type Message struct {
	Type    string
	Content string
}

// NormalizeHistory converts a heterogeneous conversation history into an
// ordered sequence of turns. Each entry is matched against a closed set
// of shapes:
//
//   - Turn: passed through unchanged
//   - Message: the type discriminator maps "human" to the user role,
//     anything else to the model role
//   - map[string]any with a "role" key and a nested parts/text payload:
//     passed through assuming it already conforms to the role shape
//   - anything else: stringified and tagged as a user turn
func NormalizeHistory(history []any) []Turn {
	if len(history) == 0 {
		return nil
	}

	turns := make([]Turn, 0, len(history))
	for _, entry := range history {
		switch e := entry.(type) {
		case Turn:
			turns = append(turns, e)
		case Message:
			role := RoleModel
			if e.Type == "human" {
				role = RoleUser
			}
			turns = append(turns, Turn{Role: role, Text: e.Content})
		case map[string]any:
			turns = append(turns, turnFromMap(e))
		default:
			turns = append(turns, Turn{Role: RoleUser, Text: fmt.Sprint(e)})
		}
	}
	return turns
}

// turnFromMap extracts a turn from a raw mapping of the backend's wire
// shape: {"role": ..., "parts": [{"text": ...}]}. Missing keys fall back
// to the user role and empty text.
func turnFromMap(m map[string]any) Turn {
	role := RoleUser
	if r, ok := m["role"]; ok {
		role = Role(fmt.Sprint(r))
	}

	var text string
	if parts, ok := m["parts"].([]any); ok && len(parts) > 0 {
		if part, ok := parts[0].(map[string]any); ok {
			if t, ok := part["text"].(string); ok {
				text = t
			}
		}
	}

	return Turn{Role: role, Text: text}
}

// renderHistory serializes turns into a single multi-line preamble,
// one "{role}: {text}" line per turn. An empty history renders empty.
func renderHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = fmt.Sprintf("%s: %s", t.Role, t.Text)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt composes the prompt sent downstream. With a non-empty
// history the rendered preamble always precedes the new prompt; with an
// empty or absent history the prompt passes through unchanged, so
// single-turn calls carry no boilerplate.
func BuildPrompt(prompt string, history []any) string {
	rendered := renderHistory(NormalizeHistory(history))
	if rendered == "" {
		return prompt
	}
	return fmt.Sprintf("Previous conversation:\n%s\n\nCurrent user request:\n%s", rendered, prompt)
}

package ai

import "strings"

const (
	reasoningMarker = "REASONING:"
	responseMarker  = "RESPONSE:"
)

// Sentinel values reported in Reply.Reasoning when extraction degrades.
// They are fixed constants, distinguishable from genuine model output,
// and always present so consumers never need a null check.
const (
	// NoReasoningProvided is reported when the raw text carries no
	// reasoning/response markers at all.
	NoReasoningProvided = "No explicit reasoning provided"

	// ReasoningParseFailed is reported when both markers are present
	// but in a reversed or degenerate order.
	ReasoningParseFailed = "Parsing failed, check format."
)

// Reply is the result of reasoning-augmented generation: the model's
// explanation and its final answer as separate fields. Both fields are
// always populated, with a sentinel standing in for the reasoning when
// the raw text could not be split.
type Reply struct {
	Reasoning string `json:"reasoning"`
	Response  string `json:"response"`
}

// ExtractReasoning splits raw model output into its reasoning and
// response sections. The expected layout is a REASONING: section
// followed by a RESPONSE: section; everything between the markers is the
// reasoning, everything after the response marker is the answer, both
// trimmed of surrounding whitespace.
//
// Degraded inputs never produce an error. If either marker is missing,
// the full raw text becomes the response with the no-reasoning sentinel.
// If the markers appear in the wrong order, the full raw text becomes
// the response with the parse-failed sentinel.
func ExtractReasoning(raw string) Reply {
	reasoningIdx := strings.Index(raw, reasoningMarker)
	responseIdx := strings.Index(raw, responseMarker)

	if reasoningIdx == -1 || responseIdx == -1 {
		return Reply{
			Reasoning: NoReasoningProvided,
			Response:  raw,
		}
	}

	if reasoningIdx > responseIdx {
		return Reply{
			Reasoning: ReasoningParseFailed,
			Response:  raw,
		}
	}

	return Reply{
		Reasoning: strings.TrimSpace(raw[reasoningIdx+len(reasoningMarker) : responseIdx]),
		Response:  strings.TrimSpace(raw[responseIdx+len(responseMarker):]),
	}
}

package ai

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates prompt sizes using tiktoken. The estimate is
// advisory: backends tokenize differently, but the count is close enough
// to warn before a prompt blows past the configured context window.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter creates a token counter for the given model, falling
// back to the cl100k_base encoding for models tiktoken does not know.
func NewTokenCounter(model string) (*TokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the estimated token count for the given text.
func (t *TokenCounter) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

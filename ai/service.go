package ai

import "context"

// Service is the inference capability boundary: the external service
// that actually executes a model request and returns text. The adapter
// treats it as opaque. Network framing, credentials, retries and any
// provider-side protection all live behind this interface.
type Service interface {
	// Generate dispatches a prompt and returns the model's text.
	// Cancellation of an in-flight call is delegated entirely to the
	// context and the implementation's own semantics.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)

	// GenerateSync is the blocking entry point with the same contract.
	GenerateSync(prompt, systemPrompt string) (string, error)
}

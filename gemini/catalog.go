package gemini

// ModelInfo describes one entry of the model catalog.
type ModelInfo struct {
	Name         string
	Provider     string
	Source       string
	Capabilities string
}

// Catalog returns the models Guardian can be pointed at, with their
// provider and quota source. The list is static: availability is
// ultimately decided by the backend at request time.
func Catalog() []ModelInfo {
	return []ModelInfo{
		{Name: "gemini-3-pro", Provider: "Google", Source: "Antigravity", Capabilities: "Reasoning, High Intelligence"},
		{Name: "gemini-3-flash", Provider: "Google", Source: "Antigravity", Capabilities: "Reasoning, Speed"},
		{Name: "gemini-2.5-pro", Provider: "Google", Source: "Gemini CLI", Capabilities: "General Purpose, Stable"},
		{Name: "gemini-2.5-flash", Provider: "Google", Source: "Gemini CLI", Capabilities: "Lower Latency, Cost Effective"},
		{Name: "claude-sonnet-4-5", Provider: "Anthropic", Source: "Antigravity", Capabilities: "Advanced Reasoning, Coding"},
		{Name: "claude-opus-4-5", Provider: "Anthropic", Source: "Antigravity", Capabilities: "Maximum Capability"},
	}
}

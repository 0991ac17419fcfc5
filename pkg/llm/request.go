package llm

// ChatRequest represents a provider-agnostic chat completion request.
// Providers translate it into their own wire format.
type ChatRequest struct {
	// Model overrides the provider's configured model when set.
	Model string `json:"model,omitempty"`

	Messages []Message `json:"messages"`

	// System prompt (some providers handle this separately from messages)
	System string `json:"system,omitempty"`

	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// NewPromptRequest wraps a single user prompt.
func NewPromptRequest(prompt string) *ChatRequest {
	return &ChatRequest{
		Messages: []Message{NewTextMessage(RoleUser, prompt)},
	}
}

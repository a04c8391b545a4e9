package protocol

// Prompt represents a prompt in the MCP protocol. The gateway declares the
// capability but offers no prompts; prompts/list always returns an empty
// collection of these.
type Prompt struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListPromptsResult defines the response for listing prompts
type ListPromptsResult struct {
	Prompts []Prompt `json:"prompts"`
}

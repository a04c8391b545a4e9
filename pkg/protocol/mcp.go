package protocol

const (
	// ProtocolRevision is the protocol revision the gateway negotiates.
	ProtocolRevision = "2024-11-05"

	// Methods for lifecycle management
	MethodInitialize = "initialize"

	// Methods for server features. The surface is closed: anything outside
	// this set is answered with a method-not-found error.
	MethodListTools     = "tools/list"
	MethodCallTool      = "tools/call"
	MethodListResources = "resources/list"
	MethodListPrompts   = "prompts/list"

	// NotificationInitialized is sent by clients once they are ready. Like
	// every method under the notification prefix, it receives no response.
	NotificationInitialized = "notifications/initialized"
)

// InitializeParams defines the parameters for the initialize request
type InitializeParams struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    *ClientCapabilities `json:"capabilities,omitempty"`
	ClientInfo      *ClientInfo         `json:"clientInfo,omitempty"`
}

// ClientCapabilities describes what the connecting client supports. The
// gateway records it for logging only; nothing here changes its behavior.
type ClientCapabilities struct {
	Sampling map[string]interface{} `json:"sampling,omitempty"`
	Roots    map[string]interface{} `json:"roots,omitempty"`
}

// ClientInfo provides additional information about the client
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult defines the response for the initialize request
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// ServerCapabilities advertises the feature surface. Tools is the only
// populated capability; resources and prompts are declared so clients may
// list them, but both collections are always empty.
type ServerCapabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
}

// ToolsCapability describes the tools feature
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability describes the resources feature
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability describes the prompts feature
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerInfo provides additional information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

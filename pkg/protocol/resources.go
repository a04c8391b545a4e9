package protocol

// Resource represents a resource in the MCP protocol. The gateway offers
// none; the type exists so resources/list can return a well-shaped empty
// collection.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourcesResult defines the response for listing resources
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

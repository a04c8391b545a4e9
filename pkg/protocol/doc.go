// Package protocol defines the JSON-RPC 2.0 envelope types and the MCP
// message shapes the gateway speaks.
//
// The wire format is newline-delimited JSON: one request per line in, one
// response per line out. ParseRequest is the strict decode half of the
// codec. It rejects anything that is not a well-formed envelope (missing
// or wrong version tag, missing method, id of an invalid type) so the
// server can answer with a null-id parse error instead of guessing.
// Encoding goes through the Response constructors, which keep result and
// error mutually exclusive.
//
// Identifier semantics: a request with no id (or an explicit null id) is a
// notification and never receives a response. Methods under the
// "notifications/" prefix never receive one either, id or not.
//
// # Method Surface
//
// The dispatch surface is closed:
//
//   - initialize: protocol version and capability negotiation
//   - tools/list: the two formatting tool descriptors
//   - tools/call: tool invocation
//   - resources/list, prompts/list: always-empty collections
//   - notifications/*: consumed silently
//
// Anything else is answered with a method-not-found error.
package protocol

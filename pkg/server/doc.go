// Package server implements the method router for the gateway.
//
// The Server receives one decoded line at a time from the transport and
// dispatches it over a closed method surface:
//
//   - initialize: protocol handshake and capability advertisement
//   - tools/list: tool descriptors from the configured ToolProvider
//   - tools/call: delegated to the ToolProvider
//   - resources/list, prompts/list: declared capabilities with permanently
//     empty collections
//   - notifications/*: swallowed, never answered
//
// Anything else is answered with a method-not-found error. There is no open
// handler registration; extending the surface means adding a case to the
// dispatch switch.
//
// Every fault inside a handler, panics included, becomes a typed error
// response carrying the original request id. Messages that owe no response
// (notifications, requests without an id) return nil from HandleMessage and
// nothing is written for them.
//
// # Creating a Server
//
//	provider, _ := daxfmt.NewProvider(client, logger)
//	srv, err := server.New(provider,
//	    server.WithName("daxfmt-mcp"),
//	    server.WithVersion(version),
//	    server.WithLogger(logger),
//	)
//
// The server is wired to stdin/stdout by the transport package; see
// transport.NewStdioTransport.
package server

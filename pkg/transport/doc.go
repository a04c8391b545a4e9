// Package transport moves newline-delimited JSON-RPC messages between the
// process standard streams and the method router.
//
// StdioTransport is the only transport: MCP hosts launch the gateway as a
// child process and speak to it over stdin/stdout, one JSON document per
// line. stdout carries protocol bytes exclusively; diagnostics go to the
// logger, which writes to stderr.
//
// The read loop is strictly sequential. Each line is copied out of the
// scanner, stamped with a correlation id, handled to completion and answered
// before the next line is read, which makes response order equal arrival
// order without any queueing. The errgroup pair in Start exists for
// lifecycle only: context cancellation closes the reader to unblock the
// scanner, it never introduces request concurrency.
//
// # Usage
//
//	tr, err := transport.NewStdioTransport(srv, transport.Config{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	if err := tr.Start(ctx); err != nil {
//	    return err
//	}
package transport

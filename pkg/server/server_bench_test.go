package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

func benchServer(b *testing.B) *Server {
	b.Helper()
	provider := &stubProvider{
		tools: []protocol.Tool{
			{Name: "format_dax", Description: "Format a DAX expression"},
			{Name: "format_dax_batch", Description: "Format several DAX expressions"},
		},
	}
	srv, err := New(provider)
	if err != nil {
		b.Fatal(err)
	}
	return srv
}

func BenchmarkHandleMessage(b *testing.B) {
	ctx := context.Background()

	b.Run("ToolsList", func(b *testing.B) {
		srv := benchServer(b)
		line := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if resp := srv.HandleMessage(ctx, line); resp == nil || resp.Error != nil {
				b.Fatal("unexpected failure response")
			}
		}
	})

	b.Run("CallTool", func(b *testing.B) {
		srv := benchServer(b)
		line := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"format_dax","arguments":{"expression":"SUM(Sales[Amount])"}}}`)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if resp := srv.HandleMessage(ctx, line); resp == nil || resp.Error != nil {
				b.Fatal("unexpected failure response")
			}
		}
	})

	b.Run("Notification", func(b *testing.B) {
		srv := benchServer(b)
		line := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if resp := srv.HandleMessage(ctx, line); resp != nil {
				b.Fatal("notifications owe no response")
			}
		}
	})

	b.Run("ParseFailure", func(b *testing.B) {
		srv := benchServer(b)
		line := []byte(`{"jsonrpc":"2.0",`)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			resp := srv.HandleMessage(ctx, line)
			if resp == nil || resp.Error == nil || resp.Error.Code != protocol.ParseError {
				b.Fatal("expected a parse error response")
			}
		}
	})
}

func BenchmarkCallToolLargeArguments(b *testing.B) {
	ctx := context.Background()
	srv := benchServer(b)

	expression := make([]byte, 0, 16*1024)
	for len(expression) < 16*1024 {
		expression = append(expression, []byte(`CALCULATE(SUM(Sales[Amount]), FILTER(Sales, Sales[Qty] > 1)) + `)...)
	}
	args, err := json.Marshal(map[string]string{"expression": string(expression)})
	if err != nil {
		b.Fatal(err)
	}
	params, err := json.Marshal(map[string]interface{}{
		"name":      "format_dax",
		"arguments": json.RawMessage(args),
	})
	if err != nil {
		b.Fatal(err)
	}
	line := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":` + string(params) + `}`)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if resp := srv.HandleMessage(ctx, line); resp == nil || resp.Error != nil {
			b.Fatal("unexpected failure response")
		}
	}
}

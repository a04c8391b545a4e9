package logging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RequestIDGenerator generates request IDs
type RequestIDGenerator interface {
	Generate() string
}

// UUIDGenerator generates UUID-based request IDs
type UUIDGenerator struct{}

// Generate generates a new UUID request ID
func (g *UUIDGenerator) Generate() string {
	return uuid.New().String()
}

// PrefixedGenerator generates request IDs with a prefix
type PrefixedGenerator struct {
	Prefix    string
	Generator RequestIDGenerator
}

// Generate generates a prefixed request ID
func (g *PrefixedGenerator) Generate() string {
	return fmt.Sprintf("%s-%s", g.Prefix, g.Generator.Generate())
}

// EnsureRequestID returns a context that carries a request ID, generating a
// fresh one when the context has none. The transport calls this once per
// inbound line so every log entry for that line shares an ID.
func EnsureRequestID(ctx context.Context, generator RequestIDGenerator) (context.Context, string) {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		return ctx, requestID
	}
	if generator == nil {
		generator = &UUIDGenerator{}
	}
	requestID := generator.Generate()
	return ContextWithRequestID(ctx, requestID), requestID
}

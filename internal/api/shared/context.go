package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader carries the trace ID back to the renderer.
	TraceIDHeader = "X-Trace-ID"

	// TraceIDLength is the number of random bytes in a trace ID
	TraceIDLength = 16 // 32 hex characters
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 hex characters from crypto/rand, or a nanoid of
// the same length if the system source fails.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate random trace ID", slog.String("error", err.Error()))
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func fallbackTraceID() string {
	id, err := gonanoid.Generate("0123456789abcdef", 2*TraceIDLength)
	if err != nil {
		return "00000000000000000000000000000000"
	}
	return id
}

// Package trace carries request correlation identifiers through contexts and
// onto outbound HTTP headers. It supports both a simple opaque trace ID and
// the W3C Trace Context pair (traceparent/tracestate).
package trace

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	idKey     contextKey = "trace_id"
	parentKey contextKey = "traceparent"
	stateKey  contextKey = "tracestate"

	// HeaderXRequestID is the standard header name for request tracing
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = "traceparent"
	// HeaderTraceState is the W3C trace context "tracestate" header name
	HeaderTraceState = "tracestate"
)

// WithID returns a context carrying the given trace ID.
func WithID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, idKey, traceID)
}

// IDFromContext returns the trace ID stored in ctx, if any.
func IDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(idKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// EnsureID returns the trace ID from ctx or generates a fresh one.
func EnsureID(ctx context.Context) string {
	if id, ok := IDFromContext(ctx); ok {
		return id
	}
	return uuid.New().String()
}

// WithParent returns a context carrying a W3C traceparent value.
func WithParent(ctx context.Context, traceParent string) context.Context {
	return context.WithValue(ctx, parentKey, traceParent)
}

// ParentFromContext returns the traceparent stored in ctx, if any.
func ParentFromContext(ctx context.Context) (string, bool) {
	if tp, ok := ctx.Value(parentKey).(string); ok && tp != "" {
		return tp, true
	}
	return "", false
}

// WithState returns a context carrying a W3C tracestate value.
func WithState(ctx context.Context, traceState string) context.Context {
	return context.WithValue(ctx, stateKey, traceState)
}

// StateFromContext returns the tracestate stored in ctx, if any.
func StateFromContext(ctx context.Context) (string, bool) {
	if ts, ok := ctx.Value(stateKey).(string); ok && ts != "" {
		return ts, true
	}
	return "", false
}

// NewParent creates a minimal W3C traceparent header value:
// version(2)-trace-id(32)-span-id(16)-flags(2), e.g. "00-<32 hex>-<16 hex>-01".
// The trace and span IDs are random and guaranteed non-zero per the spec.
func NewParent() string {
	traceID := randomNonZero(16)
	spanID := randomNonZero(8)
	return "00-" + hex.EncodeToString(traceID) + "-" + hex.EncodeToString(spanID) + "-01"
}

func randomNonZero(n int) []byte {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil || allZero(b) {
		// An all-zero ID is invalid per W3C; force the low byte.
		b[n-1] = 0x01
	}
	return b
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

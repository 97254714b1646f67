// Package httpclient provides a resilient REST client: requests are built
// from client configuration plus per-call overrides, passed through ordered
// interceptor chains, executed with per-attempt timeouts, and retried
// according to a caller-supplied policy.
package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/buildsys/mortar/trace"
)

const (
	// HeaderXRequestID is the standard header name for request tracing
	HeaderXRequestID = trace.HeaderXRequestID
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = trace.HeaderTraceParent
	// HeaderTraceState is the W3C trace context "tracestate" header name
	HeaderTraceState = trace.HeaderTraceState
)

// Client defines the REST client interface for making HTTP requests
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request describes a single HTTP call. URL may be absolute or relative to
// the client's base URL. Query entries with nil values are dropped; other
// values are formatted as strings. Body is opaque: byte slices, strings,
// readers and url.Values pass through unchanged, anything else is JSON
// encoded. Cancellation comes from the context passed to the call.
type Request struct {
	URL     string
	Headers map[string]string
	Query   map[string]any
	Body    any
	Auth    *BasicAuth
}

// Response represents an HTTP response with tracking information. Body holds
// the raw payload; Decoded holds the content-type aware decoding of it.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
	Decoded    any
	Request    *Request
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving a successful response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *Response) error

// ErrorInterceptor is called with the terminal error of a failed call. It may
// return a replacement error; returning nil keeps the current one.
type ErrorInterceptor func(ctx context.Context, cerr *ClientError) *ClientError

// Config holds the REST client configuration
type Config struct {
	// BaseURL is prepended to relative request URLs
	BaseURL string
	// Timeout bounds each network attempt; zero means no timeout
	Timeout time.Duration
	// Retry governs whether and how failed attempts are retried
	Retry                RetryPolicy
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	ErrorInterceptors    []ErrorInterceptor
	BasicAuth            *BasicAuth
	DefaultHeaders       map[string]string
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// TraceIDHeader configures the header name used for trace ID propagation (default: X-Request-ID)
	TraceIDHeader string
	// NewTraceID generates a new trace ID when none is present (default: uuid)
	NewTraceID func() string
	// TraceIDExtractor allows advanced extraction of a trace ID from context; return ok=false to fallback to generator
	TraceIDExtractor func(_ context.Context) (traceID string, ok bool)
	// EnableW3CTrace enables W3C Trace Context (traceparent/tracestate) propagation and generation
	EnableW3CTrace bool
	// RateLimit caps outbound requests per second; zero disables limiting
	RateLimit float64
	// RateBurst is the limiter burst size when RateLimit is set
	RateBurst int
	// Transport overrides the underlying round tripper (default: http.DefaultTransport)
	Transport nethttp.RoundTripper
}

// Trace ID utility functions

// WithTraceID adds a trace ID to the context for HTTP client propagation
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return trace.WithID(ctx, traceID)
}

// TraceIDFromContext returns a trace ID from context if present
func TraceIDFromContext(ctx context.Context) (string, bool) { return trace.IDFromContext(ctx) }

// EnsureTraceID returns an existing trace ID from context or generates a new one
func EnsureTraceID(ctx context.Context) string { return trace.EnsureID(ctx) }

// GetTraceIDFromContext ensures a non-empty trace ID value
func GetTraceIDFromContext(ctx context.Context) string { return EnsureTraceID(ctx) }

// WithTraceParent adds a W3C traceparent value to the context
func WithTraceParent(ctx context.Context, traceParent string) context.Context {
	return trace.WithParent(ctx, traceParent)
}

// TraceParentFromContext returns a traceparent from context if present
func TraceParentFromContext(ctx context.Context) (string, bool) {
	return trace.ParentFromContext(ctx)
}

// WithTraceState adds a W3C tracestate value to the context
func WithTraceState(ctx context.Context, traceState string) context.Context {
	return trace.WithState(ctx, traceState)
}

// TraceStateFromContext returns a tracestate from context if present
func TraceStateFromContext(ctx context.Context) (string, bool) {
	return trace.StateFromContext(ctx)
}

// GenerateTraceParent creates a minimal W3C traceparent header value.
// Format: version(2)-trace-id(32)-span-id(16)-flags(2), e.g., "00-<32>-<16>-01"
func GenerateTraceParent() string { return trace.NewParent() }

// NewTraceIDInterceptor creates a request interceptor that adds trace ID headers.
// This provides an alternative approach for users who want explicit control.
func NewTraceIDInterceptor() RequestInterceptor {
	return NewTraceIDInterceptorFor(HeaderXRequestID)
}

// NewTraceIDInterceptorFor creates an interceptor that uses a custom header name
func NewTraceIDInterceptorFor(header string) RequestInterceptor {
	if header == "" {
		header = HeaderXRequestID
	}
	return func(ctx context.Context, req *nethttp.Request) error {
		if req.Header.Get(header) == "" {
			req.Header.Set(header, GetTraceIDFromContext(ctx))
		}
		return nil
	}
}

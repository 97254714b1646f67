package httpclient

import (
	nethttp "net/http"
	"time"

	"github.com/buildsys/mortar/logger"
)

// DefaultMaxPayloadLogBytes caps logged body previews unless overridden.
const DefaultMaxPayloadLogBytes = 1024

// Builder assembles a Client with fluent configuration. The zero retry
// policy makes exactly one attempt per call.
type Builder struct {
	config Config
	logger logger.Logger
}

// NewBuilder starts a builder with library defaults.
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		logger: log,
		config: Config{
			MaxPayloadLogBytes: DefaultMaxPayloadLogBytes,
			TraceIDHeader:      HeaderXRequestID,
		},
	}
}

// WithBaseURL sets the base URL that relative request URLs resolve against.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithTimeout bounds each network attempt.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetryPolicy installs a full retry policy.
func (b *Builder) WithRetryPolicy(policy RetryPolicy) *Builder {
	b.config.Retry = policy
	return b
}

// WithRetry installs a policy of maxRetries transient retries with
// exponential backoff between base and maxDelay.
func (b *Builder) WithRetry(maxRetries int, base, maxDelay time.Duration) *Builder {
	b.config.Retry = RetryPolicy{
		MaxRetries:  maxRetries,
		Delay:       ExponentialBackoff(base, maxDelay, 2.0, true),
		ShouldRetry: RetryTransient,
	}
	return b
}

// WithBasicAuth sets default credentials applied when a request carries none.
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{Username: username, Password: password}
	return b
}

// WithDefaultHeader adds a header applied to every request unless overridden.
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	if b.config.DefaultHeaders == nil {
		b.config.DefaultHeaders = make(map[string]string)
	}
	b.config.DefaultHeaders[key] = value
	return b
}

// WithDefaultHeaders merges headers applied to every request unless overridden.
func (b *Builder) WithDefaultHeaders(headers map[string]string) *Builder {
	for k, v := range headers {
		b.WithDefaultHeader(k, v)
	}
	return b
}

// WithRequestInterceptor appends a hook run before each call's first attempt.
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor appends a hook run on each terminal success.
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithErrorInterceptor appends a hook run on each terminal failure.
func (b *Builder) WithErrorInterceptor(interceptor ErrorInterceptor) *Builder {
	b.config.ErrorInterceptors = append(b.config.ErrorInterceptors, interceptor)
	return b
}

// WithPayloadLogging enables debug-level header/body logging, with previews
// capped at maxBytes (DefaultMaxPayloadLogBytes when non-positive).
func (b *Builder) WithPayloadLogging(maxBytes int) *Builder {
	b.config.LogPayloads = true
	if maxBytes > 0 {
		b.config.MaxPayloadLogBytes = maxBytes
	}
	return b
}

// WithTraceIDHeader overrides the header used for trace ID propagation.
func (b *Builder) WithTraceIDHeader(header string) *Builder {
	if header != "" {
		b.config.TraceIDHeader = header
	}
	return b
}

// WithW3CTrace enables traceparent/tracestate propagation.
func (b *Builder) WithW3CTrace() *Builder {
	b.config.EnableW3CTrace = true
	return b
}

// WithRateLimit caps outbound requests per second with the given burst.
func (b *Builder) WithRateLimit(limit float64, burst int) *Builder {
	b.config.RateLimit = limit
	b.config.RateBurst = burst
	return b
}

// WithTransport overrides the underlying round tripper.
func (b *Builder) WithTransport(transport nethttp.RoundTripper) *Builder {
	b.config.Transport = transport
	return b
}

// Build constructs the client. The builder can be reused; the client keeps
// its own copy of the configuration.
func (b *Builder) Build() Client {
	cfg := b.config
	cfg.RequestInterceptors = append([]RequestInterceptor(nil), b.config.RequestInterceptors...)
	cfg.ResponseInterceptors = append([]ResponseInterceptor(nil), b.config.ResponseInterceptors...)
	cfg.ErrorInterceptors = append([]ErrorInterceptor(nil), b.config.ErrorInterceptors...)
	if len(b.config.DefaultHeaders) > 0 {
		cfg.DefaultHeaders = make(map[string]string, len(b.config.DefaultHeaders))
		for k, v := range b.config.DefaultHeaders {
			cfg.DefaultHeaders[k] = v
		}
	}
	return NewClient(&cfg, b.logger)
}

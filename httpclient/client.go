package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	neturl "net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/buildsys/mortar/logger"
	"github.com/buildsys/mortar/trace"
)

// client implements Client. All fields are fixed at construction; concurrent
// calls share no mutable state.
type client struct {
	config  *Config
	logger  logger.Logger
	http    *nethttp.Client
	base    *neturl.URL
	baseErr error
	limiter *rate.Limiter
}

var allowedMethods = map[string]bool{
	nethttp.MethodGet:     true,
	nethttp.MethodPost:    true,
	nethttp.MethodPut:     true,
	nethttp.MethodPatch:   true,
	nethttp.MethodDelete:  true,
	nethttp.MethodHead:    true,
	nethttp.MethodOptions: true,
}

// NewClient builds a client from an explicit configuration. Most callers use
// the Builder instead.
func NewClient(config *Config, log logger.Logger) Client {
	if config == nil {
		config = &Config{}
	}
	c := &client{
		config: config,
		logger: log,
		http:   &nethttp.Client{Transport: config.Transport},
	}
	if config.BaseURL != "" {
		base, err := neturl.Parse(config.BaseURL)
		if err != nil || !base.IsAbs() {
			c.baseErr = fmt.Errorf("invalid base URL %q", config.BaseURL)
		} else {
			c.base = base
		}
	}
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	return c
}

func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do executes the request pipeline: build, intercept, attempt with retry,
// decode. It resolves with exactly one of a response or a *ClientError; the
// terminal error passes through the error interceptor chain before returning.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	start := time.Now()
	traceID := c.traceID(ctx)

	resp, cerr := c.execute(ctx, method, req, start, traceID)
	if cerr != nil {
		cerr.Request = req
		cerr = c.applyErrorInterceptors(ctx, cerr)
		c.logFailure(cerr, traceID)
		return nil, cerr
	}
	resp.Request = req
	c.logResponse(resp, traceID)
	return resp, nil
}

func (c *client) execute(ctx context.Context, method string, req *Request, start time.Time, traceID string) (*Response, *ClientError) {
	template, body, cerr := c.buildRequest(ctx, method, req, traceID)
	if cerr != nil {
		return nil, cerr
	}

	// Request interceptors run once per call, not once per attempt; retries
	// re-send the already-intercepted request.
	for _, interceptor := range c.config.RequestInterceptors {
		if interceptor == nil {
			continue
		}
		if err := interceptor(ctx, template); err != nil {
			return nil, NewInterceptorError(err.Error(), "request", err)
		}
	}

	c.logRequest(template, body, traceID)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.classifyContextError(ctx, err)
		}
	}

	resp, cerr := c.attemptLoop(ctx, template, body)
	if cerr != nil {
		return nil, cerr
	}

	resp.Stats.ElapsedTime = time.Since(start)

	for _, interceptor := range c.config.ResponseInterceptors {
		if interceptor == nil {
			continue
		}
		if err := interceptor(ctx, template, resp); err != nil {
			return nil, NewInterceptorError(err.Error(), "response", err)
		}
	}
	return resp, nil
}

// attemptLoop drives the retry state machine. Each attempt yields a tagged
// result; the loop terminates on success, on an exhausted retry budget, or
// when the policy predicate declines the error.
func (c *client) attemptLoop(ctx context.Context, template *nethttp.Request, body []byte) (*Response, *ClientError) {
	policy := c.config.Retry
	for attempt := 0; ; attempt++ {
		resp, cerr := c.attempt(ctx, template, body)
		if cerr == nil {
			resp.Stats.CallCount = int64(attempt + 1)
			return resp, nil
		}

		if attempt >= policy.MaxRetries || policy.ShouldRetry == nil || !policy.ShouldRetry(cerr) {
			return nil, cerr
		}

		if policy.Delay != nil {
			if waitErr := c.waitRetry(ctx, policy.Delay(attempt+1, cerr)); waitErr != nil {
				return nil, waitErr
			}
		}
	}
}

// attempt performs one network round trip and normalizes its outcome. The
// per-attempt timeout context is released as soon as the attempt settles.
func (c *client) attempt(ctx context.Context, template *nethttp.Request, body []byte) (*Response, *ClientError) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if c.config.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.config.Timeout)
	}
	defer cancel()

	httpReq := template.Clone(attemptCtx)
	if len(body) > 0 {
		httpReq.Body = io.NopCloser(bytes.NewReader(body))
		httpReq.ContentLength = int64(len(body))
	}

	raw, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransportError(ctx, err)
	}
	defer raw.Body.Close()

	respBody, readErr := io.ReadAll(raw.Body)
	if readErr != nil {
		return nil, NewNetworkError("reading response body", readErr)
	}

	resp := &Response{
		StatusCode: raw.StatusCode,
		Headers:    raw.Header,
		Body:       respBody,
	}

	if !IsSuccessStatus(raw.StatusCode) {
		return nil, newHTTPFailure(resp)
	}

	decoded, decodeErr := decodeBody(raw.StatusCode, raw.Header.Get("Content-Type"), respBody)
	if decodeErr != nil {
		return nil, &ClientError{
			ErrorType: ValidationError,
			Status:    raw.StatusCode,
			Message:   "malformed response body",
			Response:  resp,
			Err:       decodeErr,
		}
	}
	resp.Decoded = decoded
	return resp, nil
}

// waitRetry suspends the calling task for the inter-attempt delay, honoring
// cancellation. Non-positive delays return immediately.
func (c *client) waitRetry(ctx context.Context, delay time.Duration) *ClientError {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return c.classifyContextError(ctx, ctx.Err())
	}
}

func (c *client) buildRequest(ctx context.Context, method string, req *Request, traceID string) (*nethttp.Request, []byte, *ClientError) {
	if !allowedMethods[method] {
		return nil, nil, NewValidationError(fmt.Sprintf("unsupported HTTP method %q", method), "method")
	}
	if req == nil || req.URL == "" {
		return nil, nil, NewValidationError("request URL is required", "url")
	}
	if c.baseErr != nil {
		return nil, nil, NewValidationError(c.baseErr.Error(), "base_url")
	}

	target, cerr := c.resolveURL(req)
	if cerr != nil {
		return nil, nil, cerr
	}

	body, contentType, cerr := encodeBody(req.Body)
	if cerr != nil {
		return nil, nil, cerr
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, target, nethttp.NoBody)
	if err != nil {
		return nil, nil, NewValidationError(err.Error(), "url")
	}

	for k, v := range c.config.DefaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := req.Auth
	if auth == nil {
		auth = c.config.BasicAuth
	}
	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
	}

	c.injectTrace(ctx, httpReq, traceID)

	return httpReq, body, nil
}

// resolveURL combines the configured base URL with the request URL and
// appends query parameters, dropping nil-valued entries.
func (c *client) resolveURL(req *Request) (string, *ClientError) {
	ref, err := neturl.Parse(req.URL)
	if err != nil {
		return "", NewValidationError(fmt.Sprintf("invalid request URL %q", req.URL), "url")
	}

	var target *neturl.URL
	switch {
	case ref.IsAbs():
		target = ref
	case c.base != nil:
		target = c.base.JoinPath(ref.Path)
		target.RawQuery = ref.RawQuery
		target.Fragment = ref.Fragment
	default:
		return "", NewValidationError("request URL must be absolute when no base URL is configured", "url")
	}

	if len(req.Query) > 0 {
		q := target.Query()
		for k, v := range req.Query {
			if v == nil {
				continue
			}
			q.Set(k, fmt.Sprint(v))
		}
		target.RawQuery = q.Encode()
	}
	return target.String(), nil
}

// encodeBody serializes the request payload: bytes, strings, readers and
// form values pass through unchanged, everything else is JSON encoded.
func encodeBody(body any) (data []byte, contentType string, cerr *ClientError) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return v, "", nil
	case string:
		return []byte(v), "", nil
	case json.RawMessage:
		return v, "application/json", nil
	case neturl.Values:
		return []byte(v.Encode()), "application/x-www-form-urlencoded", nil
	case io.Reader:
		// Buffered so retries resend identical bytes.
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, "", NewValidationError("reading request body", "body")
		}
		return data, "", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", NewValidationError(fmt.Sprintf("encoding request body: %v", err), "body")
		}
		return data, "application/json", nil
	}
}

func (c *client) traceID(ctx context.Context) string {
	if c.config.TraceIDExtractor != nil {
		if id, ok := c.config.TraceIDExtractor(ctx); ok {
			return id
		}
	}
	if id, ok := trace.IDFromContext(ctx); ok {
		return id
	}
	if c.config.NewTraceID != nil {
		return c.config.NewTraceID()
	}
	return trace.EnsureID(ctx)
}

func (c *client) injectTrace(ctx context.Context, httpReq *nethttp.Request, traceID string) {
	header := c.config.TraceIDHeader
	if header == "" {
		header = HeaderXRequestID
	}
	if httpReq.Header.Get(header) == "" {
		httpReq.Header.Set(header, traceID)
	}

	if !c.config.EnableW3CTrace {
		return
	}
	if httpReq.Header.Get(HeaderTraceParent) == "" {
		parent, ok := trace.ParentFromContext(ctx)
		if !ok {
			parent = trace.NewParent()
		}
		httpReq.Header.Set(HeaderTraceParent, parent)
	}
	if state, ok := trace.StateFromContext(ctx); ok && httpReq.Header.Get(HeaderTraceState) == "" {
		httpReq.Header.Set(HeaderTraceState, state)
	}
}

func (c *client) applyErrorInterceptors(ctx context.Context, cerr *ClientError) *ClientError {
	for _, interceptor := range c.config.ErrorInterceptors {
		if interceptor == nil {
			continue
		}
		if next := interceptor(ctx, cerr); next != nil {
			cerr = next
		}
	}
	return cerr
}

// classifyTransportError maps a round-trip failure to the error taxonomy.
// The caller's context takes precedence: its cancellation is reported as
// such even when the per-attempt timeout also fired.
func (c *client) classifyTransportError(ctx context.Context, err error) *ClientError {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return NewCancelledError("request canceled", err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewTimeoutError("request timed out", time.Duration(0))
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError("request timed out", c.config.Timeout)
	case errors.Is(err, context.Canceled):
		return NewCancelledError("request canceled", err)
	default:
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return NewTimeoutError("request timed out", c.config.Timeout)
		}
		return NewNetworkError("request failed", err)
	}
}

func (c *client) classifyContextError(ctx context.Context, err error) *ClientError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request timed out", time.Duration(0))
	}
	return NewCancelledError("request canceled", err)
}

// newHTTPFailure derives the error message from the response body: a string
// body is used verbatim, a JSON object supplies its message/error field (and
// optional code), anything else falls back to the status text.
func newHTTPFailure(resp *Response) *ClientError {
	message := nethttp.StatusText(resp.StatusCode)
	code := ""

	if body := bytes.TrimSpace(resp.Body); len(body) > 0 {
		var payload map[string]any
		if json.Unmarshal(body, &payload) == nil {
			if m, ok := payload["message"].(string); ok && m != "" {
				message = m
			} else if m, ok := payload["error"].(string); ok && m != "" {
				message = m
			}
			if v, ok := payload["code"].(string); ok {
				code = v
			}
		} else if !bytes.HasPrefix(body, []byte("{")) && !bytes.HasPrefix(body, []byte("[")) {
			message = string(body)
		}
	}

	cerr := NewHTTPError(message, resp.StatusCode, resp.Body)
	cerr.Code = code
	cerr.Response = resp
	return cerr
}

// decodeBody decodes the payload by declared content type: no-body statuses
// and octet-stream yield no value, JSON is parsed, text/* becomes a string,
// anything else stays raw bytes.
func decodeBody(status int, contentType string, body []byte) (any, error) {
	switch status {
	case nethttp.StatusNoContent, nethttp.StatusResetContent, nethttp.StatusNotModified:
		return nil, nil
	}
	if len(body) == 0 {
		return nil, nil
	}

	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	switch {
	case mediaType == "application/octet-stream":
		return nil, nil
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case strings.HasPrefix(mediaType, "text/"):
		return string(body), nil
	default:
		return body, nil
	}
}

package httpclient

import (
	nethttp "net/http"
	"strconv"

	"github.com/buildsys/mortar/logger"
)

const (
	logMsgRequest  = "REST client request"
	logMsgResponse = "REST client response"
	logMsgFailure  = "REST client request failed"
)

// logRedactor masks credential-bearing headers in payload logs.
var logRedactor = logger.NewRedactor(nil)

func (c *client) logRequest(req *nethttp.Request, body []byte, traceID string) {
	if c.logger == nil {
		return
	}

	evt := c.logger.Info().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID)
	if n := len(req.Header); n > 0 {
		evt = evt.Int("header_count", n)
	}
	if len(body) > 0 {
		evt = evt.Int("body_size", len(body))
	}
	evt.Msg(logMsgRequest)

	if !c.config.LogPayloads {
		return
	}
	preview, truncated := c.payloadPreview(body)
	c.logger.Debug().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID).
		Interface("headers", logRedactor.Headers(req.Header)).
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(logMsgRequest)
}

func (c *client) logResponse(resp *Response, traceID string) {
	if c.logger == nil {
		return
	}

	evt := c.logger.Info().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount).
		Str("request_id", traceID)
	if len(resp.Body) > 0 {
		evt = evt.Int("body_size", len(resp.Body))
	}
	evt.Msg(logMsgResponse)

	if !c.config.LogPayloads {
		return
	}
	preview, truncated := c.payloadPreview(resp.Body)
	c.logger.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Str("request_id", traceID).
		Interface("headers", logRedactor.Headers(resp.Headers)).
		Int("body_size", len(resp.Body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(logMsgResponse)
}

func (c *client) logFailure(cerr *ClientError, traceID string) {
	if c.logger == nil {
		return
	}
	c.logger.Error().
		Err(cerr).
		Str("direction", "outbound").
		Str("error_type", string(cerr.Type())).
		Int("status", cerr.Status).
		Str("request_id", traceID).
		Msg(logMsgFailure)
}

func (c *client) payloadPreview(body []byte) ([]byte, bool) {
	limit := c.config.MaxPayloadLogBytes
	if limit <= 0 {
		limit = DefaultMaxPayloadLogBytes
	}
	if len(body) > limit {
		return body[:limit], true
	}
	return body, false
}

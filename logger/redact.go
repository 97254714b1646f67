package logger

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaskValue replaces sensitive values in log output.
const DefaultMaskValue = "***"

// defaultSensitiveKeys match common credential-bearing field and header names.
// Matching is case-insensitive and substring based.
var defaultSensitiveKeys = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"password",
	"secret",
	"api_key",
	"api-key",
	"apikey",
	"token",
	"credential",
}

// Redactor masks values whose keys look credential-bearing. The zero-config
// redactor (NewRedactor(nil)) uses the default key list.
type Redactor struct {
	keys []string
	mask string
}

// NewRedactor builds a redactor for the given sensitive keys. A nil or empty
// list falls back to the defaults.
func NewRedactor(keys []string) *Redactor {
	if len(keys) == 0 {
		keys = defaultSensitiveKeys
	}
	lowered := make([]string, len(keys))
	for i, k := range keys {
		lowered[i] = strings.ToLower(k)
	}
	return &Redactor{keys: lowered, mask: DefaultMaskValue}
}

// Sensitive reports whether the key should have its value masked.
func (r *Redactor) Sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range r.keys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// String masks the value when the key is sensitive. URL-shaped values keep
// their structure with only the userinfo password masked.
func (r *Redactor) String(key, value string) string {
	if !r.Sensitive(key) || value == "" {
		return value
	}
	if masked, ok := r.maskURLPassword(value); ok {
		return masked
	}
	return r.mask
}

// Value masks map-shaped values entry by entry and sensitive scalars whole.
func (r *Redactor) Value(key string, value any) any {
	switch v := value.(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = r.String(k, val)
		}
		return out
	case map[string]any:
		return r.Fields(v)
	case http.Header:
		return r.Headers(v)
	case string:
		return r.String(key, v)
	default:
		if r.Sensitive(key) {
			return r.mask
		}
		return value
	}
}

// Fields returns a copy of fields with sensitive entries masked.
func (r *Redactor) Fields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = r.Value(k, v)
	}
	return out
}

// Headers flattens an http.Header to a loggable map, masking sensitive names.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if r.Sensitive(name) {
			out[name] = r.mask
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// maskURLPassword masks the userinfo password of a URL-shaped value while
// preserving the rest of its structure. ok is false for non-URL values.
func (r *Redactor) maskURLPassword(value string) (string, bool) {
	if !strings.Contains(value, "://") {
		return "", false
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.User == nil {
		return "", false
	}
	if _, has := parsed.User.Password(); !has {
		return value, true
	}
	var b strings.Builder
	b.WriteString(parsed.Scheme)
	b.WriteString("://")
	b.WriteString(parsed.User.Username())
	b.WriteByte(':')
	b.WriteString(r.mask)
	b.WriteByte('@')
	b.WriteString(parsed.Host)
	b.WriteString(parsed.EscapedPath())
	if parsed.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(parsed.RawQuery)
	}
	return b.String(), true
}

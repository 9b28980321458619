package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// HeaderName is the HTTP header carrying the trace ID between services.
const HeaderName = "X-Trace-ID"

// requestIDHeader is accepted as a fallback when HeaderName is absent.
const requestIDHeader = "X-Request-ID"

// maxIDLength bounds inbound IDs; they are echoed, logged and forwarded.
const maxIDLength = 64

type ctxKey struct{}

// GenerateTraceID returns 16 random bytes, hex encoded.
func GenerateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext returns the trace ID stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

// WithContext stores traceID in ctx.
func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// FromRequest returns the incoming trace ID (X-Trace-ID, then X-Request-ID)
// or a freshly generated one. Inbound values that fail IsValid are ignored.
func FromRequest(r *http.Request) string {
	if id := r.Header.Get(HeaderName); IsValid(id) {
		return id
	}
	if id := r.Header.Get(requestIDHeader); IsValid(id) {
		return id
	}
	return GenerateTraceID()
}

// IsValid accepts 1-64 characters of [A-Za-z0-9._-].
func IsValid(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// Inject copies the trace ID from ctx onto an outbound request.
func Inject(ctx context.Context, req *http.Request) {
	if traceID := FromContext(ctx); traceID != "" {
		req.Header.Set(HeaderName, traceID)
	}
}

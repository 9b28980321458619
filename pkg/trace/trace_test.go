package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTraceID(t *testing.T) {
	a := GenerateTraceID()
	b := GenerateTraceID()

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestContextRoundTrip(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))

	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "trace header", headers: map[string]string{HeaderName: "t-1", "X-Request-ID": "r-1"}, want: "t-1"},
		{name: "request id fallback", headers: map[string]string{"X-Request-ID": "r-1"}, want: "r-1"},
		{name: "invalid trace header falls back", headers: map[string]string{HeaderName: "bad id\r\n", "X-Request-ID": "r-2"}, want: "r-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, FromRequest(req))
		})
	}

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Len(t, FromRequest(req), 32)
	})

	t.Run("oversized header is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, strings.Repeat("a", 65))
		id := FromRequest(req)
		assert.Len(t, id, 32)
		assert.True(t, IsValid(id))
	})
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("4bf92f3577b34da6a3ce929d0e0e4736"))
	assert.True(t, IsValid("req_1.a-B"))
	assert.True(t, IsValid(strings.Repeat("a", 64)))

	assert.False(t, IsValid(""))
	assert.False(t, IsValid(strings.Repeat("a", 65)))
	assert.False(t, IsValid("has space"))
	assert.False(t, IsValid("<script>"))
	assert.False(t, IsValid("ünïcode"))
}

func TestInject(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Inject(context.Background(), req)
	assert.Empty(t, req.Header.Get(HeaderName))

	Inject(WithContext(context.Background(), "xyz"), req)
	assert.Equal(t, "xyz", req.Header.Get(HeaderName))
}

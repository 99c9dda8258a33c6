package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Equal(t, "abc-123", FromContext(WithRequestID(context.Background(), "abc-123")))
	assert.Equal(t, "", FromContext(context.Background()))
	assert.Equal(t, "", FromContext(context.WithValue(context.Background(), RequestIDKey, 42)))
}

func serve(t *testing.T, header string) (seen string, echoed string) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/summaries", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get(RequestIDHeader)
}

func TestMiddleware_Generates(t *testing.T) {
	seen, echoed := serve(t, "")

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, echoed)
}

func TestMiddleware_PropagatesValidID(t *testing.T) {
	seen, echoed := serve(t, "upstream.req-42")
	assert.Equal(t, "upstream.req-42", seen)
	assert.Equal(t, "upstream.req-42", echoed)
}

func TestMiddleware_ReplacesMalformedID(t *testing.T) {
	for _, bad := range []string{"with space", "new\nline", strings.Repeat("a", 65)} {
		seen, _ := serve(t, bad)
		assert.NotEqual(t, bad, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	}
}

package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLimiterPerIP(t *testing.T) {
	l := NewLimiter(2, 0)

	require.True(t, l.Acquire("1.1.1.1"))
	require.True(t, l.Acquire("1.1.1.1"))
	require.False(t, l.Acquire("1.1.1.1"))
	require.True(t, l.Acquire("2.2.2.2"))
	require.Equal(t, 2, l.Count("1.1.1.1"))

	l.Release("1.1.1.1")
	require.Equal(t, 1, l.Count("1.1.1.1"))
	require.True(t, l.Acquire("1.1.1.1"))

	l.Release("1.1.1.1")
	l.Release("1.1.1.1")
	require.Zero(t, l.Count("1.1.1.1"))
}

func TestLimiterTotal(t *testing.T) {
	l := NewLimiter(5, 2)
	require.True(t, l.Acquire("a"))
	require.True(t, l.Acquire("b"))
	require.False(t, l.Acquire("c"))
	l.Release("a")
	require.True(t, l.Acquire("c"))
}

func TestLimiterMiddleware(t *testing.T) {
	l := NewLimiter(1, 0)
	require.True(t, l.Acquire("10.0.0.1"))

	var served bool
	h := l.Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.False(t, served)

	l.Release("10.0.0.1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, served)
	require.Zero(t, l.Count("10.0.0.1"))
}

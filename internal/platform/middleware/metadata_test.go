package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arXiv/arxiv-admin-console-sub000/pkg/requestcontext"
)

func captureContext(t *testing.T, mutate func(*http.Request)) (ip, ua, cookie, requestID string) {
	t.Helper()

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip = requestcontext.ClientIP(ctx)
		ua = requestcontext.UserAgent(ctx)
		cookie = requestcontext.TrackingCookie(ctx)
		requestID = requestcontext.RequestID(ctx)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	Metadata(handler).ServeHTTP(httptest.NewRecorder(), req)
	return ip, ua, cookie, requestID
}

func TestMetadataClientIP(t *testing.T) {
	t.Run("forwarded header wins", func(t *testing.T) {
		ip, _, _, _ := captureContext(t, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.50, 10.0.0.1")
		})
		assert.Equal(t, "203.0.113.50", ip)
	})

	t.Run("garbage forwarded header falls through", func(t *testing.T) {
		ip, _, _, _ := captureContext(t, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "not-an-ip")
			r.RemoteAddr = "198.51.100.7:4411"
		})
		assert.Equal(t, "198.51.100.7", ip)
	})

	t.Run("real ip header", func(t *testing.T) {
		ip, _, _, _ := captureContext(t, func(r *http.Request) {
			r.Header.Set("X-Real-IP", "203.0.113.9")
		})
		assert.Equal(t, "203.0.113.9", ip)
	})
}

func TestMetadataUserAgentSummary(t *testing.T) {
	_, ua, _, _ := captureContext(t, func(r *http.Request) {
		r.Header.Set("User-Agent",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})
	assert.Contains(t, ua, "Chrome")
	assert.Contains(t, ua, "Linux")
}

func TestMetadataTrackingCookieAndRequestID(t *testing.T) {
	_, _, cookie, requestID := captureContext(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: TrackingCookieName, Value: "abc123.1700000000"})
	})
	assert.Equal(t, "abc123.1700000000", cookie)
	require.NotEmpty(t, requestID)
}

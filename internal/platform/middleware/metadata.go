package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/arXiv/arxiv-admin-console-sub000/pkg/requestcontext"
)

// TrackingCookieName is the legacy tapir tracking cookie the console forwards
// into audit rows.
const TrackingCookieName = "tapir_tracking"

// Metadata captures the client network metadata every audit row records: a
// request id, the client IP (respecting reverse-proxy headers), a parsed
// User-Agent summary, and the tracking cookie when present.
func Metadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithRequestID(r.Context(), uuid.NewString())
		ctx = requestcontext.WithClientMetadata(ctx, clientIP(r), "", summarizeUserAgent(r.UserAgent()))
		if cookie, err := r.Cookie(TrackingCookieName); err == nil && cookie.Value != "" {
			ctx = requestcontext.WithTrackingCookie(ctx, cookie.Value)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP extracts the real client IP, preferring reverse-proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// summarizeUserAgent reduces the raw User-Agent header to "Browser/Version
// (OS)" for log lines; the raw header is too noisy for the audit view.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	summary := name
	if version != "" {
		summary += "/" + version
	}
	if os := ua.OS(); os != "" {
		summary += " (" + os + ")"
	}
	return summary
}

// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; the admin service reads them when it stamps
// session and network metadata onto new audit rows. Keeping the package free
// of net/http lets services and tests use it without HTTP plumbing.
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	adminIDKey        struct{}
	sessionIDKey      struct{}
	clientIPKey       struct{}
	remoteHostKey     struct{}
	userAgentKey      struct{}
	trackingCookieKey struct{}
	requestIDKey      struct{}
)

// AdminID retrieves the authenticated acting admin's user id.
func AdminID(ctx context.Context) string {
	if v, ok := ctx.Value(adminIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithAdminID injects the acting admin's user id.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminIDKey{}, adminID)
}

// SessionID retrieves the admin's tapir session id.
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the admin's tapir session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// ClientIP retrieves the client IP address.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// RemoteHost retrieves the reverse-resolved client hostname, when known.
func RemoteHost(ctx context.Context) string {
	if v, ok := ctx.Value(remoteHostKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent retrieves the parsed User-Agent summary.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata injects IP, remote hostname, and User-Agent summary.
// Useful for service unit tests that skip the HTTP middleware chain.
func WithClientMetadata(ctx context.Context, ip, remoteHost, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	ctx = context.WithValue(ctx, remoteHostKey{}, remoteHost)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// TrackingCookie retrieves the tapir tracking cookie value.
func TrackingCookie(ctx context.Context) string {
	if v, ok := ctx.Value(trackingCookieKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTrackingCookie injects the tapir tracking cookie value.
func WithTrackingCookie(ctx context.Context, cookie string) context.Context {
	return context.WithValue(ctx, trackingCookieKey{}, cookie)
}

// RequestID retrieves the correlation id for the request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

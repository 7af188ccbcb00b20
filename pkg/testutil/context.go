package testutil

import (
	"net/http"

	"github.com/arXiv/arxiv-admin-console-sub000/pkg/requestcontext"
)

// WithAdmin stamps an acting admin onto the request context, simulating the
// admin JWT middleware for tests that call handlers directly.
func WithAdmin(req *http.Request, adminID, sessionID string) *http.Request {
	ctx := requestcontext.WithAdminID(req.Context(), adminID)
	if sessionID != "" {
		ctx = requestcontext.WithSessionID(ctx, sessionID)
	}
	return req.WithContext(ctx)
}

// WithClientMetadata stamps network metadata onto the request context,
// simulating the metadata middleware.
func WithClientMetadata(req *http.Request, ip, remoteHost, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, remoteHost, userAgent))
}

// Package middleware holds the HTTP middleware for the admin API: the admin
// JWT guard and the request-metadata capture that feeds audit rows.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arXiv/arxiv-admin-console-sub000/pkg/requestcontext"
)

// RequireAdmin verifies the Authorization bearer token (HS256, signed by the
// tapir session service) and injects the acting admin's user id and session
// id into the request context. Requests without a valid admin token get 403.
func RequireAdmin(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				forbidden(w, "missing admin token")
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				forbidden(w, "invalid admin token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				forbidden(w, "invalid admin token")
				return
			}
			adminID, err := claims.GetSubject()
			if err != nil || adminID == "" {
				forbidden(w, "token missing subject")
				return
			}
			if isAdmin, _ := claims["admin"].(bool); !isAdmin {
				forbidden(w, "not an administrator")
				return
			}

			ctx := requestcontext.WithAdminID(r.Context(), adminID)
			if sid, _ := claims["sid"].(string); sid != "" {
				ctx = requestcontext.WithSessionID(ctx, sid)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func forbidden(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
}

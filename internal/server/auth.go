package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/peakform/coach-go/internal/logging"
)

// authMiddleware enforces Bearer token authentication on the coach endpoint.
// If apiKey is empty the middleware is a no-op: auth is disabled and the
// server logs a warning at startup (not per-request).
//
// Protected routes must supply:
//
//	Authorization: Bearer <apiKey>
//
// Tokens are compared in constant time and never logged; only their
// presence or absence is recorded.
func authMiddleware(apiKey string, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}
	want := []byte(apiKey)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, r, `Bearer realm="coach"`, "authorization required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			unauthorized(w, r, `Bearer realm="coach" error="invalid_token"`, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// unauthorized rejects the request with a 401 and the given WWW-Authenticate
// challenge.
func unauthorized(w http.ResponseWriter, r *http.Request, challenge, msg string) {
	logging.FromContext(r.Context()).Warn("auth: rejected request",
		slog.String("path", r.URL.Path),
		slog.String("reason", msg),
	)
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, msg, http.StatusUnauthorized)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns an empty string if the header is absent or malformed.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

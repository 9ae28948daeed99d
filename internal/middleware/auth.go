package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apierrors "licensegate/internal/errors"
)

// AdminAuth guards the admin surface with a bearer token. The server
// holds only the bcrypt hash of the token; a plaintext fallback exists
// for local development configs.
func AdminAuth(tokenHash, plainToken string, logger *slog.Logger) func(next http.Handler) http.Handler {
	authLogger := logger.With(slog.String("component", "admin_auth"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apierrors.WriteError(w, apierrors.ErrUnauthorized)
				return
			}

			if !tokenMatches(tokenHash, plainToken, token) {
				authLogger.WarnContext(r.Context(), "admin authentication failed",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"audit_category", "license_security",
				)
				apierrors.WriteError(w, apierrors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func tokenMatches(tokenHash, plainToken, presented string) bool {
	if tokenHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(presented)) == nil
	}
	if plainToken != "" {
		return subtle.ConstantTimeCompare([]byte(plainToken), []byte(presented)) == 1
	}
	// No credential configured means the admin surface is closed.
	return false
}

package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/immor75/MeetingsDecisions/pkg/cryptox"
)

// APIKeyPrincipal is the principal recorded for callers holding the
// integration API key.
const APIKeyPrincipal = "integration"

// RequireAPIKey protects the management API with a static bearer key. An
// empty key disables the check, which is only meant for local development.
func RequireAPIKey(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			if !cryptox.EqualSecret(raw, key) {
				loggerFor(r).Warn("api key rejected")
				writeBearerError(w, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), CtxKeyPrincipal, APIKeyPrincipal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}

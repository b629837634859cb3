package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/platform/httpx"
)

// Middleware attaches the caller identity to the request context. Requests
// without a usable token continue anonymously; operations that require a
// permission reject them later. A valid token whose identity cannot be loaded
// is answered with 503.
func Middleware(verifier *Verifier, resolver *Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.Verify(raw)
			if err != nil {
				logger.Debug("bearer token rejected", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			id, err := resolver.Resolve(r.Context(), claims.Subject)
			if err != nil {
				logger.Error("identity lookup failed", slog.String("user_id", claims.Subject), slog.Any("error", err))
				httpx.Problem(w, http.StatusServiceUnavailable, "Identity Unavailable", "caller identity could not be resolved")
				return
			}
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(authz.ContextWithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

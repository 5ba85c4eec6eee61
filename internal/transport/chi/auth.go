package chi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/auth"
	"github.com/kailas-cloud/schemefinder/internal/domain"
	logpkg "github.com/kailas-cloud/schemefinder/internal/logger"
)

// Authenticator verifies admin bearer credentials.
type Authenticator interface {
	Enabled() bool
	Authenticate(ctx context.Context, credential string) (auth.Principal, error)
}

// AdminAuthMiddleware guards admin routes. A disabled authenticator rejects every request.
func AdminAuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authn == nil || !authn.Enabled() {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "admin authentication is not configured")
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			principal, err := authn.Authenticate(r.Context(), strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				logpkg.FromContext(r.Context()).Info("admin auth rejected", zap.Error(err))
				if errors.Is(err, domain.ErrForbidden) {
					writeError(w, http.StatusForbidden, ErrorCodeForbidden, "not an administrator")
					return
				}
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid credential")
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal)
			ctx = logpkg.With(ctx, zap.String("actor", principal.Actor()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFrom(r *http.Request) string {
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		return p.Actor()
	}
	return ""
}

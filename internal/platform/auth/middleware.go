package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
)

// IdentitySource resolves the agent's signed-in identity.
type IdentitySource interface {
	Resolve(ctx context.Context) (string, error)
}

type identityContextKey struct{}

// NewSessionMiddleware creates Huma middleware that requires a signed-in
// session for operations declaring Security requirements. The resolved
// identity is stored in the request context.
func NewSessionMiddleware(api huma.API, identities IdentitySource) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		id, err := identities.Resolve(ctx.Context())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNetwork):
				applog.LogWarn(ctx.Context(), "session check failed", zap.String("reason", "network_error"))
				ctx.SetHeader("Retry-After", "30")
				_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable,
					"authentication service temporarily unavailable")
			case errors.Is(err, domain.ErrNotAuthenticated):
				applog.LogWarn(ctx.Context(), "session check failed", zap.String("reason", "not_authenticated"))
				ctx.SetHeader("WWW-Authenticate", "Bearer")
				_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "not signed in")
			default:
				applog.LogError(ctx.Context(), "session check failed", err)
				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		ctx = huma.WithValue(ctx, identityContextKey{}, id)
		next(ctx)
	}
}

// IdentityFromContext returns the identity stored by the session middleware,
// or "" when the operation is not secured.
func IdentityFromContext(ctx context.Context) string {
	id, _ := ctx.Value(identityContextKey{}).(string)
	return id
}

package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/platform/auth"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
	"github.com/janisto/fitsocial/internal/platform/respond"
	"github.com/janisto/fitsocial/internal/social"
)

// Resetter invalidates all locally held session state.
type Resetter interface {
	Reset(ctx context.Context, reason string) error
}

// Deps are the collaborators of the session endpoints.
type Deps struct {
	Tokens     auth.TokenStore
	Identities auth.IdentitySource
	Sessions   Resetter
}

// SignInInput for PUT /session
type SignInInput struct {
	Authorization string `header:"Authorization" required:"true" doc:"Bearer Firebase ID token of the account to sign in"`
}

// SignInOutput for PUT /session
type SignInOutput struct {
	Body struct {
		UserID string `json:"userId" doc:"Signed-in identity" example:"user-123"`
	}
}

// Register wires session routes into the provided API router.
func Register(api huma.API, deps Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "sign-in",
		Method:      http.MethodPut,
		Path:        "/session",
		Summary:     "Sign in",
		Description: "Stores the ID token, drops everything cached for the previous account and resolves the new identity.",
		Tags:        []string{"Session"},
	}, func(ctx context.Context, input *SignInInput) (*SignInOutput, error) {
		token, err := auth.ExtractBearerToken(input.Authorization)
		if err != nil {
			return nil, respond.Error(ctx, errors.Join(domain.ErrNotAuthenticated, err))
		}
		if err := deps.Tokens.Save(ctx, token); err != nil {
			return nil, respond.Error(ctx, err)
		}
		if err := deps.Sessions.Reset(ctx, social.ReasonSignIn); err != nil {
			return nil, respond.Error(ctx, err)
		}

		id, err := deps.Identities.Resolve(ctx)
		if err != nil {
			// A concurrent reset may have stored a newer token; keep it.
			if errors.Is(err, domain.ErrNotAuthenticated) && !errors.Is(err, social.ErrIdentityChanged) {
				if clearErr := deps.Tokens.Clear(ctx); clearErr != nil {
					applog.LogWarn(ctx, "token clear failed", zap.Error(clearErr))
				}
			}
			return nil, respond.Error(ctx, err)
		}
		applog.LogInfo(ctx, "signed in", zap.String("userId", id))

		out := &SignInOutput{}
		out.Body.UserID = id
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "sign-out",
		Method:        http.MethodDelete,
		Path:          "/session",
		Summary:       "Sign out",
		Description:   "Clears the identity, cached profile, settings mirror and in-memory state, then forgets the ID token. Safe to repeat.",
		Tags:          []string{"Session"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		resetErr := deps.Sessions.Reset(ctx, social.ReasonSignOut)
		if err := deps.Tokens.Clear(ctx); err != nil {
			return nil, respond.Error(ctx, err)
		}
		if resetErr != nil {
			return nil, respond.Error(ctx, resetErr)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "reset-session",
		Method:        http.MethodPost,
		Path:          "/session/reset",
		Summary:       "Reset local state",
		Description:   "Drops all locally cached social state but keeps the ID token, so the next request resolves the identity again.",
		Tags:          []string{"Session"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		if err := deps.Sessions.Reset(ctx, social.ReasonDebugReset); err != nil {
			return nil, respond.Error(ctx, err)
		}
		return nil, nil
	})
}

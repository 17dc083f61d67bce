package settings

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/http/v1/profile"
	"github.com/janisto/fitsocial/internal/platform/respond"
)

// Service reads and replaces the caller's privacy settings.
type Service interface {
	Load(ctx context.Context) (domain.PrivacySettings, error)
	Save(ctx context.Context, settings domain.PrivacySettings) (domain.PrivacySettings, error)
}

// GetInput for GET /settings
type GetInput struct{}

// PutInput for PUT /settings
type PutInput struct {
	Body profile.PrivacySettings
}

// Output for both settings endpoints.
type Output struct {
	Body profile.PrivacySettings
}

// Register wires privacy settings routes into the provided API router.
func Register(api huma.API, svc Service) {
	security := []map[string][]string{{"session": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/settings",
		Summary:     "Get privacy settings",
		Description: "Returns the caller's privacy settings. Falls back to the local mirror when the remote store is unreachable.",
		Tags:        []string{"Settings"},
		Security:    security,
	}, func(ctx context.Context, _ *GetInput) (*Output, error) {
		s, err := svc.Load(ctx)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return &Output{Body: profile.PrivacyFromDomain(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "put-settings",
		Method:      http.MethodPut,
		Path:        "/settings",
		Summary:     "Replace privacy settings",
		Description: "Replaces the privacy settings as a whole object. Follow policy changes apply to new follow requests only.",
		Tags:        []string{"Settings"},
		Security:    security,
	}, func(ctx context.Context, input *PutInput) (*Output, error) {
		s, err := svc.Save(ctx, input.Body.ToDomain())
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return &Output{Body: profile.PrivacyFromDomain(s)}, nil
	})
}

package profile

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/platform/respond"
	"github.com/janisto/fitsocial/internal/social"
)

// Service is the part of the profile directory these endpoints use.
type Service interface {
	Register(ctx context.Context, username, displayName, bio string) (*domain.Profile, error)
	FetchOwn(ctx context.Context) (*domain.Profile, error)
	Update(ctx context.Context, upd social.ProfileUpdate) (*domain.Profile, error)
	Stats(ctx context.Context) (domain.Stats, error)
	RemoveAccount(ctx context.Context) error
}

var sessionSecurity = []map[string][]string{{"session": {}}}

// Register registers profile endpoints.
func Register(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/profile",
		Summary:       "Register a profile",
		Description:   "Creates the profile of the signed-in identity with default privacy settings. Usernames are unique after normalization.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusCreated,
		Security:      sessionSecurity,
	}, func(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
		p, err := svc.Register(ctx, input.Body.Username, input.Body.DisplayName, input.Body.Bio)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return &CreateOutput{
			Location: "/v1/profile",
			Body:     FromDomain(p),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Get own profile",
		Description: "Returns the signed-in user's profile, from the local cache when available.",
		Tags:        []string{"Profile"},
		Security:    sessionSecurity,
	}, func(ctx context.Context, _ *SessionInput) (*Output, error) {
		p, err := svc.FetchOwn(ctx)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return &Output{Body: FromDomain(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/profile",
		Summary:     "Update own profile",
		Description: "Updates the provided fields. Privacy settings are replaced as a whole object.",
		Tags:        []string{"Profile"},
		Security:    sessionSecurity,
	}, func(ctx context.Context, input *UpdateInput) (*Output, error) {
		if !hasProfileUpdateFields(input) {
			return nil, huma.Error422UnprocessableEntity("at least one field must be provided")
		}
		upd := social.ProfileUpdate{
			DisplayName:    input.Body.DisplayName,
			Bio:            input.Body.Bio,
			IsDiscoverable: input.Body.IsDiscoverable,
		}
		if input.Body.Privacy != nil {
			settings := input.Body.Privacy.ToDomain()
			upd.Privacy = &settings
		}
		p, err := svc.Update(ctx, upd)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return &Output{Body: FromDomain(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-profile",
		Method:        http.MethodDelete,
		Path:          "/profile",
		Summary:       "Remove account",
		Description:   "Deletes the profile, its username claim and outgoing follow edges, then signs the session out locally.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusNoContent,
		Security:      sessionSecurity,
	}, func(ctx context.Context, _ *SessionInput) (*struct{}, error) {
		if err := svc.RemoveAccount(ctx); err != nil {
			return nil, respond.Error(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile-stats",
		Method:      http.MethodGet,
		Path:        "/profile/stats",
		Summary:     "Get own activity stats",
		Description: "Returns the aggregate counters maintained by activity publishing.",
		Tags:        []string{"Profile"},
		Security:    sessionSecurity,
	}, func(ctx context.Context, _ *SessionInput) (*StatsOutput, error) {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return &StatsOutput{Body: StatsFromDomain(stats)}, nil
	})
}

func hasProfileUpdateFields(input *UpdateInput) bool {
	return input.Body.DisplayName != nil ||
		input.Body.Bio != nil ||
		input.Body.IsDiscoverable != nil ||
		input.Body.Privacy != nil
}

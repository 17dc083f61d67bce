package profiles

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/http/v1/profile"
	"github.com/janisto/fitsocial/internal/platform/respond"
)

// Service finds other users' profiles.
type Service interface {
	Search(ctx context.Context, query string) ([]domain.Profile, error)
	Suggestions(ctx context.Context, limit int) ([]domain.Profile, error)
}

// Register wires profile discovery routes into the provided API router.
func Register(api huma.API, svc Service) {
	security := []map[string][]string{{"session": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "search-profiles",
		Method:      http.MethodGet,
		Path:        "/profiles/search",
		Summary:     "Search profiles",
		Description: "Prefix search over usernames and display names. Private profiles are never returned. A blank query returns an empty list.",
		Tags:        []string{"Profiles"},
		Security:    security,
	}, func(ctx context.Context, input *SearchInput) (*ListOutput, error) {
		found, err := svc.Search(ctx, input.Query)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return listOutput(found), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-suggestions",
		Method:      http.MethodGet,
		Path:        "/profiles/suggestions",
		Summary:     "Suggest profiles to follow",
		Description: "Returns discoverable public profiles the caller has no follow edge to.",
		Tags:        []string{"Profiles"},
		Security:    security,
	}, func(ctx context.Context, input *SuggestionsInput) (*ListOutput, error) {
		found, err := svc.Suggestions(ctx, input.Limit)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return listOutput(found), nil
	})
}

func listOutput(found []domain.Profile) *ListOutput {
	items := profile.List(found)
	return &ListOutput{Body: ListData{Items: items, Total: len(items)}}
}

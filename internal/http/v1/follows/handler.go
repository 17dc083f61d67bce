package follows

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/http/v1/profile"
	"github.com/janisto/fitsocial/internal/platform/pagination"
	"github.com/janisto/fitsocial/internal/platform/respond"
	"github.com/janisto/fitsocial/internal/social"
)

const cursorType = "profile"

// Service is the follow graph as seen by the caller.
type Service interface {
	Follow(ctx context.Context, targetID string) (social.FollowOutcome, error)
	Unfollow(ctx context.Context, targetID string) error
	IsFollowing(targetID string) bool
	FetchFollowing(ctx context.Context) ([]domain.Profile, error)
	FetchFollowers(ctx context.Context) ([]domain.Profile, error)
}

// Register wires follow graph routes into the provided API router.
func Register(api huma.API, svc Service, prefix string) {
	security := []map[string][]string{{"session": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "list-following",
		Method:      http.MethodGet,
		Path:        "/following",
		Summary:     "List followed users",
		Description: "Fetches the accounts the caller follows, most recent first, and refreshes the local following set. Use the Link header to page.",
		Tags:        []string{"Follows"},
		Security:    security,
	}, func(ctx context.Context, input *ListInput) (*ListOutput, error) {
		found, err := svc.FetchFollowing(ctx)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return page(found, input.Params, prefix+"/following")
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-followers",
		Method:      http.MethodGet,
		Path:        "/followers",
		Summary:     "List followers",
		Description: "Fetches the accounts with an accepted edge towards the caller.",
		Tags:        []string{"Follows"},
		Security:    security,
	}, func(ctx context.Context, input *ListInput) (*ListOutput, error) {
		found, err := svc.FetchFollowers(ctx)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		return page(found, input.Params, prefix+"/followers")
	})

	huma.Register(api, huma.Operation{
		OperationID: "follow-user",
		Method:      http.MethodPut,
		Path:        "/following/{id}",
		Summary:     "Follow a user",
		Description: "Creates an edge as the target's follow policy allows. Returns 202 with status pending when the target approves followers.",
		Tags:        []string{"Follows"},
		Security:    security,
		Responses: map[string]*huma.Response{
			"202": {Description: "Follow request waits for approval"},
		},
	}, func(ctx context.Context, input *TargetInput) (*FollowOutput, error) {
		outcome, err := svc.Follow(ctx, input.ID)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		status := http.StatusOK
		if outcome == social.FollowApprovalRequired {
			status = http.StatusAccepted
		}
		return &FollowOutput{
			Status: status,
			Body:   FollowResult{UserID: input.ID, Status: string(outcome)},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "unfollow-user",
		Method:        http.MethodDelete,
		Path:          "/following/{id}",
		Summary:       "Unfollow a user",
		Description:   "Removes the edge. Succeeds when no edge exists.",
		Tags:          []string{"Follows"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
	}, func(ctx context.Context, input *TargetInput) (*struct{}, error) {
		if err := svc.Unfollow(ctx, input.ID); err != nil {
			return nil, respond.Error(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-following-state",
		Method:      http.MethodGet,
		Path:        "/following/{id}",
		Summary:     "Check whether the caller follows a user",
		Description: "Answers from the local following set without a remote call.",
		Tags:        []string{"Follows"},
		Security:    security,
	}, func(_ context.Context, input *TargetInput) (*StateOutput, error) {
		return &StateOutput{Body: FollowingState{
			UserID:      input.ID,
			IsFollowing: svc.IsFollowing(input.ID),
		}}, nil
	})
}

func page(found []domain.Profile, params pagination.Params, baseURL string) (*ListOutput, error) {
	items := profile.List(found)
	result, err := pagination.Paginate(
		items,
		params,
		cursorType,
		func(p profile.Profile) string { return p.ID },
		baseURL,
		url.Values{},
	)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, huma.Error400BadRequest("invalid cursor")
		}
		return nil, err
	}
	return &ListOutput{
		Link: result.LinkHeader,
		Body: ListData{Items: result.Items, Total: result.Total},
	}, nil
}

package feed

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/platform/pagination"
	"github.com/janisto/fitsocial/internal/platform/respond"
	"github.com/janisto/fitsocial/internal/social"
)

const cursorType = "activity"

// Service publishes and reads shared activities.
type Service interface {
	Publish(ctx context.Context, summary domain.ActivitySummary, autoTriggered bool) (social.PublishResult, error)
	FetchFeed(ctx context.Context) ([]domain.SharedActivity, error)
}

// Register wires activity and feed routes into the provided API router.
func Register(api huma.API, svc Service, prefix string) {
	security := []map[string][]string{{"session": {}}}

	huma.Register(api, huma.Operation{
		OperationID:   "publish-activity",
		Method:        http.MethodPost,
		Path:          "/activities",
		Summary:       "Share a completed activity",
		Description:   "Publishes the activity to followers' feeds and updates the owner's stats atomically. Retrying with the same id does not count twice. Automatic shares are skipped unless auto sharing is on.",
		Tags:          []string{"Feed"},
		DefaultStatus: http.StatusCreated,
		Security:      security,
	}, func(ctx context.Context, input *PublishInput) (*PublishOutput, error) {
		summary := domain.ActivitySummary{
			ID:          input.Body.ID,
			Label:       input.Body.Label,
			OccurredAt:  input.Body.OccurredAt,
			TotalVolume: input.Body.TotalVolume,
			ItemCount:   input.Body.ItemCount,
			IsCompleted: input.Body.IsCompleted,
		}
		res, err := svc.Publish(ctx, summary, input.Body.AutoTriggered)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}

		out := &PublishOutput{
			Status: http.StatusOK,
			Body:   PublishResult{Created: res.Created, Skipped: res.Skipped},
		}
		if res.Created {
			out.Status = http.StatusCreated
		}
		if res.Activity != nil {
			a := toActivity(res.Activity)
			out.Body.Activity = &a
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-feed",
		Method:      http.MethodGet,
		Path:        "/feed",
		Summary:     "Get the activity feed",
		Description: "Returns activities of the accounts in the local following set, newest first. Fetch /following first to refresh that set.",
		Tags:        []string{"Feed"},
		Security:    security,
	}, func(ctx context.Context, input *FeedInput) (*FeedOutput, error) {
		activities, err := svc.FetchFeed(ctx)
		if err != nil {
			return nil, respond.Error(ctx, err)
		}
		result, err := pagination.Paginate(
			toActivities(activities),
			input.Params,
			cursorType,
			func(a Activity) string { return a.ID },
			prefix+"/feed",
			url.Values{},
		)
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return nil, huma.Error400BadRequest("invalid cursor")
			}
			return nil, respond.Error(ctx, err)
		}
		return &FeedOutput{
			Link: result.LinkHeader,
			Body: ListData{Items: result.Items, Total: result.Total},
		}, nil
	})
}

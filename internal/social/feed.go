package social

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
)

// FeedLimit caps the number of activities in one feed fetch.
const FeedLimit = 50

// PublishResult describes a Publish call that did not fail.
type PublishResult struct {
	// Activity is the stored record; nil when Skipped.
	Activity *domain.SharedActivity
	// Created is false when an activity with the same id was already stored.
	Created bool
	// Skipped is true for an automatic share the owner has not enabled.
	Skipped bool
}

// Feed publishes the caller's activities and assembles the activities of the
// accounts the caller follows.
type Feed struct {
	c   *core
	dir *Directory
}

// Publish shares a completed activity. An automatic share is skipped without
// any write unless the owner enabled auto sharing. The activity and the
// owner's stat increment are stored atomically; retrying with the same
// summary ID does not count twice.
func (f *Feed) Publish(ctx context.Context, summary domain.ActivitySummary, autoTriggered bool) (PublishResult, error) {
	if err := summary.Validate(); err != nil {
		return PublishResult{}, err
	}

	own, epoch, err := f.dir.fetchOwn(ctx)
	if err != nil {
		return PublishResult{}, err
	}
	if !shouldShare(own.Privacy, autoTriggered) {
		applog.LogInfo(ctx, "auto share disabled, activity not published", zap.String("userId", own.ID))
		return PublishResult{Skipped: true}, nil
	}

	id := strings.TrimSpace(summary.ID)
	if id == "" {
		id = f.c.newID()
	}
	occurred := summary.OccurredAt
	if occurred.IsZero() {
		occurred = f.c.now()
	}

	stored, created, err := f.c.store.PublishActivity(ctx, domain.SharedActivity{
		ID:          id,
		OwnerID:     own.ID,
		Label:       strings.TrimSpace(summary.Label),
		OccurredAt:  occurred.UTC(),
		TotalVolume: summary.TotalVolume,
		ItemCount:   summary.ItemCount,
		IsCompleted: summary.IsCompleted,
	})
	if err != nil {
		return PublishResult{}, f.c.ownNotFound(ctx, err)
	}

	if created {
		// Remote wins: re-read the counters the transaction just changed.
		if p, err := f.c.store.GetProfile(ctx, own.ID); err == nil {
			f.c.remember(ctx, epoch, *p)
		} else {
			applog.LogWarn(ctx, "profile refresh after publish failed", zap.Error(err))
		}
	}
	return PublishResult{Activity: stored, Created: created}, nil
}

// FetchFeed returns activities owned by the cached following set, newest
// first. With an empty following set it returns an empty list without any
// remote call.
func (f *Feed) FetchFeed(ctx context.Context) ([]domain.SharedActivity, error) {
	epoch := f.c.state.currentEpoch()
	ids := f.c.state.followingIDs()
	if len(ids) == 0 {
		return []domain.SharedActivity{}, nil
	}

	activities, err := f.c.store.ListActivities(ctx, ids, FeedLimit)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []domain.SharedActivity{}
	}
	f.c.state.setFeed(epoch, activities)
	return activities, nil
}

// Cached returns the feed from the last successful fetch.
func (f *Feed) Cached() []domain.SharedActivity {
	return f.c.state.cachedFeed()
}

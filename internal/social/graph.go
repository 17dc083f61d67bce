package social

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
	"github.com/janisto/fitsocial/internal/store"
)

// FollowOutcome is the successful result of Follow.
type FollowOutcome string

const (
	// FollowAccepted means the edge is active and the target is in the
	// following list.
	FollowAccepted FollowOutcome = "following"
	// FollowApprovalRequired means a pending edge exists and waits for the
	// target's approval. It is not a failure.
	FollowApprovalRequired FollowOutcome = "pending"
)

// Graph manages the caller's outgoing follow edges.
//
// TODO: accepting or declining a pending request and blocking a follower have
// no operation yet; the edge statuses for both already exist.
type Graph struct {
	c *core
}

// Follow creates an edge from the caller to targetID as the target's follow
// policy allows.
func (g *Graph) Follow(ctx context.Context, targetID string) (FollowOutcome, error) {
	self, epoch, err := g.c.begin(ctx)
	if err != nil {
		return "", err
	}
	if targetID == self {
		return "", domain.ErrCannotFollowSelf
	}
	if !domain.ValidKey(targetID) {
		return "", fmt.Errorf("%w: %q", domain.ErrUserNotFound, targetID)
	}

	target, err := g.c.store.GetProfile(ctx, targetID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, targetID)
	}
	if err != nil {
		return "", err
	}

	decision := decideFollow(target.Privacy)
	if decision == followDenied {
		return "", domain.ErrFollowingNotAllowed
	}

	existing, err := g.c.store.GetRelationship(ctx, self, targetID)
	switch {
	case err == nil:
		return g.existingOutcome(ctx, epoch, *existing, *target)
	case !errors.Is(err, store.ErrRelationshipNotFound):
		return "", err
	}

	status := domain.StatusAccepted
	if decision == followNeedsApproval {
		status = domain.StatusPending
	}
	_, err = g.c.store.CreateRelationship(ctx, domain.Relationship{
		FollowerID:  self,
		FollowingID: targetID,
		Status:      status,
		CreatedAt:   g.c.now(),
	})
	if errors.Is(err, store.ErrRelationshipExists) {
		// Lost a race with a concurrent follow; report what is stored now.
		current, getErr := g.c.store.GetRelationship(ctx, self, targetID)
		if getErr != nil {
			return "", getErr
		}
		return g.existingOutcome(ctx, epoch, *current, *target)
	}
	if err != nil {
		return "", err
	}

	if status == domain.StatusPending {
		applog.LogInfo(ctx, "follow request pending approval", zap.String("targetId", targetID))
		return FollowApprovalRequired, nil
	}
	g.c.state.addFollowing(epoch, *target)
	return FollowAccepted, nil
}

func (g *Graph) existingOutcome(
	ctx context.Context,
	epoch uint64,
	edge domain.Relationship,
	target domain.Profile,
) (FollowOutcome, error) {
	switch edge.Status {
	case domain.StatusBlocked:
		return "", domain.ErrFollowingNotAllowed
	case domain.StatusPending:
		return FollowApprovalRequired, nil
	default:
		// Keep the local list in line with the remote edge before reporting.
		g.c.state.addFollowing(epoch, target)
		applog.LogInfo(ctx, "follow rejected, edge exists", zap.String("targetId", target.ID))
		return "", domain.ErrAlreadyFollowing
	}
}

// Unfollow removes the edge to targetID. A missing edge is not an error.
func (g *Graph) Unfollow(ctx context.Context, targetID string) error {
	self, epoch, err := g.c.begin(ctx)
	if err != nil {
		return err
	}
	if !domain.ValidKey(targetID) {
		return nil
	}
	if err := g.c.store.DeleteRelationship(ctx, self, targetID); err != nil {
		return err
	}
	g.c.state.removeFollowing(epoch, targetID)
	return nil
}

// IsFollowing checks the locally cached following list. It performs no
// remote call and may be stale until the next FetchFollowing.
func (g *Graph) IsFollowing(targetID string) bool {
	return g.c.state.isFollowing(targetID)
}

// Following returns the cached following list.
func (g *Graph) Following() []domain.Profile {
	return g.c.state.followingList()
}

// FetchFollowing reloads the accepted outgoing edges and their profiles with
// one edge query and one batched profile read. The result replaces the cached
// list unless a newer refresh or local change landed first, in which case the
// newer list is returned.
func (g *Graph) FetchFollowing(ctx context.Context) ([]domain.Profile, error) {
	tok := g.c.state.beginFollowingRefresh()
	self, err := g.c.identity.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	profiles, err := g.profilesOf(ctx, store.RelationshipQuery{FollowerID: self, Status: domain.StatusAccepted},
		func(r domain.Relationship) string { return r.FollowingID })
	if err != nil {
		return nil, err
	}

	if !g.c.state.applyFollowing(tok, profiles) {
		return g.c.state.followingList(), nil
	}
	return profiles, nil
}

// FetchFollowers lists profiles with an accepted edge to the caller.
func (g *Graph) FetchFollowers(ctx context.Context) ([]domain.Profile, error) {
	self, err := g.c.identity.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return g.profilesOf(ctx, store.RelationshipQuery{FollowingID: self, Status: domain.StatusAccepted},
		func(r domain.Relationship) string { return r.FollowerID })
}

// profilesOf resolves the far end of every matching edge, in edge order.
func (g *Graph) profilesOf(
	ctx context.Context,
	q store.RelationshipQuery,
	far func(domain.Relationship) string,
) ([]domain.Profile, error) {
	edges, err := g.c.store.ListRelationships(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return []domain.Profile{}, nil
	}

	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, far(e))
	}
	found, err := g.c.store.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Profile, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]domain.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

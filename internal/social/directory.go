package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
	"github.com/janisto/fitsocial/internal/store"
)

const (
	// SearchLimit caps a directory search before privacy filtering.
	SearchLimit = 20
	// DefaultSuggestionLimit applies when Suggestions is called with limit <= 0.
	DefaultSuggestionLimit = 10
)

// ProfileUpdate carries the editable fields of the own profile. Nil fields
// are left unchanged.
type ProfileUpdate struct {
	DisplayName    *string
	Bio            *string
	IsDiscoverable *bool
	Privacy        *domain.PrivacySettings
}

func (u ProfileUpdate) apply(p domain.Profile) domain.Profile {
	if u.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.Bio != nil {
		p.Bio = strings.TrimSpace(*u.Bio)
	}
	if u.IsDiscoverable != nil {
		p.IsDiscoverable = *u.IsDiscoverable
	}
	if u.Privacy != nil {
		p.Privacy = *u.Privacy
	}
	return p
}

// Directory manages profile records.
type Directory struct {
	c *core
}

// Register creates the own profile under a normalized, unique username.
func (d *Directory) Register(ctx context.Context, username, displayName, bio string) (*domain.Profile, error) {
	normalized, err := domain.ValidateUsername(username)
	if err != nil {
		return nil, err
	}

	// The store enforces uniqueness in the create transaction; this lookup
	// only saves an identity round trip for the common case.
	_, err = d.c.store.FindProfileByUsername(ctx, normalized)
	switch {
	case err == nil:
		return nil, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, err
	}

	id, epoch, err := d.c.begin(ctx)
	if err != nil {
		return nil, err
	}

	now := d.c.now()
	created, err := d.c.store.CreateProfile(ctx, domain.Profile{
		ID:             id,
		Username:       normalized,
		DisplayName:    strings.TrimSpace(displayName),
		Bio:            strings.TrimSpace(bio),
		IsDiscoverable: true,
		CreatedAt:      now,
		UpdatedAt:      now,
		Privacy:        domain.DefaultPrivacySettings(),
	})
	if err != nil {
		return nil, err
	}

	d.c.remember(ctx, epoch, *created)
	applog.LogInfo(ctx, "profile registered", zap.String("userId", id), zap.String("username", normalized))
	return created, nil
}

// FetchOwn returns the own profile, from cache when possible. A confirmed
// ProfileNotFound from the remote store invalidates the local session.
func (d *Directory) FetchOwn(ctx context.Context) (*domain.Profile, error) {
	p, _, err := d.fetchOwn(ctx)
	return p, err
}

// fetchOwn is FetchOwn that also reports the session epoch the profile was
// read in, for callers that write back.
func (d *Directory) fetchOwn(ctx context.Context) (*domain.Profile, uint64, error) {
	id, epoch, err := d.c.begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	if p := d.c.state.ownProfile(id); p != nil {
		return p, epoch, nil
	}

	cached, err := d.c.cache.Profile(ctx)
	if err != nil {
		applog.LogWarn(ctx, "profile cache read failed", zap.Error(err))
	}
	if cached != nil && cached.ID == id {
		d.c.state.setProfile(epoch, *cached)
		return cached, epoch, nil
	}

	p, err := d.refresh(ctx, id, epoch)
	return p, epoch, err
}

// Refresh re-reads the own profile from the remote store, bypassing caches.
func (d *Directory) Refresh(ctx context.Context) (*domain.Profile, error) {
	id, epoch, err := d.c.begin(ctx)
	if err != nil {
		return nil, err
	}
	return d.refresh(ctx, id, epoch)
}

func (d *Directory) refresh(ctx context.Context, id string, epoch uint64) (*domain.Profile, error) {
	p, err := d.c.store.GetProfile(ctx, id)
	if err != nil {
		return nil, d.c.ownNotFound(ctx, err)
	}
	d.c.remember(ctx, epoch, *p)
	return p, nil
}

// Update merges upd into the own profile and writes it conditionally on the
// version it was read at. On a version conflict the remote record wins: it is
// re-read, upd is applied again and the write is retried once.
func (d *Directory) Update(ctx context.Context, upd ProfileUpdate) (*domain.Profile, error) {
	if upd.Privacy != nil && !upd.Privacy.Valid() {
		return nil, domain.ErrInvalidSettings
	}

	current, epoch, err := d.fetchOwn(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := d.c.store.UpdateProfile(ctx, upd.apply(*current))
	if errors.Is(err, domain.ErrVersionConflict) {
		applog.LogInfo(ctx, "profile version conflict, retrying against remote",
			zap.String("userId", current.ID), zap.Int64("version", current.Version))
		remote, getErr := d.c.store.GetProfile(ctx, current.ID)
		if getErr != nil {
			return nil, d.c.ownNotFound(ctx, getErr)
		}
		d.c.remember(ctx, epoch, *remote)
		updated, err = d.c.store.UpdateProfile(ctx, upd.apply(*remote))
	}
	if err != nil {
		return nil, d.c.ownNotFound(ctx, err)
	}

	d.c.remember(ctx, epoch, *updated)
	return updated, nil
}

// Search matches query against username and display name prefixes. The
// caller's own profile and private profiles are dropped from the result.
func (d *Directory) Search(ctx context.Context, query string) ([]domain.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Profile{}, nil
	}

	self, err := d.c.identity.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	found, err := d.c.store.SearchProfiles(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Profile, 0, len(found))
	for _, p := range found {
		if p.ID == self || !searchable(p) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Suggestions lists public, discoverable profiles the caller has no edge to.
func (d *Directory) Suggestions(ctx context.Context, limit int) ([]domain.Profile, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	self, err := d.c.identity.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	edges, err := d.c.store.ListRelationships(ctx, store.RelationshipQuery{FollowerID: self})
	if err != nil {
		return nil, err
	}
	exclude := make(map[string]struct{}, len(edges)+1)
	exclude[self] = struct{}{}
	for _, e := range edges {
		exclude[e.FollowingID] = struct{}{}
	}
	for _, id := range d.c.state.followingIDs() {
		exclude[id] = struct{}{}
	}

	candidates, err := d.c.store.ListDiscoverableProfiles(ctx, store.MaxSearchResults)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Profile, 0, limit)
	for _, p := range candidates {
		if _, skip := exclude[p.ID]; skip || !suggestible(p) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Stats returns the own aggregate counters.
func (d *Directory) Stats(ctx context.Context) (domain.Stats, error) {
	p, err := d.FetchOwn(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return p.Stats, nil
}

// RemoveAccount deletes the own profile with its edges and activities, then
// resets the local session. Removing an already missing profile succeeds.
func (d *Directory) RemoveAccount(ctx context.Context) error {
	id, err := d.c.identity.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := d.c.store.DeleteProfile(ctx, id); err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return fmt.Errorf("remove account: %w", err)
	}
	return d.c.invalidate(ctx, ReasonAccountRemoved)
}

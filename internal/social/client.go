// Package social keeps the signed-in user's profile, follow graph and
// activity feed in sync with the remote store, with a local cache in front.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/localcache"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
	"github.com/janisto/fitsocial/internal/store"
)

// Reasons passed to Client.Reset and logged with every invalidation.
const (
	ReasonProfileNotFound = "profile_not_found"
	ReasonSignIn          = "sign_in"
	ReasonSignOut         = "sign_out"
	ReasonDebugReset      = "debug_reset"
	ReasonAccountRemoved  = "account_removed"
)

// core holds what the components share.
type core struct {
	store    store.Store
	cache    *localcache.Cache
	identity *IdentityResolver
	state    *session
	now      func() time.Time
	newID    func() string
}

// Option configures a Client.
type Option func(*core)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// WithIDGenerator overrides how activity ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(c *core) { c.newID = newID }
}

// Client composes the social components around one session.
type Client struct {
	Identity  *IdentityResolver
	Directory *Directory
	Graph     *Graph
	Feed      *Feed
	Settings  *Settings

	core *core
}

// NewClient wires the components over st, cache and provider.
func NewClient(st store.Store, cache *localcache.Cache, provider IdentityProvider, opts ...Option) *Client {
	c := &core{
		store:    st,
		cache:    cache,
		identity: NewIdentityResolver(provider, cache),
		state:    &session{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	dir := &Directory{c: c}
	return &Client{
		Identity:  c.identity,
		Directory: dir,
		Graph:     &Graph{c: c},
		Feed:      &Feed{c: c, dir: dir},
		Settings:  &Settings{c: c, dir: dir},
		core:      c,
	}
}

// Reset clears the identity, the cached profile, the settings mirror and all
// in-memory state. Sign-out and debug reset use it.
func (cl *Client) Reset(ctx context.Context, reason string) error {
	return cl.core.invalidate(ctx, reason)
}

// invalidate is the single path every reset converges on.
func (c *core) invalidate(ctx context.Context, reason string) error {
	err := c.identity.Clear(ctx)
	c.state.reset()
	if err != nil {
		applog.LogError(ctx, "session invalidation incomplete", err, zap.String("reason", reason))
		return fmt.Errorf("invalidate local cache: %w", err)
	}
	applog.LogInfo(ctx, "session invalidated", zap.String("reason", reason))
	return nil
}

// begin resolves the caller's identity together with the session epoch it
// belongs to. The epoch is read first, so a reset that lands during the
// lookup either fails it or makes every later write for that epoch a no-op.
func (c *core) begin(ctx context.Context) (id string, epoch uint64, err error) {
	epoch = c.state.currentEpoch()
	id, err = c.identity.Resolve(ctx)
	if err != nil {
		return "", 0, err
	}
	if c.state.currentEpoch() != epoch {
		return "", 0, ErrIdentityChanged
	}
	return id, epoch, nil
}

// remember caches the own profile in memory and on disk, unless the session
// was reset after epoch.
func (c *core) remember(ctx context.Context, epoch uint64, p domain.Profile) {
	if !c.state.setProfile(epoch, p) {
		return
	}
	if err := c.cache.SetProfile(ctx, p); err != nil {
		applog.LogWarn(ctx, "profile cache write failed", zap.Error(err))
	}
	if err := c.cache.SetSettings(ctx, p.Privacy); err != nil {
		applog.LogWarn(ctx, "settings mirror write failed", zap.Error(err))
	}
}

// ownNotFound invalidates the session after the remote store confirmed the
// own profile is gone, then returns err unchanged.
func (c *core) ownNotFound(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrProfileNotFound) {
		_ = c.invalidate(ctx, ReasonProfileNotFound)
	}
	return err
}

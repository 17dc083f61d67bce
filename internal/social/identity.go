package social

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/localcache"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
)

// IdentityProvider reports the account signed in on this device.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (string, error)
}

// IdentityResolver hands out the stable identity of the signed-in account.
//
// The identity is memoized in memory and persisted in the local cache, so
// repeated calls and process restarts return the same value without asking
// the provider again. Concurrent first calls share one provider request.
type IdentityResolver struct {
	provider IdentityProvider
	cache    *localcache.Cache
	group    singleflight.Group

	mu  sync.RWMutex
	id  string
	gen uint64
}

// NewIdentityResolver creates a resolver persisting to cache.
func NewIdentityResolver(provider IdentityProvider, cache *localcache.Cache) *IdentityResolver {
	return &IdentityResolver{provider: provider, cache: cache}
}

// ErrIdentityChanged is returned when the session was reset while the
// identity was being looked up. The looked-up id belongs to the previous
// session and is discarded.
var ErrIdentityChanged = fmt.Errorf("%w: session reset during identity lookup", domain.ErrNotAuthenticated)

// lookupTimeout bounds a shared provider lookup. The lookup runs detached
// from the first caller so its cancellation does not fail the other waiters.
const lookupTimeout = 30 * time.Second

// Resolve returns the cached identity or obtains and persists a new one.
func (r *IdentityResolver) Resolve(ctx context.Context) (string, error) {
	r.mu.RLock()
	id, gen := r.id, r.gen
	r.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	ch := r.group.DoChan("identity/"+strconv.FormatUint(gen, 10), func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return r.lookup(lookupCtx, gen)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *IdentityResolver) lookup(ctx context.Context, gen uint64) (string, error) {
	cached, err := r.cache.Identity(ctx)
	if err != nil {
		applog.LogWarn(ctx, "identity cache read failed", zap.Error(err))
	}
	if cached != "" {
		return cached, r.remember(ctx, gen, cached, false)
	}

	fresh, err := r.provider.CurrentIdentity(ctx)
	if err != nil {
		return "", err
	}
	return fresh, r.remember(ctx, gen, fresh, true)
}

// remember memoizes id, and persists it when asked, unless Clear ran since
// the lookup of generation gen started. The cache write happens under the
// lock so it cannot land after Clear's invalidation.
func (r *IdentityResolver) remember(ctx context.Context, gen uint64, id string, persist bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return ErrIdentityChanged
	}
	r.id = id
	if persist {
		if err := r.cache.SetIdentity(ctx, id); err != nil {
			applog.LogWarn(ctx, "identity cache write failed", zap.Error(err))
		}
	}
	return nil
}

// Clear wipes the identity together with the cached profile and settings.
// The lock is held across the invalidation so a lookup for the next
// generation cannot persist before it.
func (r *IdentityResolver) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = ""
	r.gen++
	return r.cache.Invalidate(ctx)
}

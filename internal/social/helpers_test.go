package social

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/localcache"
	"github.com/janisto/fitsocial/internal/store"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeProvider returns a fixed identity and counts calls. With a gate set,
// a call reads its answer on entry and then blocks until the gate closes.
type fakeProvider struct {
	mu    sync.Mutex
	id    string
	err   error
	delay time.Duration
	gate  chan struct{}
	calls int
}

func (f *fakeProvider) CurrentIdentity(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	id, err, delay, gate := f.id, f.err, f.delay, f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	client   *Client
	store    *store.MockStore
	cache    *localcache.Cache
	backend  *localcache.MemoryBackend
	provider *fakeProvider
}

func newCache(t *testing.T) (*localcache.Cache, *localcache.MemoryBackend) {
	t.Helper()
	backend := localcache.NewMemoryBackend()
	c, err := localcache.New(backend)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return c, backend
}

func newEnvWith(t *testing.T, st *store.MockStore, id string) *testEnv {
	t.Helper()
	cache, backend := newCache(t)
	provider := &fakeProvider{id: id}
	var seq atomic.Int64
	client := NewClient(st, cache, provider,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return fmt.Sprintf("act-%d", seq.Add(1)) }),
	)
	return &testEnv{client: client, store: st, cache: cache, backend: backend, provider: provider}
}

func newEnv(t *testing.T, id string) *testEnv {
	t.Helper()
	return newEnvWith(t, store.NewMockStore(), id)
}

// register creates the caller's profile and fails the test on error.
func (e *testEnv) register(t *testing.T, username string) *domain.Profile {
	t.Helper()
	p, err := e.client.Directory.Register(context.Background(), username, "Display "+username, "")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return p
}

// seed puts another user's profile straight into the store.
func seed(st *store.MockStore, id, username string, mutate ...func(*domain.Profile)) domain.Profile {
	p := domain.Profile{
		ID:             id,
		Username:       username,
		DisplayName:    "Display " + username,
		IsDiscoverable: true,
		Privacy:        domain.DefaultPrivacySettings(),
	}
	for _, m := range mutate {
		m(&p)
	}
	st.PutProfile(p)
	return p
}

func withFollowPolicy(policy domain.FollowPolicy) func(*domain.Profile) {
	return func(p *domain.Profile) { p.Privacy.WhoCanFollow = policy }
}

func withVisibility(v domain.Visibility) func(*domain.Profile) {
	return func(p *domain.Profile) { p.Privacy.Visibility = v }
}

func ids(profiles []domain.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}

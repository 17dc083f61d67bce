package localcache

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/testutil"
)

func sampleProfile() domain.Profile {
	return domain.Profile{
		ID:             "user-1",
		Username:       "alice",
		DisplayName:    "Alice",
		Bio:            "lifts",
		IsDiscoverable: true,
		CreatedAt:      time.Date(2024, 3, 1, 8, 0, 0, 123000000, time.UTC),
		UpdatedAt:      time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		Stats:          domain.Stats{TotalActivities: 3, TotalVolume: 1250.5},
		Privacy:        domain.DefaultPrivacySettings(),
		Version:        4,
	}
}

func newBackends(t *testing.T) map[string]Backend {
	t.Helper()
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   NewFileBackend(filepath.Join(t.TempDir(), "nested", "cache.cbor")),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	for name, backend := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c, err := New(backend)
			if err != nil {
				t.Fatalf("new cache: %v", err)
			}

			if id, err := c.Identity(ctx); err != nil || id != "" {
				t.Fatalf("expected empty identity, got %q err=%v", id, err)
			}
			if p, err := c.Profile(ctx); err != nil || p != nil {
				t.Fatalf("expected profile miss, got %+v err=%v", p, err)
			}
			if _, ok, err := c.Settings(ctx); err != nil || ok {
				t.Fatalf("expected settings miss, got ok=%v err=%v", ok, err)
			}

			want := sampleProfile()
			if err := c.SetIdentity(ctx, "user-1"); err != nil {
				t.Fatalf("set identity: %v", err)
			}
			if err := c.SetProfile(ctx, want); err != nil {
				t.Fatalf("set profile: %v", err)
			}
			settings := want.Privacy
			settings.Visibility = domain.VisibilityPrivate
			if err := c.SetSettings(ctx, settings); err != nil {
				t.Fatalf("set settings: %v", err)
			}

			id, err := c.Identity(ctx)
			if err != nil || id != "user-1" {
				t.Fatalf("identity = %q err=%v", id, err)
			}
			got, err := c.Profile(ctx)
			if err != nil || got == nil {
				t.Fatalf("profile = %v err=%v", got, err)
			}
			if !got.CreatedAt.Equal(want.CreatedAt) {
				t.Errorf("createdAt = %v, want %v", got.CreatedAt, want.CreatedAt)
			}
			got.CreatedAt, got.UpdatedAt = want.CreatedAt, want.UpdatedAt
			if *got != want {
				t.Errorf("profile = %+v, want %+v", *got, want)
			}
			mirrored, ok, err := c.Settings(ctx)
			if err != nil || !ok || mirrored != settings {
				t.Errorf("settings = %+v ok=%v err=%v", mirrored, ok, err)
			}
		})
	}
}

func TestCacheInvalidateClearsEverything(t *testing.T) {
	for name, backend := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c, _ := New(backend)
			_ = c.SetIdentity(ctx, "user-1")
			_ = c.SetProfile(ctx, sampleProfile())
			_ = c.SetSettings(ctx, domain.DefaultPrivacySettings())

			if err := c.Invalidate(ctx); err != nil {
				t.Fatalf("invalidate: %v", err)
			}
			if id, _ := c.Identity(ctx); id != "" {
				t.Errorf("identity survived: %q", id)
			}
			if p, _ := c.Profile(ctx); p != nil {
				t.Errorf("profile survived: %+v", p)
			}
			if _, ok, _ := c.Settings(ctx); ok {
				t.Error("settings survived")
			}
			if err := c.Invalidate(ctx); err != nil {
				t.Errorf("second invalidate: %v", err)
			}
		})
	}
}

func TestCacheSettingsNormalized(t *testing.T) {
	ctx := context.Background()
	c, _ := New(NewMemoryBackend())
	_ = c.SetSettings(ctx, domain.PrivacySettings{Visibility: "weird", WhoCanFollow: "??"})

	got, ok, err := c.Settings(ctx)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got.Visibility != domain.VisibilityPublic || got.WhoCanFollow != domain.FollowEveryone {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestCacheUndecodableValueIsMiss(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	_ = backend.Set(ctx, keyProfile, []byte{0xff, 0x00, 0x13})
	c, _ := New(backend)

	p, err := c.Profile(ctx)
	if err != nil || p != nil {
		t.Fatalf("expected miss, got %+v err=%v", p, err)
	}
	if backend.Len() != 0 {
		t.Error("expected the bad value to be dropped")
	}
}

func TestFileBackendSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.cbor")

	first, _ := New(NewFileBackend(path))
	if err := first.SetIdentity(ctx, "user-9"); err != nil {
		t.Fatalf("set identity: %v", err)
	}

	second, _ := New(NewFileBackend(path))
	id, err := second.Identity(ctx)
	if err != nil || id != "user-9" {
		t.Fatalf("identity after restart = %q err=%v", id, err)
	}
}

func TestFileBackendCorruptFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.cbor")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o600); err != nil {
		t.Fatal(err)
	}

	b := NewFileBackend(path)
	if _, err := b.Get(ctx, keyIdentity); err != ErrMiss {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
	if err := b.Set(ctx, keyIdentity, []byte{0x01}); err != nil {
		t.Fatalf("set after corrupt load: %v", err)
	}
	if got, err := NewFileBackend(path).Get(ctx, keyIdentity); err != nil || len(got) != 1 {
		t.Fatalf("rewrite not persisted: %v %v", got, err)
	}
}

func TestFileBackendDeleteMissingDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.cbor")
	b := NewFileBackend(path)

	if err := b.Delete(ctx, "nothing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file, stat err=%v", err)
	}
}

func TestFileBackendCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewFileBackend(filepath.Join(t.TempDir(), "cache.cbor"))
	if err := b.Set(ctx, "k", []byte("v")); err == nil {
		t.Fatal("expected error with canceled context")
	}
}

func TestRedisBackend(t *testing.T) {
	raw := os.Getenv("REDIS_URL")
	if raw == "" {
		t.Skip("REDIS_URL not set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad REDIS_URL: %v", err)
	}
	testutil.SkipIfUnreachable(t, u.Host)

	ctx := context.Background()
	backend, err := NewRedisBackend(raw, "fitsocial-test:"+t.Name()+":")
	if err != nil {
		t.Fatalf("new redis backend: %v", err)
	}
	defer func() { _ = backend.Close() }()
	if err := backend.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	c, _ := New(backend)
	defer func() { _ = c.Invalidate(ctx) }()

	if err := c.SetIdentity(ctx, "user-r"); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if err := c.SetProfile(ctx, sampleProfile()); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if id, _ := c.Identity(ctx); id != "user-r" {
		t.Fatalf("identity = %q", id)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if p, _ := c.Profile(ctx); p != nil {
		t.Fatalf("profile survived invalidate: %+v", p)
	}
}

func TestNewRedisBackendBadURL(t *testing.T) {
	if _, err := NewRedisBackend("not-a-url", ""); err == nil {
		t.Fatal("expected parse error")
	}
}

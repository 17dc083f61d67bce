package localcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/janisto/fitsocial/internal/domain"
)

const (
	keyIdentity = "identity"
	keyProfile  = "profile"
	keySettings = "settings"
)

// Cache is the typed view over a Backend. Values are CBOR encoded with
// RFC 3339 tagged timestamps.
type Cache struct {
	backend Backend
	enc     cbor.EncMode
	dec     cbor.DecMode
}

// New wraps backend.
func New(backend Backend) (*Cache, error) {
	enc, err := cbor.EncOptions{
		Time:    cbor.TimeRFC3339Nano,
		TimeTag: cbor.EncTagRequired,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder: %w", err)
	}
	return &Cache{backend: backend, enc: enc, dec: dec}, nil
}

// get decodes key into v. It reports false on a miss. An undecodable value is
// dropped and reported as a miss.
func (c *Cache) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := c.dec.Unmarshal(data, v); err != nil {
		_ = c.backend.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	data, err := c.enc.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.backend.Set(ctx, key, data)
}

// Identity returns the persisted identity, or "" when none is stored.
func (c *Cache) Identity(ctx context.Context) (string, error) {
	var id string
	if _, err := c.get(ctx, keyIdentity, &id); err != nil {
		return "", err
	}
	return id, nil
}

// SetIdentity persists the resolved identity.
func (c *Cache) SetIdentity(ctx context.Context, id string) error {
	return c.set(ctx, keyIdentity, id)
}

// Profile returns the cached own profile, or nil on a miss.
func (c *Cache) Profile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	ok, err := c.get(ctx, keyProfile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SetProfile replaces the cached own profile.
func (c *Cache) SetProfile(ctx context.Context, p domain.Profile) error {
	return c.set(ctx, keyProfile, p)
}

// Settings returns the mirrored privacy settings. ok is false when nothing is
// mirrored.
func (c *Cache) Settings(ctx context.Context) (settings domain.PrivacySettings, ok bool, err error) {
	ok, err = c.get(ctx, keySettings, &settings)
	if err != nil || !ok {
		return domain.PrivacySettings{}, false, err
	}
	return settings.Normalized(), true, nil
}

// SetSettings mirrors the privacy settings for offline reads.
func (c *Cache) SetSettings(ctx context.Context, s domain.PrivacySettings) error {
	return c.set(ctx, keySettings, s)
}

// Invalidate clears identity, profile and mirrored settings together.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.backend.Delete(ctx, keyIdentity, keyProfile, keySettings)
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}

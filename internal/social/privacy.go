package social

import (
	"context"
	"errors"

	"github.com/janisto/fitsocial/internal/domain"
)

// followDecision is what a target's follow policy allows.
type followDecision int

const (
	followDenied followDecision = iota
	followNeedsApproval
	followOpen
)

func decideFollow(target domain.PrivacySettings) followDecision {
	switch target.Normalized().WhoCanFollow {
	case domain.FollowNobody:
		return followDenied
	case domain.FollowApprovalRequired:
		return followNeedsApproval
	default:
		return followOpen
	}
}

// searchable drops only private profiles.
func searchable(p domain.Profile) bool {
	return p.Privacy.Normalized().Visibility != domain.VisibilityPrivate
}

// suggestible limits discovery to public profiles that opted in.
func suggestible(p domain.Profile) bool {
	return p.IsDiscoverable && p.Privacy.Normalized().Visibility == domain.VisibilityPublic
}

// shouldShare reports whether a publish goes through. Manual shares always do.
func shouldShare(own domain.PrivacySettings, autoTriggered bool) bool {
	return !autoTriggered || own.AutoShareActivities
}

// Settings loads and saves the own profile's privacy settings.
type Settings struct {
	c   *core
	dir *Directory
}

// Load returns the own privacy settings. When the remote store is unreachable
// and the profile is not cached, it falls back to the local mirror.
func (s *Settings) Load(ctx context.Context) (domain.PrivacySettings, error) {
	p, err := s.dir.FetchOwn(ctx)
	if err == nil {
		return p.Privacy.Normalized(), nil
	}
	if errors.Is(err, domain.ErrNetwork) {
		if mirrored, ok, cacheErr := s.c.cache.Settings(ctx); cacheErr == nil && ok {
			return mirrored, nil
		}
	}
	return domain.PrivacySettings{}, err
}

// Save replaces the privacy settings as a whole object, remotely and in the
// local mirror.
func (s *Settings) Save(ctx context.Context, settings domain.PrivacySettings) (domain.PrivacySettings, error) {
	if !settings.Valid() {
		return domain.PrivacySettings{}, domain.ErrInvalidSettings
	}
	p, err := s.dir.Update(ctx, ProfileUpdate{Privacy: &settings})
	if err != nil {
		return domain.PrivacySettings{}, err
	}
	return p.Privacy, nil
}

// Cached returns the local mirror without touching the remote store.
func (s *Settings) Cached(ctx context.Context) (domain.PrivacySettings, bool, error) {
	return s.c.cache.Settings(ctx)
}

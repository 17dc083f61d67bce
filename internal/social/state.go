package social

import (
	"slices"
	"sync"

	"github.com/janisto/fitsocial/internal/domain"
)

// session is the in-memory state shared by every component of one Client.
// All access goes through its mutex; no lock is held across remote calls.
//
// epoch increments on every invalidation so results of calls started before
// a reset are dropped. Following refreshes carry a sequence: a refresh is
// applied only if nothing newer (a later refresh or a local follow/unfollow)
// has been applied since it started.
type session struct {
	mu    sync.Mutex
	epoch uint64

	profile *domain.Profile

	following       []domain.Profile
	followingIssued uint64
	followingSeq    uint64

	feed []domain.SharedActivity
}

type followingToken struct {
	epoch uint64
	seq   uint64
}

func (s *session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// ownProfile returns the cached profile of account id, or nil when none is
// cached for that account.
func (s *session) ownProfile(id string) *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || s.profile.ID != id {
		return nil
	}
	p := *s.profile
	return &p
}

// setProfile stores p if no reset happened since epoch.
func (s *session) setProfile(epoch uint64, p domain.Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.profile = &p
	return true
}

func (s *session) beginFollowingRefresh() followingToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followingIssued++
	return followingToken{epoch: s.epoch, seq: s.followingIssued}
}

// applyFollowing replaces the following list when tok is still the newest.
func (s *session) applyFollowing(tok followingToken, profiles []domain.Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.epoch != s.epoch || tok.seq <= s.followingSeq {
		return false
	}
	s.followingSeq = tok.seq
	s.following = slices.Clone(profiles)
	return true
}

// markLocal bumps the sequence so refreshes already in flight are discarded.
// Caller holds s.mu.
func (s *session) markLocal() {
	s.followingIssued++
	s.followingSeq = s.followingIssued
}

func (s *session) addFollowing(epoch uint64, p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.markLocal()
	if slices.ContainsFunc(s.following, func(f domain.Profile) bool { return f.ID == p.ID }) {
		return
	}
	s.following = append([]domain.Profile{p}, s.following...)
}

func (s *session) removeFollowing(epoch uint64, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.markLocal()
	s.following = slices.DeleteFunc(s.following, func(f domain.Profile) bool { return f.ID == id })
	s.feed = slices.DeleteFunc(s.feed, func(a domain.SharedActivity) bool { return a.OwnerID == id })
}

func (s *session) followingList() []domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.following)
}

func (s *session) followingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.following))
	for _, p := range s.following {
		ids = append(ids, p.ID)
	}
	return ids
}

func (s *session) isFollowing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.following, func(f domain.Profile) bool { return f.ID == id })
}

func (s *session) setFeed(epoch uint64, feed []domain.SharedActivity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.feed = slices.Clone(feed)
}

func (s *session) cachedFeed() []domain.SharedActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.feed)
}

// reset drops everything and starts a new epoch.
func (s *session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.profile = nil
	s.following = nil
	s.feed = nil
	s.markLocal()
}

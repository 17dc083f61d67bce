package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/janisto/fitsocial/internal/domain"
)

func newProfile(id, username string) domain.Profile {
	return domain.Profile{
		ID:          id,
		Username:    username,
		DisplayName: "User " + id,
		Privacy:     domain.DefaultPrivacySettings(),
	}
}

func TestMockCreateProfile(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	p, err := m.CreateProfile(ctx, newProfile("u1", "alice"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Version != 1 {
		t.Errorf("expected version 1, got %d", p.Version)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if m.Calls(OpCreateProfile) != 1 {
		t.Errorf("expected 1 create call, got %d", m.Calls(OpCreateProfile))
	}
}

func TestMockCreateProfileUsernameTaken(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	if _, err := m.CreateProfile(ctx, newProfile("u1", "alice")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := m.CreateProfile(ctx, newProfile("u2", " ALICE "))
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestMockCreateProfileAlreadyRegistered(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	_, _ = m.CreateProfile(ctx, newProfile("u1", "alice"))
	_, err := m.CreateProfile(ctx, newProfile("u1", "alice2"))
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestMockConcurrentCreateSameUsername(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	const numGoroutines = 10
	results := make(chan error, numGoroutines)

	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Go(func() {
			_, err := m.CreateProfile(ctx, newProfile(string(rune('a'+i)), "dup"))
			results <- err
		})
	}
	wg.Wait()
	close(results)

	var success, taken int
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, domain.ErrUsernameTaken):
			taken++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Errorf("expected exactly 1 success, got %d", success)
	}
	if taken != numGoroutines-1 {
		t.Errorf("expected %d taken, got %d", numGoroutines-1, taken)
	}
}

func TestMockGetProfileNotFound(t *testing.T) {
	m := NewMockStore()
	_, err := m.GetProfile(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestMockGetProfilesSkipsMissing(t *testing.T) {
	m := NewMockStore()
	m.PutProfile(newProfile("u1", "alice"))
	m.PutProfile(newProfile("u2", "bob"))

	got, err := m.GetProfiles(context.Background(), []string{"u1", "missing", "u2", "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
	if m.Calls(OpGetProfiles) != 1 {
		t.Fatalf("expected one batched call, got %d", m.Calls(OpGetProfiles))
	}
}

func TestMockFindProfileByUsername(t *testing.T) {
	m := NewMockStore()
	m.PutProfile(newProfile("u1", "Alice"))

	p, err := m.FindProfileByUsername(context.Background(), " ALICE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "u1" {
		t.Fatalf("expected u1, got %s", p.ID)
	}
}

func TestMockSearchProfilesPrefix(t *testing.T) {
	m := NewMockStore()
	m.PutProfile(domain.Profile{ID: "1", Username: "alice", DisplayName: "Alice Smith"})
	m.PutProfile(domain.Profile{ID: "2", Username: "bob", DisplayName: "Alfred Bob"})
	m.PutProfile(domain.Profile{ID: "3", Username: "carol", DisplayName: "Carol"})

	got, err := m.SearchProfiles(context.Background(), "AL", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}

	got, _ = m.SearchProfiles(context.Background(), "", 2)
	if len(got) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(got))
	}
}

func TestMockListDiscoverableProfiles(t *testing.T) {
	m := NewMockStore()
	pub := newProfile("1", "amy")
	pub.IsDiscoverable = true
	hidden := newProfile("2", "ben")
	hidden.IsDiscoverable = false
	fo := newProfile("3", "cat")
	fo.IsDiscoverable = true
	fo.Privacy.Visibility = domain.VisibilityFollowersOnly
	m.PutProfile(pub)
	m.PutProfile(hidden)
	m.PutProfile(fo)

	got, err := m.ListDiscoverableProfiles(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected only the public discoverable profile, got %+v", got)
	}
}

func TestMockUpdateProfileVersionConflict(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	created, _ := m.CreateProfile(ctx, newProfile("u1", "alice"))

	next := *created
	next.Bio = "lifter"
	updated, err := m.UpdateProfile(ctx, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}

	stale := *created
	stale.Bio = "runner"
	_, err = m.UpdateProfile(ctx, stale)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestMockUpdateProfileKeepsStats(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	created, _ := m.CreateProfile(ctx, newProfile("u1", "alice"))

	next := *created
	next.Stats = domain.Stats{TotalActivities: 99}
	updated, err := m.UpdateProfile(ctx, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Stats.TotalActivities != 0 {
		t.Fatalf("expected stats to be owned by publishing, got %d", updated.Stats.TotalActivities)
	}
}

func TestMockRelationshipLifecycle(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	r, err := m.CreateRelationship(ctx, domain.Relationship{FollowerID: "a", FollowingID: "b", Status: domain.StatusAccepted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != domain.RelationshipID("a", "b") {
		t.Fatalf("expected deterministic id, got %s", r.ID)
	}

	_, err = m.CreateRelationship(ctx, domain.Relationship{FollowerID: "a", FollowingID: "b", Status: domain.StatusPending})
	if !errors.Is(err, ErrRelationshipExists) {
		t.Fatalf("expected ErrRelationshipExists, got %v", err)
	}

	if err := m.DeleteRelationship(ctx, "a", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := m.DeleteRelationship(ctx, "a", "b"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
	if _, err := m.GetRelationship(ctx, "a", "b"); !errors.Is(err, ErrRelationshipNotFound) {
		t.Fatalf("expected ErrRelationshipNotFound, got %v", err)
	}
}

func TestMockListRelationshipsFilters(t *testing.T) {
	m := NewMockStore()
	m.PutRelationship(domain.Relationship{FollowerID: "a", FollowingID: "b", Status: domain.StatusAccepted})
	m.PutRelationship(domain.Relationship{FollowerID: "a", FollowingID: "c", Status: domain.StatusPending})
	m.PutRelationship(domain.Relationship{FollowerID: "c", FollowingID: "a", Status: domain.StatusAccepted})

	got, err := m.ListRelationships(context.Background(), RelationshipQuery{FollowerID: "a", Status: domain.StatusAccepted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].FollowingID != "b" {
		t.Fatalf("unexpected edges: %+v", got)
	}

	got, _ = m.ListRelationships(context.Background(), RelationshipQuery{FollowingID: "a"})
	if len(got) != 1 || got[0].FollowerID != "c" {
		t.Fatalf("unexpected incoming edges: %+v", got)
	}
}

func TestMockPublishActivityAtomicAndIdempotent(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	m.PutProfile(newProfile("u1", "alice"))

	a := domain.SharedActivity{ID: "act-1", OwnerID: "u1", Label: "Leg day", OccurredAt: time.Now(), TotalVolume: 1200.5, ItemCount: 5, IsCompleted: true}
	_, created, err := m.PublishActivity(ctx, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected first publish to create")
	}
	_, created, err = m.PublishActivity(ctx, a)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if created {
		t.Fatal("expected retry to be idempotent")
	}

	p, _ := m.GetProfile(ctx, "u1")
	if p.Stats.TotalActivities != 1 {
		t.Errorf("expected 1 activity counted, got %d", p.Stats.TotalActivities)
	}
	if p.Stats.TotalVolume != 1200.5 {
		t.Errorf("expected volume 1200.5, got %v", p.Stats.TotalVolume)
	}
	if p.Version != 2 {
		t.Errorf("expected publish to bump version, got %d", p.Version)
	}
}

func TestMockPublishActivityForeignID(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	m.PutProfile(newProfile("u1", "alice"))
	m.PutProfile(newProfile("u2", "bob"))
	if _, _, err := m.PublishActivity(ctx, domain.SharedActivity{ID: "act-1", OwnerID: "u1", Label: "Row", TotalVolume: 10}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, created, err := m.PublishActivity(ctx, domain.SharedActivity{ID: "act-1", OwnerID: "u2", Label: "Swim", TotalVolume: 20})
	if !errors.Is(err, domain.ErrActivityConflict) {
		t.Fatalf("expected ErrActivityConflict, got %+v created=%v err=%v", got, created, err)
	}
	if got != nil || created {
		t.Fatal("expected the other owner's activity withheld")
	}
	if p, _ := m.GetProfile(ctx, "u2"); p.Stats.TotalActivities != 0 {
		t.Fatalf("expected u2 stats untouched, got %+v", p.Stats)
	}
}

func TestMockPublishActivityMissingOwner(t *testing.T) {
	m := NewMockStore()
	_, _, err := m.PublishActivity(context.Background(), domain.SharedActivity{ID: "x", OwnerID: "ghost"})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if len(m.Activities()) != 0 {
		t.Fatal("expected no activity to be written")
	}
}

func TestMockListActivitiesNewestFirst(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	m.PutProfile(newProfile("u1", "alice"))
	m.PutProfile(newProfile("u2", "bob"))
	m.PutProfile(newProfile("u3", "carol"))

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	_, _, _ = m.PublishActivity(ctx, domain.SharedActivity{ID: "a1", OwnerID: "u1", OccurredAt: base})
	_, _, _ = m.PublishActivity(ctx, domain.SharedActivity{ID: "a2", OwnerID: "u2", OccurredAt: base.Add(time.Hour)})
	_, _, _ = m.PublishActivity(ctx, domain.SharedActivity{ID: "a3", OwnerID: "u3", OccurredAt: base.Add(2 * time.Hour)})

	got, err := m.ListActivities(ctx, []string{"u1", "u2"}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a2" || got[1].ID != "a1" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMockDeleteProfileSweepsOwnedRecords(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	m.PutProfile(newProfile("u1", "alice"))
	m.PutProfile(newProfile("u2", "bob"))
	m.PutRelationship(domain.Relationship{FollowerID: "u1", FollowingID: "u2", Status: domain.StatusAccepted})
	m.PutRelationship(domain.Relationship{FollowerID: "u2", FollowingID: "u1", Status: domain.StatusAccepted})
	_, _, _ = m.PublishActivity(ctx, domain.SharedActivity{ID: "a1", OwnerID: "u1"})

	if err := m.DeleteProfile(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edges, _ := m.ListRelationships(ctx, RelationshipQuery{}); len(edges) != 0 {
		t.Fatalf("expected edges to be removed, got %d", len(edges))
	}
	if len(m.Activities()) != 0 {
		t.Fatal("expected activities to be removed")
	}
	if _, err := m.CreateProfile(ctx, newProfile("u3", "alice")); err != nil {
		t.Fatalf("expected username to be released, got %v", err)
	}
	if err := m.DeleteProfile(ctx, "u1"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound on second delete, got %v", err)
	}
}

func TestMockSetErrorAndCounters(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	m.SetError(OpGetProfile, domain.ErrNetwork)

	_, err := m.GetProfile(ctx, "u1")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected injected error, got %v", err)
	}
	m.SetError(OpGetProfile, nil)
	_, err = m.GetProfile(ctx, "u1")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected cleared injection, got %v", err)
	}
	if m.TotalCalls() != 2 {
		t.Fatalf("expected 2 calls, got %d", m.TotalCalls())
	}
	m.ResetCalls()
	if m.TotalCalls() != 0 {
		t.Fatal("expected counters to reset")
	}
}

func TestMockInterfaceCompliance(t *testing.T) {
	var _ Store = (*MockStore)(nil)
}

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/janisto/fitsocial/internal/domain"
)

// Operation names used by MockStore call counting and error injection.
const (
	OpCreateProfile         = "CreateProfile"
	OpGetProfile            = "GetProfile"
	OpGetProfiles           = "GetProfiles"
	OpFindProfileByUsername = "FindProfileByUsername"
	OpSearchProfiles        = "SearchProfiles"
	OpListDiscoverable      = "ListDiscoverableProfiles"
	OpUpdateProfile         = "UpdateProfile"
	OpDeleteProfile         = "DeleteProfile"
	OpCreateRelationship    = "CreateRelationship"
	OpGetRelationship       = "GetRelationship"
	OpDeleteRelationship    = "DeleteRelationship"
	OpListRelationships     = "ListRelationships"
	OpPublishActivity       = "PublishActivity"
	OpListActivities        = "ListActivities"
)

// MockStore implements Store in memory for unit tests. It enforces the same
// uniqueness, version and atomicity rules as FirestoreStore and records how
// many times each operation was called.
type MockStore struct {
	mu            sync.RWMutex
	profiles      map[string]domain.Profile
	usernames     map[string]string
	relationships map[string]domain.Relationship
	activities    map[string]domain.SharedActivity
	calls         map[string]int
	errs          map[string]error
	now           func() time.Time
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	m := &MockStore{now: func() time.Time { return time.Now().UTC() }}
	m.Clear()
	return m
}

// Clear removes all records, counters and injected errors.
func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = make(map[string]domain.Profile)
	m.usernames = make(map[string]string)
	m.relationships = make(map[string]domain.Relationship)
	m.activities = make(map[string]domain.SharedActivity)
	m.calls = make(map[string]int)
	m.errs = make(map[string]error)
}

// SetError makes every subsequent call to op fail with err. A nil err clears it.
func (m *MockStore) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// Calls returns how many times op has been invoked.
func (m *MockStore) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (m *MockStore) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// ResetCalls zeroes the call counters without touching records.
func (m *MockStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

// PutProfile seeds a profile directly, claiming its username.
func (m *MockStore) PutProfile(p domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Username = domain.NormalizeUsername(p.Username)
	if p.Version == 0 {
		p.Version = 1
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
		p.UpdatedAt = p.CreatedAt
	}
	m.profiles[p.ID] = p
	m.usernames[p.Username] = p.ID
}

// PutRelationship seeds an edge directly.
func (m *MockStore) PutRelationship(r domain.Relationship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = domain.RelationshipID(r.FollowerID, r.FollowingID)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	m.relationships[r.ID] = r
}

// Activities returns a snapshot of every stored activity.
func (m *MockStore) Activities() []domain.SharedActivity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SharedActivity, 0, len(m.activities))
	for _, a := range m.activities {
		out = append(out, a)
	}
	sortActivities(out)
	return out
}

// begin records the call and returns any injected error. Caller holds m.mu.
func (m *MockStore) begin(op string) error {
	m.calls[op]++
	return m.errs[op]
}

func (m *MockStore) CreateProfile(_ context.Context, p domain.Profile) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpCreateProfile); err != nil {
		return nil, err
	}

	p.Username = domain.NormalizeUsername(p.Username)
	if _, taken := m.usernames[p.Username]; taken {
		return nil, domain.ErrUsernameTaken
	}
	if _, exists := m.profiles[p.ID]; exists {
		return nil, domain.ErrAlreadyRegistered
	}

	now := m.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1
	m.profiles[p.ID] = p
	m.usernames[p.Username] = p.ID
	return &p, nil
}

func (m *MockStore) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpGetProfile); err != nil {
		return nil, err
	}

	p, exists := m.profiles[id]
	if !exists {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *MockStore) GetProfiles(_ context.Context, ids []string) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpGetProfiles); err != nil {
		return nil, err
	}

	var out []domain.Profile
	for _, id := range uniqueIDs(ids) {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockStore) FindProfileByUsername(_ context.Context, username string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpFindProfileByUsername); err != nil {
		return nil, err
	}

	id, ok := m.usernames[domain.NormalizeUsername(username)]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *MockStore) SearchProfiles(_ context.Context, query string, limit int) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpSearchProfiles); err != nil {
		return nil, err
	}

	limit = clampLimit(limit, MaxSearchResults)
	prefix := strings.ToLower(strings.TrimSpace(query))

	var out []domain.Profile
	for _, p := range m.sortedProfiles() {
		if strings.HasPrefix(p.Username, prefix) ||
			strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.DisplayName)), prefix) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockStore) ListDiscoverableProfiles(_ context.Context, limit int) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpListDiscoverable); err != nil {
		return nil, err
	}

	limit = clampLimit(limit, MaxSearchResults)
	var out []domain.Profile
	for _, p := range m.sortedProfiles() {
		if !p.IsDiscoverable || p.Privacy.Visibility != domain.VisibilityPublic {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockStore) UpdateProfile(_ context.Context, p domain.Profile) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpUpdateProfile); err != nil {
		return nil, err
	}

	stored, exists := m.profiles[p.ID]
	if !exists {
		return nil, domain.ErrProfileNotFound
	}
	if stored.Version != p.Version {
		return nil, domain.ErrVersionConflict
	}

	stored.DisplayName = p.DisplayName
	stored.Bio = p.Bio
	stored.IsDiscoverable = p.IsDiscoverable
	stored.Privacy = p.Privacy
	stored.Version++
	stored.UpdatedAt = m.now()
	m.profiles[p.ID] = stored
	return &stored, nil
}

func (m *MockStore) DeleteProfile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpDeleteProfile); err != nil {
		return err
	}

	p, exists := m.profiles[id]
	if !exists {
		return domain.ErrProfileNotFound
	}
	if m.usernames[p.Username] == id {
		delete(m.usernames, p.Username)
	}
	delete(m.profiles, id)
	for key, r := range m.relationships {
		if r.FollowerID == id || r.FollowingID == id {
			delete(m.relationships, key)
		}
	}
	for key, a := range m.activities {
		if a.OwnerID == id {
			delete(m.activities, key)
		}
	}
	return nil
}

func (m *MockStore) CreateRelationship(_ context.Context, r domain.Relationship) (*domain.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpCreateRelationship); err != nil {
		return nil, err
	}

	r.ID = domain.RelationshipID(r.FollowerID, r.FollowingID)
	if _, exists := m.relationships[r.ID]; exists {
		return nil, ErrRelationshipExists
	}
	r.CreatedAt = m.now()
	m.relationships[r.ID] = r
	return &r, nil
}

func (m *MockStore) GetRelationship(_ context.Context, followerID, followingID string) (*domain.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpGetRelationship); err != nil {
		return nil, err
	}

	r, exists := m.relationships[domain.RelationshipID(followerID, followingID)]
	if !exists {
		return nil, ErrRelationshipNotFound
	}
	return &r, nil
}

func (m *MockStore) DeleteRelationship(_ context.Context, followerID, followingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpDeleteRelationship); err != nil {
		return err
	}

	delete(m.relationships, domain.RelationshipID(followerID, followingID))
	return nil
}

func (m *MockStore) ListRelationships(_ context.Context, q RelationshipQuery) ([]domain.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpListRelationships); err != nil {
		return nil, err
	}

	var out []domain.Relationship
	for _, r := range m.relationships {
		if q.FollowerID != "" && r.FollowerID != q.FollowerID {
			continue
		}
		if q.FollowingID != "" && r.FollowingID != q.FollowingID {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		out = append(out, r)
	}
	sortRelationships(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MockStore) PublishActivity(_ context.Context, a domain.SharedActivity) (*domain.SharedActivity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpPublishActivity); err != nil {
		return nil, false, err
	}

	if existing, ok := m.activities[a.ID]; ok {
		if existing.OwnerID != a.OwnerID {
			return nil, false, domain.ErrActivityConflict
		}
		return &existing, false, nil
	}
	owner, ok := m.profiles[a.OwnerID]
	if !ok {
		return nil, false, domain.ErrProfileNotFound
	}

	a.OccurredAt = a.OccurredAt.UTC()
	m.activities[a.ID] = a
	owner.Stats.TotalActivities++
	owner.Stats.TotalVolume += a.TotalVolume
	owner.Version++
	owner.UpdatedAt = m.now()
	m.profiles[owner.ID] = owner
	return &a, true, nil
}

func (m *MockStore) ListActivities(_ context.Context, ownerIDs []string, limit int) ([]domain.SharedActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpListActivities); err != nil {
		return nil, err
	}

	owners := make(map[string]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}
	var out []domain.SharedActivity
	for _, a := range m.activities {
		if _, ok := owners[a.OwnerID]; ok {
			out = append(out, a)
		}
	}
	sortActivities(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sortedProfiles returns profiles ordered by username. Caller holds m.mu.
func (m *MockStore) sortedProfiles() []domain.Profile {
	out := make([]domain.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Profile) int { return strings.Compare(a.Username, b.Username) })
	return out
}

// Compile-time interface check
var _ Store = (*MockStore)(nil)

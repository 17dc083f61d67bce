package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/janisto/fitsocial/internal/domain"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
)

const (
	profilesCollection      = "profiles"
	usernamesCollection     = "usernames"
	relationshipsCollection = "relationships"
	activitiesCollection    = "activities"

	// Firestore limits the "in" operator to 30 comparison values.
	maxInValues = 30
)

// firestoreProfile maps to the profiles/{id} document.
type firestoreProfile struct {
	Username         string                 `firestore:"username"`
	DisplayName      string                 `firestore:"display_name"`
	DisplayNameLower string                 `firestore:"display_name_lower"`
	Bio              string                 `firestore:"bio"`
	IsDiscoverable   bool                   `firestore:"is_discoverable"`
	Stats            domain.Stats           `firestore:"stats"`
	Privacy          domain.PrivacySettings `firestore:"privacy"`
	Version          int64                  `firestore:"version"`
	CreatedAt        time.Time              `firestore:"created_at"`
	UpdatedAt        time.Time              `firestore:"updated_at"`
}

// firestoreUsername maps to the usernames/{normalized} claim document.
type firestoreUsername struct {
	ProfileID string    `firestore:"profile_id"`
	CreatedAt time.Time `firestore:"created_at"`
}

// firestoreRelationship maps to the relationships/{follower}_{following} document.
type firestoreRelationship struct {
	FollowerID  string    `firestore:"follower_id"`
	FollowingID string    `firestore:"following_id"`
	Status      string    `firestore:"status"`
	CreatedAt   time.Time `firestore:"created_at"`
}

// firestoreActivity maps to the activities/{id} document.
type firestoreActivity struct {
	OwnerID     string    `firestore:"owner_id"`
	Label       string    `firestore:"label"`
	OccurredAt  time.Time `firestore:"occurred_at"`
	TotalVolume float64   `firestore:"total_volume"`
	ItemCount   int       `firestore:"item_count"`
	IsCompleted bool      `firestore:"is_completed"`
}

func toFirestoreProfile(p domain.Profile) firestoreProfile {
	return firestoreProfile{
		Username:         p.Username,
		DisplayName:      p.DisplayName,
		DisplayNameLower: strings.ToLower(strings.TrimSpace(p.DisplayName)),
		Bio:              p.Bio,
		IsDiscoverable:   p.IsDiscoverable,
		Stats:            p.Stats,
		Privacy:          p.Privacy,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (fp firestoreProfile) toDomain(id string) *domain.Profile {
	return &domain.Profile{
		ID:             id,
		Username:       fp.Username,
		DisplayName:    fp.DisplayName,
		Bio:            fp.Bio,
		IsDiscoverable: fp.IsDiscoverable,
		CreatedAt:      fp.CreatedAt,
		UpdatedAt:      fp.UpdatedAt,
		Stats:          fp.Stats,
		Privacy:        fp.Privacy.Normalized(),
		Version:        fp.Version,
	}
}

func (fr firestoreRelationship) toDomain(id string) domain.Relationship {
	return domain.Relationship{
		ID:          id,
		FollowerID:  fr.FollowerID,
		FollowingID: fr.FollowingID,
		Status:      domain.RelationshipStatus(fr.Status),
		CreatedAt:   fr.CreatedAt,
	}
}

func (fa firestoreActivity) toDomain(id string) domain.SharedActivity {
	return domain.SharedActivity{
		ID:          id,
		OwnerID:     fa.OwnerID,
		Label:       fa.Label,
		OccurredAt:  fa.OccurredAt,
		TotalVolume: fa.TotalVolume,
		ItemCount:   fa.ItemCount,
		IsCompleted: fa.IsCompleted,
	}
}

// FirestoreStore implements Store using Firestore with transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) profileRef(id string) *firestore.DocumentRef {
	return s.client.Collection(profilesCollection).Doc(id)
}

func (s *FirestoreStore) relationshipRef(followerID, followingID string) *firestore.DocumentRef {
	return s.client.Collection(relationshipsCollection).Doc(domain.RelationshipID(followerID, followingID))
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// CreateProfile writes the profile and its username claim in one transaction,
// so two registrations racing for the same username cannot both succeed.
func (s *FirestoreStore) CreateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	profileRef := s.profileRef(p.ID)
	usernameRef := s.client.Collection(usernamesCollection).Doc(p.Username)
	now := time.Now().UTC()

	var result *domain.Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		claim, err := tx.Get(usernameRef)
		if err == nil && claim.Exists() {
			return domain.ErrUsernameTaken
		}
		if err != nil && !isNotFound(err) {
			return err
		}

		doc, err := tx.Get(profileRef)
		if err == nil && doc.Exists() {
			return domain.ErrAlreadyRegistered
		}
		if err != nil && !isNotFound(err) {
			return err
		}

		p.CreatedAt = now
		p.UpdatedAt = now
		p.Version = 1
		fp := toFirestoreProfile(p)

		if err := tx.Set(usernameRef, firestoreUsername{ProfileID: p.ID, CreatedAt: now}); err != nil {
			return err
		}
		if err := tx.Set(profileRef, fp); err != nil {
			return err
		}

		result = fp.toDomain(p.ID)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "create", p.ID, "profile", p.ID, "failure",
			map[string]any{"error": domain.Category(err)})
		return nil, classify("create profile", err)
	}

	applog.LogAuditEvent(ctx, "create", p.ID, "profile", p.ID, "success", nil)

	return result, nil
}

// GetProfile retrieves a profile by id.
func (s *FirestoreStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	doc, err := s.profileRef(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, classify("get profile", err)
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, classify("decode profile", err)
	}
	return fp.toDomain(doc.Ref.ID), nil
}

// GetProfiles fetches profiles with a single batched read.
func (s *FirestoreStore) GetProfiles(ctx context.Context, ids []string) ([]domain.Profile, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = s.profileRef(id)
	}

	docs, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, classify("get profiles", err)
	}

	profiles := make([]domain.Profile, 0, len(docs))
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return nil, classify("decode profile", err)
		}
		profiles = append(profiles, *fp.toDomain(doc.Ref.ID))
	}
	return profiles, nil
}

// FindProfileByUsername resolves a normalized username through its claim document.
func (s *FirestoreStore) FindProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	key := domain.NormalizeUsername(username)
	if !domain.ValidKey(key) {
		return nil, domain.ErrProfileNotFound
	}
	doc, err := s.client.Collection(usernamesCollection).Doc(key).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, classify("find username", err)
	}
	var claim firestoreUsername
	if err := doc.DataTo(&claim); err != nil {
		return nil, classify("decode username", err)
	}
	return s.GetProfile(ctx, claim.ProfileID)
}

// SearchProfiles runs a prefix range query on username and on the lowercased
// display name, then merges both result sets.
func (s *FirestoreStore) SearchProfiles(ctx context.Context, query string, limit int) ([]domain.Profile, error) {
	limit = clampLimit(limit, MaxSearchResults)
	prefix := strings.ToLower(strings.TrimSpace(query))

	seen := make(map[string]struct{})
	var profiles []domain.Profile
	for _, field := range []string{"username", "display_name_lower"} {
		q := s.client.Collection(profilesCollection).
			Where(field, ">=", prefix).
			Where(field, "<", prefix+"\uf8ff").
			OrderBy(field, firestore.Asc).
			Limit(limit)
		docs, err := q.Documents(ctx).GetAll()
		if err != nil {
			return nil, classify("search profiles", err)
		}
		for _, doc := range docs {
			if _, dup := seen[doc.Ref.ID]; dup {
				continue
			}
			var fp firestoreProfile
			if err := doc.DataTo(&fp); err != nil {
				return nil, classify("decode profile", err)
			}
			seen[doc.Ref.ID] = struct{}{}
			profiles = append(profiles, *fp.toDomain(doc.Ref.ID))
		}
	}
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

// ListDiscoverableProfiles needs the composite index
// (is_discoverable, privacy.visibility, username); without it Firestore
// answers FailedPrecondition, surfaced as domain.ErrSchemaMisconfigured.
func (s *FirestoreStore) ListDiscoverableProfiles(ctx context.Context, limit int) ([]domain.Profile, error) {
	limit = clampLimit(limit, MaxSearchResults)
	docs, err := s.client.Collection(profilesCollection).
		Where("is_discoverable", "==", true).
		Where("privacy.visibility", "==", string(domain.VisibilityPublic)).
		OrderBy("username", firestore.Asc).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, classify("list discoverable", err)
	}
	profiles := make([]domain.Profile, 0, len(docs))
	for _, doc := range docs {
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return nil, classify("decode profile", err)
		}
		profiles = append(profiles, *fp.toDomain(doc.Ref.ID))
	}
	return profiles, nil
}

// UpdateProfile writes the editable fields when the stored version matches p.Version.
func (s *FirestoreStore) UpdateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	docRef := s.profileRef(p.ID)

	var result *domain.Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrProfileNotFound
			}
			return err
		}

		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return err
		}
		if fp.Version != p.Version {
			return domain.ErrVersionConflict
		}

		fp.DisplayName = p.DisplayName
		fp.DisplayNameLower = strings.ToLower(strings.TrimSpace(p.DisplayName))
		fp.Bio = p.Bio
		fp.IsDiscoverable = p.IsDiscoverable
		fp.Privacy = p.Privacy
		fp.Version++
		fp.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, fp); err != nil {
			return err
		}

		result = fp.toDomain(p.ID)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "update", p.ID, "profile", p.ID, "failure",
			map[string]any{"error": domain.Category(err)})
		return nil, classify("update profile", err)
	}

	applog.LogAuditEvent(ctx, "update", p.ID, "profile", p.ID, "success", nil)

	return result, nil
}

// DeleteProfile removes the profile and username claim transactionally, then
// sweeps the owner's edges and activities with a bulk writer.
func (s *FirestoreStore) DeleteProfile(ctx context.Context, id string) error {
	docRef := s.profileRef(id)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrProfileNotFound
			}
			return err
		}
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return err
		}

		usernameRef := s.client.Collection(usernamesCollection).Doc(fp.Username)
		claim, err := tx.Get(usernameRef)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err == nil && claim.Exists() {
			var c firestoreUsername
			if err := claim.DataTo(&c); err == nil && c.ProfileID == id {
				if err := tx.Delete(usernameRef); err != nil {
					return err
				}
			}
		}
		return tx.Delete(docRef)
	})
	if err == nil {
		err = s.sweepOwned(ctx, id)
	}
	if err != nil {
		applog.LogAuditEvent(ctx, "delete", id, "profile", id, "failure",
			map[string]any{"error": domain.Category(err)})
		return classify("delete profile", err)
	}

	applog.LogAuditEvent(ctx, "delete", id, "profile", id, "success", nil)

	return nil
}

func (s *FirestoreStore) sweepOwned(ctx context.Context, id string) error {
	queries := []firestore.Query{
		s.client.Collection(relationshipsCollection).Where("follower_id", "==", id),
		s.client.Collection(relationshipsCollection).Where("following_id", "==", id),
		s.client.Collection(activitiesCollection).Where("owner_id", "==", id),
	}

	var refs []*firestore.DocumentRef
	for _, q := range queries {
		docs, err := q.Documents(ctx).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			refs = append(refs, doc.Ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil && !isNotFound(err) {
			return err
		}
	}
	return nil
}

// CreateRelationship inserts the edge only when no edge for the same pair exists.
func (s *FirestoreStore) CreateRelationship(ctx context.Context, r domain.Relationship) (*domain.Relationship, error) {
	docRef := s.relationshipRef(r.FollowerID, r.FollowingID)
	now := time.Now().UTC()

	var result domain.Relationship

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil && doc.Exists() {
			return ErrRelationshipExists
		}
		if err != nil && !isNotFound(err) {
			return err
		}

		fr := firestoreRelationship{
			FollowerID:  r.FollowerID,
			FollowingID: r.FollowingID,
			Status:      string(r.Status),
			CreatedAt:   now,
		}
		if err := tx.Set(docRef, fr); err != nil {
			return err
		}
		result = fr.toDomain(docRef.ID)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "follow", r.FollowerID, "relationship", docRef.ID, "failure",
			map[string]any{"error": domain.Category(err)})
		return nil, classify("create relationship", err)
	}

	applog.LogAuditEvent(ctx, "follow", r.FollowerID, "relationship", docRef.ID, "success",
		map[string]any{"status": string(r.Status)})

	return &result, nil
}

// GetRelationship retrieves the edge followerID -> followingID.
func (s *FirestoreStore) GetRelationship(ctx context.Context, followerID, followingID string) (*domain.Relationship, error) {
	doc, err := s.relationshipRef(followerID, followingID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRelationshipNotFound
		}
		return nil, classify("get relationship", err)
	}
	var fr firestoreRelationship
	if err := doc.DataTo(&fr); err != nil {
		return nil, classify("decode relationship", err)
	}
	r := fr.toDomain(doc.Ref.ID)
	return &r, nil
}

// DeleteRelationship removes the edge. Deleting a missing document succeeds in Firestore.
func (s *FirestoreStore) DeleteRelationship(ctx context.Context, followerID, followingID string) error {
	docRef := s.relationshipRef(followerID, followingID)
	if _, err := docRef.Delete(ctx); err != nil && !isNotFound(err) {
		applog.LogAuditEvent(ctx, "unfollow", followerID, "relationship", docRef.ID, "failure",
			map[string]any{"error": domain.Category(err)})
		return classify("delete relationship", err)
	}

	applog.LogAuditEvent(ctx, "unfollow", followerID, "relationship", docRef.ID, "success", nil)

	return nil
}

// ListRelationships queries edges and orders them newest first.
func (s *FirestoreStore) ListRelationships(ctx context.Context, rq RelationshipQuery) ([]domain.Relationship, error) {
	q := s.client.Collection(relationshipsCollection).Query
	if rq.FollowerID != "" {
		q = q.Where("follower_id", "==", rq.FollowerID)
	}
	if rq.FollowingID != "" {
		q = q.Where("following_id", "==", rq.FollowingID)
	}
	if rq.Status != "" {
		q = q.Where("status", "==", string(rq.Status))
	}
	if rq.Limit > 0 {
		q = q.Limit(rq.Limit)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, classify("list relationships", err)
	}

	edges := make([]domain.Relationship, 0, len(docs))
	for _, doc := range docs {
		var fr firestoreRelationship
		if err := doc.DataTo(&fr); err != nil {
			return nil, classify("decode relationship", err)
		}
		edges = append(edges, fr.toDomain(doc.Ref.ID))
	}
	sortRelationships(edges)
	return edges, nil
}

// PublishActivity writes the activity and increments the owner's stats in one
// transaction. A retried publish with the same activity id changes nothing.
func (s *FirestoreStore) PublishActivity(ctx context.Context, a domain.SharedActivity) (*domain.SharedActivity, bool, error) {
	activityRef := s.client.Collection(activitiesCollection).Doc(a.ID)
	ownerRef := s.profileRef(a.OwnerID)

	var (
		result  domain.SharedActivity
		created bool
	)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false

		existing, err := tx.Get(activityRef)
		if err == nil && existing.Exists() {
			var fa firestoreActivity
			if err := existing.DataTo(&fa); err != nil {
				return err
			}
			if fa.OwnerID != a.OwnerID {
				return domain.ErrActivityConflict
			}
			result = fa.toDomain(activityRef.ID)
			return nil
		}
		if err != nil && !isNotFound(err) {
			return err
		}

		if _, err := tx.Get(ownerRef); err != nil {
			if isNotFound(err) {
				return domain.ErrProfileNotFound
			}
			return err
		}

		fa := firestoreActivity{
			OwnerID:     a.OwnerID,
			Label:       a.Label,
			OccurredAt:  a.OccurredAt.UTC(),
			TotalVolume: a.TotalVolume,
			ItemCount:   a.ItemCount,
			IsCompleted: a.IsCompleted,
		}
		if err := tx.Set(activityRef, fa); err != nil {
			return err
		}
		if err := tx.Update(ownerRef, []firestore.Update{
			{Path: "stats.total_activities", Value: firestore.Increment(1)},
			{Path: "stats.total_volume", Value: firestore.Increment(a.TotalVolume)},
			{Path: "version", Value: firestore.Increment(1)},
			{Path: "updated_at", Value: time.Now().UTC()},
		}); err != nil {
			return err
		}

		result = fa.toDomain(activityRef.ID)
		created = true
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "publish", a.OwnerID, "activity", a.ID, "failure",
			map[string]any{"error": domain.Category(err)})
		return nil, false, classify("publish activity", err)
	}

	applog.LogAuditEvent(ctx, "publish", a.OwnerID, "activity", a.ID, "success",
		map[string]any{"created": created})

	return &result, created, nil
}

// ListActivities queries each chunk of owners, then merges to the newest limit.
func (s *FirestoreStore) ListActivities(ctx context.Context, ownerIDs []string, limit int) ([]domain.SharedActivity, error) {
	ownerIDs = uniqueIDs(ownerIDs)
	if len(ownerIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	var activities []domain.SharedActivity
	for chunk := range slices.Chunk(ownerIDs, maxInValues) {
		q := s.client.Collection(activitiesCollection).
			Where("owner_id", "in", chunk).
			OrderBy("occurred_at", firestore.Desc).
			Limit(limit)
		docs, err := q.Documents(ctx).GetAll()
		if err != nil {
			return nil, classify("list activities", err)
		}
		for _, doc := range docs {
			var fa firestoreActivity
			if err := doc.DataTo(&fa); err != nil {
				return nil, classify("decode activity", err)
			}
			activities = append(activities, fa.toDomain(doc.Ref.ID))
		}
	}

	sortActivities(activities)
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

// Compile-time interface check
var _ Store = (*FirestoreStore)(nil)

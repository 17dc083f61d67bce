// Package store holds the remote record store: the authoritative copy of
// profiles, follow edges and shared activities.
package store

import (
	"context"
	"errors"

	"github.com/janisto/fitsocial/internal/domain"
)

// Store-level errors that the social core translates into outcomes.
var (
	ErrRelationshipExists   = errors.New("relationship already exists")
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// MaxSearchResults caps SearchProfiles regardless of the requested limit.
const MaxSearchResults = 50

// RelationshipQuery filters ListRelationships. Empty fields are not applied.
type RelationshipQuery struct {
	FollowerID  string
	FollowingID string
	Status      domain.RelationshipStatus
	Limit       int
}

// Store defines remote record operations.
//
// Implementations must:
//   - reject a CreateProfile whose normalized username is already in use with
//     domain.ErrUsernameTaken, atomically with the profile write
//   - treat Profile.Version passed to UpdateProfile as the expected stored
//     version and fail with domain.ErrVersionConflict on mismatch
//   - write a SharedActivity and the owner's stat increment atomically, and
//     skip both when an activity with the same ID already exists
//   - classify remote failures into domain errors
type Store interface {
	CreateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	// GetProfiles fetches many profiles in one round trip. Missing ids are skipped.
	GetProfiles(ctx context.Context, ids []string) ([]domain.Profile, error)
	FindProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	// SearchProfiles matches a lowercase prefix of username or display name.
	SearchProfiles(ctx context.Context, query string, limit int) ([]domain.Profile, error)
	// ListDiscoverableProfiles returns public profiles that opted into
	// discovery, ordered by username.
	ListDiscoverableProfiles(ctx context.Context, limit int) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	// DeleteProfile removes the profile, its username claim, its edges and its activities.
	DeleteProfile(ctx context.Context, id string) error

	CreateRelationship(ctx context.Context, r domain.Relationship) (*domain.Relationship, error)
	GetRelationship(ctx context.Context, followerID, followingID string) (*domain.Relationship, error)
	// DeleteRelationship is a no-op when the edge does not exist.
	DeleteRelationship(ctx context.Context, followerID, followingID string) error
	ListRelationships(ctx context.Context, q RelationshipQuery) ([]domain.Relationship, error)

	// PublishActivity reports created=false when the activity already existed.
	PublishActivity(ctx context.Context, a domain.SharedActivity) (activity *domain.SharedActivity, created bool, err error)
	// ListActivities returns activities owned by ownerIDs, newest first.
	ListActivities(ctx context.Context, ownerIDs []string, limit int) ([]domain.SharedActivity, error)
}

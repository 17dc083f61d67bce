package domain

import (
	"strconv"
	"time"
)

// RelationshipStatus is the state of a directed follow edge.
type RelationshipStatus string

const (
	StatusPending  RelationshipStatus = "pending"
	StatusAccepted RelationshipStatus = "accepted"
	// StatusBlocked is part of the stored model but no operation produces it yet.
	StatusBlocked RelationshipStatus = "blocked"
)

// Relationship is a directed edge FollowerID -> FollowingID.
type Relationship struct {
	ID          string             `json:"id"`
	FollowerID  string             `json:"followerId"`
	FollowingID string             `json:"followingId"`
	Status      RelationshipStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// RelationshipID is the deterministic record id for an edge. Using it as the
// document key makes (follower, following) unique at the store level. The
// follower length prefix keeps ids containing "_" from colliding.
func RelationshipID(followerID, followingID string) string {
	return strconv.Itoa(len(followerID)) + ":" + followerID + "_" + followingID
}

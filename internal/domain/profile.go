package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUsernameLength bounds the normalized username in runes.
const MaxUsernameLength = 30

// Stats are the aggregate counters maintained by activity publishing.
type Stats struct {
	TotalActivities int     `json:"totalActivities" firestore:"total_activities"`
	TotalVolume     float64 `json:"totalVolume"     firestore:"total_volume"`
}

// Profile is the public-facing record of a user. ID is the identity the
// profile was registered under and never changes.
type Profile struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	DisplayName    string          `json:"displayName"`
	Bio            string          `json:"bio"`
	IsDiscoverable bool            `json:"isDiscoverable"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Stats          Stats           `json:"stats"`
	Privacy        PrivacySettings `json:"privacy"`
	// Version increments on every remote write and guards conditional updates.
	Version int64 `json:"version"`
}

// NormalizeUsername lowercases and trims a username for comparison and storage.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername normalizes username and rejects empty or oversized values
// and anything that cannot key the username claim record.
func ValidateUsername(username string) (string, error) {
	n := NormalizeUsername(username)
	if n == "" || utf8.RuneCountInString(n) > MaxUsernameLength {
		return "", ErrInvalidUsername
	}
	if strings.ContainsAny(n, " \t\r\n") || !ValidKey(n) {
		return "", ErrInvalidUsername
	}
	return n, nil
}

package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxActivityLabelLength bounds SharedActivity.Label in runes.
const MaxActivityLabelLength = 120

// SharedActivity is an immutable summary of one completed workout published
// to followers' feeds.
type SharedActivity struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Label       string    `json:"label"`
	OccurredAt  time.Time `json:"occurredAt"`
	TotalVolume float64   `json:"totalVolume"`
	ItemCount   int       `json:"itemCount"`
	IsCompleted bool      `json:"isCompleted"`
}

// ActivitySummary is what the workout layer hands over when a workout completes.
// ID is optional; callers that retry a publish should reuse the same ID.
type ActivitySummary struct {
	ID          string
	Label       string
	OccurredAt  time.Time
	TotalVolume float64
	ItemCount   int
	IsCompleted bool
}

// Validate rejects summaries that cannot be published.
func (s ActivitySummary) Validate() error {
	label := strings.TrimSpace(s.Label)
	switch {
	case label == "" || utf8.RuneCountInString(label) > MaxActivityLabelLength:
		return ErrInvalidActivity
	case s.TotalVolume < 0 || math.IsNaN(s.TotalVolume) || math.IsInf(s.TotalVolume, 0):
		return ErrInvalidActivity
	case s.ItemCount < 0:
		return ErrInvalidActivity
	case strings.TrimSpace(s.ID) != "" && !ValidKey(strings.TrimSpace(s.ID)):
		return ErrInvalidActivity
	}
	return nil
}

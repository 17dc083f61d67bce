package feed

import (
	"time"

	"github.com/janisto/fitsocial/internal/platform/pagination"
)

// PublishInput for POST /activities
type PublishInput struct {
	Body struct {
		ID            string    `json:"id,omitempty"          maxLength:"128"               doc:"Client-chosen id; reuse it when retrying" example:"7f6c2a54-58b0-4a8e-9d0e-3c1f2b7d9a10"`
		Label         string    `json:"label"                 minLength:"1" maxLength:"120" required:"true" doc:"Workout label" example:"Leg day"`
		OccurredAt    time.Time `json:"occurredAt,omitempty"                                doc:"When the workout happened; defaults to now" example:"2024-01-15T10:30:00Z"`
		TotalVolume   float64   `json:"totalVolume,omitempty" minimum:"0"                   doc:"Total lifted volume" example:"4200"`
		ItemCount     int       `json:"itemCount,omitempty"   minimum:"0"                   doc:"Number of exercises" example:"5"`
		IsCompleted   bool      `json:"isCompleted,omitempty"                               doc:"Workout was finished" example:"true"`
		AutoTriggered bool      `json:"autoTriggered,omitempty"                             doc:"Published by the workout tracker rather than the user" example:"false"`
	}
}

// FeedInput for GET /feed
type FeedInput struct {
	pagination.Params
}

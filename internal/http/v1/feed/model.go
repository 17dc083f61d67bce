package feed

import (
	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/platform/timeutil"
)

// Activity is a shared workout summary.
type Activity struct {
	ID          string        `json:"id"          doc:"Activity id"                     example:"7f6c2a54-58b0-4a8e-9d0e-3c1f2b7d9a10"`
	OwnerID     string        `json:"ownerId"     doc:"Identity of the publishing user" example:"user-123"`
	Label       string        `json:"label"       doc:"Workout label"                   example:"Leg day"`
	OccurredAt  timeutil.Time `json:"occurredAt"  doc:"When the workout happened"       example:"2024-01-15T10:30:00.000Z"`
	TotalVolume float64       `json:"totalVolume" doc:"Total lifted volume"             example:"4200"`
	ItemCount   int           `json:"itemCount"   doc:"Number of exercises"             example:"5"`
	IsCompleted bool          `json:"isCompleted" doc:"Workout was finished"            example:"true"`
}

// PublishResult reports what a publish request did.
type PublishResult struct {
	Activity *Activity `json:"activity,omitempty" doc:"Stored activity; absent when skipped"`
	Created  bool      `json:"created"            doc:"False when the id was already published"`
	Skipped  bool      `json:"skipped"            doc:"Automatic share skipped because auto sharing is off"`
}

func toActivity(a *domain.SharedActivity) Activity {
	return Activity{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Label:       a.Label,
		OccurredAt:  timeutil.Time{Time: a.OccurredAt},
		TotalVolume: a.TotalVolume,
		ItemCount:   a.ItemCount,
		IsCompleted: a.IsCompleted,
	}
}

func toActivities(in []domain.SharedActivity) []Activity {
	out := make([]Activity, 0, len(in))
	for i := range in {
		out = append(out, toActivity(&in[i]))
	}
	return out
}

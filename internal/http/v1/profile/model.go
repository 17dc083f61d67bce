package profile

import (
	"github.com/janisto/fitsocial/internal/domain"
	"github.com/janisto/fitsocial/internal/platform/timeutil"
)

// Profile is the response shape of a user profile. Other handler packages
// reuse it for lists of profiles.
type Profile struct {
	ID             string          `json:"id"             doc:"Identity the profile is registered under" example:"user-123"`
	Username       string          `json:"username"       doc:"Normalized unique username"               example:"alice"`
	DisplayName    string          `json:"displayName"    doc:"Display name"                             example:"Alice"`
	Bio            string          `json:"bio"            doc:"Short biography"                          example:"Lifting since 2019"`
	IsDiscoverable bool            `json:"isDiscoverable" doc:"Appears in suggestions"                   example:"true"`
	CreatedAt      timeutil.Time   `json:"createdAt"      doc:"Creation timestamp"                       example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt      timeutil.Time   `json:"updatedAt"      doc:"Last update timestamp"                    example:"2024-01-15T10:30:00.000Z"`
	Stats          Stats           `json:"stats"          doc:"Aggregate activity counters"`
	Privacy        PrivacySettings `json:"privacy"        doc:"Privacy settings"`
}

// Stats are the published-activity counters of a profile.
type Stats struct {
	TotalActivities int     `json:"totalActivities" doc:"Number of published activities" example:"12"`
	TotalVolume     float64 `json:"totalVolume"     doc:"Sum of published volume"         example:"48250.5"`
}

// PrivacySettings mirrors domain.PrivacySettings on the wire.
type PrivacySettings struct {
	Visibility          string `json:"visibility"          enum:"public,followersOnly,private"       doc:"Who may see the profile"              example:"public"`
	WhoCanFollow        string `json:"whoCanFollow"        enum:"everyone,approvalRequired,nobody"   doc:"Who may follow"                       example:"everyone"`
	ShowActivityCount   bool   `json:"showActivityCount"                                             doc:"Show the activity count"              example:"true"`
	ShowTotalVolume     bool   `json:"showTotalVolume"                                               doc:"Show the total volume"                example:"true"`
	ShowDetailNames     bool   `json:"showDetailNames"                                               doc:"Show item names of activities"        example:"true"`
	ShowDetailBreakdown bool   `json:"showDetailBreakdown"                                           doc:"Show per-item breakdown"              example:"false"`
	AutoShareActivities bool   `json:"autoShareActivities"                                           doc:"Publish completed workouts automatically" example:"false"`
}

// FromDomain converts a domain profile into its response shape.
func FromDomain(p *domain.Profile) Profile {
	return Profile{
		ID:             p.ID,
		Username:       p.Username,
		DisplayName:    p.DisplayName,
		Bio:            p.Bio,
		IsDiscoverable: p.IsDiscoverable,
		CreatedAt:      timeutil.Time{Time: p.CreatedAt},
		UpdatedAt:      timeutil.Time{Time: p.UpdatedAt},
		Stats:          StatsFromDomain(p.Stats),
		Privacy:        PrivacyFromDomain(p.Privacy),
	}
}

// List converts profiles, returning an empty slice rather than nil.
func List(profiles []domain.Profile) []Profile {
	out := make([]Profile, 0, len(profiles))
	for i := range profiles {
		out = append(out, FromDomain(&profiles[i]))
	}
	return out
}

func StatsFromDomain(s domain.Stats) Stats {
	return Stats{TotalActivities: s.TotalActivities, TotalVolume: s.TotalVolume}
}

func PrivacyFromDomain(s domain.PrivacySettings) PrivacySettings {
	return PrivacySettings{
		Visibility:          string(s.Visibility),
		WhoCanFollow:        string(s.WhoCanFollow),
		ShowActivityCount:   s.ShowActivityCount,
		ShowTotalVolume:     s.ShowTotalVolume,
		ShowDetailNames:     s.ShowDetailNames,
		ShowDetailBreakdown: s.ShowDetailBreakdown,
		AutoShareActivities: s.AutoShareActivities,
	}
}

// ToDomain converts wire settings back into the domain type.
func (s PrivacySettings) ToDomain() domain.PrivacySettings {
	return domain.PrivacySettings{
		Visibility:          domain.Visibility(s.Visibility),
		WhoCanFollow:        domain.FollowPolicy(s.WhoCanFollow),
		ShowActivityCount:   s.ShowActivityCount,
		ShowTotalVolume:     s.ShowTotalVolume,
		ShowDetailNames:     s.ShowDetailNames,
		ShowDetailBreakdown: s.ShowDetailBreakdown,
		AutoShareActivities: s.AutoShareActivities,
	}
}

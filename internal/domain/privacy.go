package domain

// Visibility controls who may see a profile.
type Visibility string

const (
	VisibilityPublic        Visibility = "public"
	VisibilityFollowersOnly Visibility = "followersOnly"
	VisibilityPrivate       Visibility = "private"
)

// FollowPolicy controls who may create a follow edge towards a profile.
type FollowPolicy string

const (
	FollowEveryone         FollowPolicy = "everyone"
	FollowApprovalRequired FollowPolicy = "approvalRequired"
	FollowNobody           FollowPolicy = "nobody"
)

// PrivacySettings is embedded in a Profile and only ever replaced as a whole.
//
// The Show* toggles are data only: the core stores and returns them, the
// presentation layer decides what a viewer sees.
type PrivacySettings struct {
	Visibility          Visibility   `json:"visibility"          firestore:"visibility"`
	WhoCanFollow        FollowPolicy `json:"whoCanFollow"        firestore:"who_can_follow"`
	ShowActivityCount   bool         `json:"showActivityCount"   firestore:"show_activity_count"`
	ShowTotalVolume     bool         `json:"showTotalVolume"     firestore:"show_total_volume"`
	ShowDetailNames     bool         `json:"showDetailNames"     firestore:"show_detail_names"`
	ShowDetailBreakdown bool         `json:"showDetailBreakdown" firestore:"show_detail_breakdown"`
	AutoShareActivities bool         `json:"autoShareActivities" firestore:"auto_share_activities"`
}

// DefaultPrivacySettings returns the settings assigned to a newly registered profile.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		Visibility:          VisibilityPublic,
		WhoCanFollow:        FollowEveryone,
		ShowActivityCount:   true,
		ShowTotalVolume:     true,
		ShowDetailNames:     true,
		ShowDetailBreakdown: false,
		AutoShareActivities: false,
	}
}

// Normalized fills unknown enum values with their defaults. Records written by
// older clients may lack the fields entirely.
func (s PrivacySettings) Normalized() PrivacySettings {
	switch s.Visibility {
	case VisibilityPublic, VisibilityFollowersOnly, VisibilityPrivate:
	default:
		s.Visibility = VisibilityPublic
	}
	switch s.WhoCanFollow {
	case FollowEveryone, FollowApprovalRequired, FollowNobody:
	default:
		s.WhoCanFollow = FollowEveryone
	}
	return s
}

// Valid reports whether both enum fields hold known values.
func (s PrivacySettings) Valid() bool {
	return s.Normalized() == s
}

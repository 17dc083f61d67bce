package follows

import "github.com/janisto/fitsocial/internal/http/v1/profile"

// ListData is the body of a page of profiles.
type ListData struct {
	Items []profile.Profile `json:"items" doc:"Profiles on this page"`
	Total int               `json:"total" doc:"Number of profiles across all pages"`
}

// ListOutput for GET /following and GET /followers
type ListOutput struct {
	Link string `header:"Link" doc:"RFC 8288 pagination links"`
	Body ListData
}

// FollowOutput for PUT /following/{id}; 200 when following, 202 when the
// request waits for approval.
type FollowOutput struct {
	Status int
	Body   FollowResult
}

// StateOutput for GET /following/{id}
type StateOutput struct {
	Body FollowingState
}

package profiles

import "github.com/janisto/fitsocial/internal/http/v1/profile"

// ListData is the body of the profile list endpoints.
type ListData struct {
	Items []profile.Profile `json:"items" doc:"Matching profiles"`
	Total int               `json:"total" doc:"Number of items"`
}

// ListOutput for the profile list endpoints.
type ListOutput struct {
	Body ListData
}

package follows

import "github.com/janisto/fitsocial/internal/platform/pagination"

// ListInput for GET /following and GET /followers
type ListInput struct {
	pagination.Params
}

// TargetInput addresses the other side of a follow edge.
type TargetInput struct {
	ID string `path:"id" minLength:"1" maxLength:"128" doc:"Identity of the followed user" example:"user-456"`
}

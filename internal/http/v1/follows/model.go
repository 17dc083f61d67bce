package follows

// FollowResult is the state of the caller's edge towards a user.
type FollowResult struct {
	UserID string `json:"userId" doc:"Followed user"                 example:"user-456"`
	Status string `json:"status" doc:"Edge state after the request" enum:"following,pending" example:"following"`
}

// FollowingState answers whether the caller follows a user.
type FollowingState struct {
	UserID      string `json:"userId"      doc:"Queried user"                   example:"user-456"`
	IsFollowing bool   `json:"isFollowing" doc:"An accepted edge exists locally" example:"true"`
}

package profile

type CreateOutput struct {
	Location string `header:"Location" doc:"URL of the created profile"`
	Body     Profile
}

// Output carries the signed-in account's profile.
type Output struct {
	Body Profile
}

type StatsOutput struct {
	Body Stats
}

package profiles

// SearchInput for GET /profiles/search
type SearchInput struct {
	Query string `query:"q" maxLength:"100" doc:"Username or display name prefix" example:"ali"`
}

// SuggestionsInput for GET /profiles/suggestions
type SuggestionsInput struct {
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Maximum number of suggestions"`
}

package feed

// PublishOutput for POST /activities; 201 when a new activity was stored.
type PublishOutput struct {
	Status int
	Body   PublishResult
}

// ListData is one page of the feed.
type ListData struct {
	Items []Activity `json:"items" doc:"Activities, newest first"`
	Total int        `json:"total" doc:"Number of activities in the fetched feed"`
}

// FeedOutput for GET /feed
type FeedOutput struct {
	Link string `header:"Link" doc:"RFC 8288 pagination links"`
	Body ListData
}

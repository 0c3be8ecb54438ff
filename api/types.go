package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogPostHandler blogPostHandler
	accountHandler  accountHandler
	healthHandler   healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// apiPost is a published post as served by the public API
type apiPost struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Slug     string `json:"slug"`
	Status   string `json:"status"`
	PubDate  string `json:"pub_date"`
	AuthorID *uint  `json:"author_id"`
}

type apiPostList struct {
	Posts []apiPost `json:"posts"`
}

type healthResponse struct {
	Status    string `json:"status"`
	StartedAt string `json:"startedAt"`
	Uptime    string `json:"uptime"`
}

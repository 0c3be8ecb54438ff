package api

import (
	"time"

	"github.com/rpupo63/mycms/auth"
	"github.com/rpupo63/mycms/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, sessions *auth.SessionManager, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		blogPostHandler: newBlogPostHandler(database.BlogPostRepo()),
		accountHandler:  newAccountHandler(database.UserRepo(), sessions),
		healthHandler:   newHealthHandler(database, startupTime),
	}
}

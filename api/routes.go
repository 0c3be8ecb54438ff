package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mycms/errs"
)

// setupRoutes registers the public API, the account pages and the
// login-only blog pages
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, acceptedOrigins []string) {
	r.Get("/healthz", handlers.healthHandler.healthz())

	// Public read-only API, callable from other sites
	r.Route("/api", func(r chi.Router) {
		r.Use(CORSCheckMiddleware(acceptedOrigins))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: acceptedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/{username}/", handlers.blogPostHandler.publishedPosts())
	})

	// Account pages
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.optionalLogin)

		r.Get("/signup/", handlers.accountHandler.signupPage())
		r.Post("/signup/", handlers.accountHandler.signup())
		r.Get("/accounts/login/", handlers.accountHandler.loginPage())
		r.Post("/accounts/login/", handlers.accountHandler.login())
		r.Post("/accounts/logout/", handlers.accountHandler.logout())
	})

	// Blog pages, login required
	posts := handlers.blogPostHandler
	r.Get("/", authMiddleware.requireLogin(posts.listBlogPosts()))
	r.Get("/posts/{blogPostID}/", authMiddleware.requireLogin(posts.getBlogPost()))
	r.Get("/create/", authMiddleware.requireLogin(posts.createBlogPostPage()))
	r.Post("/create/", authMiddleware.requireLogin(posts.createBlogPost()))
	r.Get("/update/{blogPostID}/", authMiddleware.requireLogin(posts.updateBlogPostPage()))
	r.Post("/update/{blogPostID}/", authMiddleware.requireLogin(posts.updateBlogPost()))
	r.Get("/delete/{blogPostID}/", authMiddleware.requireLogin(posts.deleteBlogPostPage()))
	r.Post("/delete/{blogPostID}/", authMiddleware.requireLogin(posts.deleteBlogPost()))
}

// appendSlash redirects GET requests for "/x" to "/x/" when only the latter
// is routed. Everything else gets the 404 page.
func appendSlash(mux *chi.Mux) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "notFound").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) &&
			!strings.HasSuffix(path, "/") &&
			mux.Match(chi.NewRouteContext(), r.Method, path+"/") {
			target := path + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		responder.WriteErrorPage(w, r, errs.NewNotFound("page"))
	}
}

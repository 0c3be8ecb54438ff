package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rpupo63/mycms/auth"
)

const loginPath = "/accounts/login/"

// identityHandler serves a route that needs a logged in user. The identity is
// passed in explicitly; requireLogin guarantees it is valid.
type identityHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

// loginURL is the login page that sends the user back to next afterwards.
// Slashes stay readable in the query value.
func loginURL(next string) string {
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// safeNext returns next when it is a path on this site, otherwise "/"
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

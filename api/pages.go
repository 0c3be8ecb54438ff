package api

import (
	"embed"
	"html/template"

	"github.com/rpupo63/mycms/auth"
	"github.com/rpupo63/mycms/models"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

var pageNames = []string{"index", "detail", "create", "update", "delete", "signup", "login", "error"}

// pages holds one template set per page, each combining the base layout,
// the shared partials and the page's own content block.
var pages = parsePages()

func parsePages() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		parsed[name] = template.Must(template.ParseFS(templateFS,
			"templates/base.html",
			"templates/partials/*.html",
			"templates/"+name+".html",
		))
	}
	return parsed
}

// layout is embedded in every page's data
type layout struct {
	Title    string
	Identity *auth.Identity
}

type indexPage struct {
	layout
	Posts []*models.BlogPost
}

type detailPage struct {
	layout
	Post *models.BlogPost
	Body template.HTML
}

type statusOption struct {
	Value    string
	Label    string
	Selected bool
}

type postFormPage struct {
	layout
	Action  string
	Form    postForm
	Options []statusOption
}

type deletePage struct {
	layout
	Post *models.BlogPost
}

type signupPage struct {
	layout
	Form signupForm
}

type loginPage struct {
	layout
	Username string
	Next     string
	Error    string
}

type errorPage struct {
	layout
	Status  int
	Message string
}

func statusOptions(selected string) []statusOption {
	options := make([]statusOption, 0, len(models.PostStatuses))
	for _, s := range models.PostStatuses {
		options = append(options, statusOption{
			Value:    string(s),
			Label:    s.Label(),
			Selected: string(s) == selected,
		})
	}
	return options
}

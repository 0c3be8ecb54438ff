package api

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/rpupo63/mycms/auth"
	"github.com/rpupo63/mycms/database"
	"github.com/rpupo63/mycms/errs"
	"github.com/rpupo63/mycms/models"
)

// apiTimeFormat is UTC with millisecond precision
const apiTimeFormat = "2006-01-02T15:04:05.000Z"

const maxFormBytes = 1 << 20

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	blogPostRepo *database.BlogPostRepo
	markdown     goldmark.Markdown
}

func newBlogPostHandler(blogPostRepo *database.BlogPostRepo) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		blogPostRepo: blogPostRepo,
		// raw HTML in bodies is dropped, not rendered
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// listBlogPosts shows the requester's own posts, newest first
func (h blogPostHandler) listBlogPosts() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, id auth.Identity) {
		blogPosts, err := h.blogPostRepo.FindByAuthor(r.Context(), id.UserID)
		if err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewDatabaseError("list", "blog posts", err))
			return
		}

		h.responder.WritePage(w, http.StatusOK, "index", indexPage{
			layout: newLayout(r, "Your Blog"),
			Posts:  blogPosts,
		})
	}
}

func (h blogPostHandler) getBlogPost() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
		blogPost, ok := h.findBlogPost(w, r)
		if !ok {
			return
		}

		var body bytes.Buffer
		if err := h.markdown.Convert([]byte(blogPost.Body), &body); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewInternalErrorWithCause("rendering post body", err))
			return
		}

		h.responder.WritePage(w, http.StatusOK, "detail", detailPage{
			layout: newLayout(r, blogPost.Title),
			Post:   blogPost,
			Body:   template.HTML(body.String()),
		})
	}
}

func (h blogPostHandler) createBlogPostPage() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
		h.writeForm(w, r, "create", postForm{})
	}
}

// createBlogPost stores a new post written by the requester
func (h blogPostHandler) createBlogPost() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, id auth.Identity) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewBadRequestError("invalid form data"))
			return
		}

		form := parsePostForm(r.PostForm)
		if !form.Valid() {
			h.writeForm(w, r, "create", form)
			return
		}

		blogPost := form.post
		authorID := id.UserID
		blogPost.AuthorID = &authorID
		if err := h.blogPostRepo.Add(r.Context(), &blogPost); err != nil {
			if errs.IsConflict(err) {
				h.logger.Warn().Err(err).Str("title", blogPost.Title).Msg("no free slug for new blog post")
			}
			h.responder.WriteErrorPage(w, r, errs.NewDatabaseError("create", "blog post", err))
			return
		}

		h.logger.Info().
			Uint("blogPostID", blogPost.ID).
			Str("slug", blogPost.Slug).
			Uint("authorID", authorID).
			Msg("blog post created")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (h blogPostHandler) updateBlogPostPage() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
		blogPost, ok := h.findBlogPost(w, r)
		if !ok {
			return
		}
		h.writeForm(w, r, "update", formFromPost(blogPost))
	}
}

// updateBlogPost changes title, body and status. Any logged in user may
// edit any post.
func (h blogPostHandler) updateBlogPost() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, id auth.Identity) {
		blogPost, ok := h.findBlogPost(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewBadRequestError("invalid form data"))
			return
		}

		form := parsePostForm(r.PostForm)
		if !form.Valid() {
			h.writeForm(w, r, "update", form)
			return
		}

		blogPost.Title = form.post.Title
		blogPost.Body = form.post.Body
		blogPost.Status = form.post.Status
		if err := h.blogPostRepo.Update(r.Context(), blogPost); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewDatabaseError("update", "blog post", err))
			return
		}

		if !blogPost.AuthoredBy(id.UserID) {
			h.logger.Info().
				Uint("blogPostID", blogPost.ID).
				Uint("editorID", id.UserID).
				Msg("blog post edited by a user other than its author")
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (h blogPostHandler) deleteBlogPostPage() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
		blogPost, ok := h.findBlogPost(w, r)
		if !ok {
			return
		}
		h.responder.WritePage(w, http.StatusOK, "delete", deletePage{
			layout: newLayout(r, "Delete "+blogPost.Title),
			Post:   blogPost,
		})
	}
}

// deleteBlogPost removes the post for good. The confirm_delete flag sent by
// the confirmation form is not required.
func (h blogPostHandler) deleteBlogPost() identityHandler {
	return func(w http.ResponseWriter, r *http.Request, id auth.Identity) {
		blogPostID, err := blogPostIDFromPath(r)
		if err != nil {
			h.responder.WriteErrorPage(w, r, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewBadRequestError("invalid form data"))
			return
		}
		if r.PostForm.Get("confirm_delete") == "" {
			h.logger.Warn().Uint("blogPostID", blogPostID).Msg("delete submitted without confirm_delete")
		}

		if err := h.blogPostRepo.Delete(r.Context(), blogPostID); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewDatabaseError("delete", "blog post", err))
			return
		}

		h.logger.Info().
			Uint("blogPostID", blogPostID).
			Uint("userID", id.UserID).
			Msg("blog post deleted")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// publishedPosts is the public JSON feed of a user's published posts. Unknown
// users get an empty list.
func (h blogPostHandler) publishedPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		blogPosts, err := h.blogPostRepo.FindPublishedByUsername(r.Context(), username)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("list", "blog posts", err))
			return
		}

		response := apiPostList{Posts: make([]apiPost, 0, len(blogPosts))}
		for _, p := range blogPosts {
			response.Posts = append(response.Posts, toAPIPost(p))
		}
		h.responder.WriteJSON(w, response)
	}
}

// findBlogPost loads the post named in the path, writing the error page
// itself when there is none
func (h blogPostHandler) findBlogPost(w http.ResponseWriter, r *http.Request) (*models.BlogPost, bool) {
	blogPostID, err := blogPostIDFromPath(r)
	if err != nil {
		h.responder.WriteErrorPage(w, r, err)
		return nil, false
	}

	blogPost, err := h.blogPostRepo.FindByID(r.Context(), blogPostID)
	if err != nil {
		h.responder.WriteErrorPage(w, r, errs.NewDatabaseError("load", "blog post", err))
		return nil, false
	}
	return blogPost, true
}

func (h blogPostHandler) writeForm(w http.ResponseWriter, r *http.Request, page string, form postForm) {
	title := "New post"
	if page == "update" {
		title = "Edit post"
	}
	h.responder.WritePage(w, http.StatusOK, page, postFormPage{
		layout:  newLayout(r, title),
		Action:  r.URL.Path,
		Form:    form,
		Options: statusOptions(form.Status),
	})
}

// blogPostIDFromPath parses the {blogPostID} segment. Anything that is not a
// positive integer cannot name a post.
func blogPostIDFromPath(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "blogPostID"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewNotFound("blog post")
	}
	return uint(id), nil
}

func toAPIPost(p *models.BlogPost) apiPost {
	return apiPost{
		ID:       p.ID,
		Title:    p.Title,
		Body:     p.Body,
		Slug:     p.Slug,
		Status:   string(p.Status),
		PubDate:  p.PubDate.UTC().Format(apiTimeFormat),
		AuthorID: p.AuthorID,
	}
}


package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/mycms/auth"
	"github.com/rpupo63/mycms/database"
	"github.com/rpupo63/mycms/errs"
	"github.com/rpupo63/mycms/models"
)

// dummyPasswordHash is compared against when the username is unknown so a
// failed login takes as long either way
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const msgInvalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type accountHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	sessions  *auth.SessionManager
}

func newAccountHandler(userRepo *database.UserRepo, sessions *auth.SessionManager) accountHandler {
	logger := log.With().Str("handlerName", "accountHandler").Logger()

	return accountHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		sessions:  sessions,
	}
}

func (h accountHandler) signupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeSignup(w, r, signupForm{})
	}
}

// signup creates an account and sends the new user on to log in
func (h accountHandler) signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewBadRequestError("invalid form data"))
			return
		}

		form := parseSignupForm(r.PostForm)
		if !form.Valid() {
			h.writeSignup(w, r, form)
			return
		}

		user := models.User{Username: form.Username}
		if err := user.SetPassword(form.password); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewInternalErrorWithCause("hashing password", err))
			return
		}

		err := h.userRepo.Add(r.Context(), &user)
		if errors.Is(err, errs.ErrAlreadyExists) {
			form.Errors["username"] = "A user with that username already exists."
			h.writeSignup(w, r, form)
			return
		}
		if err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewDatabaseError("create", "user", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Str("username", user.Username).Msg("user signed up")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (h accountHandler) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get("next")
		if _, ok := auth.FromContext(r.Context()); ok {
			http.Redirect(w, r, safeNext(next), http.StatusFound)
			return
		}
		h.writeLogin(w, r, loginPage{Next: next})
	}
}

// login checks the password and starts a session
func (h accountHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewBadRequestError("invalid form data"))
			return
		}

		username := r.PostForm.Get("username")
		password := r.PostForm.Get("password")
		page := loginPage{Username: username, Next: r.PostForm.Get("next")}

		if username == "" || password == "" {
			page.Error = msgInvalidLogin
			h.writeLogin(w, r, page)
			return
		}

		user, err := h.userRepo.FindByUsername(r.Context(), username)
		if errs.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
			page.Error = msgInvalidLogin
			h.writeLogin(w, r, page)
			return
		}
		if err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewDatabaseError("load", "user", err))
			return
		}

		if !user.CheckPassword(password) {
			h.logger.Info().Str("username", username).Msg("failed login")
			page.Error = msgInvalidLogin
			h.writeLogin(w, r, page)
			return
		}

		if err := h.sessions.SetCookie(w, auth.Identity{UserID: user.ID, Username: user.Username}); err != nil {
			h.responder.WriteErrorPage(w, r, errs.NewInternalErrorWithCause("starting session", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Msg("login successful")
		http.Redirect(w, r, safeNext(page.Next), http.StatusFound)
	}
}

func (h accountHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.ClearCookie(w)
		http.Redirect(w, r, loginPath, http.StatusFound)
	}
}

func (h accountHandler) writeSignup(w http.ResponseWriter, r *http.Request, form signupForm) {
	h.responder.WritePage(w, http.StatusOK, "signup", signupPage{
		layout: newLayout(r, "Sign Up"),
		Form:   form,
	})
}

func (h accountHandler) writeLogin(w http.ResponseWriter, r *http.Request, page loginPage) {
	page.layout = newLayout(r, "Log in")
	h.responder.WritePage(w, http.StatusOK, "login", page)
}

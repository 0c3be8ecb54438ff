package api

import (
	"net/url"
	"strings"

	"github.com/rpupo63/mycms/models"
)

// FieldErrors maps a form field name to the message shown next to it
type FieldErrors map[string]string

// postForm is the result of validating a submitted post. When Errors is empty
// the form is valid and post holds the accepted values; otherwise the raw
// inputs are kept so the form can be shown again.
type postForm struct {
	Title  string      `form:"title" validate:"required,max=30"`
	Body   string      `form:"body" validate:"required"`
	Status string      `form:"status" validate:"required,oneof=draft published archived"`
	Errors FieldErrors `form:"-" validate:"-"`

	post models.BlogPost
}

func (f postForm) Valid() bool {
	return len(f.Errors) == 0
}

// formFromPost prefills a form with a stored post's values
func formFromPost(p *models.BlogPost) postForm {
	return postForm{
		Title:  p.Title,
		Body:   p.Body,
		Status: string(p.Status),
	}
}

// parsePostForm validates the title, body and status fields shared by the
// create and update forms
func parsePostForm(values url.Values) postForm {
	f := postForm{
		Title:  strings.TrimSpace(values.Get("title")),
		Body:   strings.TrimSpace(values.Get("body")),
		Status: values.Get("status"),
	}
	f.Errors = models.ValidateForm(f)

	if f.Valid() {
		f.post = models.BlogPost{
			Title:  f.Title,
			Body:   f.Body,
			Status: models.PostStatus(f.Status),
		}
	}
	return f
}

type signupForm struct {
	Username string
	Errors   FieldErrors

	password string
}

func (f signupForm) Valid() bool {
	return len(f.Errors) == 0
}

// signupInput carries the rules for the sign-up fields. The password rules
// run on the confirmation so a mismatch is reported before strength.
type signupInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1,min=8,notnumeric"`
}

// parseSignupForm checks the username format and the password rules. Whether
// the username is free is decided when the user is stored.
func parseSignupForm(values url.Values) signupForm {
	in := signupInput{
		Username:  strings.TrimSpace(values.Get("username")),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
	}
	f := signupForm{
		Username: in.Username,
		Errors:   models.ValidateForm(in),
	}

	if f.Valid() {
		f.password = in.Password1
	}
	return f
}

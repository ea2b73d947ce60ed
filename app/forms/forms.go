// Package forms decodes and validates the HTML forms posted to the site.
package forms

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name rather than the Go name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Errors maps a form field name to the message shown next to it.
type Errors map[string]string

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// RegisterForm is posted to /register.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email,max=230"`
	Password string `form:"password" validate:"required,max=72"`
	Name     string `form:"name" validate:"required,max=200"`
	Errors   Errors `form:"-"`
}

// LoginForm is posted to /login.
type LoginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
	Errors   Errors `form:"-"`
}

// PostForm is posted to /new-post and /edit-post/{id}.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,url,max=250"`
	Body     string `form:"body" validate:"required"`
	Errors   Errors `form:"-"`
}

// CommentForm is posted to /post/{id}.
type CommentForm struct {
	Text   string `form:"comment_text" validate:"required"`
	Errors Errors `form:"-"`
}

// ParseRegister reads a RegisterForm from the request body.
func ParseRegister(r *http.Request) (*RegisterForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &RegisterForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
	}, nil
}

// ParseLogin reads a LoginForm from the request body.
func ParseLogin(r *http.Request) (*LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}, nil
}

// ParsePost reads a PostForm from the request body.
func ParsePost(r *http.Request) (*PostForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &PostForm{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Subtitle: strings.TrimSpace(r.PostFormValue("subtitle")),
		ImgURL:   strings.TrimSpace(r.PostFormValue("img_url")),
		Body:     r.PostFormValue("body"),
	}, nil
}

// ParseComment reads a CommentForm from the request body.
func ParseComment(r *http.Request) (*CommentForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &CommentForm{Text: strings.TrimSpace(r.PostFormValue("comment_text"))}, nil
}

// Valid validates the form and stores the field messages in its Errors.
func (f *RegisterForm) Valid() bool {
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func (f *LoginForm) Valid() bool {
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func (f *PostForm) Valid() bool {
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func (f *CommentForm) Valid() bool {
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func check(form interface{}) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return "This value is too long."
	default:
		return "This value is invalid."
	}
}

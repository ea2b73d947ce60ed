// Package views renders the site's HTML pages from templates embedded in
// the binary.
package views

import (
	"bytes"
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkpost/app/forms"
	"inkpost/app/models"
)

//go:embed templates/*.html
var files embed.FS

// Page names accepted by Render.
const (
	PageIndex    = "index.html"
	PagePost     = "post.html"
	PageMakePost = "make-post.html"
	PageRegister = "register.html"
	PageLogin    = "login.html"
	PageAbout    = "about.html"
	PageContact  = "contact.html"
	PageError    = "error.html"
)

var pages = []string{
	PageIndex,
	PagePost,
	PageMakePost,
	PageRegister,
	PageLogin,
	PageAbout,
	PageContact,
	PageError,
}

// PostView is a post joined with its author and, on the detail page, its
// comments.
type PostView struct {
	*models.Post
	Author   *models.User
	Comments []CommentView
}

// CommentView is a comment joined with its author.
type CommentView struct {
	*models.Comment
	Author *models.User
}

// PageData is passed to every template.
type PageData struct {
	Title       string
	CurrentUser *models.User
	LoggedIn    bool
	IsAdmin     bool
	Flash       string
	Message     string
	Status      int
	Posts       []PostView
	Post        *PostView
	IsEdit      bool

	RegisterForm *forms.RegisterForm
	LoginForm    *forms.LoginForm
	PostForm     *forms.PostForm
	CommentForm  *forms.CommentForm
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"gravatar": func(email string) string { return Gravatar(email, 100) },
		"safe":     func(s string) template.HTML { return template.HTML(s) },
		"year":     func() int { return time.Now().Year() },
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		ts, err := template.New(page).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = ts
	}
	return r, nil
}

// Render executes page into a buffer and writes it with status. Nothing is
// written to w when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *PageData) error {
	ts, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data == nil {
		data = &PageData{}
	}
	data.Status = status

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Gravatar returns the avatar URL of email (rating g, retro fallback).
func Gravatar(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", fmt.Sprint(size))
	q.Set("d", "retro")
	q.Set("r", "g")
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}

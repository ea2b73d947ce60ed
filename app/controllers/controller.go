package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"inkpost/app/middleware"
	"inkpost/app/repositories"
	"inkpost/app/services"
	"inkpost/app/views"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

// Controller carries what every controller needs to answer a request.
type Controller struct {
	views        *views.Renderer
	logger       *slog.Logger
	cookieSecure bool
}

// NewController creates the shared controller base.
func NewController(renderer *views.Renderer, logger *slog.Logger, cookieSecure bool) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{views: renderer, logger: logger, cookieSecure: cookieSecure}
}

// pageData prepares the template data common to every page and consumes
// the pending flash message.
func (c *Controller) pageData(w http.ResponseWriter, r *http.Request, title string) *views.PageData {
	actor := middleware.ActorFrom(r.Context())
	return &views.PageData{
		Title:       title,
		CurrentUser: actor.User,
		LoggedIn:    actor.IsAuthenticated(),
		IsAdmin:     services.IsAdmin(actor),
		Flash:       popFlash(w, r, c.cookieSecure),
	}
}

func (c *Controller) render(w http.ResponseWriter, r *http.Request, status int, page string, data *views.PageData) {
	if err := c.views.Render(w, status, page, data); err != nil {
		c.serverError(w, r, err)
	}
}

// redirectWithFlash stores msg for the next page and redirects to target.
func (c *Controller) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, msg string) {
	setFlash(w, msg, c.cookieSecure)
	http.Redirect(w, r, target, http.StatusFound)
}

func (c *Controller) serverError(w http.ResponseWriter, r *http.Request, err error) {
	c.logger.Error("request failed",
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (c *Controller) clientError(w http.ResponseWriter, r *http.Request, status int) {
	data := c.pageData(w, r, http.StatusText(status))
	c.render(w, r, status, views.PageError, data)
}

// NotFound renders the 404 page.
func (c *Controller) NotFound(w http.ResponseWriter, r *http.Request) {
	c.clientError(w, r, http.StatusNotFound)
}

// Forbidden renders the 403 page.
func (c *Controller) Forbidden(w http.ResponseWriter, r *http.Request) {
	c.clientError(w, r, http.StatusForbidden)
}

// HandleError maps service and repository errors to a response.
func (c *Controller) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		c.NotFound(w, r)
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden(w, r)
	default:
		c.serverError(w, r, err)
	}
}

// postID reads the {id} route variable. Route patterns only admit digits,
// so a parse failure means the id overflowed.
func postID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

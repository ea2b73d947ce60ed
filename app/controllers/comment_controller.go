package controllers

import (
	"errors"
	"net/http"

	"inkpost/app/forms"
	"inkpost/app/metrics"
	"inkpost/app/middleware"
	"inkpost/app/services"
)

// MsgLoginToComment is shown when an anonymous visitor tries to comment.
const MsgLoginToComment = "You need to login or register to comment."

// CommentController handles comment submission on the post detail page.
type CommentController struct {
	*PostController
}

// NewCommentController creates a new CommentController
func NewCommentController(posts *PostController) *CommentController {
	return &CommentController{PostController: posts}
}

// Create adds a comment by the current actor and re-renders the post.
// Anonymous visitors are sent to the login page and nothing is stored.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		cc.NotFound(w, r)
		return
	}
	if _, err := cc.posts.GetPost(r.Context(), id); err != nil {
		cc.HandleError(w, r, err)
		return
	}

	actor := middleware.ActorFrom(r.Context())
	if !actor.IsAuthenticated() {
		metrics.RecordPostOperation(metrics.OpAddComment, services.ErrAnonymousComment)
		cc.redirectWithFlash(w, r, "/login", MsgLoginToComment)
		return
	}

	form, err := forms.ParseComment(r)
	if err != nil {
		cc.clientError(w, r, http.StatusBadRequest)
		return
	}
	if !form.Valid() {
		cc.renderDetail(w, r, id, http.StatusBadRequest, form)
		return
	}

	_, err = cc.comments.AddComment(r.Context(), id, actor.User, form.Text)
	metrics.RecordPostOperation(metrics.OpAddComment, err)
	switch {
	case errors.Is(err, services.ErrAnonymousComment):
		cc.redirectWithFlash(w, r, "/login", MsgLoginToComment)
		return
	case errors.Is(err, services.ErrValidation):
		cc.renderDetail(w, r, id, http.StatusBadRequest, form)
		return
	case err != nil:
		cc.HandleError(w, r, err)
		return
	}

	cc.renderDetail(w, r, id, http.StatusOK, &forms.CommentForm{})
}

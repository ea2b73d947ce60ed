package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"inkpost/app/forms"
	"inkpost/app/metrics"
	"inkpost/app/middleware"
	"inkpost/app/models"
	"inkpost/app/repositories"
	"inkpost/app/services"
	"inkpost/app/views"
)

// MsgTitleTaken is shown when a post title is already in use.
const MsgTitleTaken = "A post with that title already exists."

// PostController handles HTTP requests for blog posts
type PostController struct {
	*Controller
	posts    *services.PostService
	comments *services.CommentService
	users    *services.UserService
}

// NewPostController creates a new PostController
func NewPostController(base *Controller, posts *services.PostService, comments *services.CommentService, users *services.UserService) *PostController {
	return &PostController{Controller: base, posts: posts, comments: comments, users: users}
}

// Index lists every post.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.posts.ListPosts(r.Context())
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	authors := newAuthorCache(pc.users)
	list := make([]views.PostView, 0, len(posts))
	for _, post := range posts {
		author, err := authors.get(r.Context(), post.AuthorID)
		if err != nil {
			pc.serverError(w, r, err)
			return
		}
		list = append(list, views.PostView{Post: post, Author: author})
	}

	data := pc.pageData(w, r, "")
	data.Posts = list
	pc.render(w, r, http.StatusOK, views.PageIndex, data)
}

// Show displays a single post with its comments.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		pc.NotFound(w, r)
		return
	}
	pc.renderDetail(w, r, id, http.StatusOK, &forms.CommentForm{})
}

// renderDetail loads post id and renders its detail page with form.
func (pc *PostController) renderDetail(w http.ResponseWriter, r *http.Request, id, status int, form *forms.CommentForm) {
	view, err := loadPostView(r.Context(), pc.posts, pc.comments, pc.users, id)
	if err != nil {
		pc.HandleError(w, r, err)
		return
	}
	data := pc.pageData(w, r, view.Title)
	data.Post = view
	data.CommentForm = form
	pc.render(w, r, status, views.PagePost, data)
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	data := pc.pageData(w, r, "New Post")
	data.PostForm = &forms.PostForm{}
	pc.render(w, r, http.StatusOK, views.PageMakePost, data)
}

// Create stores a new post authored by the current actor.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	form, err := forms.ParsePost(r)
	if err != nil {
		pc.clientError(w, r, http.StatusBadRequest)
		return
	}
	if !form.Valid() {
		pc.renderPostForm(w, r, http.StatusBadRequest, form, false, "")
		return
	}

	actor := middleware.ActorFrom(r.Context())
	_, err = pc.posts.CreatePost(r.Context(), postFields(form), actor.User)
	metrics.RecordPostOperation(metrics.OpCreatePost, err)
	switch {
	case errors.Is(err, services.ErrTitleAlreadyExists):
		pc.renderPostForm(w, r, http.StatusConflict, form, false, MsgTitleTaken)
		return
	case errors.Is(err, services.ErrValidation):
		pc.renderPostForm(w, r, http.StatusBadRequest, form, false, "")
		return
	case err != nil:
		pc.HandleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Edit displays the edit form pre-filled with the post.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		pc.NotFound(w, r)
		return
	}
	post, err := pc.posts.GetPost(r.Context(), id)
	if err != nil {
		pc.HandleError(w, r, err)
		return
	}

	form := &forms.PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
	pc.renderPostForm(w, r, http.StatusOK, form, true, "")
}

// Update saves the edited post and shows it.
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		pc.NotFound(w, r)
		return
	}
	if _, err := pc.posts.GetPost(r.Context(), id); err != nil {
		pc.HandleError(w, r, err)
		return
	}

	form, err := forms.ParsePost(r)
	if err != nil {
		pc.clientError(w, r, http.StatusBadRequest)
		return
	}
	if !form.Valid() {
		pc.renderPostForm(w, r, http.StatusBadRequest, form, true, "")
		return
	}

	actor := middleware.ActorFrom(r.Context())
	_, err = pc.posts.UpdatePost(r.Context(), id, postFields(form), actor.User)
	metrics.RecordPostOperation(metrics.OpUpdatePost, err)
	switch {
	case errors.Is(err, services.ErrTitleAlreadyExists):
		pc.renderPostForm(w, r, http.StatusConflict, form, true, MsgTitleTaken)
		return
	case errors.Is(err, services.ErrValidation):
		pc.renderPostForm(w, r, http.StatusBadRequest, form, true, "")
		return
	case err != nil:
		pc.HandleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/post/"+strconv.Itoa(id), http.StatusFound)
}

// Delete removes the post together with its comments.
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		pc.NotFound(w, r)
		return
	}

	err = pc.posts.DeletePost(r.Context(), id)
	metrics.RecordPostOperation(metrics.OpDeletePost, err)
	if err != nil {
		pc.HandleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (pc *PostController) renderPostForm(w http.ResponseWriter, r *http.Request, status int, form *forms.PostForm, isEdit bool, msg string) {
	title := "New Post"
	if isEdit {
		title = "Edit Post"
	}
	data := pc.pageData(w, r, title)
	data.PostForm = form
	data.IsEdit = isEdit
	data.Message = msg
	pc.render(w, r, status, views.PageMakePost, data)
}

func postFields(form *forms.PostForm) services.PostFields {
	return services.PostFields{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	}
}

// loadPostView joins post id with its author and its comments' authors.
func loadPostView(ctx context.Context, posts *services.PostService, comments *services.CommentService, users *services.UserService, id int) (*views.PostView, error) {
	post, err := posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	authors := newAuthorCache(users)
	author, err := authors.get(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	list, err := comments.GetCommentsByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	commentViews := make([]views.CommentView, 0, len(list))
	for _, c := range list {
		commentAuthor, err := authors.get(ctx, c.AuthorID)
		if err != nil {
			return nil, err
		}
		commentViews = append(commentViews, views.CommentView{Comment: c, Author: commentAuthor})
	}

	return &views.PostView{Post: post, Author: author, Comments: commentViews}, nil
}

// authorCache resolves author ids once per request. Unknown ids resolve to
// nil so that a missing author never hides content.
type authorCache struct {
	users *services.UserService
	seen  map[int]*models.User
}

func newAuthorCache(users *services.UserService) *authorCache {
	return &authorCache{users: users, seen: make(map[int]*models.User)}
}

func (c *authorCache) get(ctx context.Context, id int) (*models.User, error) {
	if user, ok := c.seen[id]; ok {
		return user, nil
	}
	user, err := c.users.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	c.seen[id] = user
	return user, nil
}

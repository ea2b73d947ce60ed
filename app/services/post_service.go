package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// PostFields are the editable parts of a post.
type PostFields struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

// PostService handles business logic for blog posts
type PostService struct {
	posts  repositories.PostRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{posts: posts, now: time.Now, logger: logger}
}

// ListPosts returns every post in insertion order.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.posts.List(ctx)
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// GetPostsByAuthor lists the posts written by authorID.
func (s *PostService) GetPostsByAuthor(ctx context.Context, authorID int) ([]*models.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

// CreatePost stores a new post by author, stamped with today's date.
func (s *PostService) CreatePost(ctx context.Context, fields PostFields, author *models.User) (*models.Post, error) {
	post := &models.Post{
		Title:    fields.Title,
		Subtitle: fields.Subtitle,
		Body:     fields.Body,
		ImgURL:   fields.ImgURL,
	}
	if err := post.SetAuthor(author); err != nil {
		return nil, validationError(err)
	}
	post.BeforeCreate(s.now())
	if err := post.Validate(); err != nil {
		return nil, validationError(err)
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrTitleAlreadyExists
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post created", slog.Int("post_id", post.ID), slog.Int("author_id", post.AuthorID))
	return post, nil
}

// UpdatePost overwrites the editable fields and the author of post id. The
// original date is kept.
func (s *PostService) UpdatePost(ctx context.Context, id int, fields PostFields, author *models.User) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Title = fields.Title
	post.Subtitle = fields.Subtitle
	post.Body = fields.Body
	post.ImgURL = fields.ImgURL
	if err := post.SetAuthor(author); err != nil {
		return nil, validationError(err)
	}
	if err := post.Validate(); err != nil {
		return nil, validationError(err)
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrTitleAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("post updated", slog.Int("post_id", post.ID))
	return post, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", slog.Int("post_id", id))
	return nil
}

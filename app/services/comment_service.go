package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	comments repositories.CommentRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{comments: comments, now: time.Now, logger: logger}
}

// AddComment appends a comment by author to post postID. A nil author is
// rejected with ErrAnonymousComment; an unknown post with
// repositories.ErrNotFound.
func (s *CommentService) AddComment(ctx context.Context, postID int, author *models.User, text string) (*models.Comment, error) {
	if author == nil {
		return nil, ErrAnonymousComment
	}

	comment := &models.Comment{Text: strings.TrimSpace(text), PostID: postID}
	if err := comment.SetAuthor(author); err != nil {
		return nil, validationError(err)
	}
	comment.BeforeCreate(s.now())
	if err := comment.Validate(); err != nil {
		return nil, validationError(err)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Debug("comment added", slog.Int("post_id", postID), slog.Int("author_id", author.ID))
	return comment, nil
}

// GetCommentsByPost lists the comments of a post, oldest first.
func (s *CommentService) GetCommentsByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// GetCommentsByAuthor lists the comments written by authorID.
func (s *CommentService) GetCommentsByAuthor(ctx context.Context, authorID int) ([]*models.Comment, error) {
	return s.comments.ListByAuthor(ctx, authorID)
}

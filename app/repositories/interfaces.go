package repositories

import (
	"context"

	"inkpost/app/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts the user and assigns its ID. It returns ErrDuplicate
	// when the email is already registered.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create inserts the post and assigns its ID. It returns ErrDuplicate
	// when the title is taken.
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	// List returns every post in insertion order.
	List(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post together with its comments.
	Delete(ctx context.Context, id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create inserts the comment. It returns ErrNotFound when the parent
	// post does not exist.
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID int) ([]*models.Comment, error)
	ListByAuthor(ctx context.Context, authorID int) ([]*models.Comment, error)
}

// SessionRepository persists session bindings.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// Get returns ErrNotFound for unknown and expired sessions.
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories of one storage backend.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Sessions() SessionRepository
	Ping(ctx context.Context) error
	Close() error
}

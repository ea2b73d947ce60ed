package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// PostDateLayout is the display format of Post.Date, e.g. "March 04, 2025".
const PostDateLayout = "January 02, 2006"

var validate = validator.New(validator.WithRequiredStructEnabled())

// User is a registered account. The password is only ever stored hashed.
type User struct {
	ID           int       `json:"id" validate:"gte=0"`
	Email        string    `json:"email" validate:"required,email,max=230"`
	PasswordHash string    `json:"password_hash" validate:"required,max=200"`
	Name         string    `json:"name" validate:"required,max=200"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post represents a blog post. Comments are loaded through explicit queries
// keyed by PostID, never through a back-reference on the post.
type Post struct {
	ID        int       `json:"id" validate:"gte=0"`
	Title     string    `json:"title" validate:"required,max=250"`
	Subtitle  string    `json:"subtitle" validate:"required,max=250"`
	Date      string    `json:"date" validate:"required,max=250"`
	Body      string    `json:"body" validate:"required"`
	ImgURL    string    `json:"img_url" validate:"required,max=250"`
	AuthorID  int       `json:"author_id" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id" validate:"gte=0"`
	Text      string    `json:"text" validate:"required"`
	AuthorID  int       `json:"author_id" validate:"required,gt=0"`
	PostID    int       `json:"post_id" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
}

// Session binds an opaque session id to a user id until ExpiresAt.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

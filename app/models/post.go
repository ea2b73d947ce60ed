package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return validate.Struct(p)
}

// BeforeCreate stamps the creation time and the display date.
func (p *Post) BeforeCreate(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Date == "" {
		p.Date = FormatPostDate(p.CreatedAt)
	}
}

// SetAuthor sets the author reference of the post.
func (p *Post) SetAuthor(user *User) error {
	if user == nil {
		return errors.New("author cannot be nil")
	}
	p.AuthorID = user.ID
	return nil
}

// FormatPostDate renders t the way post dates are stored.
func FormatPostDate(t time.Time) string {
	return t.Format(PostDateLayout)
}

package models

import (
	"errors"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

// SetAuthor sets the author reference.
func (c *Comment) SetAuthor(user *User) error {
	if user == nil {
		return errors.New("author cannot be nil")
	}
	c.AuthorID = user.ID
	return nil
}

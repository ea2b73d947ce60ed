package models

import (
	"strings"
	"time"
)

// Validate checks the user record before it is persisted.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// BeforeCreate normalizes the record before insertion.
func (u *User) BeforeCreate(now time.Time) {
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}

// NormalizeEmail trims surrounding whitespace. Matching stays case sensitive.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Actor is the identity attached to a request. The zero value is anonymous.
type Actor struct {
	User *User
}

// Anonymous is the actor of requests without a valid session.
var Anonymous = Actor{}

// IsAuthenticated reports whether the actor carries a user.
func (a Actor) IsAuthenticated() bool {
	return a.User != nil
}

// ID returns the user id, or 0 for anonymous actors.
func (a Actor) ID() int {
	if a.User == nil {
		return 0
	}
	return a.User.ID
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

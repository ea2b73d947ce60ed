package services

import "inkpost/app/models"

// AdminUserID is the one account allowed to manage posts.
const AdminUserID = 1

// IsAdmin reports whether actor is the admin account.
func IsAdmin(actor models.Actor) bool {
	return actor.IsAuthenticated() && actor.User.ID == AdminUserID
}

// RequireAdmin returns ErrForbidden unless actor is the admin account.
func RequireAdmin(actor models.Actor) error {
	if !IsAdmin(actor) {
		return ErrForbidden
	}
	return nil
}

package services

import (
	"errors"
	"fmt"
)

var (
	// ErrEmailAlreadyExists is returned when registering an email that is
	// already in use.
	ErrEmailAlreadyExists = errors.New("email already registered")

	// ErrInvalidCredentials is the parent of both login failures.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownEmail       = fmt.Errorf("%w: unknown email", ErrInvalidCredentials)
	ErrWrongPassword      = fmt.Errorf("%w: wrong password", ErrInvalidCredentials)

	ErrForbidden          = errors.New("forbidden")
	ErrAnonymousComment   = errors.New("comment requires a logged in author")
	ErrTitleAlreadyExists = errors.New("post title already exists")

	// ErrValidation wraps field validation failures of a record.
	ErrValidation = errors.New("validation failed")
)

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

package service

import "errors"

// Sentinel errors the handlers translate to HTTP statuses.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("too many failed login attempts, try again later")
	ErrAccountBanned      = errors.New("account is banned")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrSelfFollow         = errors.New("you cannot follow yourself")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrValidation         = errors.New("validation failed")
	ErrImageRequired      = errors.New("at least one image is required")
)

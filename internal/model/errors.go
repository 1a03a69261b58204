package model

import "errors"

var (
	// User related errors
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrEmailNotConfirmed     = errors.New("email not confirmed")
	ErrEmailAlreadyConfirmed = errors.New("email already confirmed")
	ErrPasswordMismatch      = errors.New("password mismatch")

	// Validation errors
	ErrRoleNotFound        = errors.New("role does not exist")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrWeakPassword        = errors.New("password does not meet policy")
	ErrPasswordsDoNotMatch = errors.New("passwords do not match")

	// Token related errors
	ErrInvalidToken      = errors.New("invalid token")
	ErrResetTokenInvalid = errors.New("invalid or expired token")

	// Collaborator/request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrSyncFailed     = errors.New("profile sync failed")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrPasswordRequired     = errors.New("password is required")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrPasswordForbidden    = errors.New("password must not contain the word password")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrNameRequired         = errors.New("name is required")
	ErrNegativeAge          = errors.New("age must not be negative")
)

// ===== Token Errors =====
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token revoked")
)

// ===== Task Errors =====
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidSortField    = errors.New("unknown sort field")
)

// ===== Update Errors =====
var (
	ErrInvalidUpdateField = errors.New("update contains a field that cannot be modified")
	ErrInvalidFieldValue  = errors.New("update contains a field value of the wrong type")
)

// ===== Avatar Errors =====
var (
	ErrAvatarTooLarge      = errors.New("avatar exceeds maximum size")
	ErrAvatarInvalidFormat = errors.New("avatar must be a jpg, jpeg or png image")
	ErrAvatarNotFound      = errors.New("avatar not found")
)

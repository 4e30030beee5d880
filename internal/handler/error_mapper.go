package handler

import (
	"errors"

	"github.com/allmight/taskapp/internal/model"
	"github.com/allmight/taskapp/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenRevoked):
		return model.NewUnauthorizedError("please authenticate")

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrTaskNotFound):
		return model.NewNotFoundError("task")
	case errors.Is(err, service.ErrAvatarNotFound):
		return model.NewNotFoundError("avatar")

	// ===== Credential and Validation Errors → 400 =====
	// Failed logins and duplicate registrations deliberately share the
	// generic 400 class so the response does not reveal which field was
	// at fault.
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewBadRequestError("unable to login")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return model.NewConflictError(err.Error())

	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})
	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordForbidden):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})
	case errors.Is(err, service.ErrNameRequired):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrNegativeAge):
		return model.NewValidationError([]model.FieldError{{Field: "age", Message: err.Error()}})
	case errors.Is(err, service.ErrDescriptionRequired):
		return model.NewValidationError([]model.FieldError{{Field: "description", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidSortField):
		return model.NewBadRequestError(err.Error())
	case errors.Is(err, service.ErrInvalidUpdateField),
		errors.Is(err, service.ErrInvalidFieldValue):
		return model.NewBadRequestError(err.Error())
	case errors.Is(err, service.ErrAvatarTooLarge),
		errors.Is(err, service.ErrAvatarInvalidFormat):
		return model.NewBadRequestError(err.Error())

	// ===== Everything Else → 500 =====
	default:
		return model.NewInternalError("an unexpected error occurred")
	}
}

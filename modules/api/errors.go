package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/pkg/validator"
	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/library"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

// userError renders with status's code and a message meant for end users.
type userError struct {
	status  handler.HTTPError
	message string
}

func (e userError) Error() string { return e.message }

func (e userError) Unwrap() error { return e.status }

func newUserError(status handler.HTTPError, message string) error {
	return userError{status: status, message: message}
}

// validationError converts rule failures to the handler's field map.
func validationError(err error) error {
	ve := validator.ExtractValidationErrors(err)
	if ve == nil {
		return err
	}
	out := handler.NewValidationError()
	for _, e := range ve {
		out.Add(e.Field, e.Message)
	}
	return out
}

// authError keeps the modal message for failed sign-ins.
func authError(err error) error {
	msg := auth.UserMessage(err)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrMissingPassword):
		return newUserError(handler.NewHTTPError(http.StatusUnprocessableEntity, "invalid_credentials_format"), msg)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return newUserError(handler.ErrUnauthorized, msg)
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return newUserError(handler.ErrConflict, msg)
	case errors.Is(err, auth.ErrTooManyRequests):
		return newUserError(handler.ErrTooManyRequests, msg)
	case errors.Is(err, auth.ErrInvalidState),
		errors.Is(err, auth.ErrInvalidCode),
		errors.Is(err, auth.ErrNoPrimaryEmail),
		errors.Is(err, auth.ErrEmailNotVerified):
		return newUserError(handler.ErrBadRequest, msg)
	case errors.Is(err, auth.ErrProviderUnavailable):
		return errors.Join(handler.ErrServiceUnavailable, err)
	default:
		return errors.Join(handler.ErrInternalServerError, err)
	}
}

func billingError(err error) error {
	switch {
	case errors.Is(err, subscription.ErrNotAuthenticated):
		return handler.ErrUnauthorized
	case errors.Is(err, subscription.ErrUnknownPlan):
		ve := handler.NewValidationError()
		ve.Add("plan", "unknown plan")
		return ve
	case errors.Is(err, subscription.ErrProviderNotReady):
		return errors.Join(handler.ErrServiceUnavailable, err)
	case errors.Is(err, subscription.ErrNoPortalURL):
		return newUserError(handler.ErrNotFound, "No active subscription to manage")
	case errors.Is(err, subscription.ErrCheckoutFailed):
		return errors.Join(handler.ErrBadGateway, err)
	default:
		return errors.Join(handler.ErrInternalServerError, err)
	}
}

func libraryError(err error) error {
	switch {
	case errors.Is(err, library.ErrNotAuthenticated):
		return handler.ErrUnauthorized
	case errors.Is(err, library.ErrInvalidBookID):
		return errors.Join(handler.ErrBadRequest, err)
	default:
		return errors.Join(handler.ErrInternalServerError, err)
	}
}

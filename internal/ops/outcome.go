package ops

import (
	"errors"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/shared"
)

const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeInvalid         = "invalid"
	OutcomeNotFound        = "not_found"
	OutcomeConflict        = "conflict"
	OutcomeError           = "error"
)

// Outcome classifies an invocation error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, authz.ErrAuthenticationRequired):
		return OutcomeUnauthenticated
	case errors.Is(err, authz.ErrPermissionDenied):
		return OutcomeForbidden
	case errors.Is(err, ErrInvalidInput), errors.Is(err, shared.ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, ErrUnknownOperation), errors.Is(err, shared.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, shared.ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
)

var (
	// ErrAuthenticationRequired matches any *AuthenticationRequiredError via errors.Is.
	ErrAuthenticationRequired = errors.New("authz: authentication required")
	// ErrPermissionDenied matches any *PermissionDeniedError via errors.Is.
	ErrPermissionDenied = errors.New("authz: permission denied")
)

// AuthenticationRequiredError is returned when an operation with a permission
// requirement is invoked without a caller identity.
type AuthenticationRequiredError struct {
	Required   []Permission
	Combinator Combinator
}

func (e *AuthenticationRequiredError) Error() string {
	return fmt.Sprintf("authentication required: %s", describe(e.Required, e.Combinator))
}

func (e *AuthenticationRequiredError) Is(target error) bool {
	return target == ErrAuthenticationRequired
}

func (e *AuthenticationRequiredError) Code() string { return CodeUnauthenticated }

func (e *AuthenticationRequiredError) Status() int { return http.StatusUnauthorized }

// PermissionDeniedError is returned when the caller's role does not satisfy the
// operation's requirement. Granted is empty when the role is unknown to the matrix.
type PermissionDeniedError struct {
	Role       Role
	Granted    []Permission
	Required   []Permission
	Combinator Combinator
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied for role %s: %s", e.Role, describe(e.Required, e.Combinator))
}

func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func (e *PermissionDeniedError) Code() string { return CodeForbidden }

func (e *PermissionDeniedError) Status() int { return http.StatusForbidden }

func describe(perms []Permission, c Combinator) string {
	if len(perms) == 0 {
		return "no permissions required"
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	if len(names) == 1 {
		return "requires " + names[0]
	}
	quantifier := "all"
	if c == Or {
		quantifier = "any"
	}
	return fmt.Sprintf("requires %s of [%s]", quantifier, strings.Join(names, ", "))
}

// Package mutation builds the uniform result returned by every state-changing
// operation.
package mutation

import (
	"encoding/json"
	"errors"

	"github.com/instamunch/instamunch-api/internal/shared"
)

// Status codes carried in the envelope as strings.
const (
	CodeOK         = "200"
	CodeBadRequest = "400"
	CodeNotFound   = "404"
	CodeConflict   = "409"
)

// Response is the mutation envelope. On success it carries the adapted entity
// under a field named after the entity kind; on failure it carries no payload.
type Response struct {
	Code    string
	Success bool
	Message string

	field   string
	payload any
}

// Succeeded builds a success envelope with payload stored under field.
func Succeeded(field string, payload any, message string) Response {
	return Response{Code: CodeOK, Success: true, Message: message, field: field, payload: payload}
}

// Failed builds a failure envelope without payload.
func Failed(code, message string) Response {
	return Response{Code: code, Success: false, Message: message}
}

// Field returns the payload field name, empty on failure.
func (r Response) Field() string {
	return r.field
}

// Payload returns the payload, nil on failure.
func (r Response) Payload() any {
	return r.payload
}

// MarshalJSON flattens the payload next to the envelope fields.
func (r Response) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"code":    r.Code,
		"success": r.Success,
		"message": r.Message,
	}
	if r.Success && r.field != "" {
		out[r.field] = r.payload
	}
	return json.Marshal(out)
}

// Recover turns a recoverable domain error into a failure envelope. Errors that
// are not recoverable are returned unchanged for the caller to propagate.
func Recover(err error) (Response, error) {
	switch {
	case err == nil:
		return Response{}, errors.New("mutation: recover called without error")
	case errors.Is(err, shared.ErrNotFound):
		return Failed(CodeNotFound, err.Error()), nil
	case errors.Is(err, shared.ErrValidation):
		return Failed(CodeBadRequest, err.Error()), nil
	case errors.Is(err, shared.ErrConflict):
		return Failed(CodeConflict, err.Error()), nil
	default:
		return Response{}, err
	}
}

package tado

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrConnection     = errors.New("tado: connection error")
	ErrAuthentication = errors.New("tado: authentication error")
	ErrForbidden      = errors.New("tado: forbidden")
	ErrBadRequest     = errors.New("tado: bad request")
	ErrServer         = errors.New("tado: server error")
	ErrProtocol       = errors.New("tado: unexpected response")
	ErrReading        = errors.New("tado: meter reading rejected")
	ErrSchema         = errors.New("tado: schema mismatch")
	ErrNoDayReport    = errors.New("tado: no day report")

	// ErrState reports a device authorization step invoked out of order.
	ErrState = errors.New("tado: device activation state")
	// ErrActivationTimeout also matches ErrState.
	ErrActivationTimeout = fmt.Errorf("%w: user took too long to enter key", ErrState)
)

// APIError carries the HTTP status of a failed call. Kind is one of the
// sentinel errors above, so errors.Is works against both.
type APIError struct {
	Kind       error
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v (http %d): %s", e.Kind, e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// statusError maps a non-2xx response. A 400 during a login or device
// activation grant means the credentials were rejected.
func statusError(status int, body string, login bool) error {
	var kind error
	switch status {
	case http.StatusBadRequest:
		kind = ErrBadRequest
		if login {
			kind = ErrAuthentication
		}
	case http.StatusUnauthorized:
		kind = ErrAuthentication
	case http.StatusForbidden:
		kind = ErrForbidden
	default:
		kind = ErrServer
	}
	return &APIError{Kind: kind, StatusCode: status, Body: body}
}

// SchemaError reports a payload missing a required key, or one that does
// not decode into its Go type.
type SchemaError struct {
	Type  string
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s: %v", ErrSchema, e.Type, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %s field %q: %v", ErrSchema, e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("%v: %s missing required field %q", ErrSchema, e.Type, e.Field)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func connectionError(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, action, err)
}

package core

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrCannotConnect  = errors.New("cannot connect to server")
	ErrRequestTimeout = errors.New("request timeout")
	ErrThrottled      = errors.New("too many requests, try again later")
	ErrNotLoggedIn    = errors.New("not logged in")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) == 0 {
		return "invalid data"
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fld := range err.Fields {
		msgs = append(msgs, fld.Field+": "+fld.Error)
	}
	return strings.Join(msgs, "; ")
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (err APIError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return fmt.Sprintf("HTTP error, status %d", err.Status)
}

// IsValidation reports whether the status is a bad-input class response (400, 404, 422).
func (err APIError) IsValidation() bool {
	switch err.Status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// NewFieldErrors turns a {field: message} map into sorted FieldErrors.
func NewFieldErrors(m map[string]string) []FieldError {
	if len(m) == 0 {
		return nil
	}
	flds := make([]FieldError, 0, len(m))
	for fld, msg := range m {
		flds = append(flds, FieldError{Field: fld, Error: msg})
	}
	sort.Slice(flds, func(i, j int) bool { return flds[i].Field < flds[j].Field })
	return flds
}

// IsValidation reports whether err is caused by bad user input rather than a dead session.
func IsValidation(err error) bool {
	switch cause := errors.Cause(err).(type) {
	case *ValidationError:
		return true
	case *APIError:
		return cause.IsValidation()
	}
	return false
}

// IsNetwork reports whether err is a connectivity failure.
func IsNetwork(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrCannotConnect || cause == ErrRequestTimeout
}

// IsThrottled reports whether err comes from the client-side rate limit. The request never left.
func IsThrottled(err error) bool {
	return errors.Cause(err) == ErrThrottled
}

// IsCanceled reports whether err comes from the caller giving up on the request.
func IsCanceled(err error) bool {
	return errors.Cause(err) == context.Canceled
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if apiErr, ok := errors.Cause(err).(*APIError); ok {
		return apiErr.Status
	}
	return 0
}

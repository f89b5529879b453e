package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the one error shape the HTTP layer knows how to render.
// Status drives the response code; Code is a short machine-readable tag.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validationf builds the 400-class error raised for client-caused input
// problems (missing metric fields, unscoped deletes).
func Validationf(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, "validation_failed", fmt.Errorf(format, args...))
}

// Upstream wraps a remote rooms-API failure. status should be 502 for
// connection/protocol failures and 504 for timeouts.
func Upstream(status int, err error) *Error {
	return New(status, "upstream_failed", err)
}

// From extracts an *Error from err's chain, or nil if there is none.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// StatusOf reports the HTTP status carried by err, defaulting to 500.
func StatusOf(err error) int {
	if ae := From(err); ae != nil && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

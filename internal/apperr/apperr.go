// Package apperr defines the error kinds shared by every domain package.
// Domain sentinels wrap one of these kinds so transport code can map them
// to status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NotFound returns "<what> not found".
func NotFound(what string) error {
	return &kindError{msg: what + " not found", kind: ErrNotFound}
}

func BadRequest(format string, args ...any) error {
	return &kindError{msg: fmt.Sprintf(format, args...), kind: ErrBadRequest}
}

func Conflict(format string, args ...any) error {
	return &kindError{msg: fmt.Sprintf(format, args...), kind: ErrConflict}
}

func Unauthorized(msg string) error {
	return &kindError{msg: msg, kind: ErrUnauthorized}
}

func Forbidden(msg string) error {
	return &kindError{msg: msg, kind: ErrForbidden}
}

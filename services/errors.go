package services

import "errors"

// Error kinds returned by the service layer. Handlers map these onto HTTP
// status codes with errors.Is, so services stay transport-agnostic.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)

// Error carries a user-facing message tagged with one of the error kinds
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func notFound(msg string) error   { return &Error{kind: ErrNotFound, msg: msg} }
func forbidden(msg string) error  { return &Error{kind: ErrForbidden, msg: msg} }
func conflict(msg string) error   { return &Error{kind: ErrConflict, msg: msg} }
func badRequest(msg string) error { return &Error{kind: ErrBadRequest, msg: msg} }

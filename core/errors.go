package core

import (
	"fmt"

	"github.com/pkg/errors"
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
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when an identifier does not resolve to a document.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (err NotFoundError) Error() string {
	if err.ID == "" {
		return err.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", err.Resource, err.ID)
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// AuthError is a signup or login rejection.
type AuthError struct {
	Reason string
}

func NewAuthError(reason string) error {
	return &AuthError{Reason: reason}
}

func (err AuthError) Error() string {
	return err.Reason
}

func IsAuthError(err error) bool {
	_, ok := errors.Cause(err).(*AuthError)
	return ok
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func (err PersistenceError) Error() string {
	return err.Op + ": " + err.Err.Error()
}

func (err PersistenceError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

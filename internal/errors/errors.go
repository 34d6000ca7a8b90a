package errors

import (
	"errors"
	"fmt"
)

// Error kinds shared by the store, the token manager and the handlers.
// The dispatcher maps each kind to a status code.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrExpired          = errors.New("expired")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrValidation       = errors.New("validation failed")
	ErrStore            = errors.New("store error")
	ErrUpstream         = errors.New("upstream error")
	ErrInternal         = errors.New("internal error")
)

var kinds = []error{
	ErrNotFound,
	ErrAlreadyExists,
	ErrExpired,
	ErrUnauthorized,
	ErrMethodNotAllowed,
	ErrValidation,
	ErrStore,
	ErrUpstream,
	ErrInternal,
}

// Error carries a kind, an optional public message and the underlying cause.
// Message is safe to show to a client; Err never is.
type Error struct {
	Kind    error
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New returns an error of the given kind with a public message.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns an ErrValidation error naming the offending fields.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// Wrap tags err with kind. It returns nil when err is nil.
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// WithMessage keeps the kind of err and replaces its public message.
func WithMessage(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Message: message, Fields: e.Fields, Err: err}
	}
	return &Error{Kind: KindOf(err), Message: message, Err: err}
}

// Recast turns an error of kind from into kind to with a new public message.
// Any other error is returned untouched.
func Recast(err error, from, to error, message string) error {
	if err == nil || KindOf(err) != from {
		return err
	}
	return &Error{Kind: to, Message: message, Err: err}
}

// KindOf reports the kind of the outermost tagged error in err's chain,
// falling back to ErrInternal.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// PublicMessage returns the client facing message of err, or an empty string.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// FieldsOf returns the validation fields attached to err.
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

package errors

import (
	stderrors "errors"
	"fmt"
)

type Error interface {
	error

	Code() int
	Kind() Kind
	Message() string
	Cause() error
}

// Default code defines the code that will be used by default when
// none is given. It is set to 500, Internal Server Error
var DefaultCode = 500

type myError struct {
	code  int
	kind  Kind
	msg   string
	cause error
}

func (err *myError) Error() string {
	if err.cause == nil || err.cause.Error() == "" {
		return err.msg
	}
	if err.msg == "" {
		return err.cause.Error()
	}

	return fmt.Sprintf("%s: %v", err.msg, err.cause)
}

func (err *myError) Code() int {
	return err.code
}

func (err *myError) Kind() Kind {
	return err.kind
}

func (err *myError) Message() string {
	return err.msg
}

func (err *myError) Cause() error {
	return err.cause
}

// Unwrap exposes the cause to the standard library errors.Is and errors.As.
func (err *myError) Unwrap() error {
	return err.cause
}

type ErrorEnricher func(error) error

func WithCode(code int) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}

		if err, ok := err.(*myError); ok {
			err.code = code
			return err
		}

		return &myError{
			msg:  err.Error(),
			code: code,
			kind: KindOf(err),
		}
	}
}

func WithKind(kind Kind) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}

		if err, ok := err.(*myError); ok {
			err.kind = kind
			return err
		}

		return &myError{
			msg:  err.Error(),
			code: CodeOf(err),
			kind: kind,
		}
	}
}

// WithCause attaches cause to the error. When the error is not one of ours,
// it is converted and inherits the code and kind of the cause.
func WithCause(cause error) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}

		if myErr, ok := err.(*myError); ok {
			myErr.cause = cause
			return myErr
		}

		return &myError{
			msg:   err.Error(),
			code:  CodeOf(cause),
			kind:  KindOf(cause),
			cause: cause,
		}
	}
}

func New(msg string, fs ...ErrorEnricher) error {
	var err error
	err = &myError{
		msg:   msg,
		code:  DefaultCode,
		kind:  KindUnknown,
		cause: nil,
	}

	for _, f := range fs {
		err = f(err)
	}

	return err
}

// CodeOf returns the code of the first Error in err's chain, DefaultCode if
// there is none.
func CodeOf(err error) int {
	var e Error
	if stderrors.As(err, &e) {
		return e.Code()
	}
	return DefaultCode
}

// KindOf returns the first known kind found in err's chain.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(Error); ok && e.Kind() != KindUnknown {
			return e.Kind()
		}
		err = stderrors.Unwrap(err)
	}
	return KindUnknown
}

// Is reports whether err, or any error it wraps, has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(Error); ok && e.Kind() == kind {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// MessageOr returns the message carried by err, or fallback when err
// has none.
func MessageOr(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

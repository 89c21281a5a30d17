// Package errors provides error annotation with structured logging attributes.
//
// It wraps the standard library errors package so that call sites only need a
// single import. Wrapped errors carry slog attributes and the source location
// of the wrap, which SlogError turns into a single loggable attribute.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// annotatedError is an error with slog attributes and the source location where it was created.
type annotatedError struct {
	err    error
	msg    string
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// callerSource resolves the file:line of the caller skip frames up the stack.
func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// NewSentinel creates a sentinel error meant to be declared as a package-level variable.
func NewSentinel(msg string) error {
	return &annotatedError{
		err:    nil,
		msg:    msg,
		attrs:  nil,
		source: "",
	}
}

// Wrap annotates err with a message and optional slog attributes.
//
// The resulting error message is "msg: err". The attributes and the source
// location of the Wrap call surface in logs through SlogError.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	const skipWrapFrame = 1
	return &annotatedError{
		err:    err,
		msg:    msg,
		attrs:  attrs,
		source: callerSource(skipWrapFrame),
	}
}

// SlogError converts an error into a slog.Attr for structured logging.
//
// Annotations and source locations from wrapped annotatedErrors are collected
// into the "error" group.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attr is discarded by slog.
	}

	attrs := []any{slog.String("message", err.Error())}

	var (
		annotations []any
		source      string
	)
	for unwrapped := err; unwrapped != nil; unwrapped = Unwrap(unwrapped) {
		var annotated *annotatedError
		if !errors.As(unwrapped, &annotated) {
			break
		}
		for _, attr := range annotated.attrs {
			annotations = append(annotations, attr)
		}
		// The deepest wrap is closest to the root cause.
		if annotated.source != "" {
			source = annotated.source
		}
		unwrapped = annotated
	}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}

	return slog.Group("error", attrs...)
}

// New returns an error with the given message. See [errors.New].
func New(msg string) error {
	return errors.New(msg) //nolint:err113 // thin re-export.
}

// Is reports whether any error in err's tree matches target. See [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree matching target. See [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. See [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join wraps the given errors into a single error. See [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

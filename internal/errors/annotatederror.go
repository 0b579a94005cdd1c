// Package errors extends the standard library errors with annotated wrapping.
// Wrapped errors carry structured slog attributes and the source location of
// the wrap call so that a single log statement at the top of the stack can
// report everything collected on the way up.
package errors

import (
	"fmt"
	"log/slog"
	"runtime"
)

// sentinelError is a comparable error value suitable for package-level
// sentinels matched with Is.
type sentinelError string

func (e sentinelError) Error() string {
	return string(e)
}

// NewSentinel creates a comparable sentinel error for use as a package-level
// value.
func NewSentinel(msg string) error {
	return sentinelError(msg)
}

// annotatedError wraps a cause with a message, slog annotations, and the
// source location where the wrap happened.
type annotatedError struct {
	cause  error
	msg    string
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// Wrap annotates err with a message and optional slog attributes. The caller's
// source location is recorded for SlogError.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		cause:  err,
		msg:    msg,
		attrs:  attrs,
		source: callerSource(2),
	}
}

// DecoratePanic converts a recovered panic value into an annotated error
// pointing at the panic site rather than the recover site.
func DecoratePanic(excp any) error {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	// The interesting frame is the one that called panic, which sits right
	// after runtime.gopanic in the stack.
	var source string
	seenPanic := false
	for {
		frame, more := frames.Next()
		if seenPanic {
			source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
			break
		}
		if frame.Function == "runtime.gopanic" {
			seenPanic = true
		}
		if !more {
			break
		}
	}

	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", excp),
		source: source,
	}
}

// SlogError flattens an error chain into a single slog group attribute with
// the message, the innermost recorded source location, and all annotations
// collected along the chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var attrs []slog.Attr
	var source string
	collectAnnotations(err, &attrs, &source)

	group := []any{slog.String("message", err.Error())}
	if source != "" {
		group = append(group, slog.String("source", source))
	}
	if len(attrs) > 0 {
		annotations := make([]any, len(attrs))
		for i, attr := range attrs {
			annotations[i] = attr
		}
		group = append(group, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", group...)
}

// collectAnnotations walks the error tree accumulating annotations. The first
// source location found wins since it is the closest to the failure.
func collectAnnotations(err error, attrs *[]slog.Attr, source *string) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *annotatedError:
		*attrs = append(*attrs, e.attrs...)
		if *source == "" {
			*source = e.source
		}
		collectAnnotations(e.cause, attrs, source)
	case interface{ Unwrap() []error }:
		for _, cause := range e.Unwrap() {
			collectAnnotations(cause, attrs, source)
		}
	case interface{ Unwrap() error }:
		collectAnnotations(e.Unwrap(), attrs, source)
	}
}

// callerSource resolves the file:line of the caller skip frames up the stack.
func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

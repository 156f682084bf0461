// Package jvmerrors defines the typed error kinds raised across the
// decoder, class model, translator, and interpreter.
//
// The original hornet implementation (see SPEC_FULL.md) represents these
// as integer-cast sentinel addresses, e.g.
//
//	#define java_lang_NoClassDefFoundError reinterpret_cast<object*>(0xdeabeef)
//
// which is not representable — or desirable — in Go. Each kind here is a
// distinct, comparable value so callers can branch on it with KindOf or
// errors.Is; Wrap attaches an underlying cause that Unwrap exposes to
// errors.Is/errors.As, while New builds an Error with no cause.
package jvmerrors

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories from spec §7.
type Kind int

const (
	_ Kind = iota
	MalformedClassFile
	UnsupportedClassVersion
	NoClassDefFoundError
	NoSuchMethodError
	NoSuchFieldError
	VerifyError
	UnsupportedBytecode
	MalformedBytecode
	ArithmeticException
	NullPointerException
	OutOfMemory
)

func (k Kind) String() string {
	switch k {
	case MalformedClassFile:
		return "MalformedClassFile"
	case UnsupportedClassVersion:
		return "UnsupportedClassVersion"
	case NoClassDefFoundError:
		return "NoClassDefFoundError"
	case NoSuchMethodError:
		return "NoSuchMethodError"
	case NoSuchFieldError:
		return "NoSuchFieldError"
	case VerifyError:
		return "VerifyError"
	case UnsupportedBytecode:
		return "UnsupportedBytecode"
	case MalformedBytecode:
		return "MalformedBytecode"
	case ArithmeticException:
		return "ArithmeticException"
	case NullPointerException:
		return "NullPointerException"
	case OutOfMemory:
		return "OutOfMemory"
	default:
		return "UnknownError"
	}
}

// Error is a typed JVM-core error: a Kind plus a human-readable message
// and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so
// errors.Is(err, &Error{Kind: NoClassDefFoundError}) matches any error of
// that Kind in the chain; KindOf, or errors.As plus a Kind comparison, does
// the same without building a target value.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind, wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the Kind of err if it is or wraps a *Error — walking the
// Unwrap chain via errors.As, so a %w-wrapped *Error is still found — and
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}

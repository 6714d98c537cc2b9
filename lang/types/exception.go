package types

import (
	"fmt"
)

// ErrorKind is the kind of an Exception. An ErrorKind is itself an error so
// that it can be used as target of errors.Is:
//
//	if errors.Is(err, types.KeyError) { ... }
type ErrorKind string

const (
	TypeError      ErrorKind = "TypeError"
	KeyError       ErrorKind = "KeyError"
	AttributeError ErrorKind = "AttributeError"
	ValueError     ErrorKind = "ValueError"
	IndexError     ErrorKind = "IndexError"
	OverflowError  ErrorKind = "OverflowError"
)

func (k ErrorKind) Error() string { return string(k) }

// An Exception is a typed, catchable runtime failure.
type Exception struct {
	Kind ErrorKind
	Msg  string

	// Payload is the value attached to the exception, if any. For a KeyError
	// it is the missing key.
	Payload Value
}

var _ error = (*Exception)(nil)

func (e *Exception) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Msg
}

// Is reports whether target is the ErrorKind of the exception.
func (e *Exception) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// Raise returns a new Exception of the specified kind with its message
// formatted from format and args.
func Raise(kind ErrorKind, format string, args ...any) *Exception {
	return &Exception{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// RaiseKeyError returns a KeyError carrying the missing key as payload.
func RaiseKeyError(key Value) *Exception {
	e := Raise(KeyError, "%s", key)
	e.Payload = key
	return e
}

// Unhashable returns the TypeError raised when v is used as a hash key.
func Unhashable(v Value) *Exception {
	return Raise(TypeError, "unhashable type: '%s'", v.Type())
}

package dexargs

import (
	"errors"
	"fmt"
)

type ErrorKind byte

const (
	TooShort = ErrorKind(iota)
	MalformedIdentity
	MalformedFixedWidth
)

// DecodeError means the argument buffer is structurally wrong. Never recoverable
type DecodeError struct {
	Kind ErrorKind
	msg  string
	err  error
}

var (
	ErrTooShort            = &DecodeError{Kind: TooShort}
	ErrMalformedIdentity   = &DecodeError{Kind: MalformedIdentity}
	ErrMalformedFixedWidth = &DecodeError{Kind: MalformedFixedWidth}
)

func newError(kind ErrorKind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *DecodeError {
	ret := newError(kind, format, args...)
	ret.err = err
	return ret
}

func (e *DecodeError) Error() string {
	ret := "dex args: " + e.Kind.String()
	if e.msg != "" {
		ret += ": " + e.msg
	}
	if e.err != nil {
		ret += ": " + e.err.Error()
	}
	return ret
}

// Is matches any DecodeError of the same kind
func (e *DecodeError) Is(target error) bool {
	var t *DecodeError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func (e *DecodeError) Unwrap() error {
	return e.err
}

func (k ErrorKind) String() string {
	switch k {
	case TooShort:
		return "too short"
	case MalformedIdentity:
		return "malformed identity"
	case MalformedFixedWidth:
		return "malformed fixed-width field"
	}
	return fmt.Sprintf("error kind(%d)", byte(k))
}

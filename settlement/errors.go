package settlement

import (
	"errors"
	"fmt"

	"github.com/lunfardo314/easydex/dexargs"
)

// Code is the integer the lock exits with. 0 is success
type Code int8

const (
	CodeSuccess         = Code(0)
	CodeIndexOutOfBound = Code(1)
	// 2..4 are load errors of the host which this environment never returns

	// malformed args
	CodeArgsTooShort            = Code(5)
	CodeArgsMalformedIdentity   = Code(6)
	CodeArgsMalformedFixedWidth = Code(7)
	// settlement rule
	CodeNotFound          = Code(8)
	CodeOwnerLockMismatch = Code(9)
	CodeAmountMismatch    = Code(10)
	CodeOverflow          = Code(11)

	CodeUnknown = Code(-1)
)

// Error is a failure with its exit code. All of them reject the transaction
type Error struct {
	Code Code
	msg  string
}

var (
	ErrIndexOutOfBound   = &Error{Code: CodeIndexOutOfBound, msg: "index out of bound"}
	ErrNotFound          = &Error{Code: CodeNotFound, msg: "dex lock not found in inputs"}
	ErrOwnerLockMismatch = &Error{Code: CodeOwnerLockMismatch, msg: "output lock is not the owner lock"}
	ErrAmountMismatch    = &Error{Code: CodeAmountMismatch, msg: "output capacity is less than required"}
	ErrOverflow          = &Error{Code: CodeOverflow, msg: "total value overflow"}
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.msg, e.Code)
}

// Is matches by code, so wrapped details do not matter
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func failf(base *Error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{base}, args...)...)
}

// ExitCode maps any error to the code the lock exits with
func ExitCode(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var decErr *dexargs.DecodeError
	if errors.As(err, &decErr) {
		switch decErr.Kind {
		case dexargs.TooShort:
			return CodeArgsTooShort
		case dexargs.MalformedIdentity:
			return CodeArgsMalformedIdentity
		case dexargs.MalformedFixedWidth:
			return CodeArgsMalformedFixedWidth
		}
	}
	return CodeUnknown
}

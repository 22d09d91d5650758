package proc

import (
	"github.com/cockroachdb/errors"
)

// Kind categorizes the ways a Processor operation can fail. These are the
// error kinds named by spec.md §7, plus Fail for the string-object
// double-free guard (spec.md §4.5 / §8 invariant 9), which the original
// source keeps distinct from the four HG_* return codes.
type Kind int

const (
	// InvalidParam: null handle, null buffer in a non-Free reset,
	// SetExtraBufIsMine without a spill, or an unrecognized operation mode.
	InvalidParam Kind = iota + 1
	// NoMemory: segment allocation/reallocation or checksum scratch
	// allocation failed.
	NoMemory
	// SizeError: SetSize was called with a target not exceeding the
	// current total capacity, or the string-object codec decoded a zero
	// wire length.
	SizeError
	// ChecksumError: hash backend construction failed, or the decode-side
	// digest comparison in Flush mismatched.
	ChecksumError
	// Fail: a generic failure from a per-type codec, distinct from the
	// four categories above — currently only raised by the string-object
	// codec's double-free guard.
	Fail
)

func (k Kind) String() string {
	switch k {
	case InvalidParam:
		return "invalid parameter"
	case NoMemory:
		return "no memory"
	case SizeError:
		return "size error"
	case ChecksumError:
		return "checksum error"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every exported Processor operation
// that can fail. It wraps the triggering cause (if any) with
// github.com/cockroachdb/errors, the same library sstable/block.go uses
// for its own error construction (errors.Newf/errors.Errorf).
type Error struct {
	Kind Kind
	Op   string
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return "proc: " + e.Op + ": " + e.Kind.String()
	}
	return "proc: " + e.Op + ": " + e.Kind.String() + ": " + e.err.Error()
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same Kind, so that
// callers can write errors.Is(err, proc.ErrKind(proc.SizeError)).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == te.Kind
}

// ErrKind returns a sentinel usable with errors.Is to test for a Kind,
// regardless of Op or wrapped cause.
func ErrKind(k Kind) error { return &Error{Kind: k} }

// newError builds an *Error for op, wrapping cause if non-nil or
// synthesizing one from msg otherwise.
func newError(kind Kind, op string, cause error, msg string) *Error {
	if cause == nil {
		cause = errors.Newf("%s", msg)
	}
	return &Error{Kind: kind, Op: op, err: cause}
}

// IsKind reports whether err is a *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// Package randomaccess implements the random-access query engine: given a
// genomic interval, it resolves the minimal set of BGZF chunks that may
// overlap it, splices and decompresses exactly those bytes, and filters the
// decoded records down to the ones that actually overlap. This is the
// "core" named in §1; everything it depends on (bgzf, bai, record) is an
// external collaborator with its own package.
package randomaccess

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a randomaccess error, per §7's taxonomy.
type Kind int

const (
	// Other is the zero value: an error not raised by this package, or one
	// whose kind was not determined.
	Other Kind = iota
	InvalidQuery
	IndexMissing
	UnexpectedEof
	CorruptBlock
	CorruptRecord
	IoError
)

func (k Kind) String() string {
	switch k {
	case InvalidQuery:
		return "InvalidQuery"
	case IndexMissing:
		return "IndexMissing"
	case UnexpectedEof:
		return "UnexpectedEof"
	case CorruptBlock:
		return "CorruptBlock"
	case CorruptRecord:
		return "CorruptRecord"
	case IoError:
		return "IoError"
	default:
		return "Other"
	}
}

// Error is a randomaccess error: an operation name, a kind, and the
// underlying cause. Modeled on the standard library's os.PathError.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("randomaccess: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("randomaccess: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Cause() error { return e.Err }

// newError builds an *Error, wrapping err with pkg/errors so callers get a
// stack trace attached the way the rest of this codebase does.
func newError(op string, kind Kind, err error) *Error {
	if err == nil {
		return &Error{Op: op, Kind: kind}
	}
	return &Error{Op: op, Kind: kind, Err: errors.WithStack(err)}
}

// KindOf reports the Kind carried by err, if err is (or wraps) a *Error;
// otherwise it returns Other.
func KindOf(err error) Kind {
	var raErr *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			raErr = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if raErr == nil {
		return Other
	}
	return raErr.Kind
}

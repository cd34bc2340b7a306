// Package sgerror defines the error taxonomy sg2vg surfaces to callers:
// InputShape (malformed input graph), InternalInvariant (a defensive check
// inside the converter tripped — a bug in planning or lookup, not in the
// caller's data), and UsageError (the API was called out of order). All
// three are returned immediately as plain errors; none are locally
// recovered, matching the "single-shot" design of Converter.
package sgerror

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies which of the three error categories an Error belongs to.
type Kind int

const (
	// KindInputShape covers malformed input: non-dense sequence ids, a
	// join or path referencing an unknown sequence, or an out-of-range
	// position.
	KindInputShape Kind = iota
	// KindInternalInvariant covers a defensive check failing: an output
	// join not connecting endpoints, a missing bridge join between
	// fragments, a path DNA mismatch, or an incomplete interval map.
	// These indicate a bug in cut planning or lookup, not bad input.
	KindInternalInvariant
	// KindUsageError covers calling the API out of order, e.g. Convert
	// before Init.
	KindUsageError
)

func (k Kind) String() string {
	switch k {
	case KindInputShape:
		return "InputShape"
	case KindInternalInvariant:
		return "InternalInvariant"
	case KindUsageError:
		return "UsageError"
	default:
		return "Unknown"
	}
}

// Error is a taxonomized, human-readable failure. The message always names
// the offending join/path/segment and the numeric context (ids, lengths,
// positions) so failures can be triaged from the text alone.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.msg
}

// New builds an *Error of the given kind with a pkg/errors-formatted
// message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: pkgerrors.Errorf(format, args...).Error()}
}

// Is reports whether err is an *Error of the given kind, so callers can
// write `if sgerror.Is(err, sgerror.KindInputShape)`.
func Is(err error, kind Kind) bool {
	var sgErr *Error
	if !errors.As(err, &sgErr) {
		return false
	}
	return sgErr.Kind == kind
}

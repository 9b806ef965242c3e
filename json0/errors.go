package json0

import (
	"fmt"

	"github.com/homveloper/sharedb-client/value"
)

// ErrInvalidPath re-exports the value package's path error so callers
// of json0 only need to errors.As against one type regardless of
// whether the failure came from path walking or a malformed op.
type ErrInvalidPath = value.ErrInvalidPath

// ErrOldDataMismatch is returned when an od/ld precondition does not
// match the current value at the operation's path.
type ErrOldDataMismatch struct {
	Path     Path
	Expected interface{}
	Actual   interface{}
}

func (e ErrOldDataMismatch) Error() string {
	return fmt.Sprintf("old data mismatch at %s: expected %v, got %v", e.Path, e.Expected, e.Actual)
}

// ErrIndexOutOfRange is returned for ld/si/sd index or offset
// preconditions outside the valid bounds. An li index outside
// [0, len] is reported as ErrInvalidPath instead.
type ErrIndexOutOfRange struct {
	Path  Path
	Index int
	Len   int
}

func (e ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d] at %s", e.Index, e.Len, e.Path)
}

// ErrInvalidJSONData is returned when an operation's payload is the
// wrong shape for its target, including numeric-kind mismatches in na.
type ErrInvalidJSONData struct {
	Path   Path
	Reason string
}

func (e ErrInvalidJSONData) Error() string {
	return fmt.Sprintf("invalid JSON data at %s: %s", e.Path, e.Reason)
}

// ErrUnsupportedOperation is returned for a malformed op (zero or
// conflicting keyed forms).
type ErrUnsupportedOperation struct {
	Path Path
}

func (e ErrUnsupportedOperation) Error() string {
	return fmt.Sprintf("unsupported operation at %s", e.Path)
}

// ErrUnsupportedSubtype is returned when a t/o op names a subtype that
// is not registered.
type ErrUnsupportedSubtype struct {
	Path Path
	Type string
}

func (e ErrUnsupportedSubtype) Error() string {
	return fmt.Sprintf("unsupported subtype %q at %s", e.Type, e.Path)
}

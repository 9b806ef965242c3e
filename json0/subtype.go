package json0

import "encoding/json"

// Subtype is an embedded OT type JSON0 can dispatch into via the t/o
// operation form. TEXT0 (registered under "text0") is the only
// subtype this module implements; the registry exists so a consumer
// can add others without touching Apply's dispatch loop.
type Subtype interface {
	// Apply applies the subtype operations encoded in o against v,
	// returning the new value for that path.
	Apply(o json.RawMessage, v interface{}) (interface{}, error)

	// Inverse returns the subtype operations, re-encoded, that undo o.
	Inverse(o json.RawMessage) (json.RawMessage, error)
}

// SubtypeRegistry maps a subtype name to its implementation.
type SubtypeRegistry map[string]Subtype

// DefaultSubtypes is the registry Apply and Inverse use when none is
// supplied explicitly. It carries TEXT0 under the name this module's
// wire codec uses for string-subtype ops.
var DefaultSubtypes = SubtypeRegistry{
	"text0": TEXT0{},
}

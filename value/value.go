package value

// Kind classifies a decoded JSON value for precondition checks that
// must distinguish numeric forms (json0's na op rejects an int-onto-
// decimal add) from the generic "any value" case.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDecimal
	KindString
	KindArray
	KindObject
	KindUndefined
)

// undefinedType is a distinguished, never-serialized sentinel. It is
// returned by Get when the terminal path element does not exist in an
// otherwise valid parent container.
type undefinedType struct{}

// Undefined is the sentinel value representing "no such child". It is
// never written into a document and never escapes to the wire.
var Undefined = undefinedType{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v interface{}) bool {
	_, ok := v.(undefinedType)
	return ok
}

// KindOf classifies a decoded value. Integers are represented as
// int64 and decimals as float64; both are produced only by Decode or
// by json0 operations that construct them explicitly.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case undefinedType:
		return KindUndefined
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindDecimal
	case string:
		return KindString
	case []interface{}:
		return KindArray
	case map[string]interface{}:
		return KindObject
	default:
		return KindUndefined
	}
}

// Clone performs a deep structural copy of v so that a failed Apply
// never leaves the original document partially mutated (spec's
// "write-through on a cloned value" requirement).
func Clone(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	default:
		// Scalars (nil, bool, int64, float64, string) are immutable in
		// Go and can be shared safely.
		return v
	}
}

// Equal reports whether a and b are structurally equal. Integers and
// decimals never compare equal to one another even if numerically
// identical, matching the kind-preserving semantics json0 relies on
// for na and oi/od preconditions.
func Equal(a, b interface{}) bool {
	switch av := a.(type) {
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, e := range av {
			be, ok := bv[k]
			if !ok || !Equal(e, be) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

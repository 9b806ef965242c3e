package value

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Token is one step of a Path: either a string (object key) or an int
// (array index).
type Token interface{}

// Path is an ordered sequence of path tokens addressing a location in
// a JSON value.
type Path []Token

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = fmt.Sprintf("%v", t)
	}
	return "/" + strings.Join(parts, "/")
}

// Child returns a new path with tok appended; the receiver is left
// unmodified so callers can branch a path to address siblings.
func (p Path) Child(tok Token) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = tok
	return out
}

// Last returns the final token, and true, or (nil, false) for an
// empty path.
func (p Path) Last() (Token, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[len(p)-1], true
}

// Parent returns the path with its last token removed.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// MarshalJSON encodes the path as a JSON array of strings and numbers.
func (p Path) MarshalJSON() ([]byte, error) {
	raw := make([]interface{}, len(p))
	copy(raw, p)
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a wire path array, coercing JSON numbers
// (which decode as float64 by default) back into int indices.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Path, len(raw))
	for i, t := range raw {
		switch v := t.(type) {
		case float64:
			out[i] = int(v)
		default:
			out[i] = v
		}
	}
	*p = out
	return nil
}

// Get walks root along path and returns the value found there, or
// Undefined if the terminal element does not exist in an otherwise
// valid parent. It fails with ErrInvalidPath if an intermediate
// segment is missing or is not a container of the kind the next token
// requires.
func Get(root interface{}, path Path) (interface{}, error) {
	cur := root
	for i, tok := range path {
		switch key := tok.(type) {
		case string:
			m, ok := cur.(map[string]interface{})
			if !ok {
				return nil, ErrInvalidPath{Path: path[:i+1], Reason: "parent is not an object"}
			}
			child, ok := m[key]
			if !ok {
				if i == len(path)-1 {
					return Undefined, nil
				}
				return nil, ErrInvalidPath{Path: path[:i+1], Reason: "missing intermediate key"}
			}
			cur = child
		case int:
			a, ok := cur.([]interface{})
			if !ok {
				return nil, ErrInvalidPath{Path: path[:i+1], Reason: "parent is not an array"}
			}
			if key < 0 || key >= len(a) {
				if i == len(path)-1 {
					return Undefined, nil
				}
				return nil, ErrInvalidPath{Path: path[:i+1], Reason: "array index out of range"}
			}
			cur = a[key]
		default:
			return nil, ErrInvalidPath{Path: path[:i+1], Reason: fmt.Sprintf("unsupported path token type %T", tok)}
		}
	}
	return cur, nil
}

// Set replaces or inserts the terminal element addressed by path in
// *rootPtr, creating the key if path's last token is a string not yet
// present in its parent map. The parent container must already exist
// and be of the matching kind; array writes never change array
// length (use splice-style logic in the caller for that). An empty
// path replaces *rootPtr wholesale.
func Set(rootPtr *interface{}, path Path, newVal interface{}) error {
	if len(path) == 0 {
		*rootPtr = newVal
		return nil
	}
	parent, err := Get(*rootPtr, path.Parent())
	if err != nil {
		return err
	}
	last, _ := path.Last()
	switch key := last.(type) {
	case string:
		m, ok := parent.(map[string]interface{})
		if !ok {
			return ErrInvalidPath{Path: path, Reason: "parent is not an object"}
		}
		m[key] = newVal
		return nil
	case int:
		a, ok := parent.([]interface{})
		if !ok {
			return ErrInvalidPath{Path: path, Reason: "parent is not an array"}
		}
		if key < 0 || key >= len(a) {
			return ErrInvalidPath{Path: path, Reason: "array index out of range"}
		}
		a[key] = newVal
		return nil
	default:
		return ErrInvalidPath{Path: path, Reason: fmt.Sprintf("unsupported path token type %T", last)}
	}
}

// Delete removes the terminal key from its parent object. Deleting a
// non-string (array) terminal is not supported here; array element
// removal is a length-changing splice the json0 package implements
// directly against the fetched array.
func Delete(rootPtr *interface{}, path Path) error {
	if len(path) == 0 {
		return ErrInvalidPath{Path: path, Reason: "empty path"}
	}
	parent, err := Get(*rootPtr, path.Parent())
	if err != nil {
		return err
	}
	last, _ := path.Last()
	key, ok := last.(string)
	if !ok {
		return ErrInvalidPath{Path: path, Reason: "terminal delete requires an object key"}
	}
	m, ok := parent.(map[string]interface{})
	if !ok {
		return ErrInvalidPath{Path: path, Reason: "parent is not an object"}
	}
	delete(m, key)
	return nil
}

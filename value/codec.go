package value

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Decode parses a JSON byte stream into the value model, classifying
// every number as an integer (int64) or a decimal (float64) by its
// lexical form: a literal with no '.', 'e' or 'E' is an integer. The
// distinction only needs to survive within a single apply call chain
// (na's kind-preserving precondition); it is not a wire-format
// concern, since ShareDB peers written in JavaScript have no such
// distinction themselves.
func Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return convert(raw), nil
}

// DecodeValue converts an already-decoded interface{} tree (e.g. from
// a json.RawMessage nested in a larger structure decoded with
// UseNumber) into the value model's int64/float64 split.
func DecodeValue(raw interface{}) interface{} {
	return convert(raw)
}

func convert(raw interface{}) interface{} {
	switch v := raw.(type) {
	case json.Number:
		return numberKind(v)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, e := range v {
			out[k] = convert(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = convert(e)
		}
		return out
	default:
		return v
	}
}

func numberKind(n json.Number) interface{} {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f, _ := n.Float64()
	return f
}

// Encode serializes a value-model tree to JSON.
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(stripUndefined(v))
}

func stripUndefined(v interface{}) interface{} {
	switch t := v.(type) {
	case undefinedType:
		return nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = stripUndefined(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = stripUndefined(e)
		}
		return out
	default:
		return v
	}
}

package json0

import (
	"encoding/json"
	"unicode/utf16"
)

// TEXT0 is the string-edit subtype JSON0 embeds at string leaves. Its
// operations are a list of {p:[offset], i?:string, d?:string} applied
// in list order against a plain string.
//
// Offsets are UTF-16 code units, matching the encoding ShareDB's
// JavaScript peers use natively, so a mixed Go/JS collaboration session
// agrees on where "offset 5" falls in a string containing characters
// outside the Basic Multilingual Plane. Go strings stay UTF-8 at rest;
// TEXT0 converts to UTF-16 only for the duration of an edit.
type TEXT0 struct{}

// TextOp is a single TEXT0 operation.
type TextOp struct {
	P Path   `json:"p"`
	I string `json:"i,omitempty"`
	D string `json:"d,omitempty"`
}

func (TEXT0) Apply(o json.RawMessage, v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, ErrInvalidJSONData{Reason: "text0 target is not a string"}
	}
	var ops []TextOp
	if err := json.Unmarshal(o, &ops); err != nil {
		return nil, err
	}

	units := utf16.Encode([]rune(s))
	for _, op := range ops {
		offset, ok := offsetOf(op.P)
		if !ok {
			return nil, ErrInvalidPath{Reason: "text0 op missing offset"}
		}
		switch {
		case op.I != "":
			if offset < 0 || offset > len(units) {
				return nil, ErrIndexOutOfRange{Index: offset, Len: len(units)}
			}
			ins := utf16.Encode([]rune(op.I))
			out := make([]uint16, 0, len(units)+len(ins))
			out = append(out, units[:offset]...)
			out = append(out, ins...)
			out = append(out, units[offset:]...)
			units = out
		case op.D != "":
			del := utf16.Encode([]rune(op.D))
			if offset < 0 || offset+len(del) > len(units) {
				return nil, ErrIndexOutOfRange{Index: offset, Len: len(units)}
			}
			actual := units[offset : offset+len(del)]
			if !equalUnits(actual, del) {
				return nil, ErrOldDataMismatch{Expected: op.D, Actual: string(utf16.Decode(actual))}
			}
			out := make([]uint16, 0, len(units)-len(del))
			out = append(out, units[:offset]...)
			out = append(out, units[offset+len(del):]...)
			units = out
		default:
			return nil, ErrUnsupportedOperation{}
		}
	}
	return string(utf16.Decode(units)), nil
}

func (TEXT0) Inverse(o json.RawMessage) (json.RawMessage, error) {
	var ops []TextOp
	if err := json.Unmarshal(o, &ops); err != nil {
		return nil, err
	}
	inv := make([]TextOp, len(ops))
	for i, op := range ops {
		inv[len(ops)-1-i] = TextOp{P: op.P, I: op.D, D: op.I}
	}
	return json.Marshal(inv)
}

func offsetOf(p Path) (int, bool) {
	last, ok := p.Last()
	if !ok {
		return 0, false
	}
	i, ok := last.(int)
	return i, ok
}

func equalUnits(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

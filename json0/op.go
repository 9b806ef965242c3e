package json0

import (
	"encoding/json"

	"github.com/homveloper/sharedb-client/value"
)

// Op is a single JSON0 operation. Every op carries a path; exactly
// one of the keyed forms below (oi/od/li/ld/na/si/sd/t+o) must be
// present, checked by Kind. Presence is tracked with explicit "has"
// flags rather than nil checks because a present field may itself be
// JSON null (e.g. {"oi": null}), which must be distinguishable from
// the field being absent.
type Op struct {
	P Path

	HasOI bool
	OI    interface{}

	HasOD bool
	OD    interface{}

	HasLI bool
	LI    interface{}

	HasLD bool
	LD    interface{}

	HasNA bool
	NA    interface{}

	HasSI bool
	SI    string

	HasSD bool
	SD    string

	T string
	O json.RawMessage
}

// Path is an alias so callers of this package don't need to import
// value directly for the common case of constructing operations.
type Path = value.Path

// Form identifies which keyed form an Op carries.
type Form int

const (
	FormInvalid Form = iota
	FormObjectInsert
	FormObjectDelete
	FormObjectReplace
	FormListInsert
	FormListDelete
	FormListReplace
	FormNumberAdd
	FormStringInsert
	FormStringDelete
	FormSubtype
)

// Kind classifies which keyed form o carries, per the mutually
// exclusive table in SPEC_FULL.md §4.2. Malformed ops (zero or
// conflicting forms) return FormInvalid.
func (o Op) Kind() Form {
	forms := 0
	for _, present := range []bool{o.HasOI || o.HasOD, o.HasLI || o.HasLD, o.HasNA, o.HasSI, o.HasSD, o.T != ""} {
		if present {
			forms++
		}
	}
	if forms > 1 {
		return FormInvalid
	}
	switch {
	case o.HasOI && o.HasOD:
		return FormObjectReplace
	case o.HasOI:
		return FormObjectInsert
	case o.HasOD:
		return FormObjectDelete
	case o.HasLI && o.HasLD:
		return FormListReplace
	case o.HasLI:
		return FormListInsert
	case o.HasLD:
		return FormListDelete
	case o.HasNA:
		return FormNumberAdd
	case o.HasSI:
		return FormStringInsert
	case o.HasSD:
		return FormStringDelete
	case o.T != "":
		return FormSubtype
	default:
		return FormInvalid
	}
}

type wireOp struct {
	P  Path            `json:"p"`
	OI json.RawMessage `json:"oi,omitempty"`
	OD json.RawMessage `json:"od,omitempty"`
	LI json.RawMessage `json:"li,omitempty"`
	LD json.RawMessage `json:"ld,omitempty"`
	NA json.RawMessage `json:"na,omitempty"`
	SI *string         `json:"si,omitempty"`
	SD *string         `json:"sd,omitempty"`
	T  string          `json:"t,omitempty"`
	O  json.RawMessage `json:"o,omitempty"`
}

// MarshalJSON encodes the op using the short wire field names.
func (o Op) MarshalJSON() ([]byte, error) {
	w := wireOp{P: o.P, T: o.T, O: o.O}
	var err error
	if o.HasOI {
		if w.OI, err = value.Encode(o.OI); err != nil {
			return nil, err
		}
	}
	if o.HasOD {
		if w.OD, err = value.Encode(o.OD); err != nil {
			return nil, err
		}
	}
	if o.HasLI {
		if w.LI, err = value.Encode(o.LI); err != nil {
			return nil, err
		}
	}
	if o.HasLD {
		if w.LD, err = value.Encode(o.LD); err != nil {
			return nil, err
		}
	}
	if o.HasNA {
		if w.NA, err = value.Encode(o.NA); err != nil {
			return nil, err
		}
	}
	if o.HasSI {
		w.SI = &o.SI
	}
	if o.HasSD {
		w.SD = &o.SD
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a wire op, distinguishing an absent key from a
// present key whose value is JSON null.
func (o *Op) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Op
	if p, ok := raw["p"]; ok {
		if err := json.Unmarshal(p, &out.P); err != nil {
			return err
		}
	}
	if v, ok := raw["oi"]; ok {
		out.HasOI = true
		decoded, err := value.Decode(v)
		if err != nil {
			return err
		}
		out.OI = decoded
	}
	if v, ok := raw["od"]; ok {
		out.HasOD = true
		decoded, err := value.Decode(v)
		if err != nil {
			return err
		}
		out.OD = decoded
	}
	if v, ok := raw["li"]; ok {
		out.HasLI = true
		decoded, err := value.Decode(v)
		if err != nil {
			return err
		}
		out.LI = decoded
	}
	if v, ok := raw["ld"]; ok {
		out.HasLD = true
		decoded, err := value.Decode(v)
		if err != nil {
			return err
		}
		out.LD = decoded
	}
	if v, ok := raw["na"]; ok {
		out.HasNA = true
		decoded, err := value.Decode(v)
		if err != nil {
			return err
		}
		out.NA = decoded
	}
	if v, ok := raw["si"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		out.HasSI = true
		out.SI = s
	}
	if v, ok := raw["sd"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		out.HasSD = true
		out.SD = s
	}
	if v, ok := raw["t"]; ok {
		if err := json.Unmarshal(v, &out.T); err != nil {
			return err
		}
	}
	if v, ok := raw["o"]; ok {
		out.O = v
	}

	*o = out
	return nil
}

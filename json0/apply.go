package json0

import (
	"unicode/utf16"

	"github.com/homveloper/sharedb-client/value"
)

// Apply applies ops in list order against v, returning the resulting
// value. Ops are applied strictly in order with no internal
// reordering. If any op fails, v is returned unchanged: Apply clones
// v once up front and only returns the clone on full success, so a
// mid-list failure never leaves the caller's value partially mutated.
func Apply(ops []Op, v interface{}) (interface{}, error) {
	return ApplyWithSubtypes(ops, v, DefaultSubtypes)
}

// ApplyWithSubtypes is Apply parameterized over the subtype registry,
// for callers that register additional embedded OT types.
func ApplyWithSubtypes(ops []Op, v interface{}, subtypes SubtypeRegistry) (interface{}, error) {
	clone := value.Clone(v)
	for _, op := range ops {
		if err := applyOne(op, &clone, subtypes); err != nil {
			return v, err
		}
	}
	return clone, nil
}

func applyOne(op Op, root *interface{}, subtypes SubtypeRegistry) error {
	if len(op.P) == 0 {
		return ErrInvalidPath{Path: op.P, Reason: "empty path"}
	}

	switch op.Kind() {
	case FormObjectInsert:
		return applyObjectInsert(op, root)
	case FormObjectDelete:
		return applyObjectDelete(op, root)
	case FormObjectReplace:
		return applyObjectReplace(op, root)
	case FormListInsert:
		return applyListInsert(op, root)
	case FormListDelete:
		return applyListDelete(op, root)
	case FormListReplace:
		return applyListReplace(op, root)
	case FormNumberAdd:
		return applyNumberAdd(op, root)
	case FormStringInsert:
		return applyStringInsert(op, root)
	case FormStringDelete:
		return applyStringDelete(op, root)
	case FormSubtype:
		return applySubtype(op, root, subtypes)
	default:
		return ErrUnsupportedOperation{Path: op.P}
	}
}

func objectKey(p Path) (string, error) {
	last, _ := p.Last()
	key, ok := last.(string)
	if !ok {
		return "", ErrInvalidPath{Path: p, Reason: "object op requires a string key"}
	}
	return key, nil
}

func listIndex(p Path) (int, error) {
	last, _ := p.Last()
	idx, ok := last.(int)
	if !ok {
		return 0, ErrInvalidPath{Path: p, Reason: "list op requires an integer index"}
	}
	return idx, nil
}

func applyObjectInsert(op Op, root *interface{}) error {
	if _, err := objectKey(op.P); err != nil {
		return err
	}
	current, err := value.Get(*root, op.P)
	if err != nil {
		return err
	}
	if !value.IsUndefined(current) {
		return ErrOldDataMismatch{Path: op.P, Expected: value.Undefined, Actual: current}
	}
	return value.Set(root, op.P, op.OI)
}

func applyObjectDelete(op Op, root *interface{}) error {
	if _, err := objectKey(op.P); err != nil {
		return err
	}
	current, err := value.Get(*root, op.P)
	if err != nil {
		return err
	}
	if !value.Equal(current, op.OD) {
		return ErrOldDataMismatch{Path: op.P, Expected: op.OD, Actual: current}
	}
	return value.Delete(root, op.P)
}

func applyObjectReplace(op Op, root *interface{}) error {
	if _, err := objectKey(op.P); err != nil {
		return err
	}
	current, err := value.Get(*root, op.P)
	if err != nil {
		return err
	}
	if !value.Equal(current, op.OD) {
		return ErrOldDataMismatch{Path: op.P, Expected: op.OD, Actual: current}
	}
	return value.Set(root, op.P, op.OI)
}

func getArray(root interface{}, parent Path) ([]interface{}, error) {
	v, err := value.Get(root, parent)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, ErrInvalidPath{Path: parent, Reason: "parent is not an array"}
	}
	return arr, nil
}

func applyListInsert(op Op, root *interface{}) error {
	idx, err := listIndex(op.P)
	if err != nil {
		return err
	}
	parent := op.P.Parent()
	arr, err := getArray(*root, parent)
	if err != nil {
		return err
	}
	if idx < 0 || idx > len(arr) {
		return ErrInvalidPath{Path: op.P, Reason: "list insert index out of range"}
	}
	out := make([]interface{}, 0, len(arr)+1)
	out = append(out, arr[:idx]...)
	out = append(out, op.LI)
	out = append(out, arr[idx:]...)
	return value.Set(root, parent, out)
}

func applyListDelete(op Op, root *interface{}) error {
	idx, err := listIndex(op.P)
	if err != nil {
		return err
	}
	parent := op.P.Parent()
	arr, err := getArray(*root, parent)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(arr) {
		return ErrIndexOutOfRange{Path: op.P, Index: idx, Len: len(arr)}
	}
	if !value.Equal(arr[idx], op.LD) {
		return ErrOldDataMismatch{Path: op.P, Expected: op.LD, Actual: arr[idx]}
	}
	out := make([]interface{}, 0, len(arr)-1)
	out = append(out, arr[:idx]...)
	out = append(out, arr[idx+1:]...)
	return value.Set(root, parent, out)
}

func applyListReplace(op Op, root *interface{}) error {
	idx, err := listIndex(op.P)
	if err != nil {
		return err
	}
	parent := op.P.Parent()
	arr, err := getArray(*root, parent)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(arr) {
		return ErrIndexOutOfRange{Path: op.P, Index: idx, Len: len(arr)}
	}
	if !value.Equal(arr[idx], op.LD) {
		return ErrOldDataMismatch{Path: op.P, Expected: op.LD, Actual: arr[idx]}
	}
	out := make([]interface{}, len(arr))
	copy(out, arr)
	out[idx] = op.LI
	return value.Set(root, parent, out)
}

func applyNumberAdd(op Op, root *interface{}) error {
	current, err := value.Get(*root, op.P)
	if err != nil {
		return err
	}
	switch cur := current.(type) {
	case int64:
		delta, ok := op.NA.(int64)
		if !ok {
			return ErrInvalidJSONData{Path: op.P, Reason: "na must be an integer to add to an integer value"}
		}
		return value.Set(root, op.P, cur+delta)
	case float64:
		delta, ok := op.NA.(float64)
		if !ok {
			return ErrInvalidJSONData{Path: op.P, Reason: "na must be a decimal to add to a decimal value"}
		}
		return value.Set(root, op.P, cur+delta)
	default:
		return ErrInvalidJSONData{Path: op.P, Reason: "na target is not numeric"}
	}
}

// String offsets are UTF-16 code units (SPEC_FULL.md §10 decision 3),
// the same encoding text0.go uses for its embedded subtype, so a si/sd
// op and a t:"text0" op addressing the same string agree on offsets.

func applyStringInsert(op Op, root *interface{}) error {
	stringPath := op.P.Parent()
	offset, err := listIndex(op.P)
	if err != nil {
		return err
	}
	current, err := value.Get(*root, stringPath)
	if err != nil {
		return err
	}
	s, ok := current.(string)
	if !ok {
		return ErrInvalidPath{Path: op.P, Reason: "si target is not a string"}
	}
	units := utf16.Encode([]rune(s))
	if offset < 0 || offset > len(units) {
		return ErrIndexOutOfRange{Path: op.P, Index: offset, Len: len(units)}
	}
	ins := utf16.Encode([]rune(op.SI))
	out := make([]uint16, 0, len(units)+len(ins))
	out = append(out, units[:offset]...)
	out = append(out, ins...)
	out = append(out, units[offset:]...)
	return value.Set(root, stringPath, string(utf16.Decode(out)))
}

func applyStringDelete(op Op, root *interface{}) error {
	stringPath := op.P.Parent()
	offset, err := listIndex(op.P)
	if err != nil {
		return err
	}
	current, err := value.Get(*root, stringPath)
	if err != nil {
		return err
	}
	s, ok := current.(string)
	if !ok {
		return ErrInvalidPath{Path: op.P, Reason: "sd target is not a string"}
	}
	units := utf16.Encode([]rune(s))
	del := utf16.Encode([]rune(op.SD))
	if offset < 0 || offset+len(del) > len(units) {
		return ErrIndexOutOfRange{Path: op.P, Index: offset, Len: len(units)}
	}
	actual := units[offset : offset+len(del)]
	if !equalUnits(actual, del) {
		return ErrOldDataMismatch{Path: op.P, Expected: op.SD, Actual: string(utf16.Decode(actual))}
	}
	out := make([]uint16, 0, len(units)-len(del))
	out = append(out, units[:offset]...)
	out = append(out, units[offset+len(del):]...)
	return value.Set(root, stringPath, string(utf16.Decode(out)))
}

func applySubtype(op Op, root *interface{}, subtypes SubtypeRegistry) error {
	sub, ok := subtypes[op.T]
	if !ok {
		return ErrUnsupportedSubtype{Path: op.P, Type: op.T}
	}
	current, err := value.Get(*root, op.P)
	if err != nil {
		return err
	}
	newVal, err := sub.Apply(op.O, current)
	if err != nil {
		return err
	}
	return value.Set(root, op.P, newVal)
}

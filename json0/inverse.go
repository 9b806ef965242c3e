package json0

// Inverse returns a new op list that, applied to the post-state,
// yields the pre-state: the reverse of ops, with each op rewritten
// per the table in SPEC_FULL.md §4.2 (oi<->od, li<->ld, si<->sd swap;
// na negates; subtype inverts its inner ops; path passes through
// unchanged).
func Inverse(ops []Op) ([]Op, error) {
	return InverseWithSubtypes(ops, DefaultSubtypes)
}

// InverseWithSubtypes is Inverse parameterized over the subtype
// registry used to invert t/o ops.
func InverseWithSubtypes(ops []Op, subtypes SubtypeRegistry) ([]Op, error) {
	out := make([]Op, len(ops))
	for i, op := range ops {
		inv, err := inverseOne(op, subtypes)
		if err != nil {
			return nil, err
		}
		out[len(ops)-1-i] = inv
	}
	return out, nil
}

func inverseOne(op Op, subtypes SubtypeRegistry) (Op, error) {
	inv := Op{P: op.P}

	switch op.Kind() {
	case FormObjectInsert:
		inv.HasOD, inv.OD = true, op.OI
	case FormObjectDelete:
		inv.HasOI, inv.OI = true, op.OD
	case FormObjectReplace:
		inv.HasOI, inv.OI = true, op.OD
		inv.HasOD, inv.OD = true, op.OI
	case FormListInsert:
		inv.HasLD, inv.LD = true, op.LI
	case FormListDelete:
		inv.HasLI, inv.LI = true, op.LD
	case FormListReplace:
		inv.HasLI, inv.LI = true, op.LD
		inv.HasLD, inv.LD = true, op.LI
	case FormNumberAdd:
		inv.HasNA = true
		switch n := op.NA.(type) {
		case int64:
			inv.NA = -n
		case float64:
			inv.NA = -n
		default:
			return Op{}, ErrInvalidJSONData{Path: op.P, Reason: "na value is not numeric"}
		}
	case FormStringInsert:
		inv.HasSD, inv.SD = true, op.SI
	case FormStringDelete:
		inv.HasSI, inv.SI = true, op.SD
	case FormSubtype:
		sub, ok := subtypes[op.T]
		if !ok {
			return Op{}, ErrUnsupportedSubtype{Path: op.P, Type: op.T}
		}
		invOps, err := sub.Inverse(op.O)
		if err != nil {
			return Op{}, err
		}
		inv.T = op.T
		inv.O = invOps
	default:
		return Op{}, ErrUnsupportedOperation{Path: op.P}
	}

	return inv, nil
}

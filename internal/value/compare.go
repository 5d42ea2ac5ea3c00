package value

// Compare returns -1/0/1 for an ordering comparison between two
// numeric, string, or boolean values. It is the shared core behind
// the comparison opcodes and Equal/StrictEqual.
func Compare(left, right Value) (int, *Error) {
	if ls, ok := left.(String); ok {
		if rs, ok := right.(String); ok {
			switch {
			case ls < rs:
				return -1, nil
			case ls > rs:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if lb, ok := left.(Boolean); ok {
		if rb, ok := right.(Boolean); ok {
			switch {
			case !bool(lb) && bool(rb):
				return -1, nil
			case bool(lb) && !bool(rb):
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if ll, ok := collectionLen(left); ok {
		if rl, ok := collectionLen(right); ok {
			switch {
			case ll < rl:
				return -1, nil
			case ll > rl:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	ld, lok := asDecimal(left)
	rd, rok := asDecimal(right)
	if !lok || !rok {
		return 0, NewError(ErrTypeMismatch, "cannot compare %s and %s", left.Type(), right.Type())
	}
	target := maxU32(ld.FracDigits, rd.FracDigits)
	a := ld.Rescale(target).Coefficient
	b := rd.Rescale(target).Coefficient
	return a.Cmp(b), nil
}

// collectionLen reports the length ordering comparisons use for
// Array/Object/Range, since those have no natural numeric value.
func collectionLen(v Value) (int64, bool) {
	switch c := v.(type) {
	case *Array:
		return int64(len(c.Elements)), true
	case *Object:
		return int64(c.Len()), true
	case *Range:
		return c.Len(), true
	default:
		return 0, false
	}
}

// Equal is value equality: numerics compare by value across
// Integer/Decimal, strings/booleans by identity, arrays/objects
// structurally.
func Equal(left, right Value) bool {
	if left.Type() != right.Type() {
		if isNumeric(left) && isNumeric(right) {
			cmp, err := Compare(left, right)
			return err == nil && cmp == 0
		}
		return false
	}
	switch l := left.(type) {
	case *Array:
		r := right.(*Array)
		if len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !Equal(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		r := right.(*Object)
		if len(l.keys) != len(r.keys) {
			return false
		}
		for _, k := range l.keys {
			rv, ok := r.Get(k)
			if !ok {
				return false
			}
			lv, _ := l.Get(k)
			if !Equal(lv, rv) {
				return false
			}
		}
		return true
	case *Range:
		r := right.(*Range)
		return l.Start == r.Start && l.End == r.End
	default:
		cmp, err := Compare(left, right)
		if err == nil {
			return cmp == 0
		}
		return left.String() == right.String()
	}
}

// StrictEqual additionally requires identical concrete types —
// `1 === 1.0` is false where Equal would be true.
func StrictEqual(left, right Value) bool {
	if left.Type() != right.Type() {
		return false
	}
	return Equal(left, right)
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case *Integer, *Decimal:
		return true
	default:
		return false
	}
}

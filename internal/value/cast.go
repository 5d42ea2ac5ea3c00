package value

import "math/big"

// Cast implements the CAST/LCST opcode family's rules: a fixed table
// of legal (from, to) pairs, everything else is a typed TypeMismatch
// rather than best-effort coercion.
func Cast(v Value, to string) (Value, *Error) {
	if TypeNameMatches(to, v.Type()) && !isCollectiveName(to) {
		return v, nil
	}
	switch to {
	case "bool":
		return Boolean(v.Truthy()), nil
	case "int":
		return castToInt(v)
	case "decimal":
		return castToDecimal(v)
	case "string":
		return String(v.String()), nil
	case "array":
		return castToArray(v)
	case "object":
		return castToObject(v)
	case "range":
		if r, ok := v.(*Range); ok {
			return r, nil
		}
		return nil, NewError(ErrTypeMismatch, "cannot cast %s to range", v.Type())
	default:
		return nil, NewError(ErrTypeMismatch, "unknown cast target %q", to)
	}
}

func isCollectiveName(name string) bool {
	switch name {
	case "numeric", "primitive", "collection", "all", "":
		return true
	default:
		return false
	}
}

func castToInt(v Value) (Value, *Error) {
	switch n := v.(type) {
	case *Integer:
		return n, nil
	case *Decimal:
		zero := uint32(0)
		rounded := (&Decimal{Coefficient: n.Coefficient, FracDigits: n.FracDigits, Precision: &zero}).resolve()
		return &Integer{v: rounded.Coefficient}, nil
	case Boolean:
		if n {
			return NewIntegerFromInt64(1), nil
		}
		return NewIntegerFromInt64(0), nil
	case String:
		i, err := ParseInteger(string(n))
		if err != nil {
			return nil, NewError(ErrTypeMismatch, "cannot cast %q to int: %v", string(n), err)
		}
		return i, nil
	default:
		return nil, NewError(ErrTypeMismatch, "cannot cast %s to int", v.Type())
	}
}

func castToDecimal(v Value) (Value, *Error) {
	switch n := v.(type) {
	case *Decimal:
		return n, nil
	case *Integer:
		return &Decimal{Coefficient: n.Big(), FracDigits: 0}, nil
	case Boolean:
		if n {
			return NewDecimal(big.NewInt(1), 0), nil
		}
		return NewDecimal(big.NewInt(0), 0), nil
	case String:
		d, err := ParseDecimal(string(n))
		if err != nil {
			return nil, NewError(ErrTypeMismatch, "cannot cast %q to decimal: %v", string(n), err)
		}
		return d, nil
	default:
		return nil, NewError(ErrTypeMismatch, "cannot cast %s to decimal", v.Type())
	}
}

func castToArray(v Value) (Value, *Error) {
	switch n := v.(type) {
	case *Array:
		return n, nil
	case *Range:
		return n.ToArray(), nil
	case *Object:
		return &Array{Elements: n.Values()}, nil
	case String:
		runes := []rune(string(n))
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = String(string(r))
		}
		return &Array{Elements: out}, nil
	default:
		return &Array{Elements: []Value{v}}, nil
	}
}

func castToObject(v Value) (Value, *Error) {
	switch n := v.(type) {
	case *Object:
		return n, nil
	case *Array:
		obj := NewObject()
		for i, elem := range n.Elements {
			if err := obj.SetByValue(NewIntegerFromInt64(int64(i)), elem); err != nil {
				return nil, err
			}
		}
		return obj, nil
	default:
		return nil, NewError(ErrTypeMismatch, "cannot cast %s to object", v.Type())
	}
}

package value

import "math/big"

// Bitwise operators are integer-only; bool operands are accepted and
// promoted to 0/1 so `true & false` behaves as the logical-and a
// calculator user expects from a language without a distinct bitwise
// boolean type.

func toBitwiseInt(v Value) (*big.Int, bool) {
	switch n := v.(type) {
	case *Integer:
		return n.v, true
	case Boolean:
		if n {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	default:
		return nil, false
	}
}

func bitwiseOp(op string, left, right Value, f func(z, x, y *big.Int) *big.Int) (Value, *Error) {
	lb, lok := toBitwiseInt(left)
	rb, rok := toBitwiseInt(right)
	if !lok || !rok {
		return nil, NewError(ErrTypeMismatch, "cannot apply bitwise %s to %s and %s", op, left.Type(), right.Type())
	}
	z := new(big.Int)
	f(z, lb, rb)
	if !inRange128(z) {
		return nil, NewError(ErrOverflow, "bitwise %s overflows 128 bits", op)
	}
	return &Integer{v: z}, nil
}

func BitAnd(left, right Value) (Value, *Error) {
	return bitwiseOp("and", left, right, func(z, x, y *big.Int) *big.Int { return z.And(x, y) })
}

func BitOr(left, right Value) (Value, *Error) {
	return bitwiseOp("or", left, right, func(z, x, y *big.Int) *big.Int { return z.Or(x, y) })
}

func BitXor(left, right Value) (Value, *Error) {
	return bitwiseOp("xor", left, right, func(z, x, y *big.Int) *big.Int { return z.Xor(x, y) })
}

func Shl(left, right Value) (Value, *Error) {
	lb, lok := toBitwiseInt(left)
	rb, rok := toBitwiseInt(right)
	if !lok || !rok || rb.Sign() < 0 {
		return nil, NewError(ErrTypeMismatch, "cannot shift %s by %s", left.Type(), right.Type())
	}
	z := new(big.Int).Lsh(lb, uint(rb.Uint64()))
	if !inRange128(z) {
		return nil, NewError(ErrOverflow, "left shift overflows 128 bits")
	}
	return &Integer{v: z}, nil
}

func Shr(left, right Value) (Value, *Error) {
	lb, lok := toBitwiseInt(left)
	rb, rok := toBitwiseInt(right)
	if !lok || !rok || rb.Sign() < 0 {
		return nil, NewError(ErrTypeMismatch, "cannot shift %s by %s", left.Type(), right.Type())
	}
	z := new(big.Int).Rsh(lb, uint(rb.Uint64()))
	return &Integer{v: z}, nil
}

func BitNot(v Value) (Value, *Error) {
	n, ok := toBitwiseInt(v)
	if !ok {
		return nil, NewError(ErrTypeMismatch, "cannot bitwise-negate %s", v.Type())
	}
	z := new(big.Int).Not(n)
	if !inRange128(z) {
		return nil, NewError(ErrOverflow, "bitwise negation overflows 128 bits")
	}
	return &Integer{v: z}, nil
}

package value

import (
	"math"
	"math/big"
)

// Add, Sub, Mul, Div, Mod implement the checked arithmetic family:
// Integer op Integer stays Integer (checked against the 128-bit
// window), any mix involving a Decimal promotes both sides to the
// coarser-then-finer FracDigits, and a currency symbol survives only
// when both operands carry the same one. Nothing here ever panics —
// overflow and type mismatches come back as *Error.

func asDecimal(v Value) (*Decimal, bool) {
	switch n := v.(type) {
	case *Decimal:
		return n, true
	case *Integer:
		return &Decimal{Coefficient: n.Big(), FracDigits: 0}, true
	default:
		return nil, false
	}
}

func alignCurrency(a, b *Decimal) *CurrencySymbol {
	if a.Currency == nil || b.Currency == nil {
		return nil
	}
	if *a.Currency == *b.Currency {
		return a.Currency
	}
	return nil
}

func alignPrecision(a, b *Decimal) *uint32 {
	if a.Precision != nil {
		return a.Precision
	}
	return b.Precision
}

func checkedInt(op string, f func(z, x, y *big.Int) *big.Int, a, b *Integer) (Value, *Error) {
	z := new(big.Int)
	f(z, a.v, b.v)
	if !inRange128(z) {
		return nil, NewError(ErrOverflow, "integer %s overflows 128 bits", op)
	}
	return &Integer{v: z}, nil
}

func decimalBinOp(a, b *Decimal, f func(ac, bc *big.Int) *big.Int, fracDigits func(af, bf uint32) uint32) (Value, *Error) {
	target := fracDigits(a.FracDigits, b.FracDigits)
	ar := a.Rescale(target)
	br := b.Rescale(target)
	z := f(ar.Coefficient, br.Coefficient)
	if !inRange128(z) {
		return nil, NewError(ErrOverflow, "decimal arithmetic overflows 128-bit coefficient")
	}
	d := &Decimal{
		Coefficient: z,
		FracDigits:  target,
		Currency:    alignCurrency(a, b),
		Precision:   alignPrecision(a, b),
	}
	return d.resolve(), nil
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func Add(left, right Value) (Value, *Error) {
	if li, ok := left.(*Integer); ok {
		if ri, ok := right.(*Integer); ok {
			return checkedInt("addition", func(z, x, y *big.Int) *big.Int { return z.Add(x, y) }, li, ri)
		}
	}
	if ls, ok := left.(String); ok {
		if rs, ok := right.(String); ok {
			return ls + rs, nil
		}
	}
	if la, ok := left.(*Array); ok {
		if ra, ok := right.(*Array); ok {
			out := make([]Value, 0, len(la.Elements)+len(ra.Elements))
			out = append(out, la.Elements...)
			out = append(out, ra.Elements...)
			return &Array{Elements: out}, nil
		}
	}
	ld, lok := asDecimal(left)
	rd, rok := asDecimal(right)
	if !lok || !rok {
		return nil, NewError(ErrTypeMismatch, "cannot add %s and %s", left.Type(), right.Type())
	}
	return decimalBinOp(ld, rd, func(ac, bc *big.Int) *big.Int { return new(big.Int).Add(ac, bc) }, maxU32)
}

func Sub(left, right Value) (Value, *Error) {
	if li, ok := left.(*Integer); ok {
		if ri, ok := right.(*Integer); ok {
			return checkedInt("subtraction", func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) }, li, ri)
		}
	}
	ld, lok := asDecimal(left)
	rd, rok := asDecimal(right)
	if !lok || !rok {
		return nil, NewError(ErrTypeMismatch, "cannot subtract %s and %s", left.Type(), right.Type())
	}
	return decimalBinOp(ld, rd, func(ac, bc *big.Int) *big.Int { return new(big.Int).Sub(ac, bc) }, maxU32)
}

func Mul(left, right Value) (Value, *Error) {
	if li, ok := left.(*Integer); ok {
		if ri, ok := right.(*Integer); ok {
			return checkedInt("multiplication", func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) }, li, ri)
		}
	}
	if la, ok := left.(*Array); ok {
		if ri, ok := right.(*Integer); ok {
			return repeatArray(la, ri)
		}
	}
	if ls, ok := left.(String); ok {
		if ri, ok := right.(*Integer); ok {
			n := ri.Big().Int64()
			if n < 0 {
				return nil, NewError(ErrInvalidRange, "cannot repeat string a negative number of times")
			}
			out := ""
			for i := int64(0); i < n; i++ {
				out += string(ls)
			}
			return String(out), nil
		}
	}
	ld, lok := asDecimal(left)
	rd, rok := asDecimal(right)
	if !lok || !rok {
		return nil, NewError(ErrTypeMismatch, "cannot multiply %s and %s", left.Type(), right.Type())
	}
	target := ld.FracDigits + rd.FracDigits
	z := new(big.Int).Mul(ld.Coefficient, rd.Coefficient)
	if !inRange128(z) {
		return nil, NewError(ErrOverflow, "decimal multiplication overflows 128-bit coefficient")
	}
	d := &Decimal{Coefficient: z, FracDigits: target, Currency: alignCurrency(ld, rd), Precision: alignPrecision(ld, rd)}
	return d.resolve(), nil
}

func repeatArray(a *Array, n *Integer) (Value, *Error) {
	count := n.Big().Int64()
	if count < 0 {
		return nil, NewError(ErrInvalidRange, "cannot repeat array a negative number of times")
	}
	out := make([]Value, 0, int64(len(a.Elements))*count)
	for i := int64(0); i < count; i++ {
		out = append(out, a.Elements...)
	}
	return &Array{Elements: out}, nil
}

func Div(left, right Value) (Value, *Error) {
	if li, ok := left.(*Integer); ok {
		if ri, ok := right.(*Integer); ok {
			if ri.v.Sign() == 0 {
				return nil, NewError(ErrDivideByZero, "integer division by zero")
			}
			q := new(big.Int)
			r := new(big.Int)
			q.QuoRem(li.v, ri.v, r)
			if r.Sign() != 0 {
				// Falls through to decimal division so `3 / 2` yields
				// a fixed-point result rather than truncating.
			} else {
				return &Integer{v: q}, nil
			}
		}
	}
	ld, lok := asDecimal(left)
	rd, rok := asDecimal(right)
	if !lok || !rok {
		return nil, NewError(ErrTypeMismatch, "cannot divide %s and %s", left.Type(), right.Type())
	}
	if rd.Coefficient.Sign() == 0 {
		return nil, NewError(ErrDivideByZero, "decimal division by zero")
	}
	const extraDigits = 18
	scale := pow10(extraDigits + rd.FracDigits)
	num := new(big.Int).Mul(ld.Coefficient, scale)
	denom := new(big.Int).Mul(rd.Coefficient, pow10(ld.FracDigits))
	z := new(big.Int).Quo(num, denom)
	if !inRange128(z) {
		return nil, NewError(ErrOverflow, "decimal division overflows 128-bit coefficient")
	}
	d := &Decimal{Coefficient: z, FracDigits: extraDigits, Currency: alignCurrency(ld, rd), Precision: alignPrecision(ld, rd)}
	return d.resolve(), nil
}

func Mod(left, right Value) (Value, *Error) {
	if li, ok := left.(*Integer); ok {
		if ri, ok := right.(*Integer); ok {
			if ri.v.Sign() == 0 {
				return nil, NewError(ErrDivideByZero, "integer modulo by zero")
			}
			z := new(big.Int).Rem(li.v, ri.v)
			return &Integer{v: z}, nil
		}
	}
	ld, lok := asDecimal(left)
	rd, rok := asDecimal(right)
	if !lok || !rok {
		return nil, NewError(ErrTypeMismatch, "cannot modulo %s and %s", left.Type(), right.Type())
	}
	if rd.Coefficient.Sign() == 0 {
		return nil, NewError(ErrDivideByZero, "decimal modulo by zero")
	}
	target := maxU32(ld.FracDigits, rd.FracDigits)
	ar := ld.Rescale(target)
	br := rd.Rescale(target)
	z := new(big.Int).Rem(ar.Coefficient, br.Coefficient)
	d := &Decimal{Coefficient: z, FracDigits: target, Currency: alignCurrency(ld, rd), Precision: alignPrecision(ld, rd)}
	return d.resolve(), nil
}

func Pow(left, right Value) (Value, *Error) {
	li, lok := left.(*Integer)
	ri, rok := right.(*Integer)
	if lok && rok && ri.v.Sign() >= 0 {
		z := new(big.Int).Exp(li.v, ri.v, nil)
		if !inRange128(z) {
			return nil, NewError(ErrOverflow, "integer exponentiation overflows 128 bits")
		}
		return &Integer{v: z}, nil
	}
	ld, lok2 := asDecimal(left)
	rd, rok2 := asDecimal(right)
	if !lok2 || !rok2 {
		return nil, NewError(ErrTypeMismatch, "cannot raise %s to %s", left.Type(), right.Type())
	}
	base := ld.Float()
	exp := rd.Float()
	return decimalFromFloat(math.Pow(base, exp)), nil
}

func decimalFromFloat(f float64) *Decimal {
	d, err := ParseDecimal(trimFloat(f))
	if err != nil {
		return NewDecimal(big.NewInt(0), 0)
	}
	return d
}

func trimFloat(f float64) string {
	return bigFloatString(f)
}

func bigFloatString(f float64) string {
	bf := new(big.Float).SetFloat64(f)
	return bf.Text('f', 18)
}

func Neg(v Value) (Value, *Error) {
	switch n := v.(type) {
	case *Integer:
		z := new(big.Int).Neg(n.v)
		if !inRange128(z) {
			return nil, NewError(ErrOverflow, "negation overflows 128 bits")
		}
		return &Integer{v: z}, nil
	case *Decimal:
		z := new(big.Int).Neg(n.Coefficient)
		return &Decimal{Coefficient: z, FracDigits: n.FracDigits, Currency: n.Currency, Precision: n.Precision}, nil
	default:
		return nil, NewError(ErrTypeMismatch, "cannot negate %s", v.Type())
	}
}

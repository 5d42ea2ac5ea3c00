package value

import (
	"fmt"
	"math/big"
	"strings"
)

// int128Min/Max bound every Integer and every Decimal coefficient —
// the wire format (see internal/bytecode) stores both as a 16-byte
// two's-complement i128, so every checked arithmetic op must reject
// results outside this window rather than let big.Int grow past it.
var (
	int128Max = mustParse("170141183460469231731687303715884105727")
	int128Min = mustParse("-170141183460469231731687303715884105728")
)

func mustParse(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("value: bad int128 literal " + s)
	}
	return n
}

func inRange128(n *big.Int) bool {
	return n.Cmp(int128Min) >= 0 && n.Cmp(int128Max) <= 0
}

// Integer is a checked 128-bit signed integer.
type Integer struct {
	v *big.Int
}

func NewInteger(v *big.Int) *Integer { return &Integer{v: new(big.Int).Set(v)} }

func NewIntegerFromInt64(v int64) *Integer { return &Integer{v: big.NewInt(v)} }

// ParseInteger parses the raw digit lexeme produced by the lexer.
func ParseInteger(text string) (*Integer, error) {
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("value: invalid integer literal %q", text)
	}
	if !inRange128(n) {
		return nil, fmt.Errorf("value: integer literal %q overflows 128 bits", text)
	}
	return &Integer{v: n}, nil
}

func (i *Integer) Type() Type     { return TypeInteger }
func (i *Integer) String() string { return i.v.String() }
func (i *Integer) Truthy() bool   { return i.v.Sign() != 0 }
func (i *Integer) Big() *big.Int  { return new(big.Int).Set(i.v) }

// CurrencySymbol describes a fixed-point Decimal's optional display
// symbol — attached to a prefix ("$", "€") or suffix ("USD", "%").
type CurrencySymbol struct {
	Symbol string
	Suffix bool
}

func (c *CurrencySymbol) String() string {
	if c == nil {
		return ""
	}
	return c.Symbol
}

// Decimal is a fixed-point number: an unbounded-until-checked 128-bit
// coefficient plus a count of fractional digits, optionally tagged
// with a currency symbol and a display precision. Every write (every
// arithmetic result) is rounded to Precision when Precision is set
// (resolve-on-write).
type Decimal struct {
	Coefficient *big.Int
	FracDigits  uint32
	Currency    *CurrencySymbol
	Precision   *uint32
}

var tenPow = map[uint32]*big.Int{}

func pow10(n uint32) *big.Int {
	if v, ok := tenPow[n]; ok {
		return v
	}
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	tenPow[n] = v
	return v
}

// NewDecimal builds a Decimal from a coefficient/frac_digits pair and
// immediately resolves it (applies precision rounding).
func NewDecimal(coeff *big.Int, fracDigits uint32) *Decimal {
	d := &Decimal{Coefficient: new(big.Int).Set(coeff), FracDigits: fracDigits}
	return d.resolve()
}

// resolve rounds the coefficient to Precision fractional digits (half
// away from zero) if Precision is set and coarser than FracDigits.
func (d *Decimal) resolve() *Decimal {
	if d.Precision == nil || *d.Precision >= d.FracDigits {
		return d
	}
	drop := d.FracDigits - *d.Precision
	divisor := pow10(drop)
	half := new(big.Int).Rsh(divisor, 1)
	q, r := new(big.Int).QuoRem(d.Coefficient, divisor, new(big.Int))
	r.Abs(r)
	if r.Cmp(half) >= 0 {
		if d.Coefficient.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	d.Coefficient = q
	d.FracDigits = *d.Precision
	return d
}

// ParseDecimal parses a lexeme like "19.99", "19.99USD", "$19.99", or
// "3.14159:2" (trailing precision annotation) into a Decimal.
func ParseDecimal(text string) (*Decimal, error) {
	rest := text
	var precision *uint32
	if idx := strings.LastIndexByte(rest, ':'); idx >= 0 {
		var p uint32
		if _, err := fmt.Sscanf(rest[idx+1:], "%d", &p); err == nil {
			precision = &p
			rest = rest[:idx]
		}
	}
	var currency *CurrencySymbol
	rest = strings.TrimSpace(rest)
	for _, sym := range []string{"$", "€", "£"} {
		if strings.HasPrefix(rest, sym) {
			currency = &CurrencySymbol{Symbol: sym, Suffix: false}
			rest = strings.TrimPrefix(rest, sym)
			break
		}
	}
	if currency == nil {
		trimmed := strings.TrimRightFunc(rest, func(r rune) bool {
			return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
		})
		if trimmed != rest {
			currency = &CurrencySymbol{Symbol: rest[len(trimmed):], Suffix: true}
			rest = trimmed
		}
	}
	dot := strings.IndexByte(rest, '.')
	var fracDigits uint32
	digits := rest
	if dot >= 0 {
		fracDigits = uint32(len(rest) - dot - 1)
		digits = rest[:dot] + rest[dot+1:]
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("value: invalid decimal literal %q", text)
	}
	if !inRange128(n) {
		return nil, fmt.Errorf("value: decimal literal %q overflows 128-bit coefficient", text)
	}
	d := &Decimal{Coefficient: n, FracDigits: fracDigits, Currency: currency, Precision: precision}
	return d.resolve(), nil
}

func (d *Decimal) Type() Type { return TypeDecimal }

func (d *Decimal) Truthy() bool { return d.Coefficient.Sign() != 0 }

// String renders the coefficient scaled by FracDigits, with the
// currency symbol as a prefix or suffix: the symbol decorates the
// rendered number, it never changes
// the numeric value.
func (d *Decimal) String() string {
	s := d.plainString()
	if d.Currency == nil {
		return s
	}
	if d.Currency.Suffix {
		return s + d.Currency.Symbol
	}
	return d.Currency.Symbol + s
}

func (d *Decimal) plainString() string {
	neg := d.Coefficient.Sign() < 0
	abs := new(big.Int).Abs(d.Coefficient)
	digits := abs.String()
	if d.FracDigits == 0 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	for uint32(len(digits)) <= d.FracDigits {
		digits = "0" + digits
	}
	intPart := digits[:uint32(len(digits))-d.FracDigits]
	fracPart := digits[uint32(len(digits))-d.FracDigits:]
	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// Rescale returns a copy of d with FracDigits raised to target,
// scaling the coefficient accordingly. Used to align operands before
// an arithmetic op.
func (d *Decimal) Rescale(target uint32) *Decimal {
	if target <= d.FracDigits {
		return d
	}
	factor := pow10(target - d.FracDigits)
	return &Decimal{
		Coefficient: new(big.Int).Mul(d.Coefficient, factor),
		FracDigits:  target,
		Currency:    d.Currency,
		Precision:   d.Precision,
	}
}

// Float returns the nearest float64, for interop with math functions
// that are not exact over fixed-point (sqrt, trig, ...).
func (d *Decimal) Float() float64 {
	f := new(big.Float).SetInt(d.Coefficient)
	scale := new(big.Float).SetInt(pow10(d.FracDigits))
	f.Quo(f, scale)
	out, _ := f.Float64()
	return out
}

// Pi, E and Tau are exposed for embedding hosts and tests.
func Pi() *Decimal  { return NewDecimal(mustParse("3141592653589793238"), 18) }
func E() *Decimal   { return NewDecimal(mustParse("2718281828459045235"), 18) }
func Tau() *Decimal { return NewDecimal(mustParse("6283185307179586477"), 18) }

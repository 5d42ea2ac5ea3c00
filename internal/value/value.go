// Package value implements the tagged-union value model shared by the
// compiler and the VM: Boolean, Integer, Decimal, String, Array,
// Object, Range, Function, and Reference (the concrete Reference type
// lives in internal/memory, which needs the memory manager's SlotRef;
// it satisfies Value here to avoid a cycle).
package value

import "fmt"

// Type tags every Value for dispatch without a type switch at every
// call site — opcodes like CAST and LCST carry one of these as an
// operand byte (see internal/bytecode).
type Type byte

const (
	TypeBoolean Type = iota
	TypeInteger
	TypeDecimal
	TypeString
	TypeArray
	TypeObject
	TypeRange
	TypeFunction
	TypeReference
)

func (t Type) String() string {
	switch t {
	case TypeBoolean:
		return "bool"
	case TypeInteger:
		return "int"
	case TypeDecimal:
		return "decimal"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeRange:
		return "range"
	case TypeFunction:
		return "function"
	case TypeReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Value is satisfied by every variant of the language's dynamic type.
// Numeric, logical, and is-a checks are free functions rather than
// methods (Add, Compare, ...) so that totality (never panic, always
// return a typed Error) is enforced at one call site per operator
// instead of once per concrete type.
type Value interface {
	Type() Type
	String() string
	// Truthy is used by control-flow opcodes (JMPT/JMPF) and the
	// logical operators' short-circuit tests.
	Truthy() bool
}

// TypeNameMatches reports whether name (as used in a cast or a typed
// function parameter annotation) refers to t, including the
// collective names "numeric"/"collection"/"primitive"/"all" used by
// function-argument resolution (see internal/vm call protocol).
func TypeNameMatches(name string, t Type) bool {
	switch name {
	case "", "all":
		return true
	case "numeric":
		return t == TypeInteger || t == TypeDecimal
	case "primitive":
		return t == TypeBoolean || t == TypeInteger || t == TypeDecimal || t == TypeString
	case "collection":
		return t == TypeArray || t == TypeObject || t == TypeRange
	default:
		return name == t.String()
	}
}

// Boolean is the simplest Value variant.
type Boolean bool

func (b Boolean) Type() Type      { return TypeBoolean }
func (b Boolean) String() string  { return fmt.Sprintf("%t", bool(b)) }
func (b Boolean) Truthy() bool { return bool(b) }

// assert the rest of the package's exported variants implement Value
// at compile time; kept here rather than scattered per-file so the
// full variant set is visible in one place.
var (
	_ Value = Boolean(false)
	_ Value = (*Integer)(nil)
	_ Value = (*Decimal)(nil)
	_ Value = String("")
	_ Value = (*Array)(nil)
	_ Value = (*Object)(nil)
	_ Value = (*Range)(nil)
	_ Value = (*Function)(nil)
)

// String is the language's UTF-8 string variant. Indexing, matching
// and concatenation treat it as a byte-addressable sequence of runes.
type String string

func (s String) Type() Type     { return TypeString }
func (s String) String() string { return string(s) }
func (s String) Truthy() bool   { return len(s) > 0 }

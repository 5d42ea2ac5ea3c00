package value

import "strings"

// Array is the language's ordered, heterogeneous, growable sequence.
type Array struct {
	Elements []Value
}

func NewArray(elems []Value) *Array { return &Array{Elements: elems} }

func (a *Array) Type() Type   { return TypeArray }
func (a *Array) Truthy() bool { return len(a.Elements) > 0 }

func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if s, ok := e.(String); ok {
			parts[i] = `"` + string(s) + `"`
		} else {
			parts[i] = e.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// resolveIndex normalizes a possibly-negative index (a[-1] is the
// last element) against a length, returning ok=false when out of
// bounds after normalization.
func resolveIndex(idx int64, length int) (int, bool) {
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, false
	}
	return int(idx), true
}

func (a *Array) Get(idx int64) (Value, *Error) {
	i, ok := resolveIndex(idx, len(a.Elements))
	if !ok {
		return nil, NewError(ErrIndexOutOfBounds, "array index %d out of bounds (len %d)", idx, len(a.Elements))
	}
	return a.Elements[i], nil
}

// Set assigns to index idx, appending when idx == len(a.Elements);
// anything past that (or negative-out-of-range) is out of bounds.
func (a *Array) Set(idx int64, v Value) *Error {
	if idx == int64(len(a.Elements)) {
		a.Elements = append(a.Elements, v)
		return nil
	}
	i, ok := resolveIndex(idx, len(a.Elements))
	if !ok {
		return NewError(ErrIndexOutOfBounds, "array index %d out of bounds (len %d)", idx, len(a.Elements))
	}
	a.Elements[i] = v
	return nil
}

package value

import "strings"

// Object is the language's key-value map. Keys must be primitive
// (Boolean/Integer/Decimal/String). Go's map iteration is randomized,
// so insertion order is tracked explicitly in keys/order alongside the
// lookup map — iteration must produce a deterministic order within a
// single program run, even though Go gives no such guarantee for a
// bare map.
type Object struct {
	entries map[string]Value // keyed by the primitive key's canonical String()
	keyVals map[string]Value // canonical string -> original key Value
	keys    []string         // insertion order
}

func NewObject() *Object {
	return &Object{entries: map[string]Value{}, keyVals: map[string]Value{}}
}

func (o *Object) Type() Type   { return TypeObject }
func (o *Object) Truthy() bool { return len(o.keys) > 0 }

func (o *Object) String() string {
	parts := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		v := o.entries[k]
		var vs string
		if s, ok := v.(String); ok {
			vs = `"` + string(s) + `"`
		} else {
			vs = v.String()
		}
		parts = append(parts, `"`+k+`": `+vs)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// keyString canonicalizes a primitive key into the string used for
// lookup and ordering; non-primitive keys are rejected by the caller
// before this is reached.
func keyString(k Value) (string, *Error) {
	switch k.(type) {
	case Boolean, *Integer, *Decimal, String:
		return k.String(), nil
	default:
		return "", NewError(ErrInvalidKey, "object keys must be primitive, got %s", k.Type())
	}
}

func (o *Object) GetByValue(k Value) (Value, *Error) {
	ks, err := keyString(k)
	if err != nil {
		return nil, err
	}
	v, ok := o.entries[ks]
	if !ok {
		return nil, NewError(ErrKeyNotFound, "key %s not found", ks)
	}
	return v, nil
}

// Get looks up by an already-canonicalized string key, used by Equal
// and the disassembler where the original key Value isn't needed.
func (o *Object) Get(ks string) (Value, bool) {
	v, ok := o.entries[ks]
	return v, ok
}

func (o *Object) SetByValue(k, v Value) *Error {
	ks, err := keyString(k)
	if err != nil {
		return err
	}
	if _, exists := o.entries[ks]; !exists {
		o.keys = append(o.keys, ks)
		o.keyVals[ks] = k
	}
	o.entries[ks] = v
	return nil
}

func (o *Object) DeleteByValue(k Value) *Error {
	ks, err := keyString(k)
	if err != nil {
		return err
	}
	if _, exists := o.entries[ks]; !exists {
		return NewError(ErrKeyNotFound, "key %s not found", ks)
	}
	delete(o.entries, ks)
	delete(o.keyVals, ks)
	for i, existing := range o.keys {
		if existing == ks {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Keys returns the keys in insertion order, as Values (not strings) —
// the representation NEXT's iteration and the `keys()` accessor need.
func (o *Object) Keys() []Value {
	out := make([]Value, len(o.keys))
	for i, k := range o.keys {
		out[i] = o.keyVals[k]
	}
	return out
}

// Values returns the values in insertion order, the counterpart to
// Keys used when casting an Object to an Array.
func (o *Object) Values() []Value {
	out := make([]Value, len(o.keys))
	for i, k := range o.keys {
		out[i] = o.entries[k]
	}
	return out
}

func (o *Object) Len() int { return len(o.keys) }

package vm

import (
	"lavendeux/internal/rterror"
	"lavendeux/internal/value"
)

// collectionEmpty reports whether v, peeked by JMPE/JMPNE, is a
// collection with nothing left to yield. Scalars and functions are
// never "empty" here — NEXT always produces exactly one (first, rest)
// pair from them, with rest being an empty Array, which is what makes
// the following iteration's peek report empty and stop the loop.
func (vm *VM) collectionEmpty(v value.Value) bool {
	switch c := v.(type) {
	case *value.Array:
		return len(c.Elements) == 0
	case *value.Object:
		return c.Len() == 0
	case *value.Range:
		return c.Len() == 0
	default:
		return false
	}
}

// execNext implements NEXT: pop a non-empty collection, push (rest,
// first). An empty input is a bug in the compiled bytecode (every
// caller is expected to guard with JMPE first) and surfaces as
// IteratorEmpty rather than panicking.
func (vm *VM) execNext() *rterror.Error {
	v, err := vm.popValue()
	if err != nil {
		return err
	}

	switch c := v.(type) {
	case *value.Array:
		if len(c.Elements) == 0 {
			return vm.err(rterror.KindIteratorEmpty, "NEXT on an empty array")
		}
		first := c.Elements[0]
		rest := make([]value.Value, len(c.Elements)-1)
		copy(rest, c.Elements[1:])
		vm.push(value.NewArray(rest))
		vm.push(first)
		return nil

	case *value.Object:
		keys := c.Keys()
		if len(keys) == 0 {
			return vm.err(rterror.KindIteratorEmpty, "NEXT on an empty object")
		}
		first := keys[0]
		rest := value.NewObject()
		for _, k := range keys[1:] {
			kv, _ := c.GetByValue(k)
			if verr := rest.SetByValue(k, kv); verr != nil {
				return vm.valueErr(verr)
			}
		}
		vm.push(rest)
		vm.push(first)
		return nil

	case *value.Range:
		if c.Len() == 0 {
			return vm.err(rterror.KindIteratorEmpty, "NEXT on an empty range")
		}
		rest, verr := value.NewRange(c.Start+1, c.End)
		if verr != nil {
			return vm.valueErr(verr)
		}
		vm.push(rest)
		vm.push(value.NewIntegerFromInt64(c.Start))
		return nil

	default:
		vm.push(value.NewArray(nil))
		vm.push(v)
		return nil
	}
}

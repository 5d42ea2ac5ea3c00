// Package vm implements the fetch-decode-execute loop over a compiled
// bytecode.Chunk: a single operand stack of value.Value, a program
// counter into one shared Chunk, a MemoryManager for name resolution,
// and a call-frame stack for CALL/RET — grounded on the teacher's
// internal/vm/vm.go Run() switch-per-opcode structure, generalized to
// this project's opcode set and single-chunk function layout (a
// function's body lives inline in the same Chunk, addressed by an
// absolute Entry offset, rather than the teacher's per-function
// separate Chunk).
package vm

import (
	"github.com/google/uuid"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/memory"
	"lavendeux/internal/rterror"
	"lavendeux/internal/value"
)

// frame is a pending CALL's return point: the pc to resume at and the
// declared return type RET must coerce its value to. The working
// value stack and the MemoryManager are shared across every frame —
// only the return address and return type are per-call state, since a
// function body never needs its own Chunk or constant pool.
type frame struct {
	returnPC   int
	returnType string
}

// builder is one in-progress FBEG..MKFN bracket. A stack rather than a
// single field: a default-argument expression (FDFT) can itself be a
// lambda literal with its own nested FBEG..MKFN, and that inner
// bracket always closes (MKFN pops it) before the outer bracket's next
// FSIG/FDFT runs, so LIFO nesting is exactly what compiled bytecode
// produces.
type builder struct {
	name string
	args []value.FunctionArgument
}

// VM executes one compiled program. A fresh VM is scoped to one
// Chunk/MemoryManager pair; RunID is a fresh UUID per Run call, for a
// host to correlate logged errors against a particular execution.
type VM struct {
	chunk *bytecode.Chunk
	mm    *memory.MemoryManager

	stack    []value.Value
	pc       int
	frames   []frame
	builders []*builder

	RunID string
}

func New(chunk *bytecode.Chunk, mm *memory.MemoryManager) *VM {
	return &VM{chunk: chunk, mm: mm}
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() (value.Value, *rterror.Error) {
	if len(vm.stack) == 0 {
		return nil, vm.err(rterror.KindStackEmpty, "pop from empty stack")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek() (value.Value, *rterror.Error) {
	if len(vm.stack) == 0 {
		return nil, vm.err(rterror.KindStackEmpty, "peek on empty stack")
	}
	return vm.stack[len(vm.stack)-1], nil
}

// resolveValue dereferences v if it's a Reference, otherwise returns
// it unchanged — the one call every opcode that needs a concrete
// operand routes through, per the reference-transparency contract
// (identifiers only ever push bare References; operators resolve).
func (vm *VM) resolveValue(v value.Value) (value.Value, *rterror.Error) {
	ref, ok := v.(*memory.Reference)
	if !ok {
		return v, nil
	}
	val, err := ref.Value(vm.mm)
	if err != nil {
		return nil, vm.wrapMemErr(err)
	}
	return val, nil
}

func (vm *VM) popValue() (value.Value, *rterror.Error) {
	v, err := vm.pop()
	if err != nil {
		return nil, err
	}
	return vm.resolveValue(v)
}

func (vm *VM) err(kind rterror.Kind, format string, args ...any) *rterror.Error {
	return rterror.New(kind, vm.pc, format, args...).WithContext(vm.chunk.Debug)
}

func (vm *VM) valueErr(verr *value.Error) *rterror.Error {
	return rterror.FromValueError(verr, vm.pc).WithContext(vm.chunk.Debug)
}

// wrapMemErr turns an internal/memory failure (ErrStale/ErrUndefined)
// into a runtime error of the matching user-facing Kind.
func (vm *VM) wrapMemErr(err error) *rterror.Error {
	switch e := err.(type) {
	case *memory.ErrUndefined:
		return vm.err(rterror.KindNameError, "undefined name %q", e.Name)
	case *memory.ErrStale:
		return vm.err(rterror.KindBadReference, "%s", e.Error())
	case *memory.ErrLocked:
		return vm.err(rterror.KindNameError, "%s", e.Error())
	default:
		return vm.err(rterror.KindBadReference, "%s", err.Error())
	}
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.pc]
	vm.pc++
	return b
}

func (vm *VM) readU16() uint16 {
	v := vm.chunk.ReadU16(vm.pc)
	vm.pc += 2
	return v
}

func (vm *VM) readU32() uint32 {
	v := vm.chunk.ReadU32(vm.pc)
	vm.pc += 4
	return v
}

func (vm *VM) constName(idx uint16) string {
	return vm.chunk.Constants[idx].Name
}

func (vm *VM) constValue(idx uint16) value.Value {
	return vm.chunk.Constants[idx].Value
}

// Run drives the fetch-decode-execute loop from pc 0 to the end of
// the Chunk's top-level code (CALL/RET move pc into and back out of
// function bodies without ever leaving this one loop). The program's
// result is the single value left on the stack, or an Array of
// whatever remains if the program didn't reduce to exactly one.
func (vm *VM) Run() (value.Value, *rterror.Error) {
	vm.RunID = uuid.NewString()
	vm.pc = 0

	for vm.pc < len(vm.chunk.Code) {
		op := bytecode.OpCode(vm.readByte())

		switch op {
		case bytecode.PUSH:
			idx := vm.readU16()
			vm.push(vm.constValue(idx))

		case bytecode.POP:
			if _, err := vm.pop(); err != nil {
				return nil, err
			}

		case bytecode.DUP:
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			vm.push(v)

		case bytecode.SWP:
			if len(vm.stack) < 2 {
				return nil, vm.err(rterror.KindStackEmpty, "SWP needs two operands")
			}
			n := len(vm.stack)
			vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]

		case bytecode.JMP:
			target := vm.readU32()
			vm.pc = int(target)

		case bytecode.JMPT:
			target := vm.readU32()
			v, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			if v.Truthy() {
				vm.pc = int(target)
			}

		case bytecode.JMPF:
			target := vm.readU32()
			v, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				vm.pc = int(target)
			}

		case bytecode.JMPE:
			target := vm.readU32()
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			rv, rerr := vm.resolveValue(v)
			if rerr != nil {
				return nil, rerr
			}
			if vm.collectionEmpty(rv) {
				vm.pc = int(target)
			}

		case bytecode.JMPNE:
			target := vm.readU32()
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			rv, rerr := vm.resolveValue(v)
			if rerr != nil {
				return nil, rerr
			}
			if !vm.collectionEmpty(rv) {
				vm.pc = int(target)
			}

		case bytecode.REF, bytecode.WREF, bytecode.DREF, bytecode.RREF, bytecode.IDEX:
			if err := vm.execRefOp(op); err != nil {
				return nil, err
			}

		case bytecode.SCI:
			vm.mm.ScopeIn()
		case bytecode.SCO:
			vm.mm.ScopeOut()
		case bytecode.SCL:
			vm.mm.ScopeLock()
		case bytecode.SCU:
			vm.mm.ScopeUnlock()

		case bytecode.CAST:
			tag := vm.readByte()
			v, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			out, verr := value.Cast(v, value.Type(tag).String())
			if verr != nil {
				return nil, vm.valueErr(verr)
			}
			vm.push(out)

		case bytecode.LCST:
			idx := vm.readU16()
			v, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			out, verr := value.Cast(v, vm.constName(idx))
			if verr != nil {
				return nil, vm.valueErr(verr)
			}
			vm.push(out)

		case bytecode.NEXT:
			if err := vm.execNext(); err != nil {
				return nil, err
			}

		case bytecode.MKAR:
			n := int(vm.readU16())
			elems, err := vm.popNValues(n)
			if err != nil {
				return nil, err
			}
			vm.push(value.NewArray(elems))

		case bytecode.MKOB:
			n := int(vm.readU16())
			pairs, err := vm.popNValues(2 * n)
			if err != nil {
				return nil, err
			}
			obj := value.NewObject()
			for i := 0; i < len(pairs); i += 2 {
				if verr := obj.SetByValue(pairs[i], pairs[i+1]); verr != nil {
					return nil, vm.valueErr(verr)
				}
			}
			vm.push(obj)

		case bytecode.MKRG:
			end, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			start, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			si, ok := asInt(start)
			if !ok {
				return nil, vm.err(rterror.KindInvalidType, "range bounds must be integers")
			}
			ei, ok := asInt(end)
			if !ok {
				return nil, vm.err(rterror.KindInvalidType, "range bounds must be integers")
			}
			rv, verr := value.NewRange(si, ei)
			if verr != nil {
				return nil, vm.valueErr(verr)
			}
			vm.push(rv)

		case bytecode.PSAR:
			v, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			arrVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			arr, ok := arrVal.(*value.Array)
			if !ok {
				return nil, vm.err(rterror.KindInvalidType, "PSAR expects an array, got %s", arrVal.Type())
			}
			arr.Elements = append(arr.Elements, v)
			vm.push(arr)

		case bytecode.PSOB:
			v, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			key, err := vm.popValue()
			if err != nil {
				return nil, err
			}
			objVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			obj, ok := objVal.(*value.Object)
			if !ok {
				return nil, vm.err(rterror.KindInvalidType, "PSOB expects an object, got %s", objVal.Type())
			}
			if verr := obj.SetByValue(key, v); verr != nil {
				return nil, vm.valueErr(verr)
			}
			vm.push(obj)

		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD, bytecode.POW,
			bytecode.BAND, bytecode.BOR, bytecode.BXOR, bytecode.SHL, bytecode.SHR,
			bytecode.EQ, bytecode.NEQ, bytecode.SEQ, bytecode.SNEQ,
			bytecode.LT, bytecode.GT, bytecode.LE, bytecode.GE,
			bytecode.AND, bytecode.OR,
			bytecode.MATCHES, bytecode.STARTSWITH, bytecode.ENDSWITH, bytecode.CONTAINS:
			if err := vm.execBinaryOp(op); err != nil {
				return nil, err
			}

		case bytecode.NEG, bytecode.BNOT, bytecode.NOT:
			if err := vm.execUnaryOp(op); err != nil {
				return nil, err
			}

		case bytecode.FBEG, bytecode.FSIG, bytecode.FDFT, bytecode.MKFN, bytecode.WRFN,
			bytecode.CALL, bytecode.RET:
			if err := vm.execFunctionOp(op); err != nil {
				return nil, err
			}

		default:
			return nil, vm.err(rterror.KindInvalidOpcode, "invalid opcode %d at offset %d", byte(op), vm.pc-1)
		}
	}

	return vm.result()
}

func (vm *VM) popNValues(n int) ([]value.Value, *rterror.Error) {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := vm.popValue()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// result implements the program-level return convention: the single
// remaining stack value if exactly one, otherwise an Array of
// whatever's left in push order.
func (vm *VM) result() (value.Value, *rterror.Error) {
	if len(vm.stack) == 1 {
		return vm.resolveValue(vm.stack[0])
	}
	elems := make([]value.Value, len(vm.stack))
	for i, v := range vm.stack {
		rv, err := vm.resolveValue(v)
		if err != nil {
			return nil, err
		}
		elems[i] = rv
	}
	return value.NewArray(elems), nil
}

func asInt(v value.Value) (int64, bool) {
	i, ok := v.(*value.Integer)
	if !ok {
		return 0, false
	}
	return i.Big().Int64(), true
}

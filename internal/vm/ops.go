package vm

import (
	"lavendeux/internal/bytecode"
	"lavendeux/internal/rterror"
	"lavendeux/internal/value"
)

// execBinaryOp pops the right operand then the left (spec's "the
// first-popped value is the right-hand operand" ordering), resolving
// any Reference each one might be, and pushes the checked result.
func (vm *VM) execBinaryOp(op bytecode.OpCode) *rterror.Error {
	right, err := vm.popValue()
	if err != nil {
		return err
	}
	left, err := vm.popValue()
	if err != nil {
		return err
	}

	switch op {
	case bytecode.ADD:
		return vm.pushChecked(value.Add(left, right))
	case bytecode.SUB:
		return vm.pushChecked(value.Sub(left, right))
	case bytecode.MUL:
		return vm.pushChecked(value.Mul(left, right))
	case bytecode.DIV:
		return vm.pushChecked(value.Div(left, right))
	case bytecode.MOD:
		return vm.pushChecked(value.Mod(left, right))
	case bytecode.POW:
		return vm.pushChecked(value.Pow(left, right))
	case bytecode.BAND:
		return vm.pushChecked(value.BitAnd(left, right))
	case bytecode.BOR:
		return vm.pushChecked(value.BitOr(left, right))
	case bytecode.BXOR:
		return vm.pushChecked(value.BitXor(left, right))
	case bytecode.SHL:
		return vm.pushChecked(value.Shl(left, right))
	case bytecode.SHR:
		return vm.pushChecked(value.Shr(left, right))
	case bytecode.MATCHES:
		return vm.pushChecked(value.Matches(left, right))
	case bytecode.STARTSWITH:
		return vm.pushChecked(value.StartsWith(left, right))
	case bytecode.ENDSWITH:
		return vm.pushChecked(value.EndsWith(left, right))
	case bytecode.CONTAINS:
		return vm.pushChecked(value.Contains(left, right))

	case bytecode.EQ:
		vm.push(value.Boolean(value.Equal(left, right)))
		return nil
	case bytecode.NEQ:
		vm.push(value.Boolean(!value.Equal(left, right)))
		return nil
	case bytecode.SEQ:
		vm.push(value.Boolean(value.StrictEqual(left, right)))
		return nil
	case bytecode.SNEQ:
		vm.push(value.Boolean(!value.StrictEqual(left, right)))
		return nil

	case bytecode.LT, bytecode.GT, bytecode.LE, bytecode.GE:
		cmp, verr := value.Compare(left, right)
		if verr != nil {
			return vm.valueErr(verr)
		}
		var result bool
		switch op {
		case bytecode.LT:
			result = cmp < 0
		case bytecode.GT:
			result = cmp > 0
		case bytecode.LE:
			result = cmp <= 0
		case bytecode.GE:
			result = cmp >= 0
		}
		vm.push(value.Boolean(result))
		return nil

	case bytecode.AND:
		vm.push(value.Boolean(left.Truthy() && right.Truthy()))
		return nil
	case bytecode.OR:
		vm.push(value.Boolean(left.Truthy() || right.Truthy()))
		return nil
	}
	return vm.err(rterror.KindInvalidOpcode, "execBinaryOp called with non-binary opcode %s", op)
}

func (vm *VM) pushChecked(v value.Value, verr *value.Error) *rterror.Error {
	if verr != nil {
		return vm.valueErr(verr)
	}
	vm.push(v)
	return nil
}

func (vm *VM) execUnaryOp(op bytecode.OpCode) *rterror.Error {
	v, err := vm.popValue()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.NEG:
		return vm.pushChecked(value.Neg(v))
	case bytecode.BNOT:
		return vm.pushChecked(value.BitNot(v))
	case bytecode.NOT:
		vm.push(value.Boolean(!v.Truthy()))
		return nil
	}
	return vm.err(rterror.KindInvalidOpcode, "execUnaryOp called with non-unary opcode %s", op)
}

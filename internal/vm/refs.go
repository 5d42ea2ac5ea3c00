package vm

import (
	"lavendeux/internal/bytecode"
	"lavendeux/internal/memory"
	"lavendeux/internal/rterror"
	"lavendeux/internal/value"
)

// execRefOp implements REF/WREF/DREF/RREF/IDEX — the reference family
// that lets an identifier's Reference ride the stack unresolved until
// an operator or a final read/write needs a concrete value.
func (vm *VM) execRefOp(op bytecode.OpCode) *rterror.Error {
	switch op {
	case bytecode.REF:
		idx := vm.readU16()
		vm.push(memory.NewUnresolvedReference(vm.constName(idx)))
		return nil

	case bytecode.WREF:
		refVal, err := vm.pop()
		if err != nil {
			return err
		}
		ref, ok := refVal.(*memory.Reference)
		if !ok {
			return vm.err(rterror.KindInvalidType, "WREF expects a reference on top, got %s", refVal.Type())
		}
		v, err := vm.popValue()
		if err != nil {
			return err
		}
		if merr := ref.WriteOrDeclare(vm.mm, v); merr != nil {
			return vm.wrapMemErr(merr)
		}
		vm.push(ref)
		return nil

	case bytecode.DREF:
		refVal, err := vm.pop()
		if err != nil {
			return err
		}
		ref, ok := refVal.(*memory.Reference)
		if !ok {
			return vm.err(rterror.KindInvalidType, "DREF expects a reference, got %s", refVal.Type())
		}
		if merr := ref.Delete(vm.mm); merr != nil {
			return vm.wrapMemErr(merr)
		}
		return nil

	case bytecode.RREF:
		refVal, err := vm.pop()
		if err != nil {
			return err
		}
		ref, ok := refVal.(*memory.Reference)
		if !ok {
			return vm.err(rterror.KindInvalidType, "RREF expects a reference, got %s", refVal.Type())
		}
		v, merr := ref.Value(vm.mm)
		if merr != nil {
			return vm.wrapMemErr(merr)
		}
		vm.push(v)
		return nil

	case bytecode.IDEX:
		idx, err := vm.popValue()
		if err != nil {
			return err
		}
		container, err := vm.pop()
		if err != nil {
			return err
		}
		if ref, ok := container.(*memory.Reference); ok {
			vm.push(ref.AddIndex(idx))
			return nil
		}
		out, verr := value.Index(container, idx)
		if verr != nil {
			return vm.valueErr(verr)
		}
		vm.push(out)
		return nil
	}
	return vm.err(rterror.KindInvalidOpcode, "execRefOp called with non-ref opcode %s", op)
}

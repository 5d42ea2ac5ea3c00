package vm

import (
	"lavendeux/internal/bytecode"
	"lavendeux/internal/rterror"
	"lavendeux/internal/value"
)

// execFunctionOp implements the function-builder bracket
// (FBEG/FSIG/FDFT/MKFN), WRFN, and the CALL/RET protocol.
func (vm *VM) execFunctionOp(op bytecode.OpCode) *rterror.Error {
	switch op {
	case bytecode.FBEG:
		idx := vm.readU16()
		vm.builders = append(vm.builders, &builder{name: vm.constName(idx)})
		return nil

	case bytecode.FSIG:
		argIdx := vm.readU16()
		typeIdx := vm.readU16()
		b, err := vm.topBuilder()
		if err != nil {
			return err
		}
		b.args = append(b.args, value.FunctionArgument{
			Name:     vm.constName(argIdx),
			TypeName: vm.constName(typeIdx),
		})
		return nil

	case bytecode.FDFT:
		def, err := vm.popValue()
		if err != nil {
			return err
		}
		b, err := vm.topBuilder()
		if err != nil {
			return err
		}
		if len(b.args) == 0 {
			return vm.err(rterror.KindInvalidOpcode, "FDFT with no preceding FSIG")
		}
		b.args[len(b.args)-1].Default = def
		return nil

	case bytecode.MKFN:
		entry := vm.readU32()
		retIdx := vm.readU16()
		if len(vm.builders) == 0 {
			return vm.err(rterror.KindInvalidOpcode, "MKFN with no open function builder")
		}
		b := vm.builders[len(vm.builders)-1]
		vm.builders = vm.builders[:len(vm.builders)-1]
		vm.push(&value.Function{
			Name:       b.name,
			Args:       b.args,
			ReturnType: vm.constName(retIdx),
			Entry:      int(entry),
		})
		return nil

	case bytecode.WRFN:
		idx := vm.readU16()
		fnVal, err := vm.pop()
		if err != nil {
			return err
		}
		fn, ok := fnVal.(*value.Function)
		if !ok {
			return vm.err(rterror.KindInvalidType, "WRFN expects a function value, got %s", fnVal.Type())
		}
		if _, merr := vm.mm.WriteGlobal(vm.constName(idx), fn); merr != nil {
			return vm.wrapMemErr(merr)
		}
		return nil

	case bytecode.CALL:
		return vm.execCall()

	case bytecode.RET:
		return vm.execReturn()
	}
	return vm.err(rterror.KindInvalidOpcode, "execFunctionOp called with unrelated opcode %s", op)
}

func (vm *VM) topBuilder() (*builder, *rterror.Error) {
	if len(vm.builders) == 0 {
		return nil, vm.err(rterror.KindInvalidOpcode, "function-builder opcode with no open FBEG")
	}
	return vm.builders[len(vm.builders)-1], nil
}

// execCall implements the function call protocol: resolve the callee
// (on top of stack, per VisitCallExpr's emission order) and its argc
// positional arguments (beneath it, in push order), bind them against
// the function's declared parameters, open a call frame, and jump pc
// to the function's Entry — or, for a native function, run it
// in-place and push its result with no frame at all.
func (vm *VM) execCall() *rterror.Error {
	argc := int(vm.readByte())

	calleeRaw, err := vm.pop()
	if err != nil {
		return err
	}
	callee, err := vm.resolveValue(calleeRaw)
	if err != nil {
		return err
	}
	fn, ok := callee.(*value.Function)
	if !ok {
		return vm.err(rterror.KindUndefinedFunction, "cannot call a value of type %s", callee.Type())
	}

	provided, err := vm.popNValues(argc)
	if err != nil {
		return err
	}

	bound, rerr := vm.resolveArguments(fn, provided)
	if rerr != nil {
		return rerr
	}

	if fn.IsNative {
		result, verr := fn.Native(bound)
		if verr != nil {
			return vm.valueErr(verr)
		}
		vm.push(result)
		return nil
	}

	vm.mm.ScopeIn()
	vm.mm.ScopeLock()
	for i, param := range fn.Args {
		vm.mm.Write(param.Name, bound[i])
	}

	vm.frames = append(vm.frames, frame{returnPC: vm.pc, returnType: fn.ReturnType})
	vm.pc = fn.Entry
	return nil
}

// resolveArguments zips provided positionally against fn.Args: a
// provided value must match its parameter's declared type exactly (no
// falling back to the default on a type mismatch — only a genuinely
// missing trailing argument may use one), per
// src/vm/virtual_machine/functions.rs's resolve_arguments.
func (vm *VM) resolveArguments(fn *value.Function, provided []value.Value) ([]value.Value, *rterror.Error) {
	if len(provided) > len(fn.Args) {
		return nil, vm.err(rterror.KindIncorrectFunctionArgs,
			"%s: too many arguments (%d provided, %d expected)", fn.Name, len(provided), len(fn.Args))
	}

	bound := make([]value.Value, len(fn.Args))
	for i, param := range fn.Args {
		if i < len(provided) {
			v := provided[i]
			if !value.TypeNameMatches(param.TypeName, v.Type()) {
				return nil, vm.err(rterror.KindIncorrectFunctionArgs,
					"%s: argument %d (%s) expected %s, got %s", fn.Name, i+1, param.Name, param.TypeName, v.Type())
			}
			bound[i] = v
			continue
		}
		if param.HasDefault() {
			bound[i] = param.Default
			continue
		}
		return nil, vm.err(rterror.KindIncorrectFunctionArgs,
			"%s: missing required argument %q", fn.Name, param.Name)
	}
	return bound, nil
}

// execReturn implements function return: pop and resolve the return
// value, coerce it to the frame's declared return type (an untyped
// function, ReturnType == "", skips the coercion — value.Cast treats
// "" as an unrecognized target, not a no-op), tear down the call
// frame's scope/lock, and resume at the saved return address.
func (vm *VM) execReturn() *rterror.Error {
	if len(vm.frames) == 0 {
		return vm.err(rterror.KindInvalidOpcode, "RET with no active call frame")
	}

	v, err := vm.popValue()
	if err != nil {
		return err
	}

	f := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]

	if f.returnType != "" {
		coerced, verr := value.Cast(v, f.returnType)
		if verr != nil {
			return vm.valueErr(verr)
		}
		v = coerced
	}

	vm.mm.ScopeOut()
	vm.mm.ScopeUnlock()
	vm.push(v)
	vm.pc = f.returnPC
	return nil
}

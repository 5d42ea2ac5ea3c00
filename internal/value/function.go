package value

import "strings"

// FunctionArgument describes one declared parameter: its name, its
// type annotation (empty means "all"), and its default value if any.
// resolveArguments (internal/vm call.go) walks a call's positional
// arguments against this list by type-match-or-default.
type FunctionArgument struct {
	Name     string
	TypeName string
	Default  Value // nil if the argument is required
}

func (a FunctionArgument) HasDefault() bool { return a.Default != nil }

// FunctionDocs carries the doc-comment metadata a StdFunctionSet entry
// ships with (see internal/stdfuncs); user functions compiled from
// source leave this nil. Name/Args/Category/Signature are always
// rendered; Short/Description/Example are optional.
type FunctionDocs struct {
	Name        string
	Args        string
	Category    string
	Signature   string
	Short       *string
	Description *string
	Example     *string
}

// Function is a callable value. A user-defined function's body lives
// as bytecode at Entry inside the enclosing Chunk (internal/bytecode
// cannot be imported here without a cycle, so the VM resolves Entry
// against its own chunk at call time); a native function instead
// carries a Go closure that CALL runs directly. Natives cannot be
// serialized, so sets loaded by internal/stdfuncs never contain one.
type Function struct {
	Name       string
	Args       []FunctionArgument
	ReturnType string
	Docs       *FunctionDocs

	Entry    int  // byte offset of the function body, for user functions
	IsNative bool
	Native   func(args []Value) (Value, *Error)
}

func (f *Function) Type() Type   { return TypeFunction }
func (f *Function) Truthy() bool { return true }

func (f *Function) String() string {
	names := make([]string, len(f.Args))
	for i, a := range f.Args {
		names[i] = a.Name
	}
	return "fn " + f.Name + "(" + strings.Join(names, ", ") + ")"
}

// Arity returns the minimum and maximum number of positional
// arguments this function accepts (max equals len(Args); min is the
// count of arguments without a default).
func (f *Function) Arity() (min, max int) {
	max = len(f.Args)
	for _, a := range f.Args {
		if a.Default == nil {
			min++
		}
	}
	return min, max
}

package stdfuncs

import (
	"testing"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/memory"
	"lavendeux/internal/value"
	"lavendeux/internal/vm"
)

// compiledDoubleChunk hand-assembles a throwaway Chunk holding the
// body for a function equivalent to `fn double(n: int) int do n * 2`
// — just the RET-terminated body, with no FBEG/FSIG/MKFN bracket,
// since those belong to the compiler's own chunk and carry no meaning
// once the body has been sliced out for serialization: a loaded
// function's Entry points straight at the first byte below, not at an
// FBEG. Every name/constant it references (here, "n" and the literal
// 2) lives in this chunk's own Constants pool, which
// SerializeFunctionChunk carries alongside the body so Load can
// relocate both into the shared chunk.
func compiledDoubleChunk() *bytecode.Chunk {
	c := bytecode.NewChunk()
	nIdx := c.AddName("n")
	c.WriteOp(bytecode.REF)
	c.WriteU16(nIdx)
	c.WriteOp(bytecode.RREF)
	two := c.AddConstant(value.NewIntegerFromInt64(2))
	c.WriteOp(bytecode.PUSH)
	c.WriteU16(two)
	c.WriteOp(bytecode.MUL)
	c.WriteOp(bytecode.RET)
	return c
}

// compiledAddOneChunk is `fn add_one(n: int) int do n + 1` — a second,
// independently-compiled function that also names its argument "n",
// to exercise that two functions' identically-named constants don't
// collide once merged into one shared chunk.
func compiledAddOneChunk() *bytecode.Chunk {
	c := bytecode.NewChunk()
	nIdx := c.AddName("n")
	c.WriteOp(bytecode.REF)
	c.WriteU16(nIdx)
	c.WriteOp(bytecode.RREF)
	one := c.AddConstant(value.NewIntegerFromInt64(1))
	c.WriteOp(bytecode.PUSH)
	c.WriteU16(one)
	c.WriteOp(bytecode.ADD)
	c.WriteOp(bytecode.RET)
	return c
}

func serializeOne(t *testing.T, fn *value.Function, chunk *bytecode.Chunk) []byte {
	t.Helper()
	buf, err := bytecode.SerializeStdFunctionLibrary([]*value.Function{fn}, []*bytecode.Chunk{chunk})
	if err != nil {
		t.Fatalf("SerializeStdFunctionLibrary: %v", err)
	}
	return buf
}

func TestLoadInstallsLockedGlobal(t *testing.T) {
	fn := &value.Function{
		Name:       "double",
		Args:       []value.FunctionArgument{{Name: "n", TypeName: "int"}},
		ReturnType: "int",
	}
	buf := serializeOne(t, fn, compiledDoubleChunk())

	mm := memory.NewMemoryManager()
	chunk, err := Load(buf, mm)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(chunk.Code) == 0 {
		t.Fatalf("expected the loaded chunk to carry the function's body")
	}

	// A second WriteGlobal under the same name must be rejected: Load
	// locks every installed entry.
	if _, err := mm.WriteGlobal("double", &value.Function{Name: "double"}); err == nil {
		t.Fatalf("expected double to be locked after Load")
	}
}

func TestLoadedFunctionIsCallableThroughVM(t *testing.T) {
	fn := &value.Function{
		Name:       "double",
		Args:       []value.FunctionArgument{{Name: "n", TypeName: "int"}},
		ReturnType: "int",
	}
	buf := serializeOne(t, fn, compiledDoubleChunk())

	mm := memory.NewMemoryManager()
	chunk, err := Load(buf, mm)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Driver code for `double(21)` appended onto the SAME chunk Load
	// returned — a separate Chunk would make the loaded function's
	// Entry offset meaningless, since CALL jumps the VM's own pc
	// straight into its one chunk.
	nameIdx := chunk.AddName("double")
	argConst := chunk.AddConstant(value.NewIntegerFromInt64(21))
	chunk.WriteOp(bytecode.PUSH)
	chunk.WriteU16(argConst)
	chunk.WriteOp(bytecode.REF)
	chunk.WriteU16(nameIdx)
	chunk.WriteOp(bytecode.RREF)
	chunk.WriteOp(bytecode.CALL)
	chunk.WriteByte(1)

	got, err := vm.New(chunk, mm).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.String() != "42" {
		t.Fatalf("got %s, want 42", got.String())
	}
}

// TestLoadRelocatesIndependentFunctionsWithoutCollision loads two
// functions that were each compiled in isolation (so each names its
// own argument "n" at index 0 of its own, now-discarded, constant
// pool) and checks both still resolve their own argument correctly
// once merged into one shared chunk — this is the scenario that would
// silently misbehave if Load still built its chunk by concatenating
// bare body bytes without relocating their constant-pool indices.
func TestLoadRelocatesIndependentFunctionsWithoutCollision(t *testing.T) {
	doubleFn := &value.Function{
		Name:       "double",
		Args:       []value.FunctionArgument{{Name: "n", TypeName: "int"}},
		ReturnType: "int",
	}
	addOneFn := &value.Function{
		Name:       "add_one",
		Args:       []value.FunctionArgument{{Name: "n", TypeName: "int"}},
		ReturnType: "int",
	}
	buf, err := bytecode.SerializeStdFunctionLibrary(
		[]*value.Function{doubleFn, addOneFn},
		[]*bytecode.Chunk{compiledDoubleChunk(), compiledAddOneChunk()},
	)
	if err != nil {
		t.Fatalf("SerializeStdFunctionLibrary: %v", err)
	}

	mm := memory.NewMemoryManager()
	chunk, err := Load(buf, mm)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	call := func(name string, arg int64) {
		nameIdx := chunk.AddName(name)
		argConst := chunk.AddConstant(value.NewIntegerFromInt64(arg))
		chunk.WriteOp(bytecode.PUSH)
		chunk.WriteU16(argConst)
		chunk.WriteOp(bytecode.REF)
		chunk.WriteU16(nameIdx)
		chunk.WriteOp(bytecode.RREF)
		chunk.WriteOp(bytecode.CALL)
		chunk.WriteByte(1)
	}
	call("double", 10)
	call("add_one", 10)
	// Two bare remaining values with no combining op: Run's result()
	// convention folds them into an Array.
	got, err := vm.New(chunk, mm).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	arr, ok := got.(*value.Array)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("got %#v, want a 2-element array", got)
	}
	if arr.Elements[0].String() != "20" || arr.Elements[1].String() != "11" {
		t.Fatalf("got [%s, %s], want [20, 11]", arr.Elements[0], arr.Elements[1])
	}
}

func TestLoadRejectsDuplicateFunctionName(t *testing.T) {
	fn := &value.Function{Name: "double", ReturnType: "int"}
	buf, err := bytecode.SerializeStdFunctionLibrary(
		[]*value.Function{fn, fn},
		[]*bytecode.Chunk{compiledDoubleChunk(), compiledDoubleChunk()},
	)
	if err != nil {
		t.Fatalf("SerializeStdFunctionLibrary: %v", err)
	}

	mm := memory.NewMemoryManager()
	if _, err := Load(buf, mm); err == nil {
		t.Fatalf("expected installing the same name twice to fail on the second WriteGlobal")
	}
}

func TestLoadReassignsEntryRelativeToSharedChunk(t *testing.T) {
	first := &value.Function{Name: "a", ReturnType: "int"}
	second := &value.Function{Name: "b", ReturnType: "int"}
	firstChunk := compiledDoubleChunk()
	secondChunk := compiledAddOneChunk()
	firstBodyLen := len(firstChunk.Code)
	buf, err := bytecode.SerializeStdFunctionLibrary(
		[]*value.Function{first, second},
		[]*bytecode.Chunk{firstChunk, secondChunk},
	)
	if err != nil {
		t.Fatalf("SerializeStdFunctionLibrary: %v", err)
	}

	mm := memory.NewMemoryManager()
	if _, err := Load(buf, mm); err != nil {
		t.Fatalf("Load: %v", err)
	}

	aSlot, ok := mm.GetRef("a")
	if !ok {
		t.Fatalf("expected a global ref for %q", "a")
	}
	bSlot, ok := mm.GetRef("b")
	if !ok {
		t.Fatalf("expected a global ref for %q", "b")
	}
	aVal, err := mm.Read(aSlot)
	if err != nil {
		t.Fatalf("Read a: %v", err)
	}
	bVal, err := mm.Read(bSlot)
	if err != nil {
		t.Fatalf("Read b: %v", err)
	}
	aFn := aVal.(*value.Function)
	bFn := bVal.(*value.Function)
	if aFn.Entry != 0 {
		t.Fatalf("expected the first function's Entry to sit at offset 0, got %d", aFn.Entry)
	}
	if bFn.Entry != firstBodyLen {
		t.Fatalf("expected the second function's Entry to follow the first body, got %d want %d", bFn.Entry, firstBodyLen)
	}
}

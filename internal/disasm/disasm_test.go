package disasm

import (
	"strings"
	"testing"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/value"
)

func TestDisassembleHeaderLine(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.WriteOp(bytecode.POP)
	out := Disassemble(chunk)
	if !strings.HasPrefix(out, "; ") {
		t.Fatalf("expected listing to start with a header comment, got %q", out)
	}
}

func TestDisassemblePushIntegerAndArith(t *testing.T) {
	chunk := bytecode.NewChunk()
	idx := chunk.AddConstant(value.NewIntegerFromInt64(2))
	chunk.WriteOp(bytecode.PUSH)
	chunk.WriteU16(idx)
	chunk.WriteOp(bytecode.ADD)

	out := Disassemble(chunk)
	if !strings.Contains(out, "PUSH") || !strings.Contains(out, "2") {
		t.Fatalf("expected PUSH 2 in listing, got:\n%s", out)
	}
	if !strings.Contains(out, "ADD") {
		t.Fatalf("expected ADD in listing, got:\n%s", out)
	}
}

func TestDisassemblePushLargeIntegerIsHumanized(t *testing.T) {
	chunk := bytecode.NewChunk()
	idx := chunk.AddConstant(value.NewIntegerFromInt64(1234567))
	chunk.WriteOp(bytecode.PUSH)
	chunk.WriteU16(idx)

	out := Disassemble(chunk)
	if !strings.Contains(out, "1,234,567") {
		t.Fatalf("expected a comma-grouped integer operand, got:\n%s", out)
	}
}

func TestDisassemblePushStringIsQuoted(t *testing.T) {
	chunk := bytecode.NewChunk()
	idx := chunk.AddConstant(value.String("hello"))
	chunk.WriteOp(bytecode.PUSH)
	chunk.WriteU16(idx)

	out := Disassemble(chunk)
	if !strings.Contains(out, `"hello"`) {
		t.Fatalf("expected a quoted string operand, got:\n%s", out)
	}
}

func TestDisassembleRefResolvesConstantName(t *testing.T) {
	chunk := bytecode.NewChunk()
	idx := chunk.AddName("counter")
	chunk.WriteOp(bytecode.REF)
	chunk.WriteU16(idx)

	out := Disassemble(chunk)
	if !strings.Contains(out, "REF") || !strings.Contains(out, "counter") {
		t.Fatalf("expected REF counter in listing, got:\n%s", out)
	}
}

func TestDisassembleMkarOperandIsPlainCount(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.WriteOp(bytecode.MKAR)
	chunk.WriteU16(3)

	out := Disassemble(chunk)
	if !strings.Contains(out, "MKAR") || !strings.Contains(out, "3") {
		t.Fatalf("expected MKAR 3 in listing, got:\n%s", out)
	}
	if strings.Contains(out, "<bad const") {
		t.Fatalf("MKAR's count must not be treated as a constant-pool index, got:\n%s", out)
	}
}

func TestDisassembleJumpResolvesToLabel(t *testing.T) {
	chunk := bytecode.NewChunk()
	jmpOffset := chunk.WriteOp(bytecode.JMP)
	chunk.WriteU32(0) // patched below
	target := chunk.WriteOp(bytecode.POP)
	chunk.PatchU32(jmpOffset+1, uint32(target))

	out := Disassemble(chunk)
	if !strings.Contains(out, "JMP") {
		t.Fatalf("expected a JMP instruction, got:\n%s", out)
	}
	labelLine := strings.Index(out, "LBL_")
	if labelLine == -1 {
		t.Fatalf("expected a generated LBL_ label, got:\n%s", out)
	}
	if !strings.Contains(out, "LBL_arbitrary:") {
		t.Fatalf("expected the first label to be named LBL_arbitrary, got:\n%s", out)
	}
}

func TestDisassembleMkfnResolvesEntryLabelAndReturnType(t *testing.T) {
	chunk := bytecode.NewChunk()
	retIdx := chunk.AddName("int")
	mkfnOffset := chunk.WriteOp(bytecode.MKFN)
	chunk.WriteU32(0) // patched below
	chunk.WriteU16(retIdx)
	entry := chunk.WriteOp(bytecode.RET)
	chunk.PatchU32(mkfnOffset+1, uint32(entry))

	out := Disassemble(chunk)
	if !strings.Contains(out, "FN_arbitrary:") {
		t.Fatalf("expected a generated FN_ label at the function entry, got:\n%s", out)
	}
	if !strings.Contains(out, "-> int") {
		t.Fatalf("expected the return type suffix, got:\n%s", out)
	}
}

func TestDisassembleMkfnUntypedReturnIsRenderedAsUntyped(t *testing.T) {
	chunk := bytecode.NewChunk()
	retIdx := chunk.AddName("")
	mkfnOffset := chunk.WriteOp(bytecode.MKFN)
	chunk.WriteU32(0)
	chunk.WriteU16(retIdx)
	entry := chunk.WriteOp(bytecode.RET)
	chunk.PatchU32(mkfnOffset+1, uint32(entry))

	out := Disassemble(chunk)
	if !strings.Contains(out, "-> untyped") {
		t.Fatalf("expected an untyped return type to render as \"untyped\", got:\n%s", out)
	}
}

func TestDisassembleCastRendersTypeTag(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.WriteOp(bytecode.CAST)
	chunk.WriteByte(byte(value.TypeInteger))

	out := Disassemble(chunk)
	if !strings.Contains(out, "CAST") || !strings.Contains(out, "int") {
		t.Fatalf("expected CAST int in listing, got:\n%s", out)
	}
}

func TestDisassembleDebugCommentsInterspersed(t *testing.T) {
	chunk := bytecode.NewChunk()
	idx := chunk.AddConstant(value.NewIntegerFromInt64(1))
	offset := chunk.WriteOp(bytecode.PUSH)
	chunk.WriteU16(idx)
	chunk.Debug.Insert(offset, bytecode.DebugTok{Lexeme: "1", Line: 1, Column: 1})

	out := Disassemble(chunk)
	if !strings.Contains(out, "; 1\n") {
		t.Fatalf("expected a source-text comment for the debug slice, got:\n%s", out)
	}
	if strings.Index(out, "; 1\n") > strings.Index(out, "PUSH") {
		t.Fatalf("expected the debug comment to precede its instruction, got:\n%s", out)
	}
}

func TestDisassembleTruncatedBufferProducesErrorLine(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.Code = []byte{byte(bytecode.PUSH)} // missing its u16 operand

	out := Disassemble(chunk)
	if !strings.Contains(out, "==== ERROR ====") {
		t.Fatalf("expected a truncated instruction to produce an error marker, got:\n%s", out)
	}
}

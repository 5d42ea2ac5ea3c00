package bytecode

import (
	"encoding/binary"

	"lavendeux/internal/value"
)

// Chunk holds one compiled unit: its instruction stream, its constant
// pool (literal values pushed by PUSH, names looked up by name-indexed
// opcodes like REF/WRFN), and the DebugProfile mapping offsets in Code back to
// source tokens. The constant pool is split between literal Values and
// plain name strings, rather than a single interface{} slot; debug
// information is a DebugProfile keyed by byte offset instead of one
// entry per instruction.
type Chunk struct {
	Code      []byte
	Constants []Constant
	Debug     *DebugProfile
}

// Constant is one entry in a Chunk's constant pool: either a literal
// Value (pushed by PUSH — only Boolean/Integer/Decimal/String/Regex
// ever appear here, since Array/Object/Function/Reference have no
// surface-syntax literal form) or a name string (looked up by REF/
// FBEG/FSIG/WRFN/LCST/MKFN via their constant-pool-index operand;
// CALL's operand is an argument count, not a name).
type Constant struct {
	IsName bool
	Name   string
	Value  value.Value
}

func NewChunk() *Chunk {
	return &Chunk{Debug: NewDebugProfile("")}
}

// WriteOp appends a single opcode byte and returns its offset.
func (c *Chunk) WriteOp(op OpCode) int {
	off := len(c.Code)
	c.Code = append(c.Code, byte(op))
	return off
}

func (c *Chunk) WriteByte(b byte) {
	c.Code = append(c.Code, b)
}

func (c *Chunk) WriteU16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	c.Code = append(c.Code, buf[:]...)
}

func (c *Chunk) WriteU32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	c.Code = append(c.Code, buf[:]...)
}

// PatchU32 overwrites the 4-byte operand starting at offset — used to
// back-patch forward jumps once their target is known.
func (c *Chunk) PatchU32(offset int, v uint32) {
	binary.BigEndian.PutUint32(c.Code[offset:offset+4], v)
}

func (c *Chunk) ReadU16(offset int) uint16 {
	return binary.BigEndian.Uint16(c.Code[offset : offset+2])
}

func (c *Chunk) ReadU32(offset int) uint32 {
	return binary.BigEndian.Uint32(c.Code[offset : offset+4])
}

// AddConstant interns v, reusing an existing identical entry when one
// exists, and returns its pool index. Equality is by type and textual
// form, adequate for deduplicating compile-time literals.
func (c *Chunk) AddConstant(v value.Value) uint16 {
	for i, k := range c.Constants {
		if !k.IsName && k.Value != nil && k.Value.Type() == v.Type() && k.Value.String() == v.String() {
			return uint16(i)
		}
	}
	c.Constants = append(c.Constants, Constant{Value: v})
	return uint16(len(c.Constants) - 1)
}

// AddName interns a name string (variable/function/argument/type name)
// into the constant pool, reusing an existing entry when possible.
func (c *Chunk) AddName(name string) uint16 {
	for i, k := range c.Constants {
		if k.IsName && k.Name == name {
			return uint16(i)
		}
	}
	c.Constants = append(c.Constants, Constant{IsName: true, Name: name})
	return uint16(len(c.Constants) - 1)
}

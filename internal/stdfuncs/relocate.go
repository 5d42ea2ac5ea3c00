package stdfuncs

import (
	"encoding/binary"
	"fmt"

	"lavendeux/internal/bytecode"
)

// relocate rewrites a copy of body so it behaves the same once
// appended onto a shared Chunk at codeOffset whose constant pool
// already holds constOffset entries before this function's own pool is
// appended: every constant-pool-index operand (PUSH/REF/LCST/WRFN/
// FBEG/FSIG/MKFN's return-type slot) shifts by constOffset, and every
// absolute jump/entry-offset operand (the JMP family, MKFN's entry)
// shifts by codeOffset. MKAR/MKOB's u16 operand is an element count,
// not an index, and is left alone; CAST/CALL's byte operand likewise.
// Mirrors the operand shapes internal/disasm's decode walk already
// knows, since both are reading the same instruction encoding.
func relocate(body []byte, constOffset uint16, codeOffset int) ([]byte, error) {
	out := make([]byte, len(body))
	copy(out, body)

	i := 0
	for i < len(out) {
		op := bytecode.OpCode(out[i])
		start := i
		i++
		switch op {
		case bytecode.PUSH, bytecode.REF, bytecode.LCST, bytecode.WRFN, bytecode.FBEG:
			if err := need(out, i, 2, op, start); err != nil {
				return nil, err
			}
			shiftU16(out, i, constOffset)
			i += 2

		case bytecode.MKAR, bytecode.MKOB:
			if err := need(out, i, 2, op, start); err != nil {
				return nil, err
			}
			i += 2

		case bytecode.JMP, bytecode.JMPT, bytecode.JMPF, bytecode.JMPE, bytecode.JMPNE:
			if err := need(out, i, 4, op, start); err != nil {
				return nil, err
			}
			shiftU32(out, i, codeOffset)
			i += 4

		case bytecode.FSIG:
			if err := need(out, i, 4, op, start); err != nil {
				return nil, err
			}
			shiftU16(out, i, constOffset)
			shiftU16(out, i+2, constOffset)
			i += 4

		case bytecode.MKFN:
			if err := need(out, i, 6, op, start); err != nil {
				return nil, err
			}
			shiftU32(out, i, codeOffset)
			shiftU16(out, i+4, constOffset)
			i += 6

		case bytecode.CAST, bytecode.CALL:
			if err := need(out, i, 1, op, start); err != nil {
				return nil, err
			}
			i += 1

		default:
			w := op.OperandWidth()
			if err := need(out, i, w, op, start); err != nil {
				return nil, err
			}
			i += w
		}
	}
	return out, nil
}

func need(buf []byte, at, width int, op bytecode.OpCode, start int) error {
	if at+width > len(buf) {
		return fmt.Errorf("stdfuncs: truncated %s at offset %d", op, start)
	}
	return nil
}

func shiftU16(buf []byte, at int, delta uint16) {
	v := binary.BigEndian.Uint16(buf[at : at+2])
	binary.BigEndian.PutUint16(buf[at:at+2], v+delta)
}

func shiftU32(buf []byte, at int, delta int) {
	v := binary.BigEndian.Uint32(buf[at : at+4])
	binary.BigEndian.PutUint32(buf[at:at+4], v+uint32(delta))
}

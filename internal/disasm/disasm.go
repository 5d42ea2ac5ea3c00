// Package disasm renders a compiled bytecode.Chunk as a human-readable
// assembly-style listing, grounded on the original implementation's
// ASMTranscoder: a linear decode pass, jump targets replaced by
// generated labels, and comments interspersed from the chunk's debug
// profile. This is a one-way transform for debugging and tests; there
// is no reassembler.
//
// The single-Chunk function layout (a function body lives inline at
// its own Entry offset in the same Code, rather than in a separate
// per-function buffer) means there is no recursive "inline the
// function's own bytecode" pass here, unlike the transcoder it's
// grounded on — MKFN's entry offset is just another label into the
// same linear listing, and the walk naturally reaches it.
package disasm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/value"
)

// line is one decoded instruction, or a decode failure.
type line struct {
	offset   int
	op       bytecode.OpCode
	operand  string // plain rendered operand text, "" if none or if labelRef is set
	labelRef *int   // set for JMP family and MKFN: an absolute offset to resolve to a label
	suffix   string // appended after the resolved label (MKFN's "-> returnType")
	err      string
}

// Disassemble renders chunk's bytecode as a listing: one line per
// instruction, constant-pool operands resolved to their actual names
// or values, jump and function-entry offsets replaced by generated
// labels, and source-text comments interspersed wherever chunk.Debug
// has an entry at that offset.
func Disassemble(chunk *bytecode.Chunk) string {
	lines, jumpTargets, fnTargets := decode(chunk)
	labels := assignLabels(jumpTargets, fnTargets)

	var out strings.Builder
	fmt.Fprintf(&out, "; %s, %d constant(s)\n",
		humanize.Bytes(uint64(len(chunk.Code))), len(chunk.Constants))

	comments := chunk.Debug.AllSlices()
	ci := 0
	for _, l := range lines {
		for ci < len(comments) && comments[ci].Start == l.offset {
			for _, part := range strings.Split(comments[ci].Text, "\n") {
				fmt.Fprintf(&out, "; %s\n", part)
			}
			ci++
		}
		if label, ok := labels[l.offset]; ok {
			fmt.Fprintf(&out, "%s:\n", label)
		}

		if l.err != "" {
			fmt.Fprintf(&out, "\n==== ERROR ====\n %s\n==== ERROR ====\n", l.err)
			continue
		}

		operand := l.operand
		if l.labelRef != nil {
			operand = labels[*l.labelRef] + l.suffix
		}
		if operand != "" {
			fmt.Fprintf(&out, "  %-6s %s\n", l.op, operand)
		} else {
			fmt.Fprintf(&out, "  %s\n", l.op)
		}
	}
	return out.String()
}

// decode walks chunk.Code once, producing one line per instruction and
// the sets of byte offsets later turned into labels (jump targets and
// function entries are tracked separately so they get distinct label
// prefixes).
func decode(chunk *bytecode.Chunk) (lines []line, jumpTargets, fnTargets map[int]bool) {
	jumpTargets = map[int]bool{}
	fnTargets = map[int]bool{}
	code := chunk.Code
	offset := 0

	fail := func(start int, format string, args ...any) line {
		return line{offset: start, err: fmt.Sprintf(format, args...)}
	}

	for offset < len(code) {
		start := offset
		op := bytecode.OpCode(code[offset])
		offset++
		l := line{offset: start, op: op}

		switch op {
		case bytecode.PUSH:
			idx, ok := readU16(code, &offset)
			if !ok {
				lines = append(lines, fail(start, "truncated %s at offset %d", op, start))
				return lines, jumpTargets, fnTargets
			}
			l.operand = renderConst(chunk, idx)

		case bytecode.REF, bytecode.WRFN, bytecode.FBEG, bytecode.LCST:
			idx, ok := readU16(code, &offset)
			if !ok {
				lines = append(lines, fail(start, "truncated %s at offset %d", op, start))
				return lines, jumpTargets, fnTargets
			}
			l.operand = constName(chunk, idx)

		case bytecode.MKAR, bytecode.MKOB:
			n, ok := readU16(code, &offset)
			if !ok {
				lines = append(lines, fail(start, "truncated %s at offset %d", op, start))
				return lines, jumpTargets, fnTargets
			}
			l.operand = strconv.Itoa(int(n))

		case bytecode.JMP, bytecode.JMPT, bytecode.JMPF, bytecode.JMPE, bytecode.JMPNE:
			target, ok := readU32(code, &offset)
			if !ok {
				lines = append(lines, fail(start, "truncated %s at offset %d", op, start))
				return lines, jumpTargets, fnTargets
			}
			t := int(target)
			l.labelRef = &t
			jumpTargets[t] = true

		case bytecode.CAST:
			tag, ok := readByte(code, &offset)
			if !ok {
				lines = append(lines, fail(start, "truncated CAST at offset %d", start))
				return lines, jumpTargets, fnTargets
			}
			l.operand = value.Type(tag).String()

		case bytecode.CALL:
			argc, ok := readByte(code, &offset)
			if !ok {
				lines = append(lines, fail(start, "truncated CALL at offset %d", start))
				return lines, jumpTargets, fnTargets
			}
			l.operand = strconv.Itoa(int(argc))

		case bytecode.FSIG:
			argIdx, ok1 := readU16(code, &offset)
			typeIdx, ok2 := readU16(code, &offset)
			if !ok1 || !ok2 {
				lines = append(lines, fail(start, "truncated FSIG at offset %d", start))
				return lines, jumpTargets, fnTargets
			}
			l.operand = fmt.Sprintf("%s %s", constName(chunk, argIdx), typeOrAny(chunk, typeIdx))

		case bytecode.MKFN:
			entry, ok1 := readU32(code, &offset)
			retIdx, ok2 := readU16(code, &offset)
			if !ok1 || !ok2 {
				lines = append(lines, fail(start, "truncated MKFN at offset %d", start))
				return lines, jumpTargets, fnTargets
			}
			t := int(entry)
			l.labelRef = &t
			l.suffix = " -> " + typeOrAny(chunk, retIdx)
			fnTargets[t] = true

		default:
			if op.OperandWidth() != 0 {
				lines = append(lines, fail(start, "unhandled operand width for %s at offset %d", op, start))
				return lines, jumpTargets, fnTargets
			}
			if op.String() == "UNKNOWN" {
				lines = append(lines, fail(start, "unrecognized opcode %d at offset %d", byte(op), start))
				return lines, jumpTargets, fnTargets
			}
		}

		lines = append(lines, l)
	}
	return lines, jumpTargets, fnTargets
}

func readByte(code []byte, offset *int) (byte, bool) {
	if *offset >= len(code) {
		return 0, false
	}
	b := code[*offset]
	*offset++
	return b, true
}

func readU16(code []byte, offset *int) (uint16, bool) {
	if *offset+2 > len(code) {
		return 0, false
	}
	v := uint16(code[*offset])<<8 | uint16(code[*offset+1])
	*offset += 2
	return v, true
}

func readU32(code []byte, offset *int) (uint32, bool) {
	if *offset+4 > len(code) {
		return 0, false
	}
	v := uint32(code[*offset])<<24 | uint32(code[*offset+1])<<16 | uint32(code[*offset+2])<<8 | uint32(code[*offset+3])
	*offset += 4
	return v, true
}

func constName(chunk *bytecode.Chunk, idx uint16) string {
	if int(idx) >= len(chunk.Constants) {
		return fmt.Sprintf("<bad const %d>", idx)
	}
	return chunk.Constants[idx].Name
}

// typeOrAny renders a type-name constant, substituting "untyped" for
// the empty-string convention functions and parameters use for "no
// declared type".
func typeOrAny(chunk *bytecode.Chunk, idx uint16) string {
	name := constName(chunk, idx)
	if name == "" {
		return "untyped"
	}
	return name
}

// renderConst formats a PUSH operand's literal value, using
// humanize.Comma to make large integers readable and quoting strings
// so they're unambiguous in the listing.
func renderConst(chunk *bytecode.Chunk, idx uint16) string {
	if int(idx) >= len(chunk.Constants) || chunk.Constants[idx].Value == nil {
		return fmt.Sprintf("<bad const %d>", idx)
	}
	v := chunk.Constants[idx].Value
	switch vv := v.(type) {
	case value.String:
		return strconv.Quote(string(vv))
	case *value.Integer:
		if big := vv.Big(); big.IsInt64() {
			return humanize.Comma(big.Int64())
		}
		return vv.String()
	default:
		return v.String()
	}
}

// assignLabels hands out a readable label to every distinct jump
// target and function entry offset, in ascending offset order so a
// re-disassembly of the same chunk is always labeled identically.
func assignLabels(jumpTargets, fnTargets map[int]bool) map[int]string {
	all := map[int]bool{}
	for t := range jumpTargets {
		all[t] = true
	}
	for t := range fnTargets {
		all[t] = true
	}
	offsets := make([]int, 0, len(all))
	for t := range all {
		offsets = append(offsets, t)
	}
	sort.Ints(offsets)

	gun := &labelGun{}
	labels := make(map[int]string, len(offsets))
	for _, t := range offsets {
		prefix := "LBL_"
		if fnTargets[t] {
			prefix = "FN_"
		}
		labels[t] = prefix + gun.next()
	}
	return labels
}

// labelGun generates short, memorable labels instead of raw numbers —
// "jump to bananas" reads better than "jump to 0x4a3" in a listing
// meant for a person.
type labelGun struct{ n int }

var labelDict = []string{
	"arbitrary", "bananas", "cabbage", "dolphin", "pointbreak",
	"alabaster", "umbrella", "grapefruit", "hedgehog", "jellybean",
	"kangaroo", "lumberjack", "marmalade", "noodle", "octopus",
	"penguin", "quarantine", "rhubarb", "salamander", "tangerine",
}

func (g *labelGun) next() string {
	label := toBaseN(g.n)
	g.n++
	return label
}

func toBaseN(n int) string {
	if n < len(labelDict) {
		return labelDict[n]
	}
	return toBaseN(n/len(labelDict)-1) + "_" + labelDict[1+n%(len(labelDict)-1)]
}

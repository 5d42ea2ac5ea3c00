// Package stdfuncs loads a precompiled StdFunctionSet (spec.md §6) —
// the wire format internal/bytecode already knows how to deserialize —
// into a runnable program: the concatenated function bodies become a
// fresh Chunk, and every function is bound as a locked global in a
// MemoryManager. No standard library of actual functions ships here;
// this package is the loading mechanism only, exercised by tests that
// build a small set with bytecode.SerializeStdFunctionLibrary and load
// it back.
package stdfuncs

import (
	"fmt"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/memory"
	"lavendeux/internal/value"
)

// Load deserializes buf (built by bytecode.SerializeStdFunctionLibrary)
// and installs every function it contains as a readonly global in mm,
// returning the Chunk their bodies now live in. Each function was
// originally compiled into its own throwaway Chunk; Load merges that
// Chunk's constant pool and code into the shared returned Chunk,
// relocating every constant-pool index and jump/entry offset the body
// carries so it still means the same thing in its new home, and
// reassigns Entry to the offset the relocated body landed at.
//
// The returned Chunk carries no top-level code of its own: nothing
// ever sets its pc to 0 and runs off the end, since every byte in it
// belongs to some function's body and is only ever reached by a CALL
// landing on that function's Entry. A VM is scoped to exactly one
// Chunk, and CALL jumps pc straight to fn.Entry as an offset into it —
// so a host that wants to invoke a loaded function cannot compile its
// driver code into a Chunk of its own; it must append that driver code
// (REF the name, PUSH args, CALL) onto the end of this same Chunk
// before constructing its VM, so Entry still means what it says.
func Load(buf []byte, mm *memory.MemoryManager) (*bytecode.Chunk, error) {
	fns, consts, bodies, err := bytecode.DeserializeStdFunctionLibrary(buf)
	if err != nil {
		return nil, fmt.Errorf("stdfuncs: %w", err)
	}

	chunk := bytecode.NewChunk()
	for i, fn := range fns {
		if err := installOne(chunk, mm, fn, consts[i], bodies[i]); err != nil {
			return nil, err
		}
	}
	return chunk, nil
}

func installOne(chunk *bytecode.Chunk, mm *memory.MemoryManager, fn *value.Function, fnConsts []bytecode.Constant, body []byte) error {
	constOffset := uint16(len(chunk.Constants))
	codeOffset := len(chunk.Code)

	relocated, err := relocate(body, constOffset, codeOffset)
	if err != nil {
		return fmt.Errorf("stdfuncs: relocating %q: %w", fn.Name, err)
	}

	chunk.Constants = append(chunk.Constants, fnConsts...)
	fn.Entry = codeOffset
	chunk.Code = append(chunk.Code, relocated...)

	ref, merr := mm.WriteGlobal(fn.Name, fn)
	if merr != nil {
		return fmt.Errorf("stdfuncs: installing %q: %w", fn.Name, merr)
	}
	if merr := mm.Lock(ref); merr != nil {
		return fmt.Errorf("stdfuncs: locking global %q: %w", fn.Name, merr)
	}
	return nil
}

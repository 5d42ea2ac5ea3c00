// Package memory implements the scoped memory manager: versioned
// slots, SlotRef handles that detect stale references, and the
// value-level Reference that composes indexing lazily before a final
// read/write/delete. Depends on internal/value only.
package memory

import "lavendeux/internal/value"

// Slot is one versioned storage cell. Vacating (on scope_out or
// delete) bumps Version so any SlotRef captured before the vacate is
// detectably stale on its next use — the Go equivalent of the
// original's Vacant/Occupied enum, using an Occupied flag instead of
// a sum type since Go has no tagged unions.
type Slot struct {
	Occupied    bool
	Version     uint32
	NameHash    uint64
	WriteLocked bool
	Value       value.Value
}

// Put occupies (or re-occupies) the slot under a new name, bumping
// its version so stale SlotRefs from a previous occupant are rejected.
func (s *Slot) Put(nameHash uint64, v value.Value) uint32 {
	s.Occupied = true
	s.NameHash = nameHash
	s.Value = v
	s.Version++
	s.WriteLocked = false
	return s.Version
}

// Take vacates the slot, returning its prior value and bumping the
// version so outstanding SlotRefs become stale.
func (s *Slot) Take() value.Value {
	v := s.Value
	s.Occupied = false
	s.Value = nil
	s.Version++
	return v
}

func (s *Slot) CheckVersion(version uint32) bool { return s.Occupied && s.Version == version }
func (s *Slot) CheckName(nameHash uint64) bool { return s.Occupied && s.NameHash == nameHash }

// FNV-1a, used for interned name lookups throughout the compiler and
// VM packages.
func HashName(name string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= prime64
	}
	return h
}

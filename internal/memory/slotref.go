package memory

// ScopeKind distinguishes a SlotRef into the local stack from one into
// the global table — the two storage arenas a MemoryManager owns.
type ScopeKind byte

const (
	ScopeStack ScopeKind = iota
	ScopeGlobal
)

// SlotRef is a capability to re-access a Slot: it carries enough of
// the slot's identity (name hash, version at capture time) that a
// stale reference — one whose slot has since been vacated or
// reoccupied by something else — is detected rather than silently
// read through.
type SlotRef struct {
	Scope    ScopeKind
	Index    int
	NameHash uint64
	Version  uint32
}

func (r SlotRef) IsGlobal() bool { return r.Scope == ScopeGlobal }

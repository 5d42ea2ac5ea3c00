package memory

import (
	"errors"
	"testing"

	"lavendeux/internal/value"
)

func TestWriteAndReadLocal(t *testing.T) {
	mm := NewMemoryManager()
	ref := mm.Write("x", value.NewIntegerFromInt64(1))
	got, err := mm.Read(ref)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.String() != "1" {
		t.Fatalf("got %s, want 1", got.String())
	}
}

func TestWriteShadowsWithinSameScope(t *testing.T) {
	mm := NewMemoryManager()
	ref1 := mm.Write("x", value.NewIntegerFromInt64(1))
	ref2 := mm.Write("x", value.NewIntegerFromInt64(2))
	if ref1.Index != ref2.Index {
		t.Fatalf("expected re-writing the same name in one scope to reuse the slot")
	}
	got, err := mm.Read(ref2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.String() != "2" {
		t.Fatalf("got %s, want 2", got.String())
	}
}

func TestScopeOutInvalidatesSlotRef(t *testing.T) {
	mm := NewMemoryManager()
	mm.ScopeIn()
	ref := mm.Write("x", value.NewIntegerFromInt64(1))
	mm.ScopeOut()

	_, err := mm.Read(ref)
	if err == nil {
		t.Fatalf("expected stale reference after ScopeOut")
	}
	var stale *ErrStale
	if !errors.As(err, &stale) {
		t.Fatalf("expected *ErrStale, got %T", err)
	}
}

func TestScopeLockHidesCallerLocals(t *testing.T) {
	mm := NewMemoryManager()
	mm.Write("caller_local", value.NewIntegerFromInt64(1))
	mm.ScopeLock()

	if _, ok := mm.GetRef("caller_local"); ok {
		t.Fatalf("expected caller's local to be hidden across a ScopeLock boundary")
	}

	mm.ScopeUnlock()
	if _, ok := mm.GetRef("caller_local"); !ok {
		t.Fatalf("expected caller's local visible again after ScopeUnlock")
	}
}

func TestGetRefLocalShadowsGlobal(t *testing.T) {
	mm := NewMemoryManager()
	if _, err := mm.WriteGlobal("x", value.NewIntegerFromInt64(100)); err != nil {
		t.Fatalf("WriteGlobal: %v", err)
	}
	mm.Write("x", value.NewIntegerFromInt64(1))

	ref, ok := mm.GetRef("x")
	if !ok {
		t.Fatalf("expected to resolve x")
	}
	if ref.IsGlobal() {
		t.Fatalf("expected local binding to shadow the global")
	}
}

func TestWriteGlobalRoundTrip(t *testing.T) {
	mm := NewMemoryManager()
	ref, err := mm.WriteGlobal("g", value.NewIntegerFromInt64(42))
	if err != nil {
		t.Fatalf("WriteGlobal: %v", err)
	}
	got, rerr := mm.Read(ref)
	if rerr != nil {
		t.Fatalf("Read: %v", rerr)
	}
	if got.String() != "42" {
		t.Fatalf("got %s, want 42", got.String())
	}
}

func TestWriteGlobalRejectsLockedName(t *testing.T) {
	mm := NewMemoryManager()
	ref, err := mm.WriteGlobal("frozen", value.NewIntegerFromInt64(1))
	if err != nil {
		t.Fatalf("WriteGlobal: %v", err)
	}
	if err := mm.Lock(ref); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	_, err = mm.WriteGlobal("frozen", value.NewIntegerFromInt64(2))
	if err == nil {
		t.Fatalf("expected WriteGlobal on a locked name to fail")
	}
	var locked *ErrLocked
	if !errors.As(err, &locked) || locked.Name != "frozen" {
		t.Fatalf("expected *ErrLocked{Name: frozen}, got %v", err)
	}

	got, rerr := mm.Read(ref)
	if rerr != nil {
		t.Fatalf("Read: %v", rerr)
	}
	if got.String() != "1" {
		t.Fatalf("expected locked global value to remain unchanged, got %s", got.String())
	}
}

func TestWriteGlobalToUnlockedNameStillSucceeds(t *testing.T) {
	mm := NewMemoryManager()
	if _, err := mm.WriteGlobal("mutable", value.NewIntegerFromInt64(1)); err != nil {
		t.Fatalf("WriteGlobal: %v", err)
	}
	ref, err := mm.WriteGlobal("mutable", value.NewIntegerFromInt64(2))
	if err != nil {
		t.Fatalf("expected overwriting an unlocked global to succeed, got %v", err)
	}
	got, rerr := mm.Read(ref)
	if rerr != nil {
		t.Fatalf("Read: %v", rerr)
	}
	if got.String() != "2" {
		t.Fatalf("got %s, want 2", got.String())
	}
}

func TestIsLockedReflectsLockState(t *testing.T) {
	mm := NewMemoryManager()
	ref, _ := mm.WriteGlobal("g", value.NewIntegerFromInt64(1))
	if mm.IsLocked(ref) {
		t.Fatalf("expected a fresh global to be unlocked")
	}
	_ = mm.Lock(ref)
	if !mm.IsLocked(ref) {
		t.Fatalf("expected global to be locked after Lock")
	}
}

func TestDeleteVacatesSlot(t *testing.T) {
	mm := NewMemoryManager()
	ref := mm.Write("x", value.NewIntegerFromInt64(1))
	if err := mm.Delete(ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := mm.Read(ref); err == nil {
		t.Fatalf("expected reading a deleted slot to fail")
	}
}

func TestAllGlobalsEnumeratesBoundNames(t *testing.T) {
	mm := NewMemoryManager()
	_, _ = mm.WriteGlobal("a", value.NewIntegerFromInt64(1))
	_, _ = mm.WriteGlobal("b", value.NewIntegerFromInt64(2))

	globals := mm.AllGlobals()
	if len(globals) != 2 {
		t.Fatalf("got %d globals, want 2", len(globals))
	}
	if globals["a"].String() != "1" || globals["b"].String() != "2" {
		t.Fatalf("got %v", globals)
	}
}

package value

import "testing"

func TestObjectInsertionOrderPreserved(t *testing.T) {
	o := NewObject()
	if err := o.SetByValue(String("b"), NewIntegerFromInt64(2)); err != nil {
		t.Fatalf("SetByValue: %v", err)
	}
	if err := o.SetByValue(String("a"), NewIntegerFromInt64(1)); err != nil {
		t.Fatalf("SetByValue: %v", err)
	}
	keys := o.Keys()
	if len(keys) != 2 || keys[0].String() != "b" || keys[1].String() != "a" {
		t.Fatalf("got %v, want insertion order [b a]", keys)
	}
}

func TestObjectOverwriteKeepsPosition(t *testing.T) {
	o := NewObject()
	_ = o.SetByValue(String("a"), NewIntegerFromInt64(1))
	_ = o.SetByValue(String("b"), NewIntegerFromInt64(2))
	_ = o.SetByValue(String("a"), NewIntegerFromInt64(99))
	keys := o.Keys()
	if len(keys) != 2 || keys[0].String() != "a" || keys[1].String() != "b" {
		t.Fatalf("got %v, want [a b] with no reordering on overwrite", keys)
	}
	v, _ := o.Get("a")
	if v.String() != "99" {
		t.Fatalf("got %s, want 99", v.String())
	}
}

func TestObjectNonPrimitiveKeyRejected(t *testing.T) {
	o := NewObject()
	err := o.SetByValue(&Array{}, NewIntegerFromInt64(1))
	if err == nil || err.Kind != ErrInvalidKey {
		t.Fatalf("expected invalid key error, got %v", err)
	}
}

func TestObjectGetByValueMissingKey(t *testing.T) {
	o := NewObject()
	_, err := o.GetByValue(String("missing"))
	if err == nil || err.Kind != ErrKeyNotFound {
		t.Fatalf("expected key not found, got %v", err)
	}
}

func TestObjectDeleteByValue(t *testing.T) {
	o := NewObject()
	_ = o.SetByValue(String("a"), NewIntegerFromInt64(1))
	_ = o.SetByValue(String("b"), NewIntegerFromInt64(2))
	if err := o.DeleteByValue(String("a")); err != nil {
		t.Fatalf("DeleteByValue: %v", err)
	}
	if o.Len() != 1 {
		t.Fatalf("got len %d, want 1", o.Len())
	}
	if _, ok := o.Get("a"); ok {
		t.Fatalf("expected deleted key to be gone")
	}
}

func TestObjectDeleteMissingKey(t *testing.T) {
	o := NewObject()
	err := o.DeleteByValue(String("nope"))
	if err == nil || err.Kind != ErrKeyNotFound {
		t.Fatalf("expected key not found, got %v", err)
	}
}

func TestObjectNumericKeysCanonicalizeByString(t *testing.T) {
	o := NewObject()
	_ = o.SetByValue(NewIntegerFromInt64(1), String("one"))
	got, err := o.GetByValue(NewIntegerFromInt64(1))
	if err != nil {
		t.Fatalf("GetByValue: %v", err)
	}
	if got.String() != "one" {
		t.Fatalf("got %s, want one", got.String())
	}
}

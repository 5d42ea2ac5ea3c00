package value

import "testing"

func TestArrayGetNegativeIndex(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1), NewIntegerFromInt64(2), NewIntegerFromInt64(3)}}
	got, err := a.Get(-2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.String() != "2" {
		t.Fatalf("got %s, want 2", got.String())
	}
}

func TestArraySetOutOfBounds(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1)}}
	err := a.Set(10, NewIntegerFromInt64(1))
	if err == nil || err.Kind != ErrIndexOutOfBounds {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}

func TestArraySetAtLengthAppends(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1)}}
	if err := a.Set(1, NewIntegerFromInt64(2)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(a.Elements) != 2 || a.Elements[1].String() != "2" {
		t.Fatalf("got %v, want append of 2", a.Elements)
	}
}

func TestArrayStringQuotesStringElements(t *testing.T) {
	a := &Array{Elements: []Value{String("x"), NewIntegerFromInt64(1)}}
	if a.String() != `["x", 1]` {
		t.Fatalf("got %q", a.String())
	}
}

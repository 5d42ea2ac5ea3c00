package value

import "testing"

func TestIndexArrayPositive(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(10), NewIntegerFromInt64(20)}}
	got, err := Index(a, NewIntegerFromInt64(1))
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got.String() != "20" {
		t.Fatalf("got %s, want 20", got.String())
	}
}

func TestIndexArrayNegative(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(10), NewIntegerFromInt64(20), NewIntegerFromInt64(30)}}
	got, err := Index(a, NewIntegerFromInt64(-1))
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got.String() != "30" {
		t.Fatalf("got %s, want 30", got.String())
	}
}

func TestIndexArrayOutOfBounds(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1)}}
	_, err := Index(a, NewIntegerFromInt64(5))
	if err == nil || err.Kind != ErrIndexOutOfBounds {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}

func TestIndexString(t *testing.T) {
	got, err := Index(String("hello"), NewIntegerFromInt64(-1))
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got.String() != "o" {
		t.Fatalf("got %q, want o", got.String())
	}
}

func TestIndexRange(t *testing.T) {
	r, _ := NewRange(5, 10)
	got, err := Index(r, NewIntegerFromInt64(2))
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got.String() != "7" {
		t.Fatalf("got %s, want 7", got.String())
	}
}

func TestIndexNonIntegerKey(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1)}}
	_, err := Index(a, String("nope"))
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestSetIndexArray(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1), NewIntegerFromInt64(2)}}
	if err := SetIndex(a, NewIntegerFromInt64(0), NewIntegerFromInt64(99)); err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	if a.Elements[0].String() != "99" {
		t.Fatalf("got %s, want 99", a.Elements[0].String())
	}
}

func TestSetIndexObject(t *testing.T) {
	o := NewObject()
	if err := SetIndex(o, String("k"), NewIntegerFromInt64(1)); err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	got, ok := o.Get("k")
	if !ok || got.String() != "1" {
		t.Fatalf("got %v, %v, want 1, true", got, ok)
	}
}

func TestSetIndexStringRejected(t *testing.T) {
	err := SetIndex(String("abc"), NewIntegerFromInt64(0), String("x"))
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected type mismatch assigning into a string, got %v", err)
	}
}

func TestSetIndexArrayAppendsAtLength(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1), NewIntegerFromInt64(2)}}
	if err := SetIndex(a, NewIntegerFromInt64(2), NewIntegerFromInt64(3)); err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	if len(a.Elements) != 3 || a.Elements[2].String() != "3" {
		t.Fatalf("got %v, want append of 3", a.Elements)
	}
}

func TestSetIndexArrayPastLengthRejected(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1)}}
	err := SetIndex(a, NewIntegerFromInt64(5), NewIntegerFromInt64(9))
	if err == nil || err.Kind != ErrIndexOutOfBounds {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}

func TestIndexArrayWithRangeReturnsSubarray(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(0), NewIntegerFromInt64(1), NewIntegerFromInt64(2), NewIntegerFromInt64(3)}}
	r, _ := NewRange(1, 3)
	got, err := Index(a, r)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	arr, ok := got.(*Array)
	if !ok || len(arr.Elements) != 2 || arr.Elements[0].String() != "1" || arr.Elements[1].String() != "2" {
		t.Fatalf("got %v, want [1, 2]", got)
	}
}

func TestIndexArrayWithRangeOutOfBounds(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(0)}}
	r, _ := NewRange(0, 5)
	_, err := Index(a, r)
	if err == nil || err.Kind != ErrIndexOutOfBounds {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}

func TestIndexStringWithRangeReturnsSubstring(t *testing.T) {
	r, _ := NewRange(1, 3)
	got, err := Index(String("hello"), r)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got.String() != "el" {
		t.Fatalf("got %q, want \"el\"", got.String())
	}
}

func TestIndexRangeWithRangeReturnsSubRange(t *testing.T) {
	outer, _ := NewRange(5, 10)
	sub, _ := NewRange(1, 3)
	got, err := Index(outer, sub)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	r, ok := got.(*Range)
	if !ok || r.Start != 6 || r.End != 8 {
		t.Fatalf("got %v, want 6..8", got)
	}
}

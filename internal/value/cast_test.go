package value

import "testing"

func TestCastNoOpSameType(t *testing.T) {
	got, err := Cast(NewIntegerFromInt64(5), "int")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.String() != "5" {
		t.Fatalf("got %s, want 5", got.String())
	}
}

func TestCastToBool(t *testing.T) {
	got, err := Cast(NewIntegerFromInt64(0), "bool")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.Truthy() {
		t.Fatalf("expected 0 to cast to false")
	}
}

func TestCastStringToInt(t *testing.T) {
	got, err := Cast(String("42"), "int")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.String() != "42" {
		t.Fatalf("got %s, want 42", got.String())
	}
}

func TestCastInvalidStringToInt(t *testing.T) {
	_, err := Cast(String("nope"), "int")
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestCastDecimalToInt(t *testing.T) {
	d := NewDecimalFromString(t, "3.7")
	got, err := Cast(d, "int")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.String() != "4" {
		t.Fatalf("got %s, want 4 (rounded)", got.String())
	}
}

func TestCastIntToDecimal(t *testing.T) {
	got, err := Cast(NewIntegerFromInt64(5), "decimal")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if got.String() != "5" {
		t.Fatalf("got %s, want 5", got.String())
	}
}

func TestCastStringToArraySplitsRunes(t *testing.T) {
	got, err := Cast(String("ab"), "array")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	arr := got.(*Array)
	if len(arr.Elements) != 2 || arr.Elements[0].String() != "a" || arr.Elements[1].String() != "b" {
		t.Fatalf("got %v", arr.Elements)
	}
}

func TestCastRangeToArray(t *testing.T) {
	r, _ := NewRange(0, 3)
	got, err := Cast(r, "array")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	arr := got.(*Array)
	if len(arr.Elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(arr.Elements))
	}
}

func TestCastObjectToArrayTakesValuesInOrder(t *testing.T) {
	o := NewObject()
	if err := o.SetByValue(String("a"), NewIntegerFromInt64(1)); err != nil {
		t.Fatalf("SetByValue: %v", err)
	}
	if err := o.SetByValue(String("b"), NewIntegerFromInt64(2)); err != nil {
		t.Fatalf("SetByValue: %v", err)
	}
	got, err := Cast(o, "array")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	arr := got.(*Array)
	if len(arr.Elements) != 2 || arr.Elements[0].String() != "1" || arr.Elements[1].String() != "2" {
		t.Fatalf("got %v, want [1, 2]", arr.Elements)
	}
}

func TestCastArrayToObjectIndexesByPosition(t *testing.T) {
	a := &Array{Elements: []Value{String("x"), String("y")}}
	got, err := Cast(a, "object")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	obj := got.(*Object)
	v, ok := obj.Get("0")
	if !ok || v.String() != "x" {
		t.Fatalf("got %v, %v, want x, true", v, ok)
	}
}

func TestCastUnknownTarget(t *testing.T) {
	_, err := Cast(NewIntegerFromInt64(1), "bogus")
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected type mismatch for unknown cast target, got %v", err)
	}
}

func TestCastBoolToRangeRejected(t *testing.T) {
	_, err := Cast(Boolean(true), "range")
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected type mismatch casting bool to range, got %v", err)
	}
}

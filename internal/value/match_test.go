package value

import "testing"

func TestMatchesWithRegexLiteral(t *testing.T) {
	re, err := NewRegex("^h.*o$", "")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	got, merr := Matches(String("hello"), re)
	if merr != nil {
		t.Fatalf("Matches: %v", merr)
	}
	if !got.Truthy() {
		t.Fatalf("expected hello to match ^h.*o$")
	}
}

func TestMatchesCaseInsensitiveFlag(t *testing.T) {
	re, err := NewRegex("^HELLO$", "i")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	got, merr := Matches(String("hello"), re)
	if merr != nil {
		t.Fatalf("Matches: %v", merr)
	}
	if !got.Truthy() {
		t.Fatalf("expected case-insensitive match")
	}
}

func TestMatchesPlainStringAsPattern(t *testing.T) {
	// Matches anchors both ends, so a plain-string pattern only matches
	// the whole value, not a substring of it.
	got, err := Matches(String("hello"), String("hello"))
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if !got.Truthy() {
		t.Fatalf("expected hello to match the literal pattern hello")
	}
	got, err = Matches(String("hello"), String("ell"))
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if got.Truthy() {
		t.Fatalf("expected hello not to match the partial pattern ell once anchored")
	}
}

func TestMatchesNonStringLeftOperand(t *testing.T) {
	_, err := Matches(NewIntegerFromInt64(1), String("x"))
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestStartsWithEndsWith(t *testing.T) {
	got, err := StartsWith(String("hello"), String("he"))
	if err != nil || !got.Truthy() {
		t.Fatalf("expected hello to start with he: %v %v", got, err)
	}
	got, err = EndsWith(String("hello"), String("lo"))
	if err != nil || !got.Truthy() {
		t.Fatalf("expected hello to end with lo: %v %v", got, err)
	}
}

func TestContainsString(t *testing.T) {
	got, err := Contains(String("hello"), String("ell"))
	if err != nil || !got.Truthy() {
		t.Fatalf("expected hello to contain ell: %v %v", got, err)
	}
}

func TestContainsArrayMembership(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1), NewIntegerFromInt64(2)}}
	got, err := Contains(a, NewIntegerFromInt64(2))
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !got.Truthy() {
		t.Fatalf("expected array to contain 2")
	}
	got, err = Contains(a, NewIntegerFromInt64(3))
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if got.Truthy() {
		t.Fatalf("expected array to not contain 3")
	}
}

func TestContainsUnsupportedLeftOperand(t *testing.T) {
	_, err := Contains(NewIntegerFromInt64(1), NewIntegerFromInt64(1))
	if err == nil || err.Kind != ErrTypeMismatch {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestContainsObjectByKey(t *testing.T) {
	o := NewObject()
	_ = o.SetByValue(String("k"), NewIntegerFromInt64(1))
	got, err := Contains(o, String("k"))
	if err != nil || !got.Truthy() {
		t.Fatalf("expected object to contain key k: %v %v", got, err)
	}
	got, err = Contains(o, String("missing"))
	if err != nil || got.Truthy() {
		t.Fatalf("expected object to not contain key missing: %v %v", got, err)
	}
}

func TestContainsRangeMembership(t *testing.T) {
	r, _ := NewRange(5, 10)
	got, err := Contains(r, NewIntegerFromInt64(7))
	if err != nil || !got.Truthy() {
		t.Fatalf("expected 5..10 to contain 7: %v %v", got, err)
	}
	got, err = Contains(r, NewIntegerFromInt64(10))
	if err != nil || got.Truthy() {
		t.Fatalf("expected 5..10 to not contain 10: %v %v", got, err)
	}
}

func TestStartsEndsWithArray(t *testing.T) {
	a := &Array{Elements: []Value{NewIntegerFromInt64(1), NewIntegerFromInt64(2), NewIntegerFromInt64(3)}}
	prefix := &Array{Elements: []Value{NewIntegerFromInt64(1), NewIntegerFromInt64(2)}}
	suffix := &Array{Elements: []Value{NewIntegerFromInt64(2), NewIntegerFromInt64(3)}}
	got, err := StartsWith(a, prefix)
	if err != nil || !got.Truthy() {
		t.Fatalf("expected [1,2,3] to start with [1,2]: %v %v", got, err)
	}
	got, err = EndsWith(a, suffix)
	if err != nil || !got.Truthy() {
		t.Fatalf("expected [1,2,3] to end with [2,3]: %v %v", got, err)
	}
}

func TestStartsEndsWithRange(t *testing.T) {
	outer, _ := NewRange(0, 10)
	head, _ := NewRange(0, 3)
	tail, _ := NewRange(7, 10)
	got, err := StartsWith(outer, head)
	if err != nil || !got.Truthy() {
		t.Fatalf("expected 0..10 to start with 0..3: %v %v", got, err)
	}
	got, err = EndsWith(outer, tail)
	if err != nil || !got.Truthy() {
		t.Fatalf("expected 0..10 to end with 7..10: %v %v", got, err)
	}
}

func TestMatchesRegexOperandHonorsFlags(t *testing.T) {
	re, err := NewRegex("foo", "i")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	got, merr := StartsWith(String("FOO bar"), re)
	if merr != nil {
		t.Fatalf("StartsWith: %v", merr)
	}
	if !got.Truthy() {
		t.Fatalf("expected case-insensitive *Regex operand to match a prefix")
	}
}

func TestNewRegexMultilineFlag(t *testing.T) {
	re, err := NewRegex("^b", "m")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	got, merr := Matches(String("a\nb"), re)
	if merr != nil {
		t.Fatalf("Matches: %v", merr)
	}
	if !got.Truthy() {
		t.Fatalf("expected multiline flag to let ^b match after a newline")
	}
}

func TestNewRegexDotMatchesNewlineFlag(t *testing.T) {
	re, err := NewRegex("a.b", "s")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	got, merr := Matches(String("a\nb"), re)
	if merr != nil {
		t.Fatalf("Matches: %v", merr)
	}
	if !got.Truthy() {
		t.Fatalf("expected s flag to let . match a newline")
	}
}

func TestNewRegexExtendedFlagStripsWhitespaceAndComments(t *testing.T) {
	re, err := NewRegex("a b # trailing comment\nc", "x")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	got, merr := Matches(String("abc"), re)
	if merr != nil {
		t.Fatalf("Matches: %v", merr)
	}
	if !got.Truthy() {
		t.Fatalf("expected x flag to strip whitespace/comments so abc matches")
	}
}

func TestNewRegexUnknownFlagRejected(t *testing.T) {
	_, err := NewRegex("abc", "q")
	if err == nil || err.Kind != ErrInvalidRegexFlag {
		t.Fatalf("expected ErrInvalidRegexFlag, got %v", err)
	}
}

package value

import (
	"fmt"
	"regexp"
	"strings"
)

// Matches, StartsWith, EndsWith, Contains implement the matching
// keyword-operators. For a string operand, all four compile a regex
// from the right-hand pattern — a *Regex literal's own pattern/flags,
// or a plain string treated as a flagless literal pattern — injecting
// start/end anchors per operator before compiling (Matches anchors
// both ends, StartsWith/EndsWith one end, Contains neither). Matches
// accepts only a string operand; for arrays/ranges the other three
// degrade to prefix/suffix/membership comparisons, and Contains also
// tests an object for a key.
// The compiler does not currently cache compiled patterns.

// patternFlags extracts the raw pattern and flag string a matching
// operator should compile: a *Regex carries both already, a plain
// string is a flagless literal pattern.
func patternFlags(v Value) (pattern, flags string, rerr *Error) {
	switch r := v.(type) {
	case *Regex:
		return r.Pattern, r.Flags, nil
	case String:
		return string(r), "", nil
	default:
		return "", "", NewError(ErrTypeMismatch, "expected string or regex, got %s", v.Type())
	}
}

// anchoredRegex compiles pattern+flags with ^ and/or $ injected unless
// already present.
func anchoredRegex(pattern, flags string, anchorStart, anchorEnd bool) (*regexp.Regexp, *Error) {
	if anchorStart && !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if anchorEnd && !strings.HasSuffix(pattern, "$") {
		pattern = pattern + "$"
	}
	return compileFlagged(pattern, flags)
}

func regexOperand(v Value) (*regexp.Regexp, *Error) {
	pattern, flags, err := patternFlags(v)
	if err != nil {
		return nil, err
	}
	return compileFlagged(pattern, flags)
}

// compileFlagged builds pattern under the named flags: i/m/s/U map
// directly onto Go's inline (?ims U) flag group, u is accepted as a
// no-op (Go's regexp engine is already Unicode-aware), and x strips
// unescaped whitespace and #-comments before compiling, since Go's
// RE2 engine has no native extended-mode flag. Any other flag
// character is rejected.
func compileFlagged(pattern, flags string) (*regexp.Regexp, *Error) {
	var inline strings.Builder
	extended := false
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
			inline.WriteRune(f)
		case 'u':
			// Go's regexp engine is always Unicode-aware.
		case 'x':
			extended = true
		default:
			return nil, NewError(ErrInvalidRegexFlag, "unrecognized regex flag %q", string(f))
		}
	}
	expr := pattern
	if extended {
		expr = stripExtendedWhitespace(expr)
	}
	if inline.Len() > 0 {
		expr = "(?" + inline.String() + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, NewError(ErrInvalidRegex, "invalid pattern %q: %v", pattern, err)
	}
	return re, nil
}

// stripExtendedWhitespace implements the `x` flag's extended mode:
// unescaped whitespace and #-to-end-of-line comments are removed
// outside character classes, where they're left alone.
func stripExtendedWhitespace(pattern string) string {
	var b strings.Builder
	inClass := false
	escaped := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			b.WriteByte(c)
			escaped = true
		case '[':
			inClass = true
			b.WriteByte(c)
		case ']':
			inClass = false
			b.WriteByte(c)
		case '#':
			if inClass {
				b.WriteByte(c)
				continue
			}
			for i < len(pattern) && pattern[i] != '\n' {
				i++
			}
		case ' ', '\t', '\n', '\r':
			if inClass {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func Matches(left, right Value) (Value, *Error) {
	ls, ok := left.(String)
	if !ok {
		return nil, NewError(ErrTypeMismatch, "matches requires a string operand, got %s", left.Type())
	}
	pattern, flags, err := patternFlags(right)
	if err != nil {
		return nil, err
	}
	re, err := anchoredRegex(pattern, flags, true, true)
	if err != nil {
		return nil, err
	}
	return Boolean(re.MatchString(string(ls))), nil
}

func StartsWith(left, right Value) (Value, *Error) {
	switch l := left.(type) {
	case String:
		pattern, flags, err := patternFlags(right)
		if err != nil {
			return nil, err
		}
		re, err := anchoredRegex(pattern, flags, true, false)
		if err != nil {
			return nil, err
		}
		return Boolean(re.MatchString(string(l))), nil
	case *Array:
		r, ok := right.(*Array)
		if !ok {
			return nil, NewError(ErrTypeMismatch, "starts_with requires an array argument, got %s", right.Type())
		}
		return Boolean(arrayHasPrefix(l, r)), nil
	case *Range:
		r, ok := right.(*Range)
		if !ok {
			return nil, NewError(ErrTypeMismatch, "starts_with requires a range argument, got %s", right.Type())
		}
		return Boolean(r.Start == l.Start && r.End <= l.End), nil
	default:
		return nil, NewError(ErrTypeMismatch, "starts_with requires a string, array, or range operand, got %s", left.Type())
	}
}

func EndsWith(left, right Value) (Value, *Error) {
	switch l := left.(type) {
	case String:
		pattern, flags, err := patternFlags(right)
		if err != nil {
			return nil, err
		}
		re, err := anchoredRegex(pattern, flags, false, true)
		if err != nil {
			return nil, err
		}
		return Boolean(re.MatchString(string(l))), nil
	case *Array:
		r, ok := right.(*Array)
		if !ok {
			return nil, NewError(ErrTypeMismatch, "ends_with requires an array argument, got %s", right.Type())
		}
		return Boolean(arrayHasSuffix(l, r)), nil
	case *Range:
		r, ok := right.(*Range)
		if !ok {
			return nil, NewError(ErrTypeMismatch, "ends_with requires a range argument, got %s", right.Type())
		}
		return Boolean(l.End == r.End && r.Start >= l.Start), nil
	default:
		return nil, NewError(ErrTypeMismatch, "ends_with requires a string, array, or range operand, got %s", left.Type())
	}
}

func arrayHasPrefix(l, prefix *Array) bool {
	if len(prefix.Elements) > len(l.Elements) {
		return false
	}
	for i, e := range prefix.Elements {
		if !Equal(l.Elements[i], e) {
			return false
		}
	}
	return true
}

func arrayHasSuffix(l, suffix *Array) bool {
	if len(suffix.Elements) > len(l.Elements) {
		return false
	}
	offset := len(l.Elements) - len(suffix.Elements)
	for i, e := range suffix.Elements {
		if !Equal(l.Elements[offset+i], e) {
			return false
		}
	}
	return true
}

func Contains(left, right Value) (Value, *Error) {
	switch l := left.(type) {
	case String:
		pattern, flags, err := patternFlags(right)
		if err != nil {
			return nil, err
		}
		re, err := compileFlagged(pattern, flags)
		if err != nil {
			return nil, err
		}
		return Boolean(re.MatchString(string(l))), nil
	case *Array:
		for _, elem := range l.Elements {
			if Equal(elem, right) {
				return Boolean(true), nil
			}
		}
		return Boolean(false), nil
	case *Object:
		_, getErr := l.GetByValue(right)
		return Boolean(getErr == nil), nil
	case *Range:
		i, ok := right.(*Integer)
		if !ok {
			return nil, NewError(ErrTypeMismatch, "contains requires an integer argument for a range, got %s", right.Type())
		}
		n := i.Big().Int64()
		return Boolean(n >= l.Start && n < l.End), nil
	default:
		return nil, NewError(ErrTypeMismatch, "contains requires a string, array, object, or range operand, got %s", left.Type())
	}
}

// Regex is a compiled pattern literal, e.g. /^h.*o$/i.
type Regex struct {
	Pattern  string
	Flags    string
	compiled *regexp.Regexp
}

func NewRegex(pattern, flags string) (*Regex, *Error) {
	re, err := compileFlagged(pattern, flags)
	if err != nil {
		return nil, err
	}
	return &Regex{Pattern: pattern, Flags: flags, compiled: re}, nil
}

func (r *Regex) Type() Type     { return TypeString }
func (r *Regex) String() string { return fmt.Sprintf("/%s/%s", r.Pattern, r.Flags) }
func (r *Regex) Truthy() bool   { return true }

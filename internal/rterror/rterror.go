// Package rterror defines the VM's runtime error taxonomy: a closed
// set of Kinds distinguishing compiler-bug categories (malformed
// bytecode the user's source could never cause) from ordinary
// user-code failures (undefined name, bad index, wrong argument
// count, ...), plus a value.Error wrapper for the per-operator
// arithmetic/comparison/matching failures that internal/value already
// returns as typed errors.
package rterror

import (
	"fmt"
	"strings"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/value"
)

// Kind distinguishes the category of a runtime failure.
type Kind byte

const (
	// Bytecode-integrity errors: never user-caused, always a compiler bug.
	KindUnexpectedEnd Kind = iota
	KindStackEmpty
	KindInvalidOpcode
	KindInvalidType
	KindDecode

	// User-code errors.
	KindNameError
	KindBadReference
	KindInvalidValuesForRange
	KindIndexingValue
	KindIndexingType
	KindIndexingBaseType
	KindIteratorEmpty
	KindUndefinedFunction
	KindIncorrectFunctionArgs
	KindValue // wraps a *value.Error from an arithmetic/comparison/matching op
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEnd:
		return "UnexpectedEnd"
	case KindStackEmpty:
		return "StackEmpty"
	case KindInvalidOpcode:
		return "InvalidOpcode"
	case KindInvalidType:
		return "InvalidType"
	case KindDecode:
		return "Decode"
	case KindNameError:
		return "NameError"
	case KindBadReference:
		return "BadReference"
	case KindInvalidValuesForRange:
		return "InvalidValuesForRange"
	case KindIndexingValue:
		return "IndexingValue"
	case KindIndexingType:
		return "IndexingType"
	case KindIndexingBaseType:
		return "IndexingBaseType"
	case KindIteratorEmpty:
		return "IteratorEmpty"
	case KindUndefinedFunction:
		return "UndefinedFunction"
	case KindIncorrectFunctionArgs:
		return "IncorrectFunctionArgs"
	case KindValue:
		return "Value"
	default:
		return "Unknown"
	}
}

// IsBug reports whether this Kind can only arise from a defect in the
// compiler/VM itself, never from otherwise-valid user source.
func (k Kind) IsBug() bool {
	return k <= KindDecode
}

// Error is the VM's runtime error: a Kind, a rendered message, the
// bytecode offset it occurred at, the resolved source token (once
// WithContext has run against a DebugProfile), and an optional parent
// for wrapped/chained failures (e.g. a function call failing inside
// another function call).
type Error struct {
	Kind    Kind
	Message string
	Pos     int
	Token   *bytecode.DebugTok
	Parent  *Error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Kind.IsBug() {
		sb.WriteString("internal VM error (this is a bug)\n= ")
	}
	if e.Token != nil {
		fmt.Fprintf(&sb, "%s:%d:%d\n= ", e.Token.File, e.Token.Line, e.Token.Column)
	}
	sb.WriteString(e.Message)
	if e.Parent != nil {
		sb.WriteString("\ncaused by: ")
		sb.WriteString(e.Parent.Error())
	}
	return sb.String()
}

func New(kind Kind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// FromValueError wraps a checked-arithmetic/comparison/matching
// failure from internal/value into a runtime Error at the given
// bytecode offset.
func FromValueError(verr *value.Error, pos int) *Error {
	return &Error{Kind: KindValue, Pos: pos, Message: verr.Error()}
}

// Wrap attaches parent as the cause of a new Error at pos — used when
// an error surfaces inside a called function and the caller wants to
// report both the call site and the underlying failure.
func Wrap(parent *Error, kind Kind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...), Parent: parent}
}

// WithContext resolves pos against dp and attaches the covering token,
// deferring source-location lookup until an error actually needs to
// be reported.
func (e *Error) WithContext(dp *bytecode.DebugProfile) *Error {
	if dp == nil {
		return e
	}
	tok, ok := dp.CurrentToken(e.Pos)
	if !ok {
		return e
	}
	out := *e
	out.Token = &tok
	return &out
}

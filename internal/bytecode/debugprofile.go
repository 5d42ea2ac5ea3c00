package bytecode

import "sort"

// DebugTok is the slice of a lexer.Token's fields a DebugProfile needs
// to report a source location — kept independent of internal/lexer so
// internal/bytecode doesn't have to import it.
type DebugTok struct {
	Lexeme string
	Line   int
	Column int
	File   string
}

// DebugProfile maps byte offsets in a Chunk's Code back to the source
// token whose compilation emitted the instruction at that offset, plus
// the original source text. Lookup is by predecessor search: binary
// search for the last entry whose start is <= the queried offset.
type DebugProfile struct {
	Source string
	starts []int
	tokens []DebugTok
}

func NewDebugProfile(source string) *DebugProfile {
	return &DebugProfile{Source: source}
}

// Insert records that the instruction at byte offset startPos in the
// owning Chunk's Code was emitted while compiling tok. Entries must be
// inserted in non-decreasing offset order, which holds naturally since
// the compiler emits bytecode linearly.
func (d *DebugProfile) Insert(startPos int, tok DebugTok) {
	d.starts = append(d.starts, startPos)
	d.tokens = append(d.tokens, tok)
}

// Offset shifts every recorded start backwards by n — used when a
// function body compiled as a nested unit is spliced into the outer
// chunk, so its debug map reads correctly at its final position
// regardless of where in the source it was defined.
func (d *DebugProfile) Offset(n int) {
	for i := range d.starts {
		d.starts[i] -= n
	}
}

// CurrentToken returns the token covering byte offset index: the last
// entry whose recorded start is <= index. Returns false if the profile
// has no entry at or before index.
func (d *DebugProfile) CurrentToken(index int) (DebugTok, bool) {
	i := sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > index })
	if i == 0 {
		return DebugTok{}, false
	}
	return d.tokens[i-1], true
}

// AllSlices returns every recorded (start, source-slice) pair, used by
// the disassembler to annotate instructions with their source text.
func (d *DebugProfile) AllSlices() []struct {
	Start int
	Text  string
} {
	out := make([]struct {
		Start int
		Text  string
	}, len(d.starts))
	for i, tok := range d.tokens {
		out[i].Start = d.starts[i]
		out[i].Text = tok.Lexeme
	}
	return out
}

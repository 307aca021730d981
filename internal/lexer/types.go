package lexer

import (
	"context"
	"errors"
)

// ErrNoLanguage is returned by Tokenize when no language is set.
var ErrNoLanguage = errors.New("no language set")

// Type classifies a token.
type Type uint8

// Token types.
const (
	Normal Type = iota
	Keyword
	Operator
	Name
	Literal
	Number
	SymbolWord
	LineCommentA
	LineCommentB
	Comment
	BlockComment
	String
	Char

	numTypes
)

var typeNames = [numTypes]string{
	Normal:       "normal",
	Keyword:      "keyword",
	Operator:     "operator",
	Name:         "name",
	Literal:      "literal",
	Number:       "number",
	SymbolWord:   "symbol-word",
	LineCommentA: "line-comment-a",
	LineCommentB: "line-comment-b",
	Comment:      "comment",
	BlockComment: "block-comment",
	String:       "string",
	Char:         "char",
}

// Valid reports whether t is one of the defined types.
func (t Type) Valid() bool { return t < numTypes }

func (t Type) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return typeNames[t]
}

// Types returns every valid type in order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Token is a run of Length characters of one type. Tokens are contiguous:
// concatenated by length they cover the scanned text.
type Token struct {
	Length int
	Type   Type
}

// Fold is a block spanning more than one hard line. Rows are line numbers
// and columns are offsets within those lines.
type Fold struct {
	StartColumn int
	StartRow    int
	EndColumn   int
	EndRow      int
}

// Result is the outcome of one scan.
type Result struct {
	Tokens []Token
	Folds  []Fold

	// UserWords are names the scan learned, such as declared functions and
	// required modules.
	UserWords []string

	// Length is the sum of token lengths, equal to the snapshot length.
	Length int

	// Language is the name of the language that produced the result.
	Language string

	// Generation identifies the Tokenize call whose snapshot was scanned.
	Generation uint64
}

// Offsets returns the start offset of every token.
func (r *Result) Offsets() []int {
	out := make([]int, len(r.Tokens))
	off := 0
	for i, tok := range r.Tokens {
		out[i] = off
		off += tok.Length
	}
	return out
}

// TokenAt returns the index of the token covering offset, or -1.
func (r *Result) TokenAt(offset int) int {
	if offset < 0 {
		return -1
	}
	off := 0
	for i, tok := range r.Tokens {
		if offset < off+tok.Length {
			return i
		}
		off += tok.Length
	}
	return -1
}

// Language scans text into tokens. Implementations must check ctx between
// tokens and return ctx.Err() once it is done.
type Language interface {
	Name() string
	Scan(ctx context.Context, text []rune) (*Result, error)
}

// Callback receives finished scans.
type Callback func(*Result)

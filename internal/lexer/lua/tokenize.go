package lua

import (
	"context"

	"github.com/dshills/codecore/internal/lexer"
)

// openBlock is a block start waiting for its closing keyword or brace.
type openBlock struct {
	line, column int
}

// scanState is the per-scan state of the tokenizer. Nothing learned during
// a scan outlives it.
type scanState struct {
	lang *Language
	sc   *scanner

	tokens []lexer.Token
	folds  []lexer.Fold

	blocks []openBlock
	braces []openBlock
	hasDo  bool

	words     map[string]struct{}
	wordOrder []string

	lastKind    kind // last kind other than whitespace
	prevKind    kind // kind of the immediately preceding token
	lastName    string
	lastNameIdx int
}

// Scan tokenizes text. It checks ctx before every token and returns
// ctx.Err() once ctx is done.
func (l *Language) Scan(ctx context.Context, text []rune) (*lexer.Result, error) {
	st := &scanState{
		lang:        l,
		sc:          newScanner(text),
		tokens:      make([]lexer.Token, 0, max(len(text)/8, 256)),
		hasDo:       true,
		words:       make(map[string]struct{}),
		lastKind:    kindEOF,
		prevKind:    kindEOF,
		lastNameIdx: -1,
	}

	done := ctx.Done()
	for {
		select {
		case <-done:
			return nil, ctx.Err()
		default:
		}

		t := st.sc.next()
		if t.kind == kindEOF {
			break
		}
		st.step(t)
	}

	if len(st.tokens) == 0 {
		st.tokens = append(st.tokens, lexer.Token{Length: 0, Type: lexer.Normal})
	}
	return &lexer.Result{
		Tokens:    st.tokens,
		Folds:     st.folds,
		UserWords: st.wordOrder,
		Length:    len(text),
		Language:  l.Name(),
	}, nil
}

func (st *scanState) add(length int, typ lexer.Type) {
	st.tokens = append(st.tokens, lexer.Token{Length: length, Type: typ})
}

func (st *scanState) addUserWord(w string) {
	if w == "" {
		return
	}
	if _, ok := st.words[w]; ok {
		return
	}
	st.words[w] = struct{}{}
	st.wordOrder = append(st.wordOrder, w)
}

func (st *scanState) isUserWord(w string) bool {
	_, ok := st.words[w]
	return ok
}

func (st *scanState) push(stack *[]openBlock, t token) {
	*stack = append(*stack, openBlock{line: t.line, column: t.column})
}

// pop closes the innermost block at t and records a fold if the block
// spans more than one line in between.
func (st *scanState) pop(stack *[]openBlock, t token) {
	n := len(*stack)
	if n == 0 {
		return
	}
	b := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	if t.line-b.line > 1 {
		st.folds = append(st.folds, lexer.Fold{
			StartColumn: b.column,
			StartRow:    b.line,
			EndColumn:   t.column,
			EndRow:      t.line,
		})
	}
}

func (st *scanState) step(t token) {
	n := t.len()

	switch t.kind {
	case kindDo:
		// The do of a while or for loop belongs to the block already open.
		if st.hasDo {
			st.push(&st.blocks, t)
		}
		st.hasDo = true
		st.add(n, lexer.Keyword)
	case kindWhile, kindFor:
		st.hasDo = false
		st.push(&st.blocks, t)
		st.add(n, lexer.Keyword)
	case kindFunction, kindIf, kindSwitch:
		st.push(&st.blocks, t)
		st.add(n, lexer.Keyword)
	case kindEnd:
		st.pop(&st.blocks, t)
		st.add(n, lexer.Keyword)
		st.hasDo = true
	case kindLCurly:
		st.push(&st.braces, t)
		st.add(n, lexer.Operator)
	case kindRCurly:
		st.pop(&st.braces, t)
		st.add(n, lexer.Operator)
	case kindLParen, kindRParen, kindLBrack, kindRBrack, kindComma, kindDot:
		st.add(n, lexer.Operator)
	case kindString, kindLongString:
		st.add(n, lexer.String)
		if st.lastName == "require" {
			st.addUserWord(stringContent(st.sc.src[t.start:t.end], t.kind == kindLongString))
		}
	case kindName:
		st.name(t)
	case kindComment:
		st.add(n, lexer.Comment)
	case kindBlockComment:
		st.add(n, lexer.BlockComment)
	case kindNumber:
		st.add(n, lexer.Number)
	default:
		if t.kind.reserved() {
			st.add(n, lexer.Keyword)
		} else {
			st.add(n, lexer.Normal)
		}
	}

	if t.kind != kindSpace {
		st.lastKind = t.kind
	}
	st.prevKind = t.kind
}

func (st *scanState) name(t token) {
	n := t.len()
	name := st.sc.text(t)

	// A name glued to a number, as in 12px, is one malformed literal.
	if st.prevKind == kindNumber {
		prev := &st.tokens[len(st.tokens)-1]
		prev.Length += n
		prev.Type = lexer.Normal
		st.lastName = name
		st.lastNameIdx = -1
		return
	}

	l := st.lang
	switch {
	case st.lastKind == kindFunction:
		st.add(n, lexer.Literal)
		st.addUserWord(name)
	case st.isUserWord(name):
		st.add(n, lexer.Literal)
	case st.lastKind == kindGoto || st.lastKind == kindAt:
		st.add(n, lexer.Literal)
	case l.IsBasePackage(name):
		st.add(n, lexer.Name)
	case st.lastKind == kindDot && l.IsBasePackage(st.lastName) && l.IsBaseWord(st.lastName, name):
		st.add(n, lexer.Name)
	case l.IsName(name):
		st.add(n, lexer.Name)
	default:
		st.add(n, lexer.Normal)
	}

	// local x = require "m" makes x a user word, recoloured in place.
	if st.lastKind == kindAssign && name == "require" {
		st.addUserWord(st.lastName)
		if st.lastNameIdx > 0 {
			st.tokens[st.lastNameIdx-1].Type = lexer.Literal
		}
	}
	st.lastNameIdx = len(st.tokens)
	st.lastName = name
}

// stringContent strips the delimiters of a string literal. Unterminated
// literals keep their tail.
func stringContent(lit []rune, long bool) string {
	if !long {
		if len(lit) >= 2 && lit[len(lit)-1] == lit[0] {
			return string(lit[1 : len(lit)-1])
		}
		return string(lit[1:])
	}
	level := 0
	for 1+level < len(lit) && lit[1+level] == '=' {
		level++
	}
	open := level + 2
	if len(lit) < open {
		return ""
	}
	body := lit[open:]
	if closedLong(body, level) {
		body = body[:len(body)-open]
	}
	return string(body)
}

func closedLong(body []rune, level int) bool {
	n := len(body)
	if n < level+2 || body[n-1] != ']' || body[n-level-2] != ']' {
		return false
	}
	for _, c := range body[n-level-1 : n-1] {
		if c != '=' {
			return false
		}
	}
	return true
}

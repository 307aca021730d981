// Package chromalex adapts chroma lexers to lexer.Language so that
// documents in languages without a hand-written scanner still get tokens
// and brace folds.
package chromalex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/codecore/internal/lexer"
)

// ErrUnknownLanguage is returned by New for names chroma does not know.
var ErrUnknownLanguage = errors.New("unknown language")

// Language scans text with a chroma lexer.
type Language struct {
	lexer chroma.Lexer
	name  string
}

// New returns the language registered under name or alias, such as
// "python", "js" or "xml".
func New(name string) (*Language, error) {
	l := lexers.Get(name)
	if l == nil {
		return nil, fmt.Errorf("chroma lexer %q: %w", name, ErrUnknownLanguage)
	}
	return wrap(l), nil
}

// Detect picks a language by file name, then by content, falling back to
// plain text.
func Detect(filename, text string) *Language {
	if filename != "" {
		if l := lexers.Match(filename); l != nil {
			return wrap(l)
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return wrap(l)
	}
	return wrap(lexers.Fallback)
}

func wrap(l chroma.Lexer) *Language {
	return &Language{
		lexer: chroma.Coalesce(l),
		name:  strings.ToLower(l.Config().Name),
	}
}

// Name returns the lower-cased chroma lexer name.
func (l *Language) Name() string { return l.name }

// Scan tokenizes text. Token lengths are clipped to the input so a lexer
// that appends a final newline still covers text exactly.
func (l *Language) Scan(ctx context.Context, text []rune) (*lexer.Result, error) {
	it, err := l.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, string(text))
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", l.name, err)
	}

	var (
		tokens    []lexer.Token
		folds     foldTracker
		remaining = len(text)
		done      = ctx.Done()
	)
	for tok := it(); tok.Type != chroma.EOFType; tok = it() {
		select {
		case <-done:
			return nil, ctx.Err()
		default:
		}

		value := []rune(tok.Value)
		n := min(len(value), remaining)
		if n == 0 {
			continue
		}
		if tok.Type == chroma.Punctuation || tok.Type == chroma.Operator {
			folds.punct(value[:n])
		} else {
			folds.skip(value[:n])
		}

		typ := mapType(tok.Type)
		if k := len(tokens); k > 0 && tokens[k-1].Type == typ {
			tokens[k-1].Length += n
		} else {
			tokens = append(tokens, lexer.Token{Length: n, Type: typ})
		}
		remaining -= n
	}
	if remaining > 0 {
		tokens = append(tokens, lexer.Token{Length: remaining, Type: lexer.Normal})
	}
	if len(tokens) == 0 {
		tokens = append(tokens, lexer.Token{Length: 0, Type: lexer.Normal})
	}

	return &lexer.Result{
		Tokens:   tokens,
		Folds:    folds.folds,
		Length:   len(text),
		Language: l.name,
	}, nil
}

// mapType folds chroma's token hierarchy onto the editor's closed set.
func mapType(t chroma.TokenType) lexer.Type {
	switch {
	case t == chroma.CommentMultiline || t == chroma.CommentSpecial:
		return lexer.BlockComment
	case t.InSubCategory(chroma.CommentPreproc):
		return lexer.LineCommentA
	case t == chroma.CommentHashbang:
		return lexer.LineCommentB
	case t.InCategory(chroma.Comment):
		return lexer.Comment
	case t.InCategory(chroma.Keyword):
		return lexer.Keyword
	case t == chroma.NameBuiltin || t == chroma.NameBuiltinPseudo || t == chroma.NameAttribute:
		return lexer.Name
	case t == chroma.NameFunction || t == chroma.NameClass || t == chroma.NameNamespace || t == chroma.NameDecorator:
		return lexer.Literal
	case t == chroma.NameTag:
		return lexer.Keyword
	case t == chroma.LiteralStringChar:
		return lexer.Char
	case t.InSubCategory(chroma.LiteralString):
		return lexer.String
	case t.InSubCategory(chroma.LiteralNumber):
		return lexer.Number
	case t.InCategory(chroma.Literal):
		return lexer.Literal
	case t == chroma.OperatorWord:
		return lexer.SymbolWord
	case t.InCategory(chroma.Operator), t.InCategory(chroma.Punctuation):
		return lexer.Operator
	case t == chroma.GenericHeading || t == chroma.GenericSubheading:
		return lexer.Keyword
	case t == chroma.GenericEmph || t == chroma.GenericStrong:
		return lexer.Literal
	}
	return lexer.Normal
}

// foldTracker pairs braces across token values and records the pairs more
// than one line apart.
type foldTracker struct {
	line, column int
	open         []lexer.Fold
	folds        []lexer.Fold
}

func (f *foldTracker) skip(rs []rune) {
	for _, r := range rs {
		f.step(r)
	}
}

func (f *foldTracker) punct(rs []rune) {
	for _, r := range rs {
		switch r {
		case '{':
			f.open = append(f.open, lexer.Fold{StartColumn: f.column, StartRow: f.line})
		case '}':
			if n := len(f.open); n > 0 {
				fold := f.open[n-1]
				f.open = f.open[:n-1]
				if f.line-fold.StartRow > 1 {
					fold.EndColumn, fold.EndRow = f.column, f.line
					f.folds = append(f.folds, fold)
				}
			}
		}
		f.step(r)
	}
}

func (f *foldTracker) step(r rune) {
	if r == '\n' {
		f.line++
		f.column = 0
		return
	}
	f.column++
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/codecore/internal/config"
	"github.com/dshills/codecore/internal/engine"
	"github.com/dshills/codecore/internal/highlight"
	"github.com/dshills/codecore/internal/lexer"
	"github.com/dshills/codecore/internal/lexer/lua"
)

var errNotLua = errors.New("mode needs the lua language")

// view is what a printer may look at.
type view struct {
	cfg    *config.Config
	engine *engine.Engine
	tokens *lexer.Result
	out    io.Writer
}

// printer writes one output mode and returns the exit code.
type printer func(v *view) (int, error)

var printers = map[string]printer{
	"tokens": printTokens,
	"rows":   printRows,
	"folds":  printFolds,
	"words":  printWords,
	"color":  printColor,
	"check":  printCheck,
	"format": printFormat,
}

func printTokens(v *view) (int, error) {
	if v.tokens == nil {
		return 0, lexer.ErrNoLanguage
	}
	offsets := v.tokens.Offsets()
	for i, tok := range v.tokens.Tokens {
		text := v.engine.SubSequence(offsets[i], tok.Length)
		fmt.Fprintf(v.out, "%6d %4d %-13s %q\n", offsets[i], tok.Length, tok.Type, text)
	}
	return 0, nil
}

func printRows(v *view) (int, error) {
	rows := v.engine.RowCount()
	for row := range rows {
		text := strings.TrimSuffix(v.engine.Row(row), "\n")
		fmt.Fprintf(v.out, "%4d %6d |%s|\n", row, v.engine.RowOffset(row), text)
	}
	return 0, nil
}

func printFolds(v *view) (int, error) {
	if v.tokens == nil {
		return 0, lexer.ErrNoLanguage
	}
	for _, f := range v.tokens.Folds {
		fmt.Fprintf(v.out, "%d:%d-%d:%d\n", f.StartRow+1, f.StartColumn+1, f.EndRow+1, f.EndColumn+1)
	}
	return 0, nil
}

func printWords(v *view) (int, error) {
	if v.tokens == nil {
		return 0, lexer.ErrNoLanguage
	}
	for _, w := range v.tokens.UserWords {
		fmt.Fprintln(v.out, w)
	}
	return 0, nil
}

func printColor(v *view) (int, error) {
	text := v.engine.Runes()
	if v.tokens == nil {
		_, err := io.WriteString(v.out, string(text))
		return 0, err
	}
	palette := highlight.Lookup(v.cfg.Lexer.Palette)
	if palette == nil {
		return 0, fmt.Errorf("unknown palette %q", v.cfg.Lexer.Palette)
	}
	spans, err := palette.Spans(v.tokens)
	if err != nil {
		return 0, err
	}
	return 0, highlight.WriteANSI(v.out, text, spans)
}

func isLua(v *view) bool {
	lang := v.engine.Language()
	return lang != nil && lang.Name() == "lua"
}

// printCheck exits 1 when there are syntax errors.
func printCheck(v *view) (int, error) {
	if !isLua(v) {
		return 0, errNotLua
	}
	diags := lua.Check(v.engine.Text())
	for _, d := range diags {
		fmt.Fprintln(v.out, d)
	}
	if len(diags) > 0 {
		return 1, nil
	}
	return 0, nil
}

func printFormat(v *view) (int, error) {
	if !isLua(v) {
		return 0, errNotLua
	}
	_, err := io.WriteString(v.out, lua.Format(v.engine.Text(), v.cfg.Editor.TabWidth))
	return 0, err
}

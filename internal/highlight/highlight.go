// Package highlight maps token types to terminal styles.
package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codecore/internal/assert"
	"github.com/dshills/codecore/internal/lexer"
)

// Palette assigns a style to every token type.
type Palette struct {
	Name       string
	Foreground tcell.Color
	Background tcell.Color
	styles     map[lexer.Type]tcell.Style
}

// StyleFor returns the style of t. An undefined type is an internal bug:
// it fails loudly in debug builds and yields the plain style otherwise.
func (p *Palette) StyleFor(t lexer.Type) (tcell.Style, error) {
	base := tcell.StyleDefault.Foreground(p.Foreground).Background(p.Background)
	if !t.Valid() {
		return base, assert.Unreachable("no style for token type %d", uint8(t))
	}
	if s, ok := p.styles[t]; ok {
		return s, nil
	}
	return base, nil
}

func rgb(r, g, b int32) tcell.Color { return tcell.NewRGBColor(r, g, b) }

func newPalette(name string, fg, bg tcell.Color, colors map[lexer.Type]tcell.Color) *Palette {
	p := &Palette{Name: name, Foreground: fg, Background: bg, styles: make(map[lexer.Type]tcell.Style)}
	base := tcell.StyleDefault.Foreground(fg).Background(bg)
	for t, c := range colors {
		p.styles[t] = base.Foreground(c)
	}
	p.styles[lexer.Keyword] = p.styles[lexer.Keyword].Bold(true)
	for _, t := range []lexer.Type{lexer.Comment, lexer.BlockComment, lexer.LineCommentA, lexer.LineCommentB} {
		p.styles[t] = p.styles[t].Italic(true)
	}
	return p
}

// DefaultPalette is a dark palette.
func DefaultPalette() *Palette {
	return newPalette("default", rgb(212, 212, 212), rgb(30, 30, 30), map[lexer.Type]tcell.Color{
		lexer.Normal:       rgb(212, 212, 212),
		lexer.Keyword:      rgb(86, 156, 214),
		lexer.Operator:     rgb(180, 180, 180),
		lexer.Name:         rgb(78, 201, 176),
		lexer.Literal:      rgb(220, 220, 170),
		lexer.Number:       rgb(181, 206, 168),
		lexer.SymbolWord:   rgb(197, 134, 192),
		lexer.LineCommentA: rgb(155, 155, 155),
		lexer.LineCommentB: rgb(155, 155, 155),
		lexer.Comment:      rgb(106, 153, 85),
		lexer.BlockComment: rgb(106, 153, 85),
		lexer.String:       rgb(206, 145, 120),
		lexer.Char:         rgb(215, 186, 125),
	})
}

// MonokaiPalette is a Monokai-like palette.
func MonokaiPalette() *Palette {
	return newPalette("monokai", rgb(248, 248, 242), rgb(39, 40, 34), map[lexer.Type]tcell.Color{
		lexer.Normal:       rgb(248, 248, 242),
		lexer.Keyword:      rgb(249, 38, 114),
		lexer.Operator:     rgb(249, 38, 114),
		lexer.Name:         rgb(102, 217, 239),
		lexer.Literal:      rgb(166, 226, 46),
		lexer.Number:       rgb(174, 129, 255),
		lexer.SymbolWord:   rgb(249, 38, 114),
		lexer.LineCommentA: rgb(117, 113, 94),
		lexer.LineCommentB: rgb(117, 113, 94),
		lexer.Comment:      rgb(117, 113, 94),
		lexer.BlockComment: rgb(117, 113, 94),
		lexer.String:       rgb(230, 219, 116),
		lexer.Char:         rgb(230, 219, 116),
	})
}

// Lookup returns the palette called name, or nil.
func Lookup(name string) *Palette {
	switch strings.ToLower(name) {
	case "", "default":
		return DefaultPalette()
	case "monokai":
		return MonokaiPalette()
	}
	return nil
}

// Span is a styled range of offsets [Start, End).
type Span struct {
	Start int
	End   int
	Type  lexer.Type
	Style tcell.Style
}

// Spans resolves every token of res to a styled range. Adjacent tokens of
// the same type are merged. The first style error is returned along with
// the spans computed so far.
func (p *Palette) Spans(res *lexer.Result) ([]Span, error) {
	spans := make([]Span, 0, len(res.Tokens))
	off := 0
	for _, tok := range res.Tokens {
		if tok.Length == 0 {
			continue
		}
		style, err := p.StyleFor(tok.Type)
		if err != nil {
			return spans, fmt.Errorf("token at %d: %w", off, err)
		}
		if n := len(spans); n > 0 && spans[n-1].Type == tok.Type {
			spans[n-1].End += tok.Length
		} else {
			spans = append(spans, Span{Start: off, End: off + tok.Length, Type: tok.Type, Style: style})
		}
		off += tok.Length
	}
	return spans, nil
}

// WriteANSI writes text with 24-bit colour escapes for each span. Text
// beyond the last span is written plain.
func WriteANSI(w io.Writer, text []rune, spans []Span) error {
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start >= len(text) {
			break
		}
		end := min(s.End, len(text))
		b.WriteString(sgr(s.Style))
		b.WriteString(string(text[s.Start:end]))
		b.WriteString("\x1b[0m")
		pos = end
	}
	if pos < len(text) {
		b.WriteString(string(text[pos:]))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sgr(style tcell.Style) string {
	fg, _, attrs := style.Decompose()
	var codes []string
	if attrs&tcell.AttrBold != 0 {
		codes = append(codes, "1")
	}
	if attrs&tcell.AttrItalic != 0 {
		codes = append(codes, "3")
	}
	if fg.Valid() {
		r, g, b := fg.RGB()
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", r, g, b))
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

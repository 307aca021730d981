// Package metrics provides layout measurements for the document row index
// on character-cell surfaces.
package metrics

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/codecore/internal/engine/gapbuf"
)

// DefaultTabWidth is the number of cells a tab occupies.
const DefaultTabWidth = 4

// Monospace measures text in terminal cells. Wide East Asian characters
// take two cells and combining marks take none.
type Monospace struct {
	// Columns is the row width in cells. Zero means not yet known.
	Columns int

	// TabWidth is the advance of a tab. Zero selects DefaultTabWidth.
	TabWidth int

	cond *runewidth.Condition
}

// NewMonospace creates a Monospace measure. eastAsian treats ambiguous-width
// characters as wide, as CJK terminals do.
func NewMonospace(columns, tabWidth int, eastAsian bool) *Monospace {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = eastAsian
	return &Monospace{Columns: columns, TabWidth: tabWidth, cond: cond}
}

// Advance returns the number of cells r occupies.
func (m *Monospace) Advance(r rune) int {
	switch r {
	case gapbuf.Newline, gapbuf.EOF:
		return 0
	case '\t':
		if m.TabWidth > 0 {
			return m.TabWidth
		}
		return DefaultTabWidth
	}
	if m.cond != nil {
		return m.cond.RuneWidth(r)
	}
	return runewidth.RuneWidth(r)
}

// RowWidth returns the row width in cells.
func (m *Monospace) RowWidth() int {
	return m.Columns
}

// Fixed gives every visible character the same advance.
type Fixed struct {
	Width int
	Row   int
}

// Advance returns Width, or zero for line terminators.
func (f Fixed) Advance(r rune) int {
	if r == gapbuf.Newline || r == gapbuf.EOF {
		return 0
	}
	return f.Width
}

// RowWidth returns Row.
func (f Fixed) RowWidth() int {
	return f.Row
}

package document

import (
	"fmt"
	"slices"

	"github.com/dshills/codecore/internal/assert"
	"github.com/dshills/codecore/internal/engine/gapbuf"
)

// SetWordWrap switches between hard-line rows and wrapped rows and
// rebuilds the table.
func (d *Document) SetWordWrap(enable bool) error {
	if enable == d.wordWrap {
		return nil
	}
	if err := d.checkMetrics(d.metrics, enable); err != nil {
		return err
	}
	d.wordWrap = enable
	return d.Analyze()
}

// IsWordWrap reports whether word wrap is enabled.
func (d *Document) IsWordWrap() bool { return d.wordWrap }

// SetMetrics replaces the layout metrics and rebuilds the table.
func (d *Document) SetMetrics(m Metrics) error {
	if m == nil {
		m = unitMetrics{}
	}
	if err := d.checkMetrics(m, d.wordWrap); err != nil {
		return err
	}
	d.metrics = m
	return d.Analyze()
}

// Metrics returns the current layout metrics.
func (d *Document) Metrics() Metrics { return d.metrics }

// checkMetrics rejects a wrap configuration that cannot fit the widest
// glyph, taken to be two ems. A zero width means layout is pending.
func (d *Document) checkMetrics(m Metrics, wrap bool) error {
	if !wrap {
		return nil
	}
	width := m.RowWidth()
	if width > 0 && width < 2*m.Advance('M') {
		return fmt.Errorf("row width %d: %w", width, ErrConfiguration)
	}
	return nil
}

// wrapping reports whether rows are soft-wrapped right now. With wrap on
// but no width yet, rows fall back to hard breaks.
func (d *Document) wrapping() bool {
	return d.wordWrap && d.metrics.RowWidth() > 0
}

// Analyze rebuilds the whole row table.
func (d *Document) Analyze() error {
	if err := d.checkMetrics(d.metrics, d.wordWrap); err != nil {
		return err
	}
	d.rows = d.rows[:0]
	d.rows = append(d.rows, 0)
	d.analyzeRange(1, 0, d.buf.TextLength())
	return nil
}

// repairRows rebuilds the rows touched by an edit that changed the text
// length by delta. startRow is the row holding the edit offset and
// analyzeEnd is the start of the line following the edit, both in
// post-edit coordinates.
func (d *Document) repairRows(startRow, analyzeEnd, delta int) error {
	if startRow < 0 {
		return assert.Unreachable("edit offset outside row table (end %d, delta %d)", analyzeEnd, delta)
	}
	// The first word of the edited row may now fit on the row before.
	if startRow > 0 {
		startRow--
	}
	analyzeStart := d.rows[startRow]

	d.removeRows(startRow+1, analyzeEnd-delta)
	for i := startRow + 1; i < len(d.rows); i++ {
		d.rows[i] += delta
	}
	d.analyzeRange(startRow+1, analyzeStart, analyzeEnd)
	return nil
}

// removeRows drops the rows from fromRow whose start is at or before
// endOffset.
func (d *Document) removeRows(fromRow, endOffset int) {
	to := fromRow
	for to < len(d.rows) && d.rows[to] <= endOffset {
		to++
	}
	d.rows = slices.Delete(d.rows, fromRow, to)
}

// analyzeRange computes the row starts inside [start, end) and inserts
// them at rowIndex. start must itself be a row start.
func (d *Document) analyzeRange(rowIndex, start, end int) {
	var rows []int
	if d.wrapping() {
		rows = d.wrapRows(start, end)
	} else {
		rows = d.hardRows(start, end)
	}
	d.rows = slices.Insert(d.rows, rowIndex, rows...)
}

func (d *Document) hardRows(start, end int) []int {
	var rows []int
	for nl := d.buf.FindNewline(start); nl < end && nl < d.buf.Len(); nl = d.buf.FindNewline(nl + 1) {
		rows = append(rows, nl+1)
	}
	return rows
}

// wrapRows lays out [start, end) greedily by word. A word carries the
// breaking character after it; a word wider than a row is split by
// character.
func (d *Document) wrapRows(start, end int) []int {
	var rows []int
	add := func(off int) {
		if off > start && (len(rows) == 0 || off > rows[len(rows)-1]) {
			rows = append(rows, off)
		}
	}

	maxWidth := d.metrics.RowWidth()
	remaining := maxWidth
	breakPoint := start
	extent := 0

	for off := start; off < end; off++ {
		c := d.buf.CharAt(off)
		extent += d.metrics.Advance(c)

		if isBreak(c) {
			switch {
			case extent <= remaining:
				remaining -= extent
			case extent > maxWidth:
				remaining = maxWidth
				add(breakPoint)
				for cur := breakPoint; cur <= off; cur++ {
					adv := d.metrics.Advance(d.buf.CharAt(cur))
					if adv > remaining {
						add(cur)
						remaining = maxWidth - adv
					} else {
						remaining -= adv
					}
				}
			default:
				add(breakPoint)
				remaining = maxWidth - extent
			}
			extent = 0
			breakPoint = off + 1
		}

		if c == gapbuf.Newline {
			add(breakPoint)
			remaining = maxWidth
		}
	}
	return rows
}

func isBreak(c rune) bool {
	return c == ' ' || c == '\t' || c == gapbuf.Newline || c == gapbuf.EOF
}

// RowCount returns the number of rows.
func (d *Document) RowCount() int { return len(d.rows) }

// RowOffset returns the start offset of row, or NotFound.
func (d *Document) RowOffset(row int) int {
	if row < 0 || row >= len(d.rows) {
		return NotFound
	}
	return d.rows[row]
}

// RowSize returns the number of characters in row. The last row counts the
// sentinel. Invalid rows have size 0.
func (d *Document) RowSize(row int) int {
	if row < 0 || row >= len(d.rows) {
		return 0
	}
	if row == len(d.rows)-1 {
		return d.buf.TextLength() - d.rows[row]
	}
	return d.rows[row+1] - d.rows[row]
}

// Row returns the characters of row without the sentinel.
func (d *Document) Row(row int) []rune {
	size := d.RowSize(row)
	if size == 0 {
		return []rune{}
	}
	rs := d.buf.SubSequence(d.rows[row], size)
	if n := len(rs); n > 0 && rs[n-1] == gapbuf.EOF {
		rs = rs[:n-1]
	}
	return rs
}

// RowTable returns a copy of the row start offsets.
func (d *Document) RowTable() []int {
	return slices.Clone(d.rows)
}

// FindRowNumber returns the row containing offset, or NotFound if offset
// is outside the text. The sentinel belongs to the last row.
func (d *Document) FindRowNumber(offset int) int {
	if !d.buf.IsValid(offset) {
		return NotFound
	}
	left, right := 0, len(d.rows)-1
	for left <= right {
		mid := (left + right) / 2
		next := d.buf.TextLength()
		if mid+1 < len(d.rows) {
			next = d.rows[mid+1]
		}
		switch {
		case offset >= d.rows[mid] && offset < next:
			return mid
		case offset >= next:
			left = mid + 1
		default:
			right = mid - 1
		}
	}
	return NotFound
}

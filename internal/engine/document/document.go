package document

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/codecore/internal/engine/gapbuf"
	"github.com/dshills/codecore/internal/engine/undo"
)

// NotFound is returned by row lookups for offsets outside the text.
const NotFound = -1

// ErrConfiguration indicates word wrap is enabled with a row width that is
// positive but too narrow to lay out text.
var ErrConfiguration = errors.New("row width too small for word wrap")

// Metrics supplies the layout measurements the row index needs.
type Metrics interface {
	// Advance returns the horizontal advance of r.
	Advance(r rune) int

	// RowWidth returns the available row width. Zero means the surface has
	// not been laid out yet.
	RowWidth() int
}

// unitMetrics is used until the caller provides real metrics.
type unitMetrics struct{}

func (unitMetrics) Advance(r rune) int {
	if r == gapbuf.Newline || r == gapbuf.EOF {
		return 0
	}
	return 1
}

func (unitMetrics) RowWidth() int { return 0 }

// EditHook observes every change to the text, including undo and redo
// replays. delta is positive for insertions and negative for deletions.
type EditHook func(offset, delta int)

// Document is a gap buffer with a row table and undo history.
// It is not safe for concurrent use.
type Document struct {
	buf  *gapbuf.Buffer
	rows []int

	wordWrap bool
	metrics  Metrics

	history *undo.Stack
	onEdit  EditHook

	bufOpts  []gapbuf.Option
	undoOpts []undo.Option
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{metrics: unitMetrics{}}
	for _, opt := range opts {
		opt(d)
	}
	d.buf = gapbuf.New(d.bufOpts...)
	d.history = undo.New(target{d}, d.undoOpts...)
	d.rows = []int{0}
	return d
}

// SetText replaces the content, clears the undo history and rebuilds the
// row table.
func (d *Document) SetText(text []rune) error {
	d.buf.SetText(text)
	d.history.Clear()
	return d.Analyze()
}

// Runes returns a copy of the text.
func (d *Document) Runes() []rune { return d.buf.Runes() }

// String returns the text.
func (d *Document) String() string { return d.buf.String() }

// Len returns the number of characters, excluding the sentinel.
func (d *Document) Len() int { return d.buf.Len() }

// TextLength returns the number of characters including the sentinel.
func (d *Document) TextLength() int { return d.buf.TextLength() }

// CharAt returns the character at offset, or 0 if offset is invalid.
func (d *Document) CharAt(offset int) rune { return d.buf.CharAt(offset) }

// SubSequence returns up to maxChars characters starting at offset.
func (d *Document) SubSequence(offset, maxChars int) []rune {
	return d.buf.SubSequence(offset, maxChars)
}

// LineCount returns the number of hard lines.
func (d *Document) LineCount() int { return d.buf.LineCount() }

// LineOffset returns the start offset of a hard line, or -1.
func (d *Document) LineOffset(line int) int { return d.buf.LineOffset(line) }

// FindLineNumber returns the hard line containing offset, or -1.
func (d *Document) FindLineNumber(offset int) int { return d.buf.FindLineNumber(offset) }

// LineSize returns the size of a hard line including its terminator, or -1.
func (d *Document) LineSize(line int) int { return d.buf.LineSize(line) }

// Line returns the text of a hard line without its terminator.
func (d *Document) Line(line int) []rune { return d.buf.Line(line) }

// Insert inserts chars before offset. Undoable edits are recorded in the
// history and may coalesce with the previous edit depending on t.
func (d *Document) Insert(chars []rune, offset int, t time.Time, undoable bool) error {
	if !d.buf.IsValid(offset) {
		return fmt.Errorf("insert at %d: %w", offset, gapbuf.ErrOutOfRange)
	}
	if err := d.checkMetrics(d.metrics, d.wordWrap); err != nil {
		return err
	}
	if len(chars) == 0 {
		return nil
	}

	if undoable {
		d.history.CaptureInsert(offset, len(chars), t)
	} else {
		d.history.Seal()
	}
	return d.insert(chars, offset)
}

// Delete removes count characters starting at offset.
func (d *Document) Delete(offset, count int, t time.Time, undoable bool) error {
	if offset < 0 || count < 0 || offset+count > d.buf.Len() {
		return fmt.Errorf("delete [%d,%d): %w", offset, offset+count, gapbuf.ErrOutOfRange)
	}
	if err := d.checkMetrics(d.metrics, d.wordWrap); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	if undoable {
		d.history.CaptureDelete(offset, count, t)
	} else {
		d.history.Seal()
	}
	return d.delete(offset, count)
}

func (d *Document) insert(chars []rune, offset int) error {
	if err := d.buf.Insert(chars, offset); err != nil {
		return err
	}
	d.notify(offset, len(chars))
	startRow := d.FindRowNumber(offset)
	analyzeEnd := d.nextLineFrom(offset + len(chars))
	return d.repairRows(startRow, analyzeEnd, len(chars))
}

func (d *Document) delete(offset, count int) error {
	if err := d.buf.Delete(offset, count); err != nil {
		return err
	}
	d.notify(offset, -count)
	startRow := d.FindRowNumber(offset)
	analyzeEnd := d.nextLineFrom(offset)
	return d.repairRows(startRow, analyzeEnd, -count)
}

func (d *Document) shiftGapStart(displacement int) error {
	d.buf.ShiftGapStart(displacement)
	if displacement == 0 {
		return nil
	}
	startOffset := d.buf.GapStart()
	if displacement > 0 {
		startOffset -= displacement
	}
	d.notify(startOffset, displacement)
	startRow := d.FindRowNumber(startOffset)
	analyzeEnd := d.nextLineFrom(d.buf.GapStart())
	return d.repairRows(startRow, analyzeEnd, displacement)
}

func (d *Document) notify(offset, delta int) {
	if d.onEdit != nil {
		d.onEdit(offset, delta)
	}
}

// SetEditHook installs fn as the edit observer, replacing any previous one.
func (d *Document) SetEditHook(fn EditHook) { d.onEdit = fn }

// nextLineFrom returns the offset just past the first newline at or after
// offset, or TextLength when there is none.
func (d *Document) nextLineFrom(offset int) int {
	return d.buf.FindNewline(offset) + 1
}

// Undo reverts the most recent edit group and returns the suggested caret
// position.
func (d *Document) Undo() (int, error) { return d.history.Undo() }

// Redo reapplies the most recently undone group.
func (d *Document) Redo() (int, error) { return d.history.Redo() }

// CanUndo reports whether there is anything to undo.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether there is anything to redo.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// BeginBatchEdit groups the following edits into one undo unit.
func (d *Document) BeginBatchEdit() { d.history.BeginBatchEdit() }

// EndBatchEdit closes the batch started by BeginBatchEdit.
func (d *Document) EndBatchEdit() { d.history.EndBatchEdit() }

// IsBatchEdit reports whether a batch is open.
func (d *Document) IsBatchEdit() bool { return d.history.IsBatchEdit() }

// History exposes the undo stack for inspection.
func (d *Document) History() *undo.Stack { return d.history }

// target lets the undo stack replay edits without being captured again.
type target struct{ d *Document }

func (t target) Insert(chars []rune, offset int) error { return t.d.insert(chars, offset) }
func (t target) Delete(offset, count int) error        { return t.d.delete(offset, count) }
func (t target) SubSequence(offset, n int) []rune      { return t.d.buf.SubSequence(offset, n) }
func (t target) GapSubSequence(n int) []rune           { return t.d.buf.GapSubSequence(n) }
func (t target) GapStart() int                         { return t.d.buf.GapStart() }

// ShiftGapStart has no error return; a failed row repair has already been
// reported through assert.
func (t target) ShiftGapStart(displacement int) {
	_ = t.d.shiftGapStart(displacement)
}

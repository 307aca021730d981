package gapbuf

import (
	"errors"
	"fmt"

	"github.com/dshills/codecore/internal/engine/linecache"
)

// ErrOutOfRange indicates an offset or length outside the buffer. It is
// returned before any mutation starts, so the buffer is left untouched.
var ErrOutOfRange = errors.New("offset out of range")

const (
	// MinGapSize is the default gap size and growth unit.
	MinGapSize = 50

	// EOF is the sentinel stored as the last logical character.
	EOF rune = '\uFFFF'

	// Newline terminates a hard line.
	Newline rune = '\n'
)

// Buffer is a gap buffer of runes with a trailing EOF sentinel.
type Buffer struct {
	contents  []rune
	gapStart  int
	gapEnd    int
	lineCount int

	minGap          int
	allocMultiplier int

	cacheSize int
	cache     *linecache.Cache
}

// New creates an empty buffer containing only the sentinel.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		minGap:    MinGapSize,
		cacheSize: linecache.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.cache = linecache.New(b.cacheSize)
	b.SetText(nil)
	return b
}

// NewFromString creates a buffer holding s.
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.SetText([]rune(s))
	return b
}

// SetText replaces the whole content. The text is stored after a fresh gap
// at offset 0, followed by the sentinel.
func (b *Buffer) SetText(text []rune) {
	size := len(text) + b.minGap + 1
	b.contents = make([]rune, size)
	b.gapStart = 0
	b.gapEnd = b.minGap
	copy(b.contents[b.gapEnd:], text)
	b.contents[size-1] = EOF
	b.allocMultiplier = 1

	b.lineCount = 1
	for _, r := range text {
		if r == Newline {
			b.lineCount++
		}
	}
	b.cache.Reset()
}

// TextLength returns the number of logical characters including the sentinel.
func (b *Buffer) TextLength() int {
	return len(b.contents) - b.gapSize()
}

// Len returns the number of logical characters excluding the sentinel.
func (b *Buffer) Len() int {
	return b.TextLength() - 1
}

// LineCount returns the number of hard lines.
func (b *Buffer) LineCount() int {
	return b.lineCount
}

// IsValid reports whether offset addresses a character, the sentinel included.
func (b *Buffer) IsValid(offset int) bool {
	return offset >= 0 && offset < b.TextLength()
}

// GapStart returns the logical offset of the gap, which is also the real
// offset of its first slot.
func (b *Buffer) GapStart() int {
	return b.gapStart
}

// GapSize returns the number of free slots.
func (b *Buffer) GapSize() int {
	return b.gapSize()
}

func (b *Buffer) gapSize() int {
	return b.gapEnd - b.gapStart
}

// LogicalToReal maps a logical offset to its index in the backing array.
func (b *Buffer) LogicalToReal(i int) int {
	if i < b.gapStart {
		return i
	}
	return i + b.gapSize()
}

// RealToLogical maps an index outside the gap back to a logical offset.
func (b *Buffer) RealToLogical(i int) int {
	if i < b.gapStart {
		return i
	}
	return i - b.gapSize()
}

// segments returns the real slices that make up the logical range
// [from, to). The second slice is empty unless the range crosses the gap.
func (b *Buffer) segments(from, to int) ([]rune, []rune) {
	if from >= to {
		return nil, nil
	}
	switch {
	case to <= b.gapStart:
		return b.contents[from:to], nil
	case from >= b.gapStart:
		return b.contents[from+b.gapSize() : to+b.gapSize()], nil
	default:
		return b.contents[from:b.gapStart], b.contents[b.gapEnd : to+b.gapSize()]
	}
}

// CharAt returns the character at offset, or 0 when offset is invalid.
func (b *Buffer) CharAt(offset int) rune {
	if !b.IsValid(offset) {
		return 0
	}
	return b.contents[b.LogicalToReal(offset)]
}

// SubSequence returns up to maxChars characters starting at offset. The
// result is clamped to the end of the buffer and may include the sentinel.
// An invalid offset or non-positive count yields nil.
func (b *Buffer) SubSequence(offset, maxChars int) []rune {
	if !b.IsValid(offset) || maxChars <= 0 {
		return nil
	}
	end := offset + maxChars
	if end > b.TextLength() {
		end = b.TextLength()
	}
	s1, s2 := b.segments(offset, end)
	out := make([]rune, 0, len(s1)+len(s2))
	out = append(out, s1...)
	return append(out, s2...)
}

// GapSubSequence returns the n characters at the head of the gap. After a
// delete these are the characters that were removed.
func (b *Buffer) GapSubSequence(n int) []rune {
	if n <= 0 {
		return nil
	}
	if n > len(b.contents)-b.gapStart {
		n = len(b.contents) - b.gapStart
	}
	out := make([]rune, n)
	copy(out, b.contents[b.gapStart:b.gapStart+n])
	return out
}

// Runes returns a copy of the text without the sentinel.
func (b *Buffer) Runes() []rune {
	s1, s2 := b.segments(0, b.Len())
	out := make([]rune, 0, len(s1)+len(s2))
	out = append(out, s1...)
	return append(out, s2...)
}

// String returns the text without the sentinel.
func (b *Buffer) String() string {
	return string(b.Runes())
}

// Insert places chars before the character at offset. The sentinel's offset
// is a valid target.
func (b *Buffer) Insert(chars []rune, offset int) error {
	if !b.IsValid(offset) {
		return fmt.Errorf("insert at %d (length %d): %w", offset, b.TextLength(), ErrOutOfRange)
	}
	if len(chars) == 0 {
		return nil
	}

	b.moveGap(offset)
	if len(chars) >= b.gapSize() {
		b.growBy(len(chars) - b.gapSize())
	}
	copy(b.contents[b.gapStart:], chars)
	b.gapStart += len(chars)
	b.lineCount += countNewlines(chars)

	b.cache.InvalidateFrom(offset)
	return nil
}

// Delete removes count characters starting at offset. The removed
// characters are left at the head of the gap.
func (b *Buffer) Delete(offset, count int) error {
	if offset < 0 || count < 0 || offset+count > b.Len() {
		return fmt.Errorf("delete [%d,%d) (length %d): %w", offset, offset+count, b.Len(), ErrOutOfRange)
	}
	if count == 0 {
		return nil
	}

	b.moveGap(offset + count)
	b.gapStart -= count
	b.lineCount -= countNewlines(b.contents[b.gapStart : b.gapStart+count])

	b.cache.InvalidateFrom(offset)
	return nil
}

// ShiftGapStart moves the gap start by displacement without copying.
// A positive displacement re-admits characters already sitting at the head
// of the gap; a negative one drops the characters just before the gap.
//
// There is no bounds checking. Only the undo engine calls this, with
// displacements taken from commands it recorded.
func (b *Buffer) ShiftGapStart(displacement int) {
	from := b.gapStart
	if displacement >= 0 {
		b.lineCount += countNewlines(b.contents[b.gapStart : b.gapStart+displacement])
	} else {
		b.lineCount -= countNewlines(b.contents[b.gapStart+displacement : b.gapStart])
		from = b.gapStart + displacement
	}
	b.gapStart += displacement
	b.cache.InvalidateFrom(from)
}

// moveGap slides the gap so that it starts at logical offset pos.
func (b *Buffer) moveGap(pos int) {
	switch {
	case pos < b.gapStart:
		n := b.gapStart - pos
		copy(b.contents[b.gapEnd-n:b.gapEnd], b.contents[pos:b.gapStart])
		b.gapStart -= n
		b.gapEnd -= n
	case pos > b.gapStart:
		n := pos - b.gapStart
		copy(b.contents[b.gapStart:b.gapStart+n], b.contents[b.gapEnd:b.gapEnd+n])
		b.gapStart += n
		b.gapEnd += n
	}
}

// growBy enlarges the gap by at least minIncrement. Each growth doubles the
// extra headroom so repeated large inserts stay amortised.
func (b *Buffer) growBy(minIncrement int) {
	increase := minIncrement + b.minGap*b.allocMultiplier
	grown := make([]rune, len(b.contents)+increase)
	copy(grown, b.contents[:b.gapStart])
	copy(grown[b.gapEnd+increase:], b.contents[b.gapEnd:])
	b.contents = grown
	b.gapEnd += increase
	b.allocMultiplier <<= 1
}

func countNewlines(rs []rune) int {
	n := 0
	for _, r := range rs {
		if r == Newline {
			n++
		}
	}
	return n
}

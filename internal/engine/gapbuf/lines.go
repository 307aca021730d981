package gapbuf

// Hard-line queries. Every scan starts from the nearest line-cache anchor
// and records the line it found, so repeated lookups near the same spot
// stay short.

// FindNewline returns the offset of the first newline at or after offset,
// or the sentinel's offset when there is none.
func (b *Buffer) FindNewline(offset int) int {
	if offset < 0 {
		offset = 0
	}
	end := b.Len()
	if offset >= end {
		return end
	}
	s1, s2 := b.segments(offset, end)
	for i, r := range s1 {
		if r == Newline {
			return offset + i
		}
	}
	for i, r := range s2 {
		if r == Newline {
			return offset + len(s1) + i
		}
	}
	return end
}

// LineOffset returns the offset of the first character of line, or -1 if
// the line does not exist.
func (b *Buffer) LineOffset(line int) int {
	if line < 0 || line >= b.lineCount {
		return -1
	}
	anchor := b.cache.NearestLine(line)
	current, offset := anchor.Line, anchor.Offset
	for current < line {
		offset = b.FindNewline(offset) + 1
		current++
	}
	b.cache.Update(line, offset)
	return offset
}

// FindLineNumber returns the line containing offset, or -1 if offset is
// invalid. The sentinel belongs to the last line.
func (b *Buffer) FindLineNumber(offset int) int {
	if !b.IsValid(offset) {
		return -1
	}
	anchor := b.cache.NearestOffset(offset)
	line, lineStart := anchor.Line, anchor.Offset
	for {
		nl := b.FindNewline(lineStart)
		if nl >= offset || nl == b.Len() {
			break
		}
		line++
		lineStart = nl + 1
	}
	b.cache.Update(line, lineStart)
	return line
}

// LineSize returns the number of characters in line including its newline,
// or the sentinel for the last line. It returns -1 if the line does not
// exist.
func (b *Buffer) LineSize(line int) int {
	start := b.LineOffset(line)
	if start < 0 {
		return -1
	}
	return b.FindNewline(start) - start + 1
}

// Line returns the characters of line without its terminator, or nil if the
// line does not exist.
func (b *Buffer) Line(line int) []rune {
	size := b.LineSize(line)
	if size < 0 {
		return nil
	}
	if size == 1 {
		return []rune{}
	}
	return b.SubSequence(b.LineOffset(line), size-1)
}

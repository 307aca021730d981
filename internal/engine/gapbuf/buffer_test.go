package gapbuf

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestNewEmpty(t *testing.T) {
	b := New()
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
	if b.TextLength() != 1 {
		t.Errorf("TextLength() = %d, want 1", b.TextLength())
	}
	if b.CharAt(0) != EOF {
		t.Errorf("CharAt(0) = %q, want EOF", b.CharAt(0))
	}
	if b.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", b.LineCount())
	}
	if b.GapSize() != MinGapSize {
		t.Errorf("GapSize() = %d, want %d", b.GapSize(), MinGapSize)
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		insert string
		offset int
		want   string
	}{
		{"into empty", "", "abc", 0, "abc"},
		{"at start", "world", "hello ", 0, "hello world"},
		{"at end", "hello", " world", 5, "hello world"},
		{"in middle", "helo", "l", 2, "hello"},
		{"unicode", "héllo", "✓", 1, "h✓éllo"},
		{"newlines", "ab", "\n\n", 1, "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewFromString(tt.text)
			if err := b.Insert([]rune(tt.insert), tt.offset); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			if got := b.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got, want := b.LineCount(), strings.Count(tt.want, "\n")+1; got != want {
				t.Errorf("LineCount() = %d, want %d", got, want)
			}
		})
	}
}

func TestInsertOutOfRange(t *testing.T) {
	b := NewFromString("abc")
	for _, off := range []int{-1, 4, 100} {
		err := b.Insert([]rune("x"), off)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Insert(_, %d) error = %v, want ErrOutOfRange", off, err)
		}
	}
	if b.String() != "abc" {
		t.Errorf("buffer changed after failed insert: %q", b.String())
	}
}

func TestInsertGrowsGap(t *testing.T) {
	b := New(WithMinGap(4))
	long := strings.Repeat("0123456789", 20)
	if err := b.Insert([]rune(long), 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert([]rune(long), 100); err != nil {
		t.Fatal(err)
	}
	want := long[:100] + long + long[100:]
	if got := b.String(); got != want {
		t.Errorf("String() mismatch after growth")
	}
	if b.CharAt(b.Len()) != EOF {
		t.Error("sentinel lost after growth")
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		offset, count int
		want          string
	}{
		{"prefix", "hello world", 0, 6, "world"},
		{"suffix", "hello world", 5, 6, "hello"},
		{"middle", "hello", 1, 3, "ho"},
		{"everything", "abc", 0, 3, ""},
		{"nothing", "abc", 1, 0, "abc"},
		{"newline", "a\nb", 1, 1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewFromString(tt.text)
			if err := b.Delete(tt.offset, tt.count); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if got := b.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got, want := b.LineCount(), strings.Count(tt.want, "\n")+1; got != want {
				t.Errorf("LineCount() = %d, want %d", got, want)
			}
		})
	}
}

func TestDeleteNeverRemovesSentinel(t *testing.T) {
	b := NewFromString("abc")
	tests := []struct{ offset, count int }{
		{0, 4},
		{3, 1},
		{-1, 1},
		{1, -1},
	}
	for _, tt := range tests {
		if err := b.Delete(tt.offset, tt.count); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Delete(%d, %d) error = %v, want ErrOutOfRange", tt.offset, tt.count, err)
		}
	}
	if b.String() != "abc" || b.CharAt(3) != EOF {
		t.Errorf("buffer changed after failed delete: %q", b.String())
	}
}

func TestDeleteLeavesTextInGap(t *testing.T) {
	b := NewFromString("hello world")
	if err := b.Delete(5, 6); err != nil {
		t.Fatal(err)
	}
	if b.GapStart() != 5 {
		t.Errorf("GapStart() = %d, want 5", b.GapStart())
	}
	if got := string(b.GapSubSequence(6)); got != " world" {
		t.Errorf("GapSubSequence(6) = %q, want %q", got, " world")
	}
}

func TestShiftGapStartRestoresDelete(t *testing.T) {
	b := NewFromString("one\ntwo\nthree")
	if err := b.Delete(3, 5); err != nil { // "\ntwo\n"
		t.Fatal(err)
	}
	if b.String() != "onethree" || b.LineCount() != 1 {
		t.Fatalf("after delete: %q, %d lines", b.String(), b.LineCount())
	}
	b.ShiftGapStart(5)
	if b.String() != "one\ntwo\nthree" {
		t.Errorf("String() = %q, want original", b.String())
	}
	if b.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", b.LineCount())
	}
}

func TestShiftGapStartDropsInsert(t *testing.T) {
	b := NewFromString("xyz")
	if err := b.Insert([]rune("a\nb"), 1); err != nil {
		t.Fatal(err)
	}
	if b.LineCount() != 2 {
		t.Fatalf("LineCount() = %d, want 2", b.LineCount())
	}
	b.ShiftGapStart(-3)
	if b.String() != "xyz" {
		t.Errorf("String() = %q, want %q", b.String(), "xyz")
	}
	if b.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", b.LineCount())
	}
}

func TestShiftGapStartInvalidatesCache(t *testing.T) {
	b := NewFromString("a\nb\nc\nd")
	if got := b.LineOffset(3); got != 6 {
		t.Fatalf("LineOffset(3) = %d, want 6", got)
	}
	if err := b.Delete(0, 4); err != nil { // "a\nb\n"
		t.Fatal(err)
	}
	if got := b.LineOffset(1); got != 2 {
		t.Errorf("LineOffset(1) after delete = %d, want 2", got)
	}
	b.ShiftGapStart(4)
	if got := b.LineOffset(3); got != 6 {
		t.Errorf("LineOffset(3) after restore = %d, want 6", got)
	}
}

func TestSubSequence(t *testing.T) {
	b := NewFromString("hello world")
	// Put the gap in the middle so reads cross it.
	if err := b.Insert([]rune("!"), 5); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		offset, max int
		want        string
	}{
		{0, 5, "hello"},
		{3, 5, "lo! w"},
		{6, 100, " world" + string(EOF)},
		{0, 0, ""},
		{-1, 3, ""},
		{50, 3, ""},
	}
	for _, tt := range tests {
		if got := string(b.SubSequence(tt.offset, tt.max)); got != tt.want {
			t.Errorf("SubSequence(%d, %d) = %q, want %q", tt.offset, tt.max, got, tt.want)
		}
	}
}

func TestLogicalRealConversion(t *testing.T) {
	b := NewFromString("abcdef")
	if err := b.Insert([]rune("X"), 3); err != nil {
		t.Fatal(err)
	}
	gap := b.GapSize()
	for i := 0; i < b.TextLength(); i++ {
		ri := b.LogicalToReal(i)
		if i < b.GapStart() && ri != i {
			t.Errorf("LogicalToReal(%d) = %d, want %d", i, ri, i)
		}
		if i >= b.GapStart() && ri != i+gap {
			t.Errorf("LogicalToReal(%d) = %d, want %d", i, ri, i+gap)
		}
		if back := b.RealToLogical(ri); back != i {
			t.Errorf("RealToLogical(LogicalToReal(%d)) = %d", i, back)
		}
	}
}

func TestLineQueries(t *testing.T) {
	b := NewFromString("ab\ncd\n\nef")

	if b.LineCount() != 4 {
		t.Fatalf("LineCount() = %d, want 4", b.LineCount())
	}

	offsets := []int{0, 3, 6, 7}
	sizes := []int{3, 3, 1, 3}
	lines := []string{"ab", "cd", "", "ef"}
	for i := range offsets {
		if got := b.LineOffset(i); got != offsets[i] {
			t.Errorf("LineOffset(%d) = %d, want %d", i, got, offsets[i])
		}
		if got := b.LineSize(i); got != sizes[i] {
			t.Errorf("LineSize(%d) = %d, want %d", i, got, sizes[i])
		}
		if got := string(b.Line(i)); got != lines[i] {
			t.Errorf("Line(%d) = %q, want %q", i, got, lines[i])
		}
	}
	if b.LineOffset(4) != -1 || b.LineOffset(-1) != -1 {
		t.Error("LineOffset out of range should be -1")
	}
	if b.Line(9) != nil {
		t.Error("Line(9) should be nil")
	}

	numbers := map[int]int{0: 0, 2: 0, 3: 1, 5: 1, 6: 2, 7: 3, 9: 3}
	for off, want := range numbers {
		if got := b.FindLineNumber(off); got != want {
			t.Errorf("FindLineNumber(%d) = %d, want %d", off, got, want)
		}
	}
	if b.FindLineNumber(10) != -1 {
		t.Error("FindLineNumber past sentinel should be -1")
	}
}

func TestLineQueriesAfterEdits(t *testing.T) {
	b := NewFromString("l0\nl1\nl2\nl3\n")
	_ = b.LineOffset(3)
	_ = b.FindLineNumber(7)

	if err := b.Insert([]rune("new\n"), 3); err != nil {
		t.Fatal(err)
	}
	if got := b.LineOffset(2); got != 7 {
		t.Errorf("LineOffset(2) = %d, want 7", got)
	}
	if got := b.FindLineNumber(13); got != 4 {
		t.Errorf("FindLineNumber(13) = %d, want 4", got)
	}

	if err := b.Delete(0, 7); err != nil {
		t.Fatal(err)
	}
	if got := b.LineOffset(1); got != 3 {
		t.Errorf("LineOffset(1) = %d, want 3", got)
	}
}

func TestFindNewline(t *testing.T) {
	b := NewFromString("ab\ncd")
	if got := b.FindNewline(0); got != 2 {
		t.Errorf("FindNewline(0) = %d, want 2", got)
	}
	if got := b.FindNewline(3); got != 5 {
		t.Errorf("FindNewline(3) = %d, want 5 (sentinel)", got)
	}
}

// model mirrors the buffer with a plain slice.
type model []rune

func (m model) lineOffsets() []int {
	offs := []int{0}
	for i, r := range m {
		if r == '\n' {
			offs = append(offs, i+1)
		}
	}
	return offs
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := New(WithMinGap(rapid.IntRange(1, 8).Draw(t, "minGap")))
		var m model

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(m) == 0 || rapid.Bool().Draw(t, "insert") {
				s := []rune(rapid.StringMatching(`[ab \n✓]{1,12}`).Draw(t, "chars"))
				off := rapid.IntRange(0, len(m)).Draw(t, "offset")
				if err := b.Insert(s, off); err != nil {
					t.Fatalf("Insert: %v", err)
				}
				m = append(m[:off], append(append(model{}, s...), m[off:]...)...)
			} else {
				off := rapid.IntRange(0, len(m)-1).Draw(t, "offset")
				n := rapid.IntRange(0, len(m)-off).Draw(t, "count")
				if err := b.Delete(off, n); err != nil {
					t.Fatalf("Delete: %v", err)
				}
				m = append(m[:off], m[off+n:]...)
			}

			if got := b.String(); got != string(m) {
				t.Fatalf("String() = %q, want %q", got, string(m))
			}
			offs := m.lineOffsets()
			if b.LineCount() != len(offs) {
				t.Fatalf("LineCount() = %d, want %d", b.LineCount(), len(offs))
			}
			line := rapid.IntRange(0, len(offs)-1).Draw(t, "line")
			if got := b.LineOffset(line); got != offs[line] {
				t.Fatalf("LineOffset(%d) = %d, want %d", line, got, offs[line])
			}
			off := rapid.IntRange(0, len(m)).Draw(t, "probe")
			if got := b.FindLineNumber(off); got != strings.Count(string(m[:off]), "\n") {
				t.Fatalf("FindLineNumber(%d) = %d", off, got)
			}
		}
	})
}

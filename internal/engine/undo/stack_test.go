package undo

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/dshills/codecore/internal/engine/gapbuf"
)

// editor pairs a buffer with its stack the way the document layer does:
// capture first, then mutate.
type editor struct {
	buf   *gapbuf.Buffer
	stack *Stack
	now   time.Time
}

func newEditor(text string, opts ...Option) *editor {
	buf := gapbuf.NewFromString(text)
	return &editor{
		buf:   buf,
		stack: New(buf, opts...),
		now:   time.Unix(1_000_000, 0),
	}
}

func (e *editor) tick(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *editor) insert(t *testing.T, s string, off int) {
	t.Helper()
	e.stack.CaptureInsert(off, len([]rune(s)), e.now)
	if err := e.buf.Insert([]rune(s), off); err != nil {
		t.Fatalf("Insert(%q, %d): %v", s, off, err)
	}
}

func (e *editor) delete(t *testing.T, off, n int) {
	t.Helper()
	e.stack.CaptureDelete(off, n, e.now)
	if err := e.buf.Delete(off, n); err != nil {
		t.Fatalf("Delete(%d, %d): %v", off, n, err)
	}
}

func (e *editor) expect(t *testing.T, want string) {
	t.Helper()
	if got := e.buf.String(); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestTypingCoalesces(t *testing.T) {
	e := newEditor("")
	for i, r := range "abc" {
		e.insert(t, string(r), i)
		e.tick(100 * time.Millisecond)
	}
	if e.stack.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.stack.Len())
	}

	pos, err := e.stack.Undo()
	if err != nil {
		t.Fatal(err)
	}
	e.expect(t, "")
	if pos != 0 {
		t.Errorf("Undo() = %d, want 0", pos)
	}

	pos, err = e.stack.Redo()
	if err != nil {
		t.Fatal(err)
	}
	e.expect(t, "abc")
	if pos != 3 {
		t.Errorf("Redo() = %d, want 3", pos)
	}
}

func TestInsertMergeRequiresWindowAndContinuity(t *testing.T) {
	tests := []struct {
		name   string
		pause  time.Duration
		second int
		want   int
	}{
		{"contiguous in window", 10 * time.Millisecond, 1, 1},
		{"contiguous after window", 2 * time.Second, 1, 2},
		{"exactly at window", time.Second, 1, 2},
		{"non-contiguous", 10 * time.Millisecond, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor("")
			e.insert(t, "a", 0)
			e.tick(tt.pause)
			e.insert(t, "b", tt.second)
			if e.stack.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", e.stack.Len(), tt.want)
			}
		})
	}
}

func TestFirstEditNeverMerges(t *testing.T) {
	e := newEditor("x")
	e.stack.CaptureInsert(0, 1, time.Time{})
	_ = e.buf.Insert([]rune("a"), 0)
	e.stack.CaptureInsert(1, 1, time.Time{})
	_ = e.buf.Insert([]rune("b"), 1)
	if e.stack.Len() != 2 {
		t.Errorf("Len() = %d, want 2 without a previous edit time", e.stack.Len())
	}
}

func TestBackspaceMerge(t *testing.T) {
	e := newEditor("hello")

	// Three backspaces: the second merges into the first, the third
	// starts a new command.
	e.delete(t, 4, 1)
	e.delete(t, 3, 1)
	e.delete(t, 2, 1)
	e.expect(t, "he")
	if e.stack.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.stack.Len())
	}

	pos, err := e.stack.Undo()
	if err != nil {
		t.Fatal(err)
	}
	e.expect(t, "hel")
	if pos != 3 {
		t.Errorf("Undo() = %d, want 3", pos)
	}

	pos, _ = e.stack.Undo()
	e.expect(t, "hello")
	if pos != 5 {
		t.Errorf("Undo() = %d, want 5", pos)
	}

	pos, _ = e.stack.Redo()
	e.expect(t, "hel")
	if pos != 3 {
		t.Errorf("Redo() = %d, want 3", pos)
	}
	pos, _ = e.stack.Redo()
	e.expect(t, "he")
	if pos != 2 {
		t.Errorf("Redo() = %d, want 2", pos)
	}
}

func TestMultiCharBackspaceMerge(t *testing.T) {
	e := newEditor("abcdef")
	e.delete(t, 5, 1)
	e.delete(t, 2, 3) // ends where the first deletion began
	e.expect(t, "ab")
	if e.stack.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.stack.Len())
	}
	pos, _ := e.stack.Undo()
	e.expect(t, "abcdef")
	if pos != 6 {
		t.Errorf("Undo() = %d, want 6", pos)
	}
}

func TestDeleteMergeRejectsGap(t *testing.T) {
	e := newEditor("abcdef")
	e.delete(t, 4, 1)
	e.delete(t, 3, 1) // merged: start 3, length 2
	// Satisfies start == 3-2-1+1 but leaves "c" between the runs.
	e.delete(t, 1, 1)
	e.expect(t, "acf")
	if e.stack.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.stack.Len())
	}
	_, _ = e.stack.Undo()
	e.expect(t, "abcf")
	_, _ = e.stack.Undo()
	e.expect(t, "abcdef")
}

func TestBackspaceRunCoalescesInPairs(t *testing.T) {
	e := newEditor("hello")
	for off := 4; off >= 1; off-- {
		e.delete(t, off, 1)
	}
	e.expect(t, "h")
	if e.stack.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.stack.Len())
	}
	_, _ = e.stack.Undo()
	e.expect(t, "hel")
	_, _ = e.stack.Undo()
	e.expect(t, "hello")
}

func TestForwardDeleteDoesNotMerge(t *testing.T) {
	e := newEditor("abc")
	e.delete(t, 0, 1)
	e.delete(t, 0, 1)
	e.expect(t, "c")
	if e.stack.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.stack.Len())
	}

	if _, err := e.stack.Undo(); err != nil {
		t.Fatal(err)
	}
	e.expect(t, "bc")
	if _, err := e.stack.Undo(); err != nil {
		t.Fatal(err)
	}
	e.expect(t, "abc")
}

func TestBatchEdit(t *testing.T) {
	e := newEditor("hello")
	e.stack.BeginBatchEdit()
	if !e.stack.IsBatchEdit() {
		t.Fatal("IsBatchEdit() = false inside batch")
	}
	e.insert(t, "x", 0)
	e.insert(t, "y", 6)
	e.delete(t, 1, 2)
	e.stack.EndBatchEdit()
	e.expect(t, "xlloy")

	pos, err := e.stack.Undo()
	if err != nil {
		t.Fatal(err)
	}
	e.expect(t, "hello")
	if pos != 0 {
		t.Errorf("Undo() = %d, want 0", pos)
	}
	if e.stack.CanUndo() {
		t.Error("CanUndo() = true after undoing the only group")
	}

	pos, _ = e.stack.Redo()
	e.expect(t, "xlloy")
	if pos != 1 {
		t.Errorf("Redo() = %d, want 1", pos)
	}
}

func TestGroupsOutsideBatchAreSeparate(t *testing.T) {
	e := newEditor("")
	e.insert(t, "a", 0)
	e.tick(5 * time.Second)
	e.insert(t, "b", 1)
	infos := e.stack.UndoInfo()
	if len(infos) != 2 || infos[0].Group == infos[1].Group {
		t.Fatalf("UndoInfo() = %+v, want two groups", infos)
	}
}

func TestNewEditTrimsRedo(t *testing.T) {
	e := newEditor("")
	e.insert(t, "a", 0)
	e.tick(5 * time.Second)
	e.insert(t, "b", 1)
	if _, err := e.stack.Undo(); err != nil {
		t.Fatal(err)
	}
	if !e.stack.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}
	e.insert(t, "c", 1)
	if e.stack.CanRedo() {
		t.Error("CanRedo() = true after new edit")
	}
	if e.stack.Len() != 2 {
		t.Errorf("Len() = %d, want 2", e.stack.Len())
	}
	e.expect(t, "ac")
}

func TestUndoDoesNotMergeWithNextEdit(t *testing.T) {
	e := newEditor("")
	e.insert(t, "ab", 0)
	e.tick(5 * time.Second)
	e.insert(t, "cd", 2)
	if _, err := e.stack.Undo(); err != nil {
		t.Fatal(err)
	}
	// Contiguous with "ab" and inside the window of the last edit time,
	// but undo ended coalescing.
	e.insert(t, "x", 2)
	if e.stack.Len() != 2 {
		t.Errorf("Len() = %d, want 2", e.stack.Len())
	}
	if _, err := e.stack.Undo(); err != nil {
		t.Fatal(err)
	}
	e.expect(t, "ab")
}

func TestDeleteTextSurvivesUndoOfLaterEdit(t *testing.T) {
	e := newEditor("xy")
	e.delete(t, 0, 1)
	e.insert(t, "b", 0)
	if _, err := e.stack.Undo(); err != nil {
		t.Fatal(err)
	}
	e.expect(t, "y")

	// The undone insert left "b" at the gap head. Becoming the top command
	// again must not replace the delete's recorded "x".
	e.tick(5 * time.Second)
	e.delete(t, 0, 1)
	e.expect(t, "")

	for e.stack.CanUndo() {
		if _, err := e.stack.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	e.expect(t, "xy")
}

func TestSeal(t *testing.T) {
	e := newEditor("")
	e.insert(t, "a", 0)
	e.insert(t, "b", 1)
	e.stack.Seal()

	// An edit the stack never sees, after the recorded text.
	if err := e.buf.Insert([]rune("Z"), 2); err != nil {
		t.Fatal(err)
	}
	e.insert(t, "c", 3)
	if e.stack.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after seal", e.stack.Len())
	}

	_, _ = e.stack.Undo()
	e.expect(t, "abZ")
	_, _ = e.stack.Undo()
	e.expect(t, "Z")
	_, _ = e.stack.Redo()
	e.expect(t, "abZ")
}

func TestEmptyStack(t *testing.T) {
	e := newEditor("abc")
	pos, err := e.stack.Undo()
	if pos != -1 || !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() = %d, %v; want -1, ErrNothingToUndo", pos, err)
	}
	pos, err = e.stack.Redo()
	if pos != -1 || !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() = %d, %v; want -1, ErrNothingToRedo", pos, err)
	}
}

func TestMaxEntries(t *testing.T) {
	e := newEditor("", WithMaxEntries(2))
	for i := 0; i < 3; i++ {
		e.insert(t, "x", i)
		e.tick(5 * time.Second)
	}
	if e.stack.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.stack.Len())
	}
	for i := 0; i < 2; i++ {
		if _, err := e.stack.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	e.expect(t, "x")
	if _, err := e.stack.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
}

func TestClear(t *testing.T) {
	e := newEditor("")
	e.insert(t, "a", 0)
	e.stack.Clear()
	if e.stack.CanUndo() || e.stack.Len() != 0 {
		t.Error("history survived Clear()")
	}
}

func TestInfo(t *testing.T) {
	e := newEditor("hello")
	e.insert(t, "big ", 0)
	e.tick(5 * time.Second)
	e.delete(t, 0, 4)
	_, _ = e.stack.Undo()

	undo := e.stack.UndoInfo()
	if len(undo) != 1 || undo[0].Description != `Insert "big " at 0` {
		t.Errorf("UndoInfo() = %+v", undo)
	}
	redo := e.stack.RedoInfo()
	if len(redo) != 1 || redo[0].Kind != KindDelete || redo[0].Description != `Delete "big " at 0` {
		t.Errorf("RedoInfo() = %+v", redo)
	}
}

func TestUndoRedoInverseProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		initial := rapid.StringMatching(`[a-z\n]{0,20}`).Draw(rt, "initial")
		buf := gapbuf.NewFromString(initial)
		s := New(buf)
		now := time.Unix(1_000_000, 0)

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			now = now.Add(rapid.SampledFrom([]time.Duration{0, 300 * time.Millisecond, 3 * time.Second}).Draw(rt, "pause"))
			if buf.Len() == 0 || rapid.Bool().Draw(rt, "insert") {
				text := []rune(rapid.StringMatching(`[xy\n]{1,4}`).Draw(rt, "text"))
				off := rapid.IntRange(0, buf.Len()).Draw(rt, "offset")
				s.CaptureInsert(off, len(text), now)
				if err := buf.Insert(text, off); err != nil {
					rt.Fatal(err)
				}
			} else {
				off := rapid.IntRange(0, buf.Len()-1).Draw(rt, "offset")
				n := rapid.IntRange(1, buf.Len()-off).Draw(rt, "count")
				s.CaptureDelete(off, n, now)
				if err := buf.Delete(off, n); err != nil {
					rt.Fatal(err)
				}
			}
		}
		final := buf.String()

		for s.CanUndo() {
			if _, err := s.Undo(); err != nil {
				rt.Fatal(err)
			}
		}
		if got := buf.String(); got != initial {
			rt.Fatalf("after undo all: %q, want %q", got, initial)
		}
		for s.CanRedo() {
			if _, err := s.Redo(); err != nil {
				rt.Fatal(err)
			}
		}
		if got := buf.String(); got != final {
			rt.Fatalf("after redo all: %q, want %q", got, final)
		}
		if got, want := buf.LineCount(), strings.Count(final, "\n")+1; got != want {
			rt.Fatalf("LineCount() = %d, want %d", got, want)
		}
	})
}

func TestUndoInterleavingProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		initial := rapid.StringMatching(`[a-z\n ]{0,20}`).Draw(rt, "initial")
		buf := gapbuf.NewFromString(initial)
		s := New(buf)
		now := time.Unix(1_000_000, 0)

		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			now = now.Add(rapid.SampledFrom([]time.Duration{0, 300 * time.Millisecond, 3 * time.Second}).Draw(rt, "pause"))
			switch op := rapid.IntRange(0, 3).Draw(rt, "op"); {
			case op == 2 && s.CanUndo():
				if _, err := s.Undo(); err != nil {
					rt.Fatal(err)
				}
			case op == 3 && s.CanRedo():
				if _, err := s.Redo(); err != nil {
					rt.Fatal(err)
				}
			case op == 1 && buf.Len() > 0:
				off := rapid.IntRange(0, buf.Len()-1).Draw(rt, "offset")
				n := rapid.IntRange(1, buf.Len()-off).Draw(rt, "count")
				s.CaptureDelete(off, n, now)
				if err := buf.Delete(off, n); err != nil {
					rt.Fatal(err)
				}
			default:
				text := []rune(rapid.StringMatching(`[xy\n ]{1,4}`).Draw(rt, "text"))
				off := rapid.IntRange(0, buf.Len()).Draw(rt, "offset")
				s.CaptureInsert(off, len(text), now)
				if err := buf.Insert(text, off); err != nil {
					rt.Fatal(err)
				}
			}

			if s.CanUndo() && rapid.Bool().Draw(rt, "roundtrip") {
				before := buf.String()
				if _, err := s.Undo(); err != nil {
					rt.Fatal(err)
				}
				if _, err := s.Redo(); err != nil {
					rt.Fatal(err)
				}
				if got := buf.String(); got != before {
					rt.Fatalf("undo/redo: %q, want %q", got, before)
				}
			}
			if got, want := buf.LineCount(), strings.Count(buf.String(), "\n")+1; got != want {
				rt.Fatalf("LineCount() = %d, want %d", got, want)
			}
		}

		for s.CanUndo() {
			if _, err := s.Undo(); err != nil {
				rt.Fatal(err)
			}
		}
		if got := buf.String(); got != initial {
			rt.Fatalf("after undo all: %q, want %q", got, initial)
		}
	})
}

package undo

import (
	"fmt"
	"time"

	"github.com/dshills/codecore/internal/assert"
)

// Target is the text store that commands replay against. Insert and Delete
// must not be captured by the stack again.
type Target interface {
	Insert(chars []rune, offset int) error
	Delete(offset, count int) error
	ShiftGapStart(displacement int)
	SubSequence(offset, maxChars int) []rune
	GapSubSequence(n int) []rune
	GapStart() int
}

// Kind is the kind of edit a command records.
type Kind int

const (
	KindInsert Kind = iota
	KindDelete
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is one recorded edit: Length characters inserted before Start,
// or deleted from Start.
type Command struct {
	Kind   Kind
	Start  int
	Length int
	Group  int

	// Data is the affected text. It stays nil until the command is sealed.
	Data []rune

	Time time.Time
}

// recordData snapshots the affected text once. A delete's text only sits at
// the gap head until the next edit, so a later snapshot would read
// whatever replaced it.
func (c *Command) recordData(t Target) {
	if c.Data != nil {
		return
	}
	if c.Kind == KindInsert {
		c.Data = t.SubSequence(c.Start, c.Length)
	} else {
		c.Data = t.GapSubSequence(c.Length)
	}
}

func (c *Command) undo(t Target) error {
	switch c.Kind {
	case KindInsert:
		if c.Data == nil {
			c.recordData(t)
			if t.GapStart() == c.Start+c.Length {
				t.ShiftGapStart(-c.Length)
				return nil
			}
		}
		return t.Delete(c.Start, c.Length)
	case KindDelete:
		if c.Data == nil {
			if t.GapStart() != c.Start {
				return assert.Unreachable("unsealed delete at %d but gap at %d", c.Start, t.GapStart())
			}
			c.recordData(t)
			t.ShiftGapStart(c.Length)
			return nil
		}
		return t.Insert(c.Data, c.Start)
	}
	return assert.Unreachable("undo of %v", c.Kind)
}

func (c *Command) redo(t Target) error {
	switch c.Kind {
	case KindInsert:
		return t.Insert(c.Data, c.Start)
	case KindDelete:
		return t.Delete(c.Start, c.Length)
	}
	return assert.Unreachable("redo of %v", c.Kind)
}

// undoPosition is the caret position suggested after undoing c.
func (c *Command) undoPosition() int {
	if c.Kind == KindInsert {
		return c.Start
	}
	return c.Start + c.Length
}

// redoPosition is the caret position suggested after redoing c.
func (c *Command) redoPosition() int {
	if c.Kind == KindInsert {
		return c.Start + c.Length
	}
	return c.Start
}

// Description returns a short human-readable summary.
func (c *Command) Description() string {
	switch c.Kind {
	case KindInsert:
		if c.Data != nil {
			return fmt.Sprintf("Insert %q at %d", abbreviate(c.Data), c.Start)
		}
		return fmt.Sprintf("Insert %d chars at %d", c.Length, c.Start)
	default:
		if c.Data != nil {
			return fmt.Sprintf("Delete %q at %d", abbreviate(c.Data), c.Start)
		}
		return fmt.Sprintf("Delete %d chars at %d", c.Length, c.Start)
	}
}

func abbreviate(rs []rune) string {
	const max = 20
	if len(rs) <= max {
		return string(rs)
	}
	return string(rs[:max-3]) + "..."
}

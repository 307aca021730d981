package undo

import (
	"errors"
	"time"
)

// Common errors for undo operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMergeWindow is the longest pause between two edits that still
// lets them coalesce.
const DefaultMergeWindow = time.Second

// Option configures a Stack.
type Option func(*Stack)

// WithMergeWindow sets the coalescing window.
func WithMergeWindow(d time.Duration) Option {
	return func(s *Stack) {
		if d >= 0 {
			s.mergeWindow = d
		}
	}
}

// WithMaxEntries caps the number of commands kept. The oldest commands are
// dropped first. Zero means unlimited.
func WithMaxEntries(n int) Option {
	return func(s *Stack) {
		if n >= 0 {
			s.maxEntries = n
		}
	}
}

// Stack is the undo/redo history of one buffer.
// It is not safe for concurrent use.
type Stack struct {
	target   Target
	commands []*Command

	// top is where the next command goes; commands[:top] are applied.
	top int

	group    int
	batch    bool
	lastEdit time.Time

	mergeWindow time.Duration
	maxEntries  int
}

// New creates a stack replaying against target.
func New(target Target, opts ...Option) *Stack {
	s := &Stack{
		target:      target,
		mergeWindow: DefaultMergeWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CaptureInsert records an insertion of length characters before start.
// It must be called before the text is inserted.
func (s *Stack) CaptureInsert(start, length int, t time.Time) {
	s.capture(KindInsert, start, length, t)
}

// CaptureDelete records a deletion of length characters from start.
// It must be called before the text is deleted.
func (s *Stack) CaptureDelete(start, length int, t time.Time) {
	s.capture(KindDelete, start, length, t)
}

func (s *Stack) capture(kind Kind, start, length int, t time.Time) {
	merged := false
	if s.CanUndo() {
		c := s.commands[s.top-1]
		if c.Kind == kind && s.canMerge(c, start, length, t) {
			if kind == KindDelete {
				c.Start = start
			}
			c.Length += length
			c.Time = t
			s.trim()
			merged = true
		} else {
			c.recordData(s.target)
		}
	}

	if !merged {
		s.push(&Command{
			Kind:   kind,
			Start:  start,
			Length: length,
			Group:  s.group,
			Time:   t,
		})
		if !s.batch {
			s.group++
		}
	}

	s.lastEdit = t
}

func (s *Stack) canMerge(c *Command, start, length int, t time.Time) bool {
	if s.lastEdit.IsZero() || t.Sub(s.lastEdit) >= s.mergeWindow {
		return false
	}
	if c.Data != nil {
		return false
	}
	if c.Kind == KindInsert {
		return start == c.Start+c.Length
	}
	// The deleted run must also end where the previous one began, or the
	// gap head no longer holds both runs side by side. Both conditions hold
	// together only while c.Length is 1, so backspaces coalesce in pairs:
	// four single backspaces make two undo steps.
	return start == c.Start-c.Length-length+1 && start+length == c.Start
}

func (s *Stack) push(c *Command) {
	s.trim()
	s.commands = append(s.commands, c)
	s.top++

	if s.maxEntries > 0 && len(s.commands) > s.maxEntries {
		excess := len(s.commands) - s.maxEntries
		for i := 0; i < excess; i++ {
			s.commands[i] = nil
		}
		s.commands = s.commands[excess:]
		s.top -= excess
	}
}

// trim drops the redo tail.
func (s *Stack) trim() {
	for i := s.top; i < len(s.commands); i++ {
		s.commands[i] = nil
	}
	s.commands = s.commands[:s.top]
}

// Seal records the text of the top command so that the buffer may be
// changed by edits the stack does not see. It also ends coalescing.
func (s *Stack) Seal() {
	if s.CanUndo() {
		s.commands[s.top-1].recordData(s.target)
	}
	s.lastEdit = time.Time{}
}

// Undo reverts the top group and returns the suggested caret position: the
// start of an insert, or the end of a restored deletion, for the earliest
// edit in the group.
func (s *Stack) Undo() (int, error) {
	if !s.CanUndo() {
		return -1, ErrNothingToUndo
	}
	s.lastEdit = time.Time{}

	last := s.commands[s.top-1]
	group := last.Group
	for s.CanUndo() {
		c := s.commands[s.top-1]
		if c.Group != group {
			break
		}
		if err := c.undo(s.target); err != nil {
			return -1, err
		}
		last = c
		s.top--
	}
	return last.undoPosition(), nil
}

// Redo reapplies the next group and returns the suggested caret position
// after its latest edit.
func (s *Stack) Redo() (int, error) {
	if !s.CanRedo() {
		return -1, ErrNothingToRedo
	}
	s.lastEdit = time.Time{}

	last := s.commands[s.top]
	group := last.Group
	for s.CanRedo() {
		c := s.commands[s.top]
		if c.Group != group {
			break
		}
		if err := c.redo(s.target); err != nil {
			return -1, err
		}
		last = c
		s.top++
	}
	return last.redoPosition(), nil
}

// CanUndo reports whether there is an applied command.
func (s *Stack) CanUndo() bool {
	return s.top > 0
}

// CanRedo reports whether there is an undone command.
func (s *Stack) CanRedo() bool {
	return s.top < len(s.commands)
}

// BeginBatchEdit makes every new command share the current group until
// EndBatchEdit.
func (s *Stack) BeginBatchEdit() {
	s.batch = true
}

// EndBatchEdit closes the batch group.
func (s *Stack) EndBatchEdit() {
	s.batch = false
	s.group++
}

// IsBatchEdit reports whether a batch is open.
func (s *Stack) IsBatchEdit() bool {
	return s.batch
}

// Clear drops all history.
func (s *Stack) Clear() {
	s.commands = nil
	s.top = 0
	s.lastEdit = time.Time{}
	s.group++
}

// Len returns the number of commands, applied or not.
func (s *Stack) Len() int {
	return len(s.commands)
}

// Top returns the number of applied commands.
func (s *Stack) Top() int {
	return s.top
}

// Info describes a command for an undo-history view.
type Info struct {
	Description string
	Timestamp   time.Time
	Group       int
	Kind        Kind
	Start       int
	Length      int
}

func (c *Command) info() Info {
	return Info{
		Description: c.Description(),
		Timestamp:   c.Time,
		Group:       c.Group,
		Kind:        c.Kind,
		Start:       c.Start,
		Length:      c.Length,
	}
}

// UndoInfo returns the applied commands, oldest first.
func (s *Stack) UndoInfo() []Info {
	result := make([]Info, 0, s.top)
	for _, c := range s.commands[:s.top] {
		result = append(result, c.info())
	}
	return result
}

// RedoInfo returns the undone commands, next to redo first.
func (s *Stack) RedoInfo() []Info {
	result := make([]Info, 0, len(s.commands)-s.top)
	for _, c := range s.commands[s.top:] {
		result = append(result, c.info())
	}
	return result
}

package engine

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/codecore/internal/assert"
	"github.com/dshills/codecore/internal/engine/document"
	"github.com/dshills/codecore/internal/engine/undo"
	"github.com/dshills/codecore/internal/lexer"
	"github.com/dshills/codecore/internal/logging"
)

// Engine owns one document and its tokenizer pipeline.
//
// All methods are safe for concurrent use. Every operation on the document
// holds one mutex because even reads move the line cache, and gap shifts
// are not atomic.
type Engine struct {
	mu     sync.Mutex
	id     uuid.UUID
	doc    *document.Document
	closed bool

	pipeline     *lexer.Pipeline
	lang         lexer.Language
	autoTokenize bool
	tokens       tokenState

	logger *logging.Logger
	now    func() time.Time

	// Configuration
	docOpts     []document.Option
	initContent string
	initReader  io.Reader
	readOnly    bool
}

// New creates an Engine. It fails only if the initial reader fails or the
// metrics are unusable for word wrap.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		id:           uuid.New(),
		autoTokenize: true,
		logger:       logging.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("engine").WithField("engine", e.id.String()[:8])

	if e.initReader != nil {
		content, err := readAll(e.initReader)
		if err != nil {
			return nil, fmt.Errorf("reading initial content: %w", err)
		}
		e.initContent = content
	}

	e.doc = document.New(e.docOpts...)
	if err := e.doc.SetText([]rune(e.initContent)); err != nil {
		return nil, err
	}
	e.doc.SetEditHook(e.tokens.shift)

	e.tokens.init()
	e.pipeline = lexer.New(e.lang, e.tokens.deliver, lexer.WithLogger(e.logger))

	if e.autoTokenize && e.lang != nil {
		e.mu.Lock()
		e.tokenizeLocked()
		e.mu.Unlock()
	}
	e.logger.Debug("created with %d chars", e.doc.Len())
	return e, nil
}

// ID returns the engine identity.
func (e *Engine) ID() uuid.UUID { return e.id }

// ============================================================================
// Text
// ============================================================================

// SetText replaces the whole text and clears the undo history.
func (e *Engine) SetText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	if err := e.doc.SetText([]rune(text)); err != nil {
		return err
	}
	e.tokens.reset()
	e.afterEditLocked()
	return nil
}

// Text returns the text.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.String()
}

// Runes returns a copy of the text.
func (e *Engine) Runes() []rune {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Runes()
}

// Len returns the number of characters.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Len()
}

// CharAt returns the character at offset, or 0.
func (e *Engine) CharAt(offset int) rune {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.CharAt(offset)
}

// SubSequence returns up to n characters from offset.
func (e *Engine) SubSequence(offset, n int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.doc.SubSequence(offset, n))
}

// ============================================================================
// Write Operations
// ============================================================================

// Insert inserts text before offset. Undoable edits within the merge window
// of the previous one may coalesce with it.
func (e *Engine) Insert(offset int, text string, t time.Time, undoable bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	if err := e.doc.Insert([]rune(text), offset, t, undoable); err != nil {
		return err
	}
	e.afterEditLocked()
	return nil
}

// Delete removes count characters from offset.
func (e *Engine) Delete(offset, count int, t time.Time, undoable bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	if err := e.doc.Delete(offset, count, t, undoable); err != nil {
		return err
	}
	e.afterEditLocked()
	return nil
}

// Type inserts text at offset as an undoable edit stamped with the clock.
func (e *Engine) Type(offset int, text string) error {
	return e.Insert(offset, text, e.now(), true)
}

// Erase deletes count characters at offset as an undoable edit stamped with
// the clock.
func (e *Engine) Erase(offset, count int) error {
	return e.Delete(offset, count, e.now(), true)
}

// Replace swaps count characters at offset for text as one undo step.
func (e *Engine) Replace(offset, count int, text string, t time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	e.doc.BeginBatchEdit()
	defer e.doc.EndBatchEdit()

	if err := e.doc.Delete(offset, count, t, true); err != nil {
		return err
	}
	if err := e.doc.Insert([]rune(text), offset, t, true); err != nil {
		return err
	}
	e.afterEditLocked()
	return nil
}

func (e *Engine) writable() error {
	if e.closed {
		return ErrClosed
	}
	if e.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (e *Engine) afterEditLocked() {
	if e.autoTokenize && e.lang != nil {
		e.tokenizeLocked()
	}
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverts the last edit group and returns the suggested caret
// position. With nothing to undo it returns -1 and undo.ErrNothingToUndo.
func (e *Engine) Undo() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return -1, err
	}
	pos, err := e.doc.Undo()
	if err != nil {
		return pos, err
	}
	e.afterEditLocked()
	return pos, nil
}

// Redo reapplies the last undone group.
func (e *Engine) Redo() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return -1, err
	}
	pos, err := e.doc.Redo()
	if err != nil {
		return pos, err
	}
	e.afterEditLocked()
	return pos, nil
}

// CanUndo reports whether undo is available.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.CanUndo()
}

// CanRedo reports whether redo is available.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.CanRedo()
}

// BeginBatchEdit starts a group that undoes as one step.
func (e *Engine) BeginBatchEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.BeginBatchEdit()
}

// EndBatchEdit ends the current group.
func (e *Engine) EndBatchEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.EndBatchEdit()
}

// UndoHistory describes the applied and undone commands.
func (e *Engine) UndoHistory() (applied, undone []undo.Info) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.doc.History()
	return h.UndoInfo(), h.RedoInfo()
}

// ============================================================================
// Rows and Lines
// ============================================================================

// RowCount returns the number of rows.
func (e *Engine) RowCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.RowCount()
}

// RowOffset returns the first offset of row, or document.NotFound.
func (e *Engine) RowOffset(row int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.RowOffset(row)
}

// RowSize returns the length of row.
func (e *Engine) RowSize(row int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.RowSize(row)
}

// Row returns the text of row.
func (e *Engine) Row(row int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.doc.Row(row))
}

// RowTable returns a copy of the row start offsets.
func (e *Engine) RowTable() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.RowTable()
}

// FindRowNumber returns the row containing offset, or document.NotFound.
func (e *Engine) FindRowNumber(offset int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.FindRowNumber(offset)
}

// LineCount returns the number of hard lines.
func (e *Engine) LineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.LineCount()
}

// LineOffset returns the first offset of a hard line, or -1.
func (e *Engine) LineOffset(line int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.LineOffset(line)
}

// FindLineNumber returns the hard line containing offset, or -1.
func (e *Engine) FindLineNumber(offset int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.FindLineNumber(offset)
}

// Line returns a hard line without its terminator.
func (e *Engine) Line(line int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.doc.Line(line))
}

// SetWordWrap switches word wrap.
func (e *Engine) SetWordWrap(enable bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.SetWordWrap(enable)
}

// IsWordWrap reports whether word wrap is on.
func (e *Engine) IsWordWrap() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.IsWordWrap()
}

// SetMetrics replaces the layout metrics and rebuilds the rows.
func (e *Engine) SetMetrics(m document.Metrics) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.SetMetrics(m)
}

// ============================================================================
// Tokenization
// ============================================================================

// SetLanguage changes the tokenizer language. Nil disables tokenization and
// drops the current tokens.
func (e *Engine) SetLanguage(lang lexer.Language) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.lang = lang
	e.pipeline.SetLanguage(lang)
	if lang == nil {
		e.tokens.reset()
		return
	}
	if e.autoTokenize {
		e.tokenizeLocked()
	}
}

// Language returns the tokenizer language, or nil.
func (e *Engine) Language() lexer.Language {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lang
}

// Tokenize schedules a scan of the current text.
func (e *Engine) Tokenize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.lang == nil {
		return lexer.ErrNoLanguage
	}
	e.tokenizeLocked()
	return nil
}

func (e *Engine) tokenizeLocked() {
	// Edits and Tokenize calls are serialised by e.mu, so the next
	// generation is known before the scan starts and can be registered
	// before it can be delivered.
	next := e.pipeline.Generation() + 1
	e.tokens.expect(next)

	gen, err := e.pipeline.Tokenize(e.doc.Runes())
	if err != nil {
		e.tokens.forget(next)
		e.logger.Warn("tokenize: %v", err)
		return
	}
	if gen != next {
		e.logger.Error("%v", assert.Unreachable("scan generation %d, want %d", gen, next))
	}
}

// CancelTokenize stops the running scan. The last delivered tokens stay.
func (e *Engine) CancelTokenize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pipeline.Cancel()
	e.tokens.dropPending()
}

// Tokenizing reports whether a scan is running.
func (e *Engine) Tokenizing() bool {
	return e.pipeline.Running()
}

// WaitTokenize blocks until no scan is running and every OnTokens
// callback for the delivered scans has returned.
func (e *Engine) WaitTokenize() {
	e.pipeline.Wait()
	e.tokens.notify.wait()
}

// Tokens returns the last delivered scan adjusted for the edits made since
// its snapshot, or nil. Folds are not adjusted.
func (e *Engine) Tokens() *lexer.Result {
	return e.tokens.get()
}

// OnTokens registers fn to receive every delivered scan, adjusted for the
// edits made before delivery. Callbacks run one at a time on a goroutine of
// their own and may call Engine methods, except WaitTokenize, which would
// wait for the callback itself.
func (e *Engine) OnTokens(fn lexer.Callback) {
	e.tokens.notify.add(fn)
}

// Close stops tokenization. Later writes fail with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.pipeline.Close()
	e.tokens.notify.close()
	e.logger.Debug("closed")
}

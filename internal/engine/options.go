package engine

import (
	"io"
	"strings"
	"time"

	"github.com/dshills/codecore/internal/engine/document"
	"github.com/dshills/codecore/internal/engine/gapbuf"
	"github.com/dshills/codecore/internal/engine/undo"
	"github.com/dshills/codecore/internal/lexer"
	"github.com/dshills/codecore/internal/logging"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial text.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithReader reads the initial text from r when the engine is created.
func WithReader(r io.Reader) Option {
	return func(e *Engine) {
		e.initReader = r
	}
}

// WithLanguage sets the tokenizer language.
func WithLanguage(lang lexer.Language) Option {
	return func(e *Engine) {
		e.lang = lang
	}
}

// WithAutoTokenize controls whether every edit schedules a scan.
func WithAutoTokenize(enable bool) Option {
	return func(e *Engine) {
		e.autoTokenize = enable
	}
}

// WithMetrics sets the layout metrics.
func WithMetrics(m document.Metrics) Option {
	return func(e *Engine) {
		e.docOpts = append(e.docOpts, document.WithMetrics(m))
	}
}

// WithWordWrap enables word wrap.
func WithWordWrap(enable bool) Option {
	return func(e *Engine) {
		e.docOpts = append(e.docOpts, document.WithWordWrap(enable))
	}
}

// WithMergeWindow sets how close in time two edits must be to coalesce.
func WithMergeWindow(d time.Duration) Option {
	return func(e *Engine) {
		e.docOpts = append(e.docOpts, document.WithUndoOptions(undo.WithMergeWindow(d)))
	}
}

// WithMaxUndoEntries caps the undo history. Zero means unlimited.
func WithMaxUndoEntries(n int) Option {
	return func(e *Engine) {
		e.docOpts = append(e.docOpts, document.WithUndoOptions(undo.WithMaxEntries(n)))
	}
}

// WithLineCacheSize sets the number of line-offset cache slots.
func WithLineCacheSize(n int) Option {
	return func(e *Engine) {
		e.docOpts = append(e.docOpts, document.WithBufferOptions(gapbuf.WithCacheSize(n)))
	}
}

// WithMinGap sets the gap buffer growth unit.
func WithMinGap(n int) Option {
	return func(e *Engine) {
		e.docOpts = append(e.docOpts, document.WithBufferOptions(gapbuf.WithMinGap(n)))
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used by Type and Erase.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func readAll(r io.Reader) (string, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}

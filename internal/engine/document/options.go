package document

import (
	"github.com/dshills/codecore/internal/engine/gapbuf"
	"github.com/dshills/codecore/internal/engine/undo"
)

// Option configures a Document.
type Option func(*Document)

// WithMetrics sets the layout metrics.
func WithMetrics(m Metrics) Option {
	return func(d *Document) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithWordWrap enables or disables word wrap.
func WithWordWrap(enable bool) Option {
	return func(d *Document) {
		d.wordWrap = enable
	}
}

// WithBufferOptions passes options to the underlying gap buffer.
func WithBufferOptions(opts ...gapbuf.Option) Option {
	return func(d *Document) {
		d.bufOpts = append(d.bufOpts, opts...)
	}
}

// WithUndoOptions passes options to the undo stack.
func WithUndoOptions(opts ...undo.Option) Option {
	return func(d *Document) {
		d.undoOpts = append(d.undoOpts, opts...)
	}
}

package lexer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/codecore/internal/logging"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// worker is the handle of the goroutine running scans.
type worker struct {
	cancel  context.CancelFunc
	restart bool
	aborted bool
}

// Pipeline schedules scans of one document on a background goroutine.
// All methods are safe for concurrent use.
type Pipeline struct {
	mu       sync.Mutex
	lang     Language
	callback Callback
	logger   *logging.Logger

	snapshot []rune
	gen      uint64
	current  *worker
	wg       sync.WaitGroup

	// deliver serialises callbacks so results arrive in completion order.
	deliver sync.Mutex
}

// New creates a pipeline. lang may be nil until SetLanguage is called.
func New(lang Language, callback Callback, opts ...Option) *Pipeline {
	p := &Pipeline{
		lang:     lang,
		callback: callback,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("lexer")
	return p
}

// Tokenize schedules a scan of text and returns the generation stamped on
// its result. If a scan is running it is cancelled and restarted on text.
// The pipeline keeps text; callers must not modify it afterwards.
func (p *Pipeline) Tokenize(text []rune) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lang == nil {
		return 0, ErrNoLanguage
	}
	p.gen++
	p.snapshot = text

	if w := p.current; w != nil {
		w.restart = true
		w.cancel()
		return p.gen, nil
	}

	w := &worker{cancel: func() {}}
	p.current = w
	p.wg.Add(1)
	go p.run(w)
	return p.gen, nil
}

// Cancel stops the running scan without delivering a result.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w := p.current; w != nil {
		w.aborted = true
		w.cancel()
		p.current = nil
	}
}

// SetLanguage replaces the language. A running scan is restarted with it.
func (p *Pipeline) SetLanguage(lang Language) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lang = lang
	if w := p.current; w != nil {
		if lang == nil {
			w.aborted = true
			p.current = nil
		} else {
			w.restart = true
		}
		w.cancel()
	}
}

// Language returns the current language, or nil.
func (p *Pipeline) Language() Language {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang
}

// Generation returns the generation of the most recent Tokenize call.
func (p *Pipeline) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// Running reports whether a scan is in progress.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// Wait blocks until every worker has exited.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close cancels any scan and waits for the worker to exit.
func (p *Pipeline) Close() {
	p.Cancel()
	p.Wait()
}

func (p *Pipeline) run(w *worker) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		if w.aborted {
			p.mu.Unlock()
			return
		}
		w.restart = false
		ctx, cancel := context.WithCancel(context.Background())
		w.cancel = cancel
		text, lang, gen := p.snapshot, p.lang, p.gen
		p.mu.Unlock()

		start := time.Now()
		result, err := lang.Scan(ctx, text)
		cancel()

		p.mu.Lock()
		if w.aborted {
			p.mu.Unlock()
			p.logger.Debug("scan aborted")
			return
		}
		if w.restart {
			p.mu.Unlock()
			p.logger.Debug("scan restarted")
			continue
		}
		p.current = nil
		// Hold deliver before releasing mu so a newer worker cannot overtake.
		p.deliver.Lock()
		p.mu.Unlock()

		if err != nil {
			p.deliver.Unlock()
			if !errors.Is(err, context.Canceled) {
				p.logger.Error("scan failed: %v", err)
			}
			return
		}
		result.Generation = gen
		p.logger.Debug("scanned %d chars into %d tokens in %s", result.Length, len(result.Tokens), time.Since(start))
		if p.callback != nil {
			p.callback(result)
		}
		p.deliver.Unlock()
		return
	}
}

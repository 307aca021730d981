package engine

import (
	"sync"

	"github.com/dshills/codecore/internal/lexer"
)

// edit is one logged change to the text.
type edit struct {
	seq    uint64
	offset int
	delta  int
}

// tokenState keeps delivered tokens aligned with a text that keeps changing
// while scans run. Each scan records the edit sequence number at its
// snapshot; edits made after that are replayed onto its tokens on delivery.
//
// tokenState.mu is never held while calling into the pipeline.
type tokenState struct {
	mu        sync.Mutex
	current   *lexer.Result
	seq       uint64
	pending   map[uint64]uint64 // scan generation -> seq at snapshot
	edits     []edit
	notify    dispatcher
}

func (s *tokenState) init() {
	s.pending = make(map[uint64]uint64)
	s.notify.cond = sync.NewCond(&s.notify.mu)
}

// shift is the document edit hook. It runs under Engine.mu.
func (s *tokenState) shift(offset, delta int) {
	if delta == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if s.current != nil {
		s.current = shifted(s.current, offset, delta)
	}
	if len(s.pending) > 0 {
		s.edits = append(s.edits, edit{seq: s.seq, offset: offset, delta: delta})
	}
}

// deliver is the pipeline callback.
func (s *tokenState) deliver(res *lexer.Result) {
	s.mu.Lock()
	base, ok := s.pending[res.Generation]
	if !ok {
		// Scan of text that was replaced or abandoned.
		s.mu.Unlock()
		return
	}
	for _, ed := range s.edits {
		if ed.seq > base {
			res = shifted(res, ed.offset, ed.delta)
		}
	}
	for gen := range s.pending {
		if gen <= res.Generation {
			delete(s.pending, gen)
		}
	}
	s.pruneEdits()
	s.current = res
	s.mu.Unlock()

	s.notify.post(res)
}

// pruneEdits drops edits no pending scan needs.
func (s *tokenState) pruneEdits() {
	if len(s.pending) == 0 {
		s.edits = nil
		return
	}
	oldest := s.seq
	for _, base := range s.pending {
		oldest = min(oldest, base)
	}
	i := 0
	for i < len(s.edits) && s.edits[i].seq <= oldest {
		i++
	}
	s.edits = s.edits[i:]
}

// expect registers a scan about to start on the current text.
func (s *tokenState) expect(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[gen] = s.seq
}

func (s *tokenState) forget(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, gen)
	s.pruneEdits()
}

func (s *tokenState) dropPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.pending)
	s.edits = nil
}

// reset forgets everything about the previous text.
func (s *tokenState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	clear(s.pending)
	s.edits = nil
}

func (s *tokenState) get() *lexer.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	res := *s.current
	res.Tokens = append([]lexer.Token(nil), s.current.Tokens...)
	return &res
}

// dispatcher runs token callbacks on its own goroutine in delivery order.
// The pipeline's delivery lock is not held while they run, so callbacks
// may call back into the Engine.
type dispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	fns     []lexer.Callback
	queue   []*lexer.Result
	busy    bool
	started bool
	closed  bool
}

func (d *dispatcher) add(fn lexer.Callback) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fns = append(d.fns, fn)
}

func (d *dispatcher) post(res *lexer.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || len(d.fns) == 0 {
		return
	}
	d.queue = append(d.queue, res)
	if !d.started {
		d.started = true
		go d.loop()
	}
	d.cond.Broadcast()
}

func (d *dispatcher) loop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			return
		}
		res := d.queue[0]
		d.queue = d.queue[1:]
		fns := append([]lexer.Callback(nil), d.fns...)
		d.busy = true
		d.mu.Unlock()

		for _, fn := range fns {
			fn(res)
		}

		d.mu.Lock()
		d.busy = false
		d.cond.Broadcast()
	}
}

// wait blocks until every queued result has been handed to the callbacks.
func (d *dispatcher) wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) > 0 || d.busy {
		d.cond.Wait()
	}
}

// close lets the loop drain the queue and exit.
func (d *dispatcher) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.cond.Broadcast()
}

// shifted returns a copy of res adjusted for one edit.
func shifted(res *lexer.Result, offset, delta int) *lexer.Result {
	out := *res
	out.Tokens = lexer.ShiftTokens(res.Tokens, offset, delta)
	out.Length = max(0, res.Length+delta)
	return &out
}

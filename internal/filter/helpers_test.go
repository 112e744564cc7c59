package filter

import (
	"sync"
	"testing"
	"time"
)

// testNow is the pinned clock every ranking test runs on.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

// fakeScheduler records scheduled callbacks and fires them on demand,
// so debounce tests never sleep. With ignoreCancel set it simulates a
// scheduler whose cancel does nothing, which exercises the engine's
// generation guard.
type fakeScheduler struct {
	mu           sync.Mutex
	pending      []*fakeTimer
	ignoreCancel bool
}

type fakeTimer struct {
	fn        func()
	cancelled bool
	fired     bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{}
}

func (s *fakeScheduler) Schedule(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{fn: fn}
	s.pending = append(s.pending, t)
	return func() {
		if s.ignoreCancel {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		t.cancelled = true
	}
}

// fireAll runs every live callback in schedule order.
func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	var due []*fakeTimer
	for _, t := range s.pending {
		if !t.cancelled && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func (s *fakeScheduler) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

func mustFilePolicy(t *testing.T, opts FileOptions) *FilePolicy {
	t.Helper()
	p, err := NewFilePolicy(opts)
	if err != nil {
		t.Fatalf("NewFilePolicy: %v", err)
	}
	return p
}

// fileEngine builds a file engine on the pinned clock.
func fileEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedClock()
	}
	return New(mustFilePolicy(t, FileOptions{}), opts)
}

func historyEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedClock()
	}
	return New(NewHistoryPolicy(HistoryOptions{}), opts)
}

func symbolEngine(t *testing.T, popts SymbolOptions) *Engine {
	t.Helper()
	return New(NewSymbolPolicy(popts), Options{Now: fixedClock()})
}

func commandEngine(t *testing.T, popts CommandOptions) *Engine {
	t.Helper()
	return New(NewCommandPolicy(popts), Options{Now: fixedClock()})
}

func candidatesOf(texts ...string) []Candidate {
	out := make([]Candidate, len(texts))
	for i, s := range texts {
		out[i] = Candidate{Text: s}
	}
	return out
}

func textsOf(items []Match) []string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.Text
	}
	return out
}

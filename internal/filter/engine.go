package filter

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Default engine limits. Callers normally override these from config;
// the defaults keep a zero-ish Options usable in tests.
const (
	DefaultMaxScan       = 2000
	DefaultMaxDisplay    = 20
	DefaultDebounceDelay = 150 * time.Millisecond
	DefaultCacheSize     = 8
)

// Options configures one engine. The zero value is usable: every field
// falls back to a sensible default.
type Options struct {
	// MaxScan bounds how many candidates a single rank pass looks at.
	// Callers supply candidates in priority order; overflow past the
	// cap is dropped from the tail before matching.
	MaxScan int
	// MaxDisplay is the default result page size, used whenever a
	// rank call does not pass an explicit cap.
	MaxDisplay int
	// CaseSensitive disables case folding of queries and candidates.
	CaseSensitive bool
	// DebounceDelay is how long RankDebounced waits for further
	// keystrokes before running.
	DebounceDelay time.Duration
	// CacheSize bounds the incremental query cache. 1 keeps only the
	// previous query.
	CacheSize int
	// Scheduler supplies timing for the debounce. Defaults to real
	// timers.
	Scheduler Scheduler
	// Logger receives Debug-level rank diagnostics.
	Logger *slog.Logger
	// Now supplies the clock for time-based bonuses. Tests pin it.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxScan <= 0 {
		o.MaxScan = DefaultMaxScan
	}
	if o.MaxDisplay <= 0 {
		o.MaxDisplay = DefaultMaxDisplay
	}
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = DefaultDebounceDelay
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.Scheduler == nil {
		o.Scheduler = TimerScheduler{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Engine ranks one surface's candidates against live queries. All
// mutable state (cache, pending debounce) sits behind a mutex because
// scheduler callbacks fire on their own goroutine; ranking itself is
// synchronous and deterministic.
type Engine struct {
	policy Policy
	opts   Options

	mu         sync.Mutex
	cache      *queryCache
	cancelNext func()
	generation uint64
}

// New builds an engine for the given policy.
func New(policy Policy, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		policy: policy,
		opts:   opts,
		cache:  newQueryCache(opts.CacheSize),
	}
}

// Policy returns the engine's scoring policy.
func (e *Engine) Policy() Policy { return e.policy }

// Rank filters and orders candidates against query, returning at most
// displayCap items (the engine default when displayCap <= 0). The
// result depends only on the inputs, the engine options and the clock.
func (e *Engine) Rank(candidates []Candidate, query string, displayCap int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rankLocked(candidates, query, displayCap)
}

// RankImmediate cancels any pending debounced rank and runs
// synchronously with the default page size. This is the submit path.
func (e *Engine) RankImmediate(candidates []Candidate, query string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
	return e.rankLocked(candidates, query, 0)
}

// RankDebounced schedules a rank after the debounce delay. A newer
// call (debounced or immediate) supersedes an unfired one, whose
// callback is silently dropped. fn runs outside the engine lock on the
// scheduler's goroutine.
func (e *Engine) RankDebounced(candidates []Candidate, query string, fn func(Result)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
	gen := e.generation
	e.cancelNext = e.opts.Scheduler.Schedule(e.opts.DebounceDelay, func() {
		e.mu.Lock()
		if e.generation != gen {
			e.mu.Unlock()
			return
		}
		e.cancelNext = nil
		res := e.rankLocked(candidates, query, 0)
		e.mu.Unlock()
		if fn != nil {
			fn(res)
		}
	})
}

// CancelPending drops a scheduled-but-unfired rank (escape path).
func (e *Engine) CancelPending() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
}

// ScoreOne scores a single candidate against query, bypassing the
// pipeline. Used for ad-hoc checks and tests.
func (e *Engine) ScoreOne(c Candidate, query string) (Match, bool) {
	q := newQuery(query, e.opts.CaseSensitive)
	if !e.policy.Admit(c) {
		return Match{}, false
	}
	if q.IsWildcard() {
		return Match{Candidate: c}, true
	}
	sc, positions, ok := e.policy.Score(c, q, e.opts.Now())
	if !ok || sc <= 0 {
		return Match{}, false
	}
	return Match{Candidate: c, Score: sc, Positions: positions}, true
}

// InvalidateCache forgets every cached match set. Callers invoke it
// when the candidate source changes; the snapshot fingerprint catches
// the cases they miss.
func (e *Engine) InvalidateCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.invalidate()
}

// cancelPendingLocked supersedes any scheduled rank. Bumping the
// generation also kills callbacks that already fired but have not yet
// taken the lock.
func (e *Engine) cancelPendingLocked() {
	e.generation++
	if e.cancelNext != nil {
		e.cancelNext()
		e.cancelNext = nil
	}
}

func (e *Engine) rankLocked(candidates []Candidate, query string, displayCap int) Result {
	started := time.Now()
	if displayCap <= 0 {
		displayCap = e.opts.MaxDisplay
	}

	view := candidates
	if len(view) > e.opts.MaxScan {
		view = view[:e.opts.MaxScan]
	}

	q := newQuery(query, e.opts.CaseSensitive)
	if q.IsWildcard() {
		e.cache.invalidate()
		return e.wildcardLocked(view, displayCap)
	}

	fp := fingerprint(view)
	now := e.opts.Now()

	var matches []Match
	hits, cached := e.cache.lookup(fp, q.Norm)
	if cached {
		matches = e.scoreSubset(view, hits, q, now)
	} else {
		matches = e.scoreAll(view, q, now)
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if r := e.policy.Tiebreak(a, b); r != 0 {
			return r < 0
		}
		return a.Index < b.Index
	})

	next := make([]int, len(matches))
	for i, m := range matches {
		next[i] = m.Index
	}
	e.cache.store(fp, q.Norm, next)

	total := len(matches)
	if len(matches) > displayCap {
		matches = matches[:displayCap]
	}

	e.opts.Logger.Debug("rank",
		"surface", e.policy.Name(),
		"scanned", len(view),
		"matched", total,
		"returned", len(matches),
		"cached", cached,
		"elapsed", time.Since(started),
	)
	return Result{Items: matches, Total: total}
}

func (e *Engine) scoreAll(view []Candidate, q Query, now time.Time) []Match {
	matches := make([]Match, 0, min(len(view), 64))
	for i := range view {
		if m, ok := e.scoreAt(view, i, q, now); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

func (e *Engine) scoreSubset(view []Candidate, hits []int, q Query, now time.Time) []Match {
	matches := make([]Match, 0, len(hits))
	for _, i := range hits {
		if i < 0 || i >= len(view) {
			continue
		}
		if m, ok := e.scoreAt(view, i, q, now); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

func (e *Engine) scoreAt(view []Candidate, i int, q Query, now time.Time) (Match, bool) {
	c := view[i]
	if !e.policy.Admit(c) {
		return Match{}, false
	}
	sc, positions, ok := e.policy.Score(c, q, now)
	if !ok || sc <= 0 {
		return Match{}, false
	}
	return Match{Candidate: c, Score: sc, Positions: positions, Index: i}, true
}

// wildcardLocked serves the empty query: every admissible candidate in
// the scanned window, in the policy's natural order. Nothing is scored.
func (e *Engine) wildcardLocked(view []Candidate, displayCap int) Result {
	matches := make([]Match, 0, len(view))
	for i := range view {
		if !e.policy.Admit(view[i]) {
			continue
		}
		matches = append(matches, Match{Candidate: view[i], Index: i})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return e.policy.EmptyOrder(matches[i], matches[j]) < 0
	})
	total := len(matches)
	if len(matches) > displayCap {
		matches = matches[:displayCap]
	}
	return Result{Items: matches, Total: total}
}

package filter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DomainLimits bounds one surface's scan window and default page size.
type DomainLimits struct {
	MaxScan    int
	MaxDisplay int
}

// SessionOptions configures a full search session. Zero values fall
// back to the engine defaults.
type SessionOptions struct {
	CaseSensitive bool
	DebounceDelay time.Duration
	CacheSize     int
	Scheduler     Scheduler
	Logger        *slog.Logger
	Now           func() time.Time

	FileLimits    DomainLimits
	SymbolLimits  DomainLimits
	CommandLimits DomainLimits
	HistoryLimits DomainLimits

	File    FileOptions
	Symbol  SymbolOptions
	Command CommandOptions
	History HistoryOptions
}

// Session owns one engine per search surface. All mutable search state
// (caches, pending debounce timers) lives inside the engines; two
// sessions never share anything, so hosts may run one session per
// input widget without coordination.
type Session struct {
	ID string

	Files    *Engine
	Symbols  *Engine
	Commands *Engine
	Agents   *Engine
	History  *Engine
}

// NewSession builds the five engines of a search session.
func NewSession(opts SessionOptions) (*Session, error) {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id[:8])

	base := func(limits DomainLimits) Options {
		return Options{
			MaxScan:       limits.MaxScan,
			MaxDisplay:    limits.MaxDisplay,
			CaseSensitive: opts.CaseSensitive,
			DebounceDelay: opts.DebounceDelay,
			CacheSize:     opts.CacheSize,
			Scheduler:     opts.Scheduler,
			Logger:        logger,
			Now:           opts.Now,
		}
	}

	filePolicy, err := NewFilePolicy(opts.File)
	if err != nil {
		return nil, fmt.Errorf("file policy: %w", err)
	}

	commandOpts := opts.Command
	commandOpts.MatchWordOnly = true
	agentOpts := opts.Command
	agentOpts.Surface = "agents"
	agentOpts.MatchWordOnly = false

	return &Session{
		ID:       id,
		Files:    New(filePolicy, base(opts.FileLimits)),
		Symbols:  New(NewSymbolPolicy(opts.Symbol), base(opts.SymbolLimits)),
		Commands: New(NewCommandPolicy(commandOpts), base(opts.CommandLimits)),
		Agents:   New(NewCommandPolicy(agentOpts), base(opts.CommandLimits)),
		History:  New(NewHistoryPolicy(opts.History), base(opts.HistoryLimits)),
	}, nil
}

// Engines lists the session's engines.
func (s *Session) Engines() []*Engine {
	return []*Engine{s.Files, s.Symbols, s.Commands, s.Agents, s.History}
}

// InvalidateAll forgets every cached match set (candidate sources
// changed wholesale, e.g. the working directory moved).
func (s *Session) InvalidateAll() {
	for _, e := range s.Engines() {
		e.InvalidateCache()
	}
}

// CancelAll drops all scheduled-but-unfired ranks (escape, submit).
func (s *Session) CancelAll() {
	for _, e := range s.Engines() {
		e.CancelPending()
	}
}

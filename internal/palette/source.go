package palette

import (
	"context"

	"github.com/mhoffs/typeahead/internal/filter"
)

// Source supplies the candidate pool for one palette tab. Load runs
// once when the tab first becomes active; every keystroke after that
// ranks the pooled candidates in memory.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]filter.Candidate, error)
}

// Tab binds a candidate source to the engine that ranks it.
type Tab struct {
	Label  string
	Source Source
	Engine *filter.Engine

	// TypoHints enables "did you mean" suggestions when a query on
	// this tab matches nothing. Intended for command-name tabs where
	// the pool is small and typos are common.
	TypoHints bool
}

// StaticSource serves a fixed candidate slice. Command sets and test
// fixtures use it.
type StaticSource struct {
	name       string
	candidates []filter.Candidate
}

// NewStaticSource builds a source that always returns candidates.
func NewStaticSource(name string, candidates []filter.Candidate) *StaticSource {
	return &StaticSource{name: name, candidates: candidates}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Load(context.Context) ([]filter.Candidate, error) {
	return s.candidates, nil
}

// FuncSource adapts a closure into a Source.
type FuncSource struct {
	name string
	load func(ctx context.Context) ([]filter.Candidate, error)
}

// NewFuncSource builds a source from a load function.
func NewFuncSource(name string, load func(ctx context.Context) ([]filter.Candidate, error)) *FuncSource {
	return &FuncSource{name: name, load: load}
}

func (s *FuncSource) Name() string { return s.name }

func (s *FuncSource) Load(ctx context.Context) ([]filter.Candidate, error) {
	return s.load(ctx)
}

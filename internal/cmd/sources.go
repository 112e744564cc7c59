package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/mhoffs/typeahead/internal/config"
	"github.com/mhoffs/typeahead/internal/filter"
	"github.com/mhoffs/typeahead/internal/histfile"
	"github.com/mhoffs/typeahead/internal/palette"
	"github.com/mhoffs/typeahead/internal/usage"
	"github.com/mhoffs/typeahead/internal/walk"
)

// buildTabs assembles the palette tabs for the requested surface ids,
// binding each source to its session engine.
func buildTabs(dir string, cfg *config.Config, session *filter.Session, store *usage.Store, ids []string) ([]palette.Tab, error) {
	var tabs []palette.Tab
	for _, id := range ids {
		switch id {
		case "files":
			tabs = append(tabs, palette.Tab{
				Label:  "Files",
				Source: fileSource(dir, cfg, store),
				Engine: session.Files,
			})
		case "commands":
			tabs = append(tabs, palette.Tab{
				Label:     "Commands",
				Source:    commandSource(store),
				Engine:    session.Commands,
				TypoHints: true,
			})
		case "agents":
			tabs = append(tabs, palette.Tab{
				Label:     "Agents",
				Source:    agentSource(store),
				Engine:    session.Agents,
				TypoHints: true,
			})
		case "history":
			tabs = append(tabs, palette.Tab{
				Label:  "History",
				Source: historySource(cfg, store),
				Engine: session.History,
			})
		default:
			return nil, fmt.Errorf("unknown tab %q (valid: files, commands, agents, history)", id)
		}
	}
	return tabs, nil
}

// fileSource walks dir into file candidates, newest first.
func fileSource(dir string, cfg *config.Config, store *usage.Store) palette.Source {
	return palette.NewFuncSource("files", func(ctx context.Context) ([]filter.Candidate, error) {
		cands, err := walk.Files(ctx, dir, walk.Options{
			IgnoreGlobs: cfg.Files.Ignore,
			MaxFiles:    cfg.Files.MaxScan,
		})
		if err != nil {
			return nil, err
		}
		annotate(ctx, store, "files", cands)
		return cands, nil
	})
}

// commandSource serves the built-in command set plus the user's
// overlay file.
func commandSource(store *usage.Store) palette.Source {
	return palette.NewFuncSource("commands", func(ctx context.Context) ([]filter.Candidate, error) {
		defs, err := loadCommandSet(config.DefaultPaths().CommandsFile())
		if err != nil {
			return nil, err
		}
		cands := commandCandidates(defs, "command")
		annotate(ctx, store, "commands", cands)
		return cands, nil
	})
}

func agentSource(store *usage.Store) palette.Source {
	return palette.NewFuncSource("agents", func(ctx context.Context) ([]filter.Candidate, error) {
		defs, err := loadCommandSet(config.DefaultPaths().CommandsFile())
		if err != nil {
			return nil, err
		}
		cands := commandCandidates(defs, "agent")
		annotate(ctx, store, "agents", cands)
		return cands, nil
	})
}

// historySource reads the shell history file and folds in stored
// picks, newest first.
func historySource(cfg *config.Config, store *usage.Store) palette.Source {
	return palette.NewFuncSource("history", func(ctx context.Context) ([]filter.Candidate, error) {
		entries, err := histfile.Load(cfg.History.Shell, cfg.History.File)
		if err != nil {
			return nil, err
		}
		cands := histfile.Candidates(entries)
		for i := range cands {
			cands[i].Text = palette.ValidateUTF8(palette.StripANSI(cands[i].Text))
		}
		if store != nil {
			cands = mergeHistoryStats(ctx, store, cands)
		}
		sortNewestFirst(cands)
		if max := cfg.History.MaxScan; max > 0 && len(cands) > max {
			cands = cands[:max]
		}
		return cands, nil
	})
}

// annotate folds stored picks into cands. Stored usage is a bonus; a
// read failure must not break the tab, so errors are dropped.
func annotate(ctx context.Context, store *usage.Store, surface string, cands []filter.Candidate) {
	if store == nil {
		return
	}
	_ = store.Annotate(ctx, surface, cands)
}

// mergeHistoryStats reconciles file-derived candidates with stored
// stats. Counts take the larger of the two sources rather than the
// sum: after a prime run the store mirrors the file, and an executed
// pick lands in both.
func mergeHistoryStats(ctx context.Context, store *usage.Store, cands []filter.Candidate) []filter.Candidate {
	stats, err := store.Stats(ctx, "history")
	if err != nil || len(stats) == 0 {
		return cands
	}

	seen := make(map[string]bool, len(cands))
	for i := range cands {
		seen[cands[i].Text] = true
		st, ok := stats[cands[i].Text]
		if !ok {
			continue
		}
		if st.UseCount > cands[i].UseCount {
			cands[i].UseCount = st.UseCount
		}
		if st.LastUsed.After(cands[i].LastUsed) {
			cands[i].LastUsed = st.LastUsed
		}
	}

	// Store-only entries survive history file rotation.
	var extra []filter.Candidate
	for key, st := range stats {
		if !seen[key] {
			extra = append(extra, filter.Candidate{Text: key, UseCount: st.UseCount, LastUsed: st.LastUsed})
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		if !extra[i].LastUsed.Equal(extra[j].LastUsed) {
			return extra[i].LastUsed.After(extra[j].LastUsed)
		}
		return extra[i].Text < extra[j].Text
	})
	return append(cands, extra...)
}

// sortNewestFirst orders candidates for the scan window. Entries
// without timestamps keep their relative order at the tail.
func sortNewestFirst(cands []filter.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].LastUsed.After(cands[j].LastUsed)
	})
}

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mhoffs/typeahead/internal/config"
	"github.com/mhoffs/typeahead/internal/filter"
	"github.com/mhoffs/typeahead/internal/usage"
)

func newTestSession(t *testing.T) *filter.Session {
	t.Helper()
	session, err := filter.NewSession(filter.SessionOptions{})
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	return session
}

func newTestStore(t *testing.T) *usage.Store {
	t.Helper()
	store, err := usage.Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("usage.Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBuildTabs(t *testing.T) {
	cfg := config.DefaultConfig()
	session := newTestSession(t)

	tabs, err := buildTabs(".", cfg, session, nil, []string{"files", "commands", "agents", "history"})
	if err != nil {
		t.Fatalf("buildTabs() error: %v", err)
	}
	if len(tabs) != 4 {
		t.Fatalf("got %d tabs, want 4", len(tabs))
	}

	wantLabels := []string{"Files", "Commands", "Agents", "History"}
	for i, tab := range tabs {
		if tab.Label != wantLabels[i] {
			t.Errorf("tab %d label = %q, want %q", i, tab.Label, wantLabels[i])
		}
		if tab.Source == nil || tab.Engine == nil {
			t.Errorf("tab %q is missing its source or engine", tab.Label)
		}
	}

	if tabs[0].TypoHints || tabs[3].TypoHints {
		t.Error("typo hints belong to command-name tabs only")
	}
	if !tabs[1].TypoHints || !tabs[2].TypoHints {
		t.Error("commands and agents tabs should enable typo hints")
	}

	if tabs[0].Engine != session.Files || tabs[3].Engine != session.History {
		t.Error("tabs should rank on the session's engines")
	}
}

func TestBuildTabs_SubsetAndOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	session := newTestSession(t)

	tabs, err := buildTabs(".", cfg, session, nil, []string{"history", "files"})
	if err != nil {
		t.Fatalf("buildTabs() error: %v", err)
	}
	if len(tabs) != 2 || tabs[0].Label != "History" || tabs[1].Label != "Files" {
		t.Errorf("tabs should follow the requested order, got %+v", tabs)
	}
}

func TestBuildTabs_UnknownID(t *testing.T) {
	cfg := config.DefaultConfig()
	session := newTestSession(t)

	_, err := buildTabs(".", cfg, session, nil, []string{"files", "bookmarks"})
	if err == nil {
		t.Fatal("unknown tab id should fail")
	}
	if !strings.Contains(err.Error(), "bookmarks") {
		t.Errorf("error = %q, want it to name the bad id", err)
	}
}

func TestCommandSource_LoadsBuiltIns(t *testing.T) {
	isolateUserDirs(t)

	cands, err := commandSource(nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cands) == 0 {
		t.Fatal("no command candidates")
	}
	for _, c := range cands {
		if c.Kind != "command" {
			t.Errorf("%q has kind %q, want command", c.Text, c.Kind)
		}
	}
}

func TestAgentSource_LoadsAgentsOnly(t *testing.T) {
	isolateUserDirs(t)

	cands, err := agentSource(nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cands) == 0 {
		t.Fatal("no agent candidates")
	}
	for _, c := range cands {
		if c.Kind != "agent" {
			t.Errorf("%q has kind %q, want agent", c.Text, c.Kind)
		}
	}
}

func TestHistorySource_ReadsFileNewestFirst(t *testing.T) {
	histPath := filepath.Join(t.TempDir(), "zsh_history")
	content := ": 1700000000:0;git status\n" +
		": 1700000100:0;make test\n" +
		": 1700000200:0;git status\n"
	if err := os.WriteFile(histPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.History.Shell = "zsh"
	cfg.History.File = histPath

	cands, err := historySource(cfg, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2 deduplicated", len(cands))
	}
	if cands[0].Text != "git status" || cands[1].Text != "make test" {
		t.Errorf("order = [%q, %q], want newest first", cands[0].Text, cands[1].Text)
	}
	if cands[0].UseCount != 2 {
		t.Errorf("git status use count = %d, want 2", cands[0].UseCount)
	}
}

func TestHistorySource_CapsScanWindow(t *testing.T) {
	histPath := filepath.Join(t.TempDir(), "zsh_history")
	content := ": 1700000000:0;oldest\n" +
		": 1700000100:0;middle\n" +
		": 1700000200:0;newest\n"
	if err := os.WriteFile(histPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.History.Shell = "zsh"
	cfg.History.File = histPath
	cfg.History.MaxScan = 2

	cands, err := historySource(cfg, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cands) != 2 || cands[0].Text != "newest" || cands[1].Text != "middle" {
		t.Errorf("cap should keep the newest entries, got %+v", cands)
	}
}

func TestMergeHistoryStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fileTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	storeTime := fileTime.Add(24 * time.Hour)

	// Stored pick is newer but the file has seen more runs.
	if err := store.RecordUse(ctx, "history", "git status", storeTime); err != nil {
		t.Fatal(err)
	}
	// Survives only in the store; the history file rotated it away.
	if err := store.RecordUse(ctx, "history", "make deploy", storeTime); err != nil {
		t.Fatal(err)
	}

	cands := []filter.Candidate{
		{Text: "git status", UseCount: 3, LastUsed: fileTime},
		{Text: "ls -la", UseCount: 1, LastUsed: fileTime},
	}

	got := mergeHistoryStats(ctx, store, cands)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3 (one store-only)", len(got))
	}

	if got[0].UseCount != 3 {
		t.Errorf("count = %d, want the larger source (3), not the sum", got[0].UseCount)
	}
	if !got[0].LastUsed.Equal(storeTime) {
		t.Errorf("last used = %v, want the later store time", got[0].LastUsed)
	}

	if got[1].UseCount != 1 || !got[1].LastUsed.Equal(fileTime) {
		t.Errorf("unmatched candidate changed: %+v", got[1])
	}

	if got[2].Text != "make deploy" || got[2].UseCount != 1 {
		t.Errorf("store-only entry = %+v, want make deploy appended", got[2])
	}
}

func TestSortNewestFirst_ZeroTimesKeepOrder(t *testing.T) {
	cands := []filter.Candidate{
		{Text: "a"},
		{Text: "b", LastUsed: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Text: "c"},
	}

	sortNewestFirst(cands)
	if cands[0].Text != "b" {
		t.Errorf("timestamped entry should sort first, got %q", cands[0].Text)
	}
	if cands[1].Text != "a" || cands[2].Text != "c" {
		t.Errorf("zero-time entries should keep relative order, got [%q, %q]", cands[1].Text, cands[2].Text)
	}
}

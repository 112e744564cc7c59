package cmd

import (
	"testing"
	"time"

	"github.com/mhoffs/typeahead/internal/histfile"
)

func TestImportUses_SyntheticTimesKeepOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []histfile.Entry{
		{Command: "first"},
		{Command: "second"},
		{Command: "third"},
	}

	uses, distinct := importUses(entries, now)
	if len(uses) != 3 || distinct != 3 {
		t.Fatalf("got %d uses / %d distinct, want 3 / 3", len(uses), distinct)
	}

	// Newest synthetic time lands on the last line.
	if !uses[2].At.Equal(now) {
		t.Errorf("last entry at %v, want %v", uses[2].At, now)
	}
	if !uses[0].At.Before(uses[1].At) || !uses[1].At.Before(uses[2].At) {
		t.Errorf("synthetic times should ascend with file order: %v %v %v",
			uses[0].At, uses[1].At, uses[2].At)
	}
}

func TestImportUses_RealTimestampsKept(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ran := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	entries := []histfile.Entry{
		{Command: "git status", Used: ran},
	}

	uses, _ := importUses(entries, now)
	if len(uses) != 1 || !uses[0].At.Equal(ran) {
		t.Errorf("recorded time = %v, want the file's %v", uses[0].At, ran)
	}
}

func TestImportUses_RepeatsAreSeparateUses(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []histfile.Entry{
		{Command: "make test"},
		{Command: "git push"},
		{Command: "make test"},
	}

	uses, distinct := importUses(entries, now)
	if len(uses) != 3 {
		t.Errorf("got %d uses, want one per history line", len(uses))
	}
	if distinct != 2 {
		t.Errorf("got %d distinct, want 2", distinct)
	}
}

func TestImportUses_SanitizesKeys(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []histfile.Entry{
		{Command: "\x1b[32mecho ok\x1b[0m"},
		{Command: "\x1b[31m\x1b[0m"},
	}

	uses, distinct := importUses(entries, now)
	if len(uses) != 1 || distinct != 1 {
		t.Fatalf("got %d uses / %d distinct, want the empty-after-strip entry dropped", len(uses), distinct)
	}
	if uses[0].Key != "echo ok" {
		t.Errorf("key = %q, want ANSI stripped", uses[0].Key)
	}
}

package cmd

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mhoffs/typeahead/internal/filter"
	"github.com/mhoffs/typeahead/internal/palette"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "git status", want: "git status"},
		{name: "tab kept", in: "a\tb", want: "a\tb"},
		{name: "control stripped", in: "a\x01b\x1fc", want: "abc"},
		{name: "newline rejected", in: "a\nb", wantErr: true},
		{name: "carriage return rejected", in: "a\rb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeQuery(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("sanitizeQuery(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeQuery(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeQuery_Truncates(t *testing.T) {
	long := strings.Repeat("x", maxQueryLen+100)
	got, err := sanitizeQuery(long)
	if err != nil {
		t.Fatalf("sanitizeQuery() error: %v", err)
	}
	if len(got) != maxQueryLen {
		t.Errorf("len = %d, want %d", len(got), maxQueryLen)
	}
}

func TestParseTabIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"files,history", []string{"files", "history"}},
		{" files , ,history ", []string{"files", "history"}},
		{"files", []string{"files"}},
		{"", nil},
		{",,", nil},
	}

	for _, tt := range tests {
		got := parseTabIDs(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseTabIDs(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseTabIDs(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFallback_SetsExitCodeWithoutError(t *testing.T) {
	oldExit := exitCode
	t.Cleanup(func() { exitCode = oldExit })

	if err := fallback(fmt.Errorf("no tty")); err != nil {
		t.Errorf("fallback() should swallow the error, got %v", err)
	}
	if exitCode != exitFallback {
		t.Errorf("exitCode = %d, want %d", exitCode, exitFallback)
	}
}

func TestRecordPick_NilStore(t *testing.T) {
	// Must not panic; there is nothing to record into.
	recordPick(nil, nil, palette.Tab{}, filter.Match{})
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mhoffs/typeahead/internal/config"
	"github.com/mhoffs/typeahead/internal/filter"
	"github.com/mhoffs/typeahead/internal/palette"
	"github.com/mhoffs/typeahead/internal/typo"
	"github.com/mhoffs/typeahead/internal/usage"
)

// Exit codes.
// These match the expectations of shell wrappers:
//
//	0 = selection made (printed to stdout)
//	1 = cancelled by user (keep whatever was typed)
//	2 = palette could not start (no TTY, lock held, etc.)
const (
	exitCancelled = 1
	exitFallback  = 2
)

// maxQueryLen is the maximum length of an initial query in bytes.
const maxQueryLen = 4096

var (
	paletteTabs  string
	paletteQuery string
	paletteDir   string
	paletteLimit int
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Open the interactive picker",
	Long: `Open a full-screen picker on the terminal. The selection is printed
to stdout, so the TUI itself renders through /dev/tty and the command
composes with $(...) substitution in shell widgets.

Tabs cycle with Tab / Shift+Tab. Each tab loads lazily on first
visit: files walks the current directory newest-first, commands and
agents serve the built-in set plus ~/.config/typeahead/commands.yaml,
and history reads the shell history file.

Exit codes: 0 a selection was printed, 1 the user cancelled, 2 the
palette could not start and the caller should fall back to its own
prompt.`,
	Example: `  # Bind to a zsh widget
  typeahead palette --tabs history --query "$BUFFER"

  # Pick a file under src/
  typeahead palette --tabs files --dir src`,
	Args: cobra.NoArgs,
	RunE: runPalette,
}

func init() {
	paletteCmd.Flags().StringVar(&paletteTabs, "tabs", "files,commands,agents,history", "comma-separated tabs to show")
	paletteCmd.Flags().StringVarP(&paletteQuery, "query", "q", "", "pre-fill the search input")
	paletteCmd.Flags().StringVar(&paletteDir, "dir", ".", "directory root for the files tab")
	paletteCmd.Flags().IntVar(&paletteLimit, "limit", 0, "rows per page (overrides config)")
}

func runPalette(cmd *cobra.Command, args []string) error {
	if err := checkTTY(); err != nil {
		return fallback(err)
	}
	if err := checkTERM(); err != nil {
		return fallback(err)
	}
	if err := checkTermWidth(); err != nil {
		return fallback(err)
	}

	cfg, logger, cleanup, err := setup()
	if err != nil {
		return fallback(err)
	}
	defer cleanup()

	query, err := sanitizeQuery(paletteQuery)
	if err != nil {
		return fallback(err)
	}
	ids := parseTabIDs(paletteTabs)
	if len(ids) == 0 {
		return fallback(fmt.Errorf("no tabs requested"))
	}

	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		logger.Warn("cannot create data directories", "error", err)
	}

	// One palette per user. A second instance would fight over the
	// terminal and the usage database.
	lockFd, err := acquireLock(filepath.Join(paths.DataDir, "palette.lock"))
	if err != nil {
		return fallback(err)
	}
	defer releaseLock(lockFd)

	store, err := usage.Open(databasePath(cfg))
	if err != nil {
		logger.Warn("usage store unavailable", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	session, err := filter.NewSession(sessionOptions(cfg, logger))
	if err != nil {
		return fallback(err)
	}

	tabs, err := buildTabs(paletteDir, cfg, session, store, ids)
	if err != nil {
		return fallback(err)
	}

	pageSize := cfg.Palette.PageSize
	if paletteLimit > 0 {
		pageSize = paletteLimit
	}

	model := palette.NewModel(palette.Options{
		Tabs:     tabs,
		PageSize: pageSize,
		Debounce: time.Duration(cfg.Engine.DebounceMs) * time.Millisecond,
		Query:    query,
		Typos: typo.NewSuggester(typo.Options{
			Threshold:      float32(cfg.Palette.TypoThreshold),
			MaxSuggestions: cfg.Palette.TypoMaxSuggestions,
		}),
	})

	// stdout carries the selection, so the TUI runs on /dev/tty.
	tty, err := openTTY()
	if err != nil {
		return fallback(err)
	}
	defer tty.Close()

	// With stdout piped, lipgloss would probe it and settle on Ascii.
	// Detect the profile from the real tty instead; SetColorProfile
	// updates the default renderer in place, which the package-level
	// styles in palette share.
	lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)

	final, err := p.Run()
	if err != nil {
		return fallback(fmt.Errorf("TUI error: %w", err))
	}
	m, ok := final.(palette.Model)
	if !ok {
		return fallback(fmt.Errorf("unexpected model type %T", final))
	}

	choice, tab, ok := m.Choice()
	if !ok {
		exitCode = exitCancelled
		return nil
	}

	recordPick(logger, store, tab, choice)
	fmt.Fprintln(os.Stdout, choice.Text)
	return nil
}

// fallback reports err on stderr and signals the caller to use its
// native prompt. Returning nil keeps cobra from printing usage.
func fallback(err error) error {
	fmt.Fprintf(os.Stderr, "typeahead: %v\n", err)
	exitCode = exitFallback
	return nil
}

// sanitizeQuery strips control characters and validates the initial
// query string.
func sanitizeQuery(q string) (string, error) {
	if q == "" {
		return "", nil
	}

	if strings.ContainsAny(q, "\n\r") {
		return "", fmt.Errorf("query must not contain newlines")
	}

	// Strip control characters (0x00-0x1F) except tab (0x09).
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		if r >= 0x00 && r <= 0x1F && r != 0x09 {
			continue
		}
		b.WriteRune(r)
	}
	result := b.String()

	if len(result) > maxQueryLen {
		result = result[:maxQueryLen]
	}
	return result, nil
}

func parseTabIDs(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// recordPick bumps the usage counter for a confirmed selection.
// Recording is best effort; the selection already went to stdout.
func recordPick(logger *slog.Logger, store *usage.Store, tab palette.Tab, choice filter.Match) {
	if store == nil {
		return
	}
	key := choice.Path
	if key == "" {
		key = choice.Text
	}
	surface := tab.Engine.Policy().Name()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.RecordUse(ctx, surface, key, time.Now()); err != nil {
		logger.Warn("cannot record pick", "surface", surface, "error", err)
	}
}

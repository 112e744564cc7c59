package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhoffs/typeahead/internal/config"
	"github.com/mhoffs/typeahead/internal/histfile"
	"github.com/mhoffs/typeahead/internal/palette"
	"github.com/mhoffs/typeahead/internal/usage"
)

var (
	primeShell string
	primeFile  string
)

var primeCmd = &cobra.Command{
	Use:   "prime",
	Short: "Seed the usage database from shell history",
	Long: `Prime imports the shell history file into the usage database so the
history surface ranks by real run counts from the first keystroke.

The import replaces the history surface's stored stats rather than
adding to them; re-running prime is safe. Picks made through the
palette afterwards accumulate on top.

Entries without timestamps (plain bash history) are assigned
descending synthetic times so the file's order survives the import.
When storage.retention_days is set, entries older than the cutoff
are pruned after the import.`,
	Example: `  typeahead prime
  typeahead prime --shell zsh --file ~/.zsh_history`,
	Args: cobra.NoArgs,
	RunE: runPrime,
}

func init() {
	primeCmd.Flags().StringVar(&primeShell, "shell", "", "history format: zsh, bash or fish (default: detect from $SHELL)")
	primeCmd.Flags().StringVar(&primeFile, "file", "", "history file path (default: the shell's standard location)")
}

func runPrime(cmd *cobra.Command, args []string) error {
	cfg, logger, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	shell := primeShell
	if shell == "" {
		shell = cfg.History.Shell
	}
	if shell == "" || shell == "auto" {
		shell = histfile.DetectShell()
	}
	if shell == "" {
		return fmt.Errorf("cannot detect shell from $SHELL; pass --shell")
	}

	file := primeFile
	if file == "" {
		file = cfg.History.File
	}

	entries, err := histfile.Load(shell, file)
	if err != nil {
		return fmt.Errorf("failed to load %s history: %w", shell, err)
	}
	if len(entries) == 0 {
		fmt.Println("No history found; nothing to import.")
		return nil
	}

	if err := config.DefaultPaths().EnsureDirectories(); err != nil {
		return err
	}
	store, err := usage.Open(databasePath(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	// Replace, not append: whatever the store held for history came
	// from a previous import of this same file.
	if _, err := store.Reset(ctx, "history"); err != nil {
		return err
	}

	uses, distinct := importUses(entries, time.Now())
	recorded, err := store.RecordUses(ctx, "history", uses)
	if err != nil {
		return fmt.Errorf("failed to import history: %w", err)
	}

	logger.Info("history imported", "shell", shell, "lines", recorded, "commands", distinct)
	fmt.Printf("Imported %d commands from %d history lines (%s).\n", distinct, recorded, shell)

	if days := cfg.Storage.RetentionDays; days > 0 {
		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		pruned, err := store.Prune(ctx, "history", cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune old entries: %w", err)
		}
		if pruned > 0 {
			fmt.Printf("Pruned %d entries older than %d days.\n", pruned, days)
		}
	}
	return nil
}

// importUses converts history entries into store records, keyed the
// same way the history tab displays them. Entries without timestamps
// get descending synthetic times ending at now, so file order
// survives the import. Returns the uses and the distinct command
// count.
func importUses(entries []histfile.Entry, now time.Time) ([]usage.Use, int) {
	uses := make([]usage.Use, 0, len(entries))
	distinct := make(map[string]struct{}, len(entries))
	n := len(entries)
	for i, e := range entries {
		key := palette.ValidateUTF8(palette.StripANSI(e.Command))
		if key == "" {
			continue
		}
		at := e.Used
		if at.IsZero() {
			at = now.Add(-time.Duration(n-1-i) * time.Second)
		}
		uses = append(uses, usage.Use{Key: key, At: at})
		distinct[key] = struct{}{}
	}
	return uses, len(distinct)
}

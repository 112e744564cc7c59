package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhoffs/typeahead/internal/config"
	"github.com/mhoffs/typeahead/internal/filter"
	"github.com/mhoffs/typeahead/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "typeahead",
	Short: "keystroke-driven fuzzy search for files, commands and shell history",
	Long: `typeahead ranks candidates against partial queries the way an
interactive picker does: subsequence matching with word-boundary and
camel-case bonuses, shaded by how often and how recently each item
was picked.

  typeahead rank      one-shot ranking of stdin candidates
  typeahead palette   interactive tabbed picker on the terminal
  typeahead prime     seed the usage database from shell history`,
	SilenceUsage: true,
}

// exitCode is the process exit code for runs where the command
// completed without a cobra-level error. The palette uses it to
// distinguish cancellation from fallback.
var exitCode int

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(paletteCmd)
	rootCmd.AddCommand(primeCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads and validates the config and builds the logger. Config
// validation never fails startup; adjusted fields are logged at warn.
func setup() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	warnings := cfg.ValidateAndFix()

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, nil, nil, err
	}
	for _, w := range warnings {
		logger.Warn("config adjusted", "field", w.Field, "reason", w.Message)
	}

	cleanup := func() { _ = closeLog() }
	return cfg, logger, cleanup, nil
}

// sessionOptions maps the file config onto engine options.
func sessionOptions(cfg *config.Config, logger *slog.Logger) filter.SessionOptions {
	return filter.SessionOptions{
		CaseSensitive: cfg.Engine.CaseSensitive,
		DebounceDelay: time.Duration(cfg.Engine.DebounceMs) * time.Millisecond,
		CacheSize:     cfg.Engine.CacheSize,
		Logger:        logger,

		FileLimits:    filter.DomainLimits{MaxScan: cfg.Files.MaxScan, MaxDisplay: cfg.Files.MaxDisplay},
		SymbolLimits:  filter.DomainLimits{MaxScan: cfg.Symbols.MaxScan, MaxDisplay: cfg.Symbols.MaxDisplay},
		CommandLimits: filter.DomainLimits{MaxScan: cfg.Commands.MaxScan, MaxDisplay: cfg.Commands.MaxDisplay},
		HistoryLimits: filter.DomainLimits{MaxScan: cfg.History.MaxScan, MaxDisplay: cfg.History.MaxDisplay},

		File:   filter.FileOptions{IgnoreGlobs: cfg.Files.Ignore},
		Symbol: filter.SymbolOptions{FreshnessCap: cfg.Symbols.FreshnessCap},
	}
}

// databasePath resolves the usage database location.
func databasePath(cfg *config.Config) string {
	if cfg.Storage.DatabasePath != "" {
		return cfg.Storage.DatabasePath
	}
	return config.DefaultPaths().DatabaseFile()
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds all typeahead configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Files    FilesConfig    `yaml:"files"`
	Symbols  SymbolsConfig  `yaml:"symbols"`
	Commands CommandsConfig `yaml:"commands"`
	History  HistoryConfig  `yaml:"history"`
	Palette  PaletteConfig  `yaml:"palette"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
}

// EngineConfig holds ranking knobs shared by every surface.
type EngineConfig struct {
	DebounceMs    int  `yaml:"debounce_ms"`    // quiet period after a keystroke before a rank runs
	CacheSize     int  `yaml:"cache_size"`     // query result sets kept for prefix-extension reuse
	CaseSensitive bool `yaml:"case_sensitive"` // disable case folding during matching
}

// FilesConfig configures the file completion surface.
type FilesConfig struct {
	MaxScan    int      `yaml:"max_scan"`    // candidates considered per keystroke
	MaxDisplay int      `yaml:"max_display"` // rows returned to the caller
	Ignore     []string `yaml:"ignore"`      // doublestar patterns hidden from results
}

// SymbolsConfig configures the code symbol surface.
type SymbolsConfig struct {
	MaxScan    int `yaml:"max_scan"`
	MaxDisplay int `yaml:"max_display"`

	// FreshnessCap bounds the recently-modified-file bonus so edit
	// churn cannot outweigh match quality.
	FreshnessCap int `yaml:"freshness_cap"`
}

// CommandsConfig configures the slash command surface.
type CommandsConfig struct {
	MaxScan    int `yaml:"max_scan"`
	MaxDisplay int `yaml:"max_display"`
}

// HistoryConfig configures the shell history surface.
type HistoryConfig struct {
	MaxScan    int    `yaml:"max_scan"`
	MaxDisplay int    `yaml:"max_display"`
	Shell      string `yaml:"shell"` // auto, zsh, bash, or fish
	File       string `yaml:"file"`  // history file override (empty = shell default)
}

// PaletteConfig configures the interactive picker.
type PaletteConfig struct {
	PageSize int `yaml:"page_size"` // visible result rows

	// TypoThreshold is the similarity floor for "did you mean"
	// suggestions when a query matches nothing.
	TypoThreshold      float64 `yaml:"typo_threshold"`
	TypoMaxSuggestions int     `yaml:"typo_max_suggestions"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, or error
	File  string `yaml:"file"`  // empty logs to stderr
}

// StorageConfig configures the usage statistics store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"` // usage database override (empty = XDG data dir)

	// RetentionDays prunes usage rows untouched for this many days.
	// 0 disables pruning.
	RetentionDays int `yaml:"retention_days"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			DebounceMs:    150,
			CacheSize:     8,
			CaseSensitive: false,
		},
		Files: FilesConfig{
			MaxScan:    2000,
			MaxDisplay: 20,
			Ignore: []string{
				"**/.git/**",
				"**/node_modules/**",
			},
		},
		Symbols: SymbolsConfig{
			MaxScan:      5000,
			MaxDisplay:   20,
			FreshnessCap: 10,
		},
		Commands: CommandsConfig{
			MaxScan:    2000,
			MaxDisplay: 20,
		},
		History: HistoryConfig{
			MaxScan:    5000,
			MaxDisplay: 50,
			Shell:      "auto",
			File:       "",
		},
		Palette: PaletteConfig{
			PageSize:           10,
			TypoThreshold:      0.8,
			TypoMaxSuggestions: 3,
		},
		Log: LogConfig{
			Level: "warn",
			File:  "",
		},
		Storage: StorageConfig{
			DatabasePath:  "",
			RetentionDays: 90,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the
// config. Unparseable values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TYPEAHEAD_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("TYPEAHEAD_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("TYPEAHEAD_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("TYPEAHEAD_DB_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("TYPEAHEAD_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Engine.DebounceMs = n
		}
	}
	if v := os.Getenv("TYPEAHEAD_CASE_SENSITIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.CaseSensitive = b
		}
	}
	if v := os.Getenv("TYPEAHEAD_SHELL"); v != "" {
		if isValidShell(v) {
			c.History.Shell = v
		}
	}
	if v := os.Getenv("TYPEAHEAD_HISTFILE"); v != "" {
		c.History.File = v
	}
}

// Warning describes a config value that was adjusted during
// validation.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// ValidateAndFix validates config values. Invalid values are fixed by
// falling back to defaults or clamping, and the adjustments are
// returned for diagnostics. Validation never prevents startup.
func (c *Config) ValidateAndFix() []Warning {
	defaults := DefaultConfig()
	var warnings []Warning

	warn := func(field, msg string) {
		warnings = append(warnings, Warning{Field: field, Message: msg})
	}

	// Counts (must be >= 1)
	counts := []struct {
		name string
		val  *int
		def  int
	}{
		{"engine.cache_size", &c.Engine.CacheSize, defaults.Engine.CacheSize},
		{"files.max_scan", &c.Files.MaxScan, defaults.Files.MaxScan},
		{"files.max_display", &c.Files.MaxDisplay, defaults.Files.MaxDisplay},
		{"symbols.max_scan", &c.Symbols.MaxScan, defaults.Symbols.MaxScan},
		{"symbols.max_display", &c.Symbols.MaxDisplay, defaults.Symbols.MaxDisplay},
		{"commands.max_scan", &c.Commands.MaxScan, defaults.Commands.MaxScan},
		{"commands.max_display", &c.Commands.MaxDisplay, defaults.Commands.MaxDisplay},
		{"history.max_scan", &c.History.MaxScan, defaults.History.MaxScan},
		{"history.max_display", &c.History.MaxDisplay, defaults.History.MaxDisplay},
		{"palette.typo_max_suggestions", &c.Palette.TypoMaxSuggestions, defaults.Palette.TypoMaxSuggestions},
	}
	for _, ct := range counts {
		if *ct.val < 1 {
			warn(ct.name, fmt.Sprintf("must be >= 1, got %d; falling back to default %d", *ct.val, ct.def))
			*ct.val = ct.def
		}
	}

	// Debounce delay (clamp to [0, 2000])
	if c.Engine.DebounceMs < 0 {
		warn("engine.debounce_ms", fmt.Sprintf("must be >= 0, got %d; falling back to default %d", c.Engine.DebounceMs, defaults.Engine.DebounceMs))
		c.Engine.DebounceMs = defaults.Engine.DebounceMs
	}
	if c.Engine.DebounceMs > 2000 {
		warn("engine.debounce_ms", fmt.Sprintf("must be <= 2000, got %d; clamping to 2000", c.Engine.DebounceMs))
		c.Engine.DebounceMs = 2000
	}

	// Symbol freshness cap (>= 0; 0 disables the bonus)
	if c.Symbols.FreshnessCap < 0 {
		warn("symbols.freshness_cap", fmt.Sprintf("must be >= 0, got %d; falling back to default %d", c.Symbols.FreshnessCap, defaults.Symbols.FreshnessCap))
		c.Symbols.FreshnessCap = defaults.Symbols.FreshnessCap
	}

	// Ignore globs (drop patterns that would fail to compile)
	valid := c.Files.Ignore[:0]
	for _, g := range c.Files.Ignore {
		if !doublestar.ValidatePattern(g) {
			warn("files.ignore", fmt.Sprintf("invalid pattern %q; dropping it", g))
			continue
		}
		valid = append(valid, g)
	}
	c.Files.Ignore = valid

	// Palette page size (clamp to [5, 100])
	if c.Palette.PageSize < 5 {
		warn("palette.page_size", fmt.Sprintf("must be >= 5, got %d; clamping to 5", c.Palette.PageSize))
		c.Palette.PageSize = 5
	}
	if c.Palette.PageSize > 100 {
		warn("palette.page_size", fmt.Sprintf("must be <= 100, got %d; clamping to 100", c.Palette.PageSize))
		c.Palette.PageSize = 100
	}

	// Typo threshold (clamp to [0.0, 1.0])
	if c.Palette.TypoThreshold < 0.0 {
		warn("palette.typo_threshold", fmt.Sprintf("must be >= 0.0, got %f; clamping to 0.0", c.Palette.TypoThreshold))
		c.Palette.TypoThreshold = 0.0
	}
	if c.Palette.TypoThreshold > 1.0 {
		warn("palette.typo_threshold", fmt.Sprintf("must be <= 1.0, got %f; clamping to 1.0", c.Palette.TypoThreshold))
		c.Palette.TypoThreshold = 1.0
	}

	// Retention days (>= 0; 0 = disable pruning)
	if c.Storage.RetentionDays < 0 {
		warn("storage.retention_days", fmt.Sprintf("must be >= 0, got %d; falling back to default %d", c.Storage.RetentionDays, defaults.Storage.RetentionDays))
		c.Storage.RetentionDays = defaults.Storage.RetentionDays
	}

	// Enum: history shell
	if !isValidShell(c.History.Shell) {
		warn("history.shell", fmt.Sprintf("must be auto, zsh, bash, or fish, got %q; falling back to auto", c.History.Shell))
		c.History.Shell = "auto"
	}

	// Enum: log level
	if !isValidLogLevel(c.Log.Level) {
		warn("log.level", fmt.Sprintf("must be debug, info, warn, or error, got %q; falling back to default %q", c.Log.Level, defaults.Log.Level))
		c.Log.Level = defaults.Log.Level
	}

	return warnings
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidShell(shell string) bool {
	switch shell {
	case "auto", "zsh", "bash", "fish":
		return true
	default:
		return false
	}
}

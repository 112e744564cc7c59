package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Check defaults
	if cfg.Engine.DebounceMs != 150 {
		t.Errorf("Expected debounce_ms=150, got %d", cfg.Engine.DebounceMs)
	}
	if cfg.Engine.CacheSize != 8 {
		t.Errorf("Expected cache_size=8, got %d", cfg.Engine.CacheSize)
	}
	if cfg.Engine.CaseSensitive {
		t.Error("Expected case_sensitive=false by default")
	}
	if cfg.Files.MaxScan != 2000 {
		t.Errorf("Expected files.max_scan=2000, got %d", cfg.Files.MaxScan)
	}
	if cfg.Files.MaxDisplay != 20 {
		t.Errorf("Expected files.max_display=20, got %d", cfg.Files.MaxDisplay)
	}
	if len(cfg.Files.Ignore) == 0 {
		t.Error("Expected default ignore patterns")
	}
	if cfg.Symbols.FreshnessCap != 10 {
		t.Errorf("Expected symbols.freshness_cap=10, got %d", cfg.Symbols.FreshnessCap)
	}
	if cfg.History.MaxDisplay != 50 {
		t.Errorf("Expected history.max_display=50, got %d", cfg.History.MaxDisplay)
	}
	if cfg.History.Shell != "auto" {
		t.Errorf("Expected history.shell=auto, got %s", cfg.History.Shell)
	}
	if cfg.Palette.PageSize != 10 {
		t.Errorf("Expected palette.page_size=10, got %d", cfg.Palette.PageSize)
	}
	if cfg.Palette.TypoThreshold != 0.8 {
		t.Errorf("Expected palette.typo_threshold=0.8, got %f", cfg.Palette.TypoThreshold)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log.level=warn, got %s", cfg.Log.Level)
	}
	if cfg.Storage.RetentionDays != 90 {
		t.Errorf("Expected storage.retention_days=90, got %d", cfg.Storage.RetentionDays)
	}
}

func TestDefaultConfig_PassesValidation(t *testing.T) {
	cfg := DefaultConfig()

	warnings := cfg.ValidateAndFix()
	if len(warnings) != 0 {
		t.Errorf("Default config should validate cleanly, got warnings: %v", warnings)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}

	// Missing file falls back to defaults
	if cfg.Engine.DebounceMs != 150 {
		t.Errorf("Expected default debounce_ms=150, got %d", cfg.Engine.DebounceMs)
	}
	if cfg.History.Shell != "auto" {
		t.Errorf("Expected default shell=auto, got %s", cfg.History.Shell)
	}
}

func TestLoadFromFile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `engine:
  debounce_ms: 80
history:
  shell: fish
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}

	if cfg.Engine.DebounceMs != 80 {
		t.Errorf("Expected debounce_ms=80 from file, got %d", cfg.Engine.DebounceMs)
	}
	if cfg.History.Shell != "fish" {
		t.Errorf("Expected shell=fish from file, got %s", cfg.History.Shell)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log.level=debug from file, got %s", cfg.Log.Level)
	}

	// Absent keys keep their defaults
	if cfg.Engine.CacheSize != 8 {
		t.Errorf("Expected default cache_size=8, got %d", cfg.Engine.CacheSize)
	}
	if cfg.History.MaxScan != 5000 {
		t.Errorf("Expected default history.max_scan=5000, got %d", cfg.History.MaxScan)
	}
}

func TestLoadFromFile_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("engine: [not: a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TYPEAHEAD_DEBUG", "1")
	t.Setenv("TYPEAHEAD_DB_PATH", "/custom/usage.db")
	t.Setenv("TYPEAHEAD_DEBOUNCE_MS", "300")
	t.Setenv("TYPEAHEAD_CASE_SENSITIVE", "true")
	t.Setenv("TYPEAHEAD_SHELL", "zsh")
	t.Setenv("TYPEAHEAD_HISTFILE", "/custom/histfile")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Log.Level != "debug" {
		t.Errorf("TYPEAHEAD_DEBUG should set log.level=debug, got %s", cfg.Log.Level)
	}
	if cfg.Storage.DatabasePath != "/custom/usage.db" {
		t.Errorf("Expected database_path override, got %s", cfg.Storage.DatabasePath)
	}
	if cfg.Engine.DebounceMs != 300 {
		t.Errorf("Expected debounce_ms=300, got %d", cfg.Engine.DebounceMs)
	}
	if !cfg.Engine.CaseSensitive {
		t.Error("Expected case_sensitive=true")
	}
	if cfg.History.Shell != "zsh" {
		t.Errorf("Expected shell=zsh, got %s", cfg.History.Shell)
	}
	if cfg.History.File != "/custom/histfile" {
		t.Errorf("Expected histfile override, got %s", cfg.History.File)
	}
}

func TestApplyEnvOverrides_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("TYPEAHEAD_DEBOUNCE_MS", "not-a-number")
	t.Setenv("TYPEAHEAD_SHELL", "tcsh")
	t.Setenv("TYPEAHEAD_LOG_LEVEL", "verbose")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Engine.DebounceMs != 150 {
		t.Errorf("Invalid debounce override should be ignored, got %d", cfg.Engine.DebounceMs)
	}
	if cfg.History.Shell != "auto" {
		t.Errorf("Invalid shell override should be ignored, got %s", cfg.History.Shell)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Invalid log level override should be ignored, got %s", cfg.Log.Level)
	}
}

func TestLoadFromFile_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TYPEAHEAD_LOG_LEVEL", "error")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Errorf("Env should override file value, got %s", cfg.Log.Level)
	}
}

// ============================================================================
// ValidateAndFix
// ============================================================================

func TestValidateAndFix_CountsFallBackToDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Files.MaxScan = 0
	cfg.History.MaxDisplay = -5
	cfg.Palette.TypoMaxSuggestions = 0

	warnings := cfg.ValidateAndFix()

	if cfg.Files.MaxScan != 2000 {
		t.Errorf("Expected files.max_scan reset to 2000, got %d", cfg.Files.MaxScan)
	}
	if cfg.History.MaxDisplay != 50 {
		t.Errorf("Expected history.max_display reset to 50, got %d", cfg.History.MaxDisplay)
	}
	if cfg.Palette.TypoMaxSuggestions != 3 {
		t.Errorf("Expected typo_max_suggestions reset to 3, got %d", cfg.Palette.TypoMaxSuggestions)
	}
	if len(warnings) != 3 {
		t.Errorf("Expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestValidateAndFix_ClampsRanges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.DebounceMs = 5000
	cfg.Palette.PageSize = 1
	cfg.Palette.TypoThreshold = 1.5

	warnings := cfg.ValidateAndFix()

	if cfg.Engine.DebounceMs != 2000 {
		t.Errorf("Expected debounce_ms clamped to 2000, got %d", cfg.Engine.DebounceMs)
	}
	if cfg.Palette.PageSize != 5 {
		t.Errorf("Expected page_size clamped to 5, got %d", cfg.Palette.PageSize)
	}
	if cfg.Palette.TypoThreshold != 1.0 {
		t.Errorf("Expected typo_threshold clamped to 1.0, got %f", cfg.Palette.TypoThreshold)
	}
	if len(warnings) != 3 {
		t.Errorf("Expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestValidateAndFix_NegativeDebounceUsesDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.DebounceMs = -1

	cfg.ValidateAndFix()

	if cfg.Engine.DebounceMs != 150 {
		t.Errorf("Expected debounce_ms reset to 150, got %d", cfg.Engine.DebounceMs)
	}
}

func TestValidateAndFix_DropsInvalidIgnorePatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Files.Ignore = []string{"[", "docs/**"}

	warnings := cfg.ValidateAndFix()

	if len(cfg.Files.Ignore) != 1 || cfg.Files.Ignore[0] != "docs/**" {
		t.Errorf("Expected only valid pattern kept, got %v", cfg.Files.Ignore)
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].Field != "files.ignore" {
		t.Errorf("Expected files.ignore warning, got %s", warnings[0].Field)
	}
}

func TestValidateAndFix_InvalidEnumsFallBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History.Shell = "powershell"
	cfg.Log.Level = "trace"

	warnings := cfg.ValidateAndFix()

	if cfg.History.Shell != "auto" {
		t.Errorf("Expected shell reset to auto, got %s", cfg.History.Shell)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log level reset to warn, got %s", cfg.Log.Level)
	}
	if len(warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestValidateAndFix_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.DebounceMs = 9999
	cfg.Palette.PageSize = 0

	cfg.ValidateAndFix()
	second := cfg.ValidateAndFix()

	if len(second) != 0 {
		t.Errorf("Second pass over fixed config should be clean, got: %v", second)
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Field: "engine.cache_size", Message: "must be >= 1"}
	if w.String() != "engine.cache_size: must be >= 1" {
		t.Errorf("Unexpected warning string: %s", w.String())
	}
}

// Package config provides configuration management for typeahead.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the path configuration for typeahead.
type Paths struct {
	// ConfigDir is the directory for configuration files
	// (~/.config/typeahead)
	ConfigDir string

	// DataDir is the directory for data files
	// (~/.local/share/typeahead)
	DataDir string
}

// DefaultPaths returns the default paths based on XDG Base Directory
// spec. On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "typeahead"),
			DataDir:   filepath.Join(localAppData, "typeahead"),
		}
	}

	// Unix-like systems follow XDG Base Directory spec
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "typeahead"),
		DataDir:   filepath.Join(dataHome, "typeahead"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// CommandsFile returns the path to the user's command-set overlay.
func (p *Paths) CommandsFile() string {
	return filepath.Join(p.ConfigDir, "commands.yaml")
}

// DatabaseFile returns the path to the usage statistics database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "usage.db")
}

// LogFile returns the path to the default log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.DataDir, "typeahead.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.ConfigDir,
		p.DataDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}

	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}

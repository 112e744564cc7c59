package cmd

import (
	"os"
	"runtime"
	"strconv"
)

// ANSI sequences for the plain-text rank output. The variables start
// enabled and are blanked when the terminal cannot render them.
const (
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[0;36m"
	ansiReset = "\033[0m"
)

var (
	colorBold  = ansiBold
	colorDim   = ansiDim
	colorCyan  = ansiCyan
	colorReset = ansiReset
)

// colorMode is the --color flag value: auto, always or never.
var colorMode = "auto"

func init() {
	if shouldDisableColors() {
		disableColors()
	}
}

// applyColorMode applies the --color flag on top of the automatic
// detection done at init.
func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
	case "never":
		disableColors()
	}
}

func enableColors() {
	colorBold = ansiBold
	colorDim = ansiDim
	colorCyan = ansiCyan
	colorReset = ansiReset
}

func disableColors() {
	colorBold = ""
	colorDim = ""
	colorCyan = ""
	colorReset = ""
}

func shouldDisableColors() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}

	if os.Getenv("TERM") == "dumb" {
		return true
	}

	// On Windows, check if ANSI is supported
	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") != "" {
			return false // Windows Terminal supports ANSI
		}
		if os.Getenv("TERM_PROGRAM") != "" {
			return false // Modern terminal emulator
		}
		// Disable by default on older Windows consoles
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	// Piped stdout gets no escapes.
	return getTermWidthIoctl() == 0
}

// termWidth returns the terminal width in columns, preferring ioctl
// and falling back to $COLUMNS. 0 means unknown (stdout is not a
// terminal).
func termWidth() int {
	if w := getTermWidthIoctl(); w > 0 {
		return w
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w
		}
	}
	return 0
}

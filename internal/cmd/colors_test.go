package cmd

import (
	"testing"
)

func withColorGlobals(t *testing.T) {
	t.Helper()
	origMode := colorMode
	origBold := colorBold
	origDim := colorDim
	origCyan := colorCyan
	origReset := colorReset
	t.Cleanup(func() {
		colorMode = origMode
		colorBold = origBold
		colorDim = origDim
		colorCyan = origCyan
		colorReset = origReset
	})
}

func TestApplyColorMode_Always(t *testing.T) {
	withColorGlobals(t)

	disableColors()
	if colorCyan != "" {
		t.Fatal("expected colors disabled")
	}

	colorMode = "always"
	applyColorMode()

	if colorCyan == "" {
		t.Error("applyColorMode(\"always\") should enable colors even when auto would disable")
	}
}

func TestApplyColorMode_Never(t *testing.T) {
	withColorGlobals(t)

	enableColors()
	if colorCyan == "" {
		t.Fatal("expected colors enabled")
	}

	colorMode = "never"
	applyColorMode()

	if colorCyan != "" {
		t.Error("applyColorMode(\"never\") should disable colors")
	}
}

func TestApplyColorMode_AutoKeepsDetection(t *testing.T) {
	withColorGlobals(t)

	disableColors()
	colorMode = "auto"
	applyColorMode()

	if colorCyan != "" {
		t.Error("applyColorMode(\"auto\") should leave the init-time detection alone")
	}
}

func TestShouldDisableColors_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !shouldDisableColors() {
		t.Error("shouldDisableColors should return true when NO_COLOR is set")
	}
}

func TestShouldDisableColors_TermDumb(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	if !shouldDisableColors() {
		t.Error("shouldDisableColors should return true when TERM=dumb")
	}
}

func TestTermWidth_FromEnv(t *testing.T) {
	// In a test, stdout is a pipe, so the ioctl path yields 0 and the
	// $COLUMNS fallback applies.
	t.Setenv("COLUMNS", "120")
	if w := termWidth(); w != 120 {
		t.Errorf("termWidth() = %d, want 120 (from $COLUMNS)", w)
	}
}

func TestTermWidth_Unknown(t *testing.T) {
	t.Setenv("COLUMNS", "")
	if w := termWidth(); w != 0 {
		t.Errorf("termWidth() = %d, want 0 (unknown)", w)
	}
}

func TestTermWidth_InvalidEnv(t *testing.T) {
	t.Setenv("COLUMNS", "notanumber")
	if w := termWidth(); w != 0 {
		t.Errorf("termWidth() = %d, want 0 (invalid $COLUMNS)", w)
	}
}

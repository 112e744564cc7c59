//go:build windows

package cmd

import (
	"fmt"
	"os"
)

// openTTY is not supported on Windows; the palette needs a Unix
// controlling terminal. The rank command covers scripted use.
func openTTY() (*os.File, error) {
	return nil, fmt.Errorf("interactive palette is not supported on Windows")
}

func checkTTY() error {
	return fmt.Errorf("interactive palette is not supported on Windows")
}

func checkTERM() error { return nil }

func checkTermWidth() error { return nil }

func acquireLock(string) (int, error) { return -1, nil }

func releaseLock(int) {}

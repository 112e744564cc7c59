//go:build !windows

package cmd

import (
	"path/filepath"
	"testing"
)

func TestCheckTERM(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	if err := checkTERM(); err != nil {
		t.Errorf("checkTERM() with a real TERM: %v", err)
	}

	t.Setenv("TERM", "dumb")
	if err := checkTERM(); err == nil {
		t.Error("checkTERM() should reject TERM=dumb")
	}
}

func TestAcquireLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.lock")

	fd, err := acquireLock(path)
	if err != nil {
		t.Fatalf("acquireLock() error: %v", err)
	}

	// A second open file description must not get the flock.
	if _, err := acquireLock(path); err == nil {
		t.Error("second acquireLock() should fail while held")
	}

	releaseLock(fd)

	fd2, err := acquireLock(path)
	if err != nil {
		t.Errorf("acquireLock() after release: %v", err)
	}
	releaseLock(fd2)
}

package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"
)

type rankGlobals struct {
	domain string
	limit  int
	json   bool
}

func withRankGlobals(t *testing.T, g rankGlobals) {
	t.Helper()
	old := rankGlobals{
		domain: rankDomain,
		limit:  rankLimit,
		json:   rankJSON,
	}
	oldColor := colorMode
	rankDomain = g.domain
	rankLimit = g.limit
	rankJSON = g.json

	t.Cleanup(func() {
		rankDomain = old.domain
		rankLimit = old.limit
		rankJSON = old.json
		colorMode = oldColor
	})
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() failed: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()
	_ = w.Close()
	os.Stdout = old
	out := <-outC
	_ = r.Close()
	return out
}

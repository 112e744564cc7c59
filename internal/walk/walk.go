// Package walk turns a working tree into file-completion candidates:
// relative paths with modification times, newest first.
package walk

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/mhoffs/typeahead/internal/filter"
)

// DefaultMaxFiles bounds a walk when the caller does not.
const DefaultMaxFiles = 2000

// Options configures a walk.
type Options struct {
	// IgnoreGlobs prunes matching paths (doublestar patterns, e.g.
	// "**/node_modules/**"). Directory subtrees whose root matches are
	// never descended into.
	IgnoreGlobs []string

	// MaxFiles caps how many candidates come back. The newest files
	// survive the cut. Defaults to DefaultMaxFiles.
	MaxFiles int

	// Workers bounds the concurrent stat calls. Defaults to the CPU
	// count.
	Workers int
}

// Files walks root and returns one candidate per regular file, sorted
// by modification time, newest first. Paths are relative to root with
// forward slashes. Unreadable entries are skipped, not fatal.
func Files(ctx context.Context, root string, opts Options) ([]filter.Candidate, error) {
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var entries []walkEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A nil entry means the root itself was unreadable.
			if d == nil {
				return err
			}
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignoredDir(rel, opts.IgnoreGlobs) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ignoredPath(rel, opts.IgnoreGlobs) {
			return nil
		}

		entries = append(entries, walkEntry{rel: rel, dirent: d})
		return nil
	})
	if err != nil {
		return nil, err
	}

	cands := make([]filter.Candidate, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := filter.Candidate{Text: e.rel, Path: e.rel}
			if info, err := e.dirent.Info(); err == nil {
				c.ModTime = info.ModTime()
			}
			cands[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].ModTime.After(cands[j].ModTime)
	})
	if len(cands) > maxFiles {
		cands = cands[:maxFiles]
	}
	return cands, nil
}

type walkEntry struct {
	rel    string
	dirent fs.DirEntry
}

// ignoredPath reports whether a file's relative path matches an ignore
// glob.
func ignoredPath(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// ignoredDir reports whether a directory should be pruned. A glob of
// the form "**/name/**" prunes the "name" subtree itself, not just the
// files below it, so the walk never descends into it.
func ignoredDir(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if trimmed, found := strings.CutSuffix(g, "/**"); found {
			if ok, _ := doublestar.Match(trimmed, rel); ok {
				return true
			}
		}
	}
	return false
}

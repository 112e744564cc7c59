// Package histfile parses shell history files (zsh, bash, fish) into
// timestamped entries for seeding the history search surface.
package histfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mhoffs/typeahead/internal/filter"
)

// MaxEntries bounds how many entries Load returns; older entries past
// the bound are dropped.
const MaxEntries = 25000

// Entry is one history line with the time it was run (zero when the
// shell did not record timestamps).
type Entry struct {
	Command string
	Used    time.Time
}

// Load reads the history of the given shell ("zsh", "bash", "fish",
// or "auto"/"" to detect from $SHELL). An empty path uses the shell's
// default history location. A missing file or unknown shell yields no
// entries and no error.
func Load(shell, path string) ([]Entry, error) {
	if shell == "" || shell == "auto" {
		shell = DetectShell()
	}

	var parse func(io.Reader) ([]Entry, error)
	switch shell {
	case "zsh":
		parse = parseZsh
		if path == "" {
			path = histPath(".zsh_history")
		}
	case "bash":
		parse = parseBash
		if path == "" {
			path = histPath(".bash_history")
		}
	case "fish":
		parse = parseFish
		if path == "" {
			path = fishHistoryPath()
		}
	default:
		return nil, nil
	}
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path) //nolint:gosec // G304: path is from user's HISTFILE or well-known default
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	entries, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s history: %w", shell, err)
	}
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}
	return entries, nil
}

// DetectShell maps $SHELL to a supported shell name, or "".
func DetectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return ""
	}
	switch base := filepath.Base(shell); base {
	case "bash", "zsh", "fish":
		return base
	default:
		return ""
	}
}

// Candidates folds entries (file order, oldest first) into search
// candidates, newest first. Repeated commands collapse into one
// candidate carrying the run count and the most recent timestamp, so
// the ranking engine sees both without a database.
func Candidates(entries []Entry) []filter.Candidate {
	index := make(map[string]int, len(entries))
	var out []filter.Candidate
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Command == "" {
			continue
		}
		if at, ok := index[e.Command]; ok {
			out[at].UseCount++
			continue
		}
		index[e.Command] = len(out)
		out = append(out, filter.Candidate{
			Text:     e.Command,
			LastUsed: e.Used,
			UseCount: 1,
		})
	}
	return out
}

// parseZsh handles plain and extended (`: <ts>:<dur>;<cmd>`) zsh
// history, including backslash-continued multiline commands.
func parseZsh(r io.Reader) ([]Entry, error) {
	var p zshParser
	sc := newHistScanner(r)
	for sc.Scan() {
		p.line(sc.Text())
	}
	p.flush()
	return p.entries, sc.Err()
}

type zshParser struct {
	partial strings.Builder
	pending time.Time
	entries []Entry
}

func (p *zshParser) line(line string) {
	if p.partial.Len() > 0 {
		if endsWithContinuation(line) {
			p.partial.WriteString(line[:len(line)-1])
			p.partial.WriteString("\n")
			return
		}
		p.partial.WriteString(line)
		p.emit(p.partial.String())
		p.partial.Reset()
		return
	}

	cmd := line
	if rest, ts, ok := splitExtendedFormat(line); ok {
		cmd = rest
		p.pending = ts
	}
	if endsWithContinuation(cmd) {
		p.partial.WriteString(cmd[:len(cmd)-1])
		p.partial.WriteString("\n")
		return
	}
	p.emit(cmd)
}

func (p *zshParser) emit(cmd string) {
	if cmd != "" {
		p.entries = append(p.entries, Entry{Command: cmd, Used: p.pending})
	}
	p.pending = time.Time{}
}

func (p *zshParser) flush() {
	if p.partial.Len() > 0 {
		p.emit(strings.TrimSuffix(p.partial.String(), "\n"))
		p.partial.Reset()
	}
}

// splitExtendedFormat parses `: <ts>:<dur>;<cmd>` lines, returning the
// command and timestamp.
func splitExtendedFormat(line string) (string, time.Time, bool) {
	if !strings.HasPrefix(line, ": ") {
		return "", time.Time{}, false
	}
	semi := strings.Index(line, ";")
	if semi == -1 {
		return "", time.Time{}, false
	}
	var used time.Time
	meta := line[2:semi] // "<ts>:<dur>"
	if colon := strings.Index(meta, ":"); colon != -1 {
		if ts, err := strconv.ParseInt(meta[:colon], 10, 64); err == nil {
			used = time.Unix(ts, 0)
		}
	}
	return line[semi+1:], used, true
}

// parseBash handles plain bash history, honoring `#<unix_ts>` stamp
// lines written under HISTTIMEFORMAT.
func parseBash(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var pending time.Time

	sc := newHistScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") && len(line) > 1 {
			if ts, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				pending = time.Unix(ts, 0)
				continue
			}
		}
		entries = append(entries, Entry{Command: line, Used: pending})
		pending = time.Time{}
	}
	return entries, sc.Err()
}

// parseFish handles fish's pseudo-YAML history:
//
//	- cmd: <command>
//	  when: <unix_ts>
func parseFish(r io.Reader) ([]Entry, error) {
	var (
		entries []Entry
		cmd     string
		used    time.Time
	)
	flush := func() {
		if cmd != "" {
			entries = append(entries, Entry{Command: decodeFishEscapes(cmd), Used: used})
		}
		cmd, used = "", time.Time{}
	}

	sc := newHistScanner(r)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "- cmd: "):
			flush()
			cmd = strings.TrimPrefix(line, "- cmd: ")
		case strings.HasPrefix(line, "  when: "):
			if ts, err := strconv.ParseInt(strings.TrimPrefix(line, "  when: "), 10, 64); err == nil {
				used = time.Unix(ts, 0)
			}
		}
	}
	flush()
	return entries, sc.Err()
}

// decodeFishEscapes decodes fish's \\ and \n escapes.
func decodeFishEscapes(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// endsWithContinuation reports whether a line ends in an odd run of
// backslashes, i.e. the newline itself is escaped.
func endsWithContinuation(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// newHistScanner builds a line scanner sized for large history files.
func newHistScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, 1024*1024)
	return sc
}

func histPath(name string) string {
	if histFile := os.Getenv("HISTFILE"); histFile != "" {
		return histFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}

// fishHistoryPath returns XDG_DATA_HOME/fish/fish_history.
func fishHistoryPath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "fish", "fish_history")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "fish", "fish_history")
}

package palette

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ansiRE matches ANSI escape sequences:
//   - CSI sequences: ESC [ ... final_byte  (covers SGR like \x1b[31m)
//   - OSC sequences: ESC ] ... (ST | BEL)
//   - Charset sequences: ESC ( B, ESC ) B, etc.
//   - Other two-byte escapes: ESC followed by a single byte in [#()*+\-./]
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;?]*[A-Za-z]` +
	`|` +
	`\].*?(?:\x1b\\|\x07)` +
	`|` +
	`[()][A-B0-2]` +
	`|` +
	`[#()*+\-./][A-Za-z0-9]` +
	`)`)

// StripANSI removes ANSI escape sequences from a string. Sources run
// it on candidate text before ranking so match positions stay aligned
// with what is displayed.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// ValidateUTF8 replaces invalid UTF-8 byte sequences with the Unicode
// replacement character (U+FFFD). Shell history files carry arbitrary
// bytes; rune-indexed highlighting needs valid text.
func ValidateUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteRune(utf8.RuneError)
			i++
		} else {
			b.WriteRune(r)
			i += size
		}
	}
	return b.String()
}

// PrettyEscapeLiterals replaces common *literal* escape-sequence
// spellings in shell commands (like "\033[" or "\x1b[") with a
// readable token. Display only; never feed the result back to a
// shell.
func PrettyEscapeLiterals(s string) string {
	if s == "" {
		return s
	}
	r := strings.NewReplacer(
		"\\033[", "<ESC>[",
		"\\033]", "<ESC>]",
		"\\x1b[", "<ESC>[",
		"\\x1B[", "<ESC>[",
		"\\x1b]", "<ESC>]",
		"\\x1B]", "<ESC>]",
		"\\e[", "<ESC>[",
		"\\e]", "<ESC>]",
	)
	return r.Replace(s)
}

// MiddleTruncate truncates a string in the middle with an ellipsis if
// its display width exceeds maxWidth. Width-aware: CJK characters and
// emoji count as two columns.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	const ellipsis = "…"

	// No room for head + ellipsis + tail: hard-truncate from the
	// right instead.
	if maxWidth < 3 {
		return truncatePrefix(s, maxWidth)
	}

	// Split the remaining width around the ellipsis, giving the head
	// the extra column when it is odd.
	remaining := maxWidth - 1
	head := truncatePrefix(s, (remaining+1)/2)
	tail := truncateSuffix(s, remaining/2)

	return head + ellipsis + tail
}

// truncatePrefix returns the longest prefix of s whose display width
// does not exceed maxWidth.
func truncatePrefix(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}

// truncateSuffix returns the longest suffix of s whose display width
// does not exceed maxWidth.
func truncateSuffix(s string, maxWidth int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}

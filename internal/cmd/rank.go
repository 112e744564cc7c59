package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/mhoffs/typeahead/internal/filter"
	"github.com/mhoffs/typeahead/internal/palette"
	"github.com/mhoffs/typeahead/internal/usage"
)

var (
	rankDomain string
	rankLimit  int
	rankJSON   bool
)

var rankCmd = &cobra.Command{
	Use:   "rank [query]",
	Short: "Rank stdin candidates against a query",
	Long: `Rank reads one candidate per line from stdin and prints the best
matches for the query, best first. An empty query returns the
domain's natural order instead of matching.

Lines may carry optional tab-separated fields: TEXT, DETAIL, PATH.

The domain picks the scoring policy:
  files     word-boundary bonuses, shallow paths win ties
  symbols   camel-case bonuses for identifier matching
  commands  pick frequency and recency shade the name match
  agents    like commands, matched against the whole query
  history   whole-line bands, multi-word queries must all match

Stored usage is folded in when the usage database already exists;
rank itself never creates it.

Examples:
  git ls-files | typeahead rank --domain files conf
  typeahead rank --domain history "docker run" < commands.txt
  typeahead rank --json --limit 5 readme < files.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankDomain, "domain", "files", "scoring policy: files, symbols, commands, agents or history")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 0, "maximum results (0 uses the domain default)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "output results as JSON")
	rankCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always or never")
}

type rankItem struct {
	Text      string `json:"text"`
	Detail    string `json:"detail,omitempty"`
	Path      string `json:"path,omitempty"`
	Score     int    `json:"score"`
	Positions []int  `json:"positions,omitempty"`
}

type rankResponse struct {
	Results   []rankItem `json:"results"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated"`
}

func runRank(cmd *cobra.Command, args []string) error {
	applyColorMode()

	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	cfg, logger, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	session, err := filter.NewSession(sessionOptions(cfg, logger))
	if err != nil {
		return err
	}
	engine, err := engineForDomain(session, rankDomain)
	if err != nil {
		return err
	}

	cands, err := readCandidates(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read candidates: %w", err)
	}

	// Fold in stored pick counts, but only when a previous palette or
	// prime run created the database.
	if dbPath := databasePath(cfg); fileExists(dbPath) {
		if store, err := usage.Open(dbPath); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := store.Annotate(ctx, rankDomain, cands); err != nil {
				logger.Warn("usage annotation failed", "error", err)
			}
			cancel()
			store.Close()
		}
	}

	result := engine.Rank(cands, query, rankLimit)

	if rankJSON {
		return writeRankJSON(result)
	}
	writeRankPlain(result)
	return nil
}

// engineForDomain picks the session engine for a --domain value.
func engineForDomain(s *filter.Session, domain string) (*filter.Engine, error) {
	switch domain {
	case "files":
		return s.Files, nil
	case "symbols":
		return s.Symbols, nil
	case "commands":
		return s.Commands, nil
	case "agents":
		return s.Agents, nil
	case "history":
		return s.History, nil
	default:
		return nil, fmt.Errorf("unknown domain %q (valid: files, symbols, commands, agents, history)", domain)
	}
}

// readCandidates parses TEXT[<TAB>DETAIL[<TAB>PATH]] lines. Text is
// sanitized so match positions index what gets displayed.
func readCandidates(r io.Reader) ([]filter.Candidate, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cands []filter.Candidate
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		c := filter.Candidate{Text: palette.ValidateUTF8(palette.StripANSI(parts[0]))}
		if len(parts) > 1 {
			c.Detail = parts[1]
		}
		if len(parts) > 2 {
			c.Path = parts[2]
		}
		cands = append(cands, c)
	}
	return cands, sc.Err()
}

func writeRankJSON(result filter.Result) error {
	items := make([]rankItem, len(result.Items))
	for i, m := range result.Items {
		items[i] = rankItem{
			Text:      m.Text,
			Detail:    m.Detail,
			Path:      m.Path,
			Score:     m.Score,
			Positions: m.Positions,
		}
	}
	resp := rankResponse{
		Results:   items,
		Total:     result.Total,
		Truncated: result.Total > len(result.Items),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

func writeRankPlain(result filter.Result) {
	if len(result.Items) == 0 {
		fmt.Println("No matches.")
		return
	}
	width := termWidth()
	for _, m := range result.Items {
		line := m.Text
		switch {
		case width > 0 && runewidth.StringWidth(line) > width:
			// Truncation would misalign the positions; print plain.
			line = palette.MiddleTruncate(line, width)
		default:
			line = highlightLine(line, m.Positions)
			// Details ride along dimmed when the row has room. Piped
			// output (width 0) stays one bare text per line.
			if m.Detail != "" && width > 0 {
				pad := width - runewidth.StringWidth(m.Text)
				if runewidth.StringWidth(m.Detail)+2 <= pad {
					line += "  " + colorDim + m.Detail + colorReset
				}
			}
		}
		fmt.Println(line)
	}
}

// highlightLine colors the matched runes. A no-op when colors are
// disabled.
func highlightLine(text string, positions []int) string {
	if colorCyan == "" || len(positions) == 0 {
		return text
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}

	runes := []rune(text)
	var b strings.Builder
	start := 0
	for start < len(runes) {
		end := start
		lit := marked[start]
		for end < len(runes) && marked[end] == lit {
			end++
		}
		seg := string(runes[start:end])
		if lit {
			b.WriteString(colorBold + colorCyan + seg + colorReset)
		} else {
			b.WriteString(seg)
		}
		start = end
	}
	return b.String()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package metadata parses title, authors and abstract from the raw
// text of a research paper.
//
// There is no reliable structure in extracted PDF text, so everything
// here is heuristic: the title sits in the first few long lines, the
// author line carries affiliation digits and separators, and the
// abstract runs from an "Abstract" header to the next section header.
// Every field may come back empty; callers must treat all of them as
// best-effort.
package metadata

import (
	"strings"
	"unicode"

	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.MetadataParser = (*Parser)(nil)

const (
	// titleScanWindow is how many lines past the banner are considered
	// title candidates.
	titleScanWindow = 5

	// authorScanWindow is how many leading lines are searched for an
	// author line.
	authorScanWindow = 20

	// minAbstractLen discards abstracts too short to be real.
	minAbstractLen = 100

	// maxAbstractLen truncates runaway abstracts whose closing section
	// header was not recognised.
	maxAbstractLen = 3000
)

// sectionHeaders end the abstract when they appear in a line.
var sectionHeaders = []string{"background", "introduction", "methods", "keywords", "correspondence"}

// bannerWords mark publisher banner lines prepended by paper
// repositories ("RESEARCH ARTICLE", "OPEN ACCESS").
var bannerWords = []string{"RESEARCH", "ARTICLE", "ACCESS"}

// Parser extracts paper metadata from full text.
type Parser struct{}

// New creates a new metadata parser.
func New() *Parser {
	return &Parser{}
}

// Parse extracts title, authors and abstract from the paper's full
// text. Fields that cannot be located come back empty.
func (p *Parser) Parse(fullText string) (title, authors, abstract string) {
	lines := nonEmptyLines(fullText)
	if len(lines) == 0 {
		return "", "", ""
	}

	return parseTitle(lines), parseAuthors(lines), parseAbstract(lines)
}

// nonEmptyLines splits text into trimmed, non-empty lines.
func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseTitle(lines []string) string {
	start := 0
	if isBannerLine(lines[0]) {
		start = 1
	}

	var titleLines []string
	for i := start; i < len(lines) && i < start+titleScanWindow; i++ {
		line := lines[i]
		if isAuthorLine(line) {
			break
		}
		if strings.EqualFold(line, "abstract") {
			break
		}
		if len(line) > 10 {
			titleLines = append(titleLines, line)
		}
	}

	if len(titleLines) == 0 {
		return lines[0]
	}
	return strings.Join(titleLines, " ")
}

func parseAuthors(lines []string) string {
	limit := len(lines)
	if limit > authorScanWindow {
		limit = authorScanWindow
	}

	for i := 0; i < limit; i++ {
		line := lines[i]
		// Author lines carry affiliation digits plus commas or
		// asterisks: "Jane Doe1,2, John Smith3,*".
		if hasDigit(line) && (strings.Contains(line, ",") || strings.Contains(line, "*")) {
			authorLines := []string{line}
			if i+1 < len(lines) && strings.Contains(strings.ToLower(lines[i+1]), "and") {
				authorLines = append(authorLines, lines[i+1])
			}
			return strings.Join(authorLines, " ")
		}
	}
	return ""
}

func parseAbstract(lines []string) string {
	headerIndex := -1
	for i, line := range lines {
		if strings.EqualFold(line, "abstract") {
			headerIndex = i
			break
		}
	}
	if headerIndex == -1 || headerIndex+1 >= len(lines) {
		return ""
	}

	var abstractLines []string
	for _, line := range lines[headerIndex+1:] {
		if isSectionHeader(line) {
			break
		}
		// Short lines are headings or layout noise, not prose.
		if len(line) < 20 {
			continue
		}
		abstractLines = append(abstractLines, line)
	}

	abstract := strings.TrimSpace(strings.Join(abstractLines, " "))
	if len(abstract) < minAbstractLen {
		return ""
	}
	if len(abstract) > maxAbstractLen {
		abstract = truncate(abstract, maxAbstractLen)
	}
	return abstract
}

// isAuthorLine reports whether a line looks like an author listing:
// affiliation digits together with an asterisk or email marker.
func isAuthorLine(line string) bool {
	return hasDigit(line) && (strings.Contains(line, "*") || strings.Contains(line, "@"))
}

func isBannerLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, word := range bannerWords {
		if strings.Contains(upper, word) {
			return true
		}
	}
	return false
}

func isSectionHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, header := range sectionHeaders {
		if strings.Contains(lower, header) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

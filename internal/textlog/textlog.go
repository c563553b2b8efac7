// Package textlog extracts process-creation events from plain-text
// Windows Security Event log exports.
package textlog

import (
	"regexp"
	"strings"

	"github.com/redcanyon-sec/evtflat/internal/record"
)

// blockMarker starts a new event block when it begins a line.
const blockMarker = "Log Name:"

// Line-scoped field patterns. Each is first-match and case-sensitive; a
// miss yields an empty field, never an error.
var (
	reDate     = regexp.MustCompile(`Date:\s+([^\n]+)`)
	reComputer = regexp.MustCompile(`Computer:\s+([^\n]+)`)
	rePID      = regexp.MustCompile(`New Process ID:\s+([^\n]+)`)
	reImage    = regexp.MustCompile(`New Process Name:\s+([^\n]+)`)
	reHashes   = regexp.MustCompile(`Hashes:\s+([^\n]+)`)

	// The creating account appears as the first "Account Name:" after the
	// "Creator Subject:" marker, possibly several lines later.
	reUser = regexp.MustCompile(`(?s)Creator Subject:.*?Account Name:\s+([^\n]+)`)

	// The command line may wrap across lines; it runs until a blank line
	// or the end of the block.
	reCmdLine = regexp.MustCompile(`(?s)Process Command Line:\s+(.+?)(?:\n\n|$)`)
)

// ParseBlocks splits content into event blocks and extracts one record
// per block. Blocks where no recognized field is present are dropped.
// Windows export tools emit CRLF line endings; these are normalized so
// the blank-line terminator of the command line matches either way.
func ParseBlocks(content string) []record.Record {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var records []record.Record
	for _, block := range splitBlocks(content) {
		rec := parseBlock(block)
		if rec.Empty() {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// splitBlocks cuts content at every line that starts with the block
// marker, keeping the marker line with the block that follows it.
func splitBlocks(content string) []string {
	lines := strings.Split(content, "\n")
	var blocks []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		block := strings.TrimSpace(strings.Join(current, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		current = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, blockMarker) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return blocks
}

func parseBlock(block string) record.Record {
	return record.Record{
		EventDate:          firstMatch(reDate, block),
		Hostname:           firstMatch(reComputer, block),
		User:               firstMatch(reUser, block),
		ProcessID:          firstMatch(rePID, block),
		Image:              firstMatch(reImage, block),
		ProcessCommandLine: collapseWhitespace(firstMatch(reCmdLine, block)),
		Hashes:             firstMatch(reHashes, block),
	}
}

func firstMatch(re *regexp.Regexp, block string) string {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// collapseWhitespace folds internal runs of whitespace, including
// newlines from wrapped command lines, into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

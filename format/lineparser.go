package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/relex/logpipe/base"
)

// ParsedLine holds the fields recovered from one rendered line
type ParsedLine struct {
	Time      string // HH:MM:SS
	ThreadTag string
	Level     base.Level
	Logger    string
	File      string
	Line      int
	Payload   string
}

var lineRegexp = regexp.MustCompile(
	`^\[(\d\d:\d\d:\d\d)\]\[([^\]]+)\]\[(DEBUG|INFO|WARN|ERROR|FATAL)\]\[([^\]]+)\]\[([^:]+):(\d+)\]\t(.*)$`)

// ParseLine parses one rendered line without its trailing newline
//
// Used by tests and by the benchmark verifier; the hot path never parses
func ParseLine(line string) (ParsedLine, error) {
	groups := lineRegexp.FindStringSubmatch(line)
	if groups == nil {
		return ParsedLine{}, fmt.Errorf("malformed line: %q", line)
	}
	level, _ := base.ParseLevel(groups[3])
	lineNum, _ := strconv.Atoi(groups[6])
	return ParsedLine{
		Time:      groups[1],
		ThreadTag: groups[2],
		Level:     level,
		Logger:    groups[4],
		File:      groups[5],
		Line:      lineNum,
		Payload:   groups[7],
	}, nil
}

// SplitLines splits sink output into individual rendered lines, without trailing newlines
//
// Only usable when payloads contain no newline characters
func SplitLines(output []byte) []string {
	if len(output) == 0 {
		return nil
	}
	trimmed := strings.TrimSuffix(string(output), "\n")
	if len(trimmed) == 0 {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

package format

import (
	"fmt"
	"testing"
	"time"

	"github.com/relex/logpipe/base"
	"github.com/stretchr/testify/assert"
)

func TestLineFormatterRoundTrip(t *testing.T) {
	formatter := NewLineFormatter()
	record := &base.Record{
		Seq:       42,
		Level:     base.LevelWarn,
		Timestamp: time.Date(2022, 7, 8, 9, 5, 3, 0, time.Local).Unix(),
		ThreadTag: "g12",
		Logger:    "accesslog",
		File:      "server.go",
		Line:      137,
		Payload:   "client disconnected",
	}

	line := formatter.FormatRecord(record)
	assert.Equal(t, "[09:05:03][g12][WARN][accesslog][server.go:137]\tclient disconnected\n", string(line))

	parsed, err := ParseLine(string(line[:len(line)-1]))
	assert.Nil(t, err)
	assert.Equal(t, "09:05:03", parsed.Time)
	assert.Equal(t, "g12", parsed.ThreadTag)
	assert.Equal(t, base.LevelWarn, parsed.Level)
	assert.Equal(t, "accesslog", parsed.Logger)
	assert.Equal(t, "server.go", parsed.File)
	assert.Equal(t, 137, parsed.Line)
	assert.Equal(t, "client disconnected", parsed.Payload)
}

func TestLineFormatterZeroPadding(t *testing.T) {
	formatter := NewLineFormatter()
	record := &base.Record{
		Level:     base.LevelInfo,
		Timestamp: time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local).Unix(),
		ThreadTag: "g1",
		Logger:    "app",
		File:      "a.go",
		Line:      1,
		Payload:   "midnight",
	}
	assert.Equal(t, "[00:00:00][g1][INFO][app][a.go:1]\tmidnight\n", string(formatter.FormatRecord(record)))
}

func TestParseLineRejectsMalformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"plain text",
		"[09:05:03][g1][TRACE][app][a.go:1]\tx",
		"[09:05:03][g1][INFO][app][a.go]\tx",
	} {
		_, err := ParseLine(bad)
		assert.NotNil(t, err, fmt.Sprintf("input %q", bad))
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(nil))
	assert.Nil(t, SplitLines([]byte("\n")))
	assert.Equal(t, []string{"a", "b"}, SplitLines([]byte("a\nb\n")))
}

// Package format renders log records into the plain-text line format emitted to sinks
package format

import (
	"strconv"
	"time"

	"github.com/relex/logpipe/base"
)

// LineFormatter renders records as:
//
//	[HH:MM:SS][<thread_tag>][<LEVEL>][<logger_name>][<file>:<line>]\t<payload>\n
//
// Time is local, zero-padded. The payload is emitted verbatim; producers are responsible for
// sanitising embedded newlines if they care.
//
// A formatter may be shared by workers: FormatRecord allocates a fresh slice per record because
// the result is owned by the reorder map afterwards.
type LineFormatter struct{}

// NewLineFormatter creates a LineFormatter
func NewLineFormatter() *LineFormatter {
	return &LineFormatter{}
}

// FormatRecord renders one record into a new byte slice including the trailing newline
func (formatter *LineFormatter) FormatRecord(record *base.Record) []byte {
	line := make([]byte, 0, 40+len(record.ThreadTag)+len(record.Logger)+len(record.File)+len(record.Payload))

	hour, minute, second := time.Unix(record.Timestamp, 0).Local().Clock()
	line = append(line, '[')
	line = appendPadded2(line, hour)
	line = append(line, ':')
	line = appendPadded2(line, minute)
	line = append(line, ':')
	line = appendPadded2(line, second)
	line = append(line, ']', '[')
	line = append(line, record.ThreadTag...)
	line = append(line, ']', '[')
	line = append(line, record.Level.String()...)
	line = append(line, ']', '[')
	line = append(line, record.Logger...)
	line = append(line, ']', '[')
	line = append(line, record.File...)
	line = append(line, ':')
	line = strconv.AppendInt(line, int64(record.Line), 10)
	line = append(line, ']', '\t')
	line = append(line, record.Payload...)
	line = append(line, '\n')
	return line
}

func appendPadded2(line []byte, value int) []byte {
	if value < 10 {
		line = append(line, '0')
	}
	return strconv.AppendInt(line, int64(value), 10)
}

package facade

import (
	"bytes"
	"runtime"
)

// GoroutineTag returns an opaque tag identifying the calling goroutine, e.g. "g42"
//
// The tag is derived from the runtime stack header; it is meant for humans reading interleaved
// logs, not for correlation with runtime internals.
func GoroutineTag() string {
	header := make([]byte, 32)
	header = header[:runtime.Stack(header, false)]
	// header looks like "goroutine 42 [running]:"
	header = bytes.TrimPrefix(header, []byte("goroutine "))
	if end := bytes.IndexByte(header, ' '); end > 0 {
		return "g" + string(header[:end])
	}
	return "g0"
}

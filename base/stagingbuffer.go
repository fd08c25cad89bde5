package base

import (
	"github.com/relex/logpipe/defs"
)

// StagingBuffer is an append-only batch of records owned by producers until sealed
//
// There is at most one active staging buffer per pipeline; the dispatcher seals it by swapping in
// a fresh one and hands the sealed buffer to the formatter pool as a single task. Capacity is
// pre-reserved but advisory - a staging buffer is never sealed because of its size.
type StagingBuffer struct {
	records []*Record
}

// NewStagingBuffer creates an empty staging buffer with reserved capacity
func NewStagingBuffer() *StagingBuffer {
	return &StagingBuffer{
		records: make([]*Record, 0, defs.StagingBufferReserveLen),
	}
}

// Append adds a record to the end of the buffer
func (buf *StagingBuffer) Append(record *Record) {
	buf.records = append(buf.records, record)
}

// Len returns the number of buffered records
func (buf *StagingBuffer) Len() int {
	return len(buf.records)
}

// Records exposes the buffered records in append order for iteration by a formatter
func (buf *StagingBuffer) Records() []*Record {
	return buf.records
}

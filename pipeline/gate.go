// Package pipeline moves log records from producers through parallel formatters to a single
// ordered writer, never blocking producers on I/O
package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/relex/logpipe/base"
)

// producerGate is the single entry point for producers: one mutex guards both sequence allocation
// and the append to the active staging buffer, so staging order always equals Seq order
type producerGate struct {
	mutex   sync.Mutex
	active  *base.StagingBuffer
	nextSeq uint64 // atomic; fetch-add happens inside the mutex to keep Seq order == append order
	wake    chan struct{}
}

func newProducerGate() *producerGate {
	return &producerGate{
		active: base.NewStagingBuffer(),
		wake:   make(chan struct{}, 1),
	}
}

// push assigns the next sequence number, appends the record and wakes the dispatcher
//
// Returns immediately; the only possible contention is other producers in the same short
// critical section.
func (gate *producerGate) push(record *base.Record) {
	gate.mutex.Lock()
	record.Seq = atomic.AddUint64(&gate.nextSeq, 1) - 1
	gate.active.Append(record)
	gate.mutex.Unlock()
	gate.notify()
}

// notify wakes the dispatcher without ever blocking; a pending wake already covers this one
func (gate *producerGate) notify() {
	select {
	case gate.wake <- struct{}{}:
	default:
	}
}

// swapActive seals and returns the active staging buffer, leaving a fresh one in its place
//
// Returns nil if the active buffer is empty. Swapping is O(1) regardless of batch size.
func (gate *producerGate) swapActive() *base.StagingBuffer {
	gate.mutex.Lock()
	defer gate.mutex.Unlock()
	if gate.active.Len() == 0 {
		return nil
	}
	sealed := gate.active
	gate.active = base.NewStagingBuffer()
	return sealed
}

// allocatedSeqs returns how many sequence numbers have been handed out so far
func (gate *producerGate) allocatedSeqs() uint64 {
	return atomic.LoadUint64(&gate.nextSeq)
}

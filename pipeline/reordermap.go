package pipeline

import (
	"sync"
)

// reorderMap recovers the global sequence order from parallel formatters
//
// Invariants: for every seq < nextSeq no entry exists (already drained); for every seq >= nextSeq
// an entry exists if and only if some formatter has completed that record. nextSeq only grows.
//
// Because sealed buffers enter the task queue in dispatch order and each buffer is internally
// ordered, the seq domain of earlier tasks is strictly below that of later tasks; the writer
// never waits across tasks out of order.
type reorderMap struct {
	mutex   sync.Mutex
	entries map[uint64][]byte
	nextSeq uint64
	wake    chan struct{}
}

func newReorderMap() *reorderMap {
	return &reorderMap{
		entries: make(map[uint64][]byte, 1024),
		wake:    make(chan struct{}, 1),
	}
}

// insert deposits the formatted bytes of one record and wakes the writer
func (rmap *reorderMap) insert(seq uint64, line []byte) {
	rmap.mutex.Lock()
	rmap.entries[seq] = line
	rmap.mutex.Unlock()
	rmap.notify()
}

// notify wakes the writer without blocking
func (rmap *reorderMap) notify() {
	select {
	case rmap.wake <- struct{}{}:
	default:
	}
}

// drainContiguous appends all entries contiguous from nextSeq onto batch and erases them
func (rmap *reorderMap) drainContiguous(batch []byte) []byte {
	rmap.mutex.Lock()
	for {
		line, ok := rmap.entries[rmap.nextSeq]
		if !ok {
			break
		}
		batch = append(batch, line...)
		delete(rmap.entries, rmap.nextSeq)
		rmap.nextSeq++
	}
	rmap.mutex.Unlock()
	return batch
}

// isEmpty reports whether no formatted entries are pending
func (rmap *reorderMap) isEmpty() bool {
	rmap.mutex.Lock()
	defer rmap.mutex.Unlock()
	return len(rmap.entries) == 0
}

// nextSeqToWrite returns the first sequence number not yet drained
func (rmap *reorderMap) nextSeqToWrite() uint64 {
	rmap.mutex.Lock()
	defer rmap.mutex.Unlock()
	return rmap.nextSeq
}

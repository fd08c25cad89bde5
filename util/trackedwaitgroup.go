package util

import (
	"sync"
	"sync/atomic"
)

// TrackedWaitGroup is a WaitGroup whose current count can be peeked without waiting
//
// The formatter pool uses it both to join workers and to let the reorder writer observe drain
type TrackedWaitGroup struct {
	wg    sync.WaitGroup
	count int64
}

func (twg *TrackedWaitGroup) Add(delta int) {
	twg.wg.Add(delta)
	atomic.AddInt64(&twg.count, int64(delta))
}

func (twg *TrackedWaitGroup) Done() {
	atomic.AddInt64(&twg.count, -1)
	twg.wg.Done()
}

func (twg *TrackedWaitGroup) Peek() int {
	return int(atomic.LoadInt64(&twg.count))
}

func (twg *TrackedWaitGroup) Wait() {
	twg.wg.Wait()
}

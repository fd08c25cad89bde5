package sink

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
)

// MemorySink collects batches in memory, mainly for tests and the "null" benchmark output
//
// WriteDelay and InjectError simulate slow and failing sinks; a batch whose write fails is
// not recorded, as a real sink would have lost it too.
type MemorySink struct {
	mutex       sync.Mutex
	buffer      bytes.Buffer
	numBatches  int
	numWrites   int
	WriteDelay  time.Duration
	InjectError func(numWrite int) error // called with the 1-based write ordinal, nil to accept
}

// NewMemorySink creates an empty MemorySink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write records one batch after the configured delay
func (sink *MemorySink) Write(batch []byte) error {
	if sink.WriteDelay > 0 {
		time.Sleep(sink.WriteDelay)
	}
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.numWrites++
	if sink.InjectError != nil {
		if err := sink.InjectError(sink.numWrites); err != nil {
			return err
		}
	}
	sink.buffer.Write(batch)
	sink.numBatches++
	return nil
}

// Close does nothing
func (sink *MemorySink) Close() error {
	return nil
}

// Bytes returns a copy of everything recorded so far
func (sink *MemorySink) Bytes() []byte {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return append([]byte(nil), sink.buffer.Bytes()...)
}

// NumBatches returns how many batches have been recorded (excluding failed writes)
func (sink *MemorySink) NumBatches() int {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.numBatches
}

// NumWrites returns how many Write calls have been made (including failed ones)
func (sink *MemorySink) NumWrites() int {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.numWrites
}

// MemorySinkConfig defines the configuration of MemorySink
type MemorySinkConfig struct {
	Header     `yaml:",inline"`
	WriteDelay time.Duration `yaml:"-"` // for tests only, not unmarshalled
}

// NewSink creates a MemorySink
func (cfg *MemorySinkConfig) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.Sink, error) {
	sink := NewMemorySink()
	sink.WriteDelay = cfg.WriteDelay
	return sink, nil
}

// VerifyConfig verifies the configuration
func (cfg *MemorySinkConfig) VerifyConfig() error {
	if cfg.WriteDelay < 0 {
		return fmt.Errorf(".writeDelay cannot be negative: %s", cfg.WriteDelay)
	}
	return nil
}

// Package sink provides the bundled Sink implementations and their YAML configuration
package sink

import (
	"os"

	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
)

// StdoutSink writes batches to standard output
//
// Batches arrive already coalesced from the reorder writer, so each Write is one syscall.
type StdoutSink struct {
	logger logger.Logger
}

// NewStdoutSink creates a StdoutSink
func NewStdoutSink(parentLogger logger.Logger) *StdoutSink {
	return &StdoutSink{
		logger: parentLogger.WithField(defs.LabelComponent, "StdoutSink"),
	}
}

// Write writes one batch to stdout
func (sink *StdoutSink) Write(batch []byte) error {
	_, err := os.Stdout.Write(batch)
	return err
}

// Close does nothing; stdout is not ours to close
func (sink *StdoutSink) Close() error {
	return nil
}

// StdoutSinkConfig defines the configuration of StdoutSink
type StdoutSinkConfig struct {
	Header `yaml:",inline"`
}

// NewSink creates a StdoutSink
func (cfg *StdoutSinkConfig) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.Sink, error) {
	return NewStdoutSink(parentLogger), nil
}

// VerifyConfig verifies the configuration
func (cfg *StdoutSinkConfig) VerifyConfig() error {
	return nil
}

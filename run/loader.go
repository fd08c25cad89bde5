package run

import (
	"fmt"

	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/pipeline"
)

// Loader prepares everything derived from the config file without triggering anything automatically
type Loader struct {
	filepath string

	Config
	MetricFactory *base.MetricFactory
}

// NewLoaderFromConfigFile creates a Loader from a verified config file
func NewLoaderFromConfigFile(filepath string, metricPrefix string) (*Loader, error) {
	config, configErr := LoadConfigFile(filepath)
	if configErr != nil {
		return nil, configErr
	}
	return &Loader{
		filepath:      filepath,
		Config:        *config,
		MetricFactory: base.NewMetricFactory(metricPrefix, nil, nil),
	}, nil
}

// StartPipeline builds the configured sinks and starts the pipeline on top of them
//
// Returns the pipeline, the sinks for closing after Stop, or an error with nothing running
// and already-created sinks closed.
func (loader *Loader) StartPipeline(parentLogger logger.Logger) (*pipeline.Pipeline, []base.Sink, error) {
	sinks := make([]base.Sink, 0, len(loader.Sinks))
	closeAll := func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				parentLogger.Warnf("failed to close sink: %s", err.Error())
			}
		}
	}
	for i, holder := range loader.Sinks {
		s, serr := holder.Value.NewSink(parentLogger, loader.MetricFactory)
		if serr != nil {
			closeAll()
			return nil, nil, fmt.Errorf("sinks[%d]: %w", i, serr)
		}
		sinks = append(sinks, s)
	}
	pipe, perr := loader.StartPipelineWithSinks(parentLogger, sinks)
	if perr != nil {
		closeAll()
		return nil, nil, perr
	}
	return pipe, sinks, nil
}

// StartPipelineWithSinks starts the pipeline on top of the given sinks instead of the configured
// ones, e.g. to collect output in memory for benchmarks and tests
func (loader *Loader) StartPipelineWithSinks(parentLogger logger.Logger, sinks []base.Sink) (*pipeline.Pipeline, error) {
	return pipeline.NewPipeline(parentLogger, loader.Pipeline, sinks, loader.MetricFactory)
}

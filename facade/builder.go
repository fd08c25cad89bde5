package facade

import (
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/pipeline"
	"github.com/relex/logpipe/sink"
)

// Builder assembles an AsyncLogger owning a freshly started pipeline
//
// Defaults: name "default", DEBUG minimum level, a single stdout sink, pipeline defaults.
type Builder struct {
	name          string
	minLevel      base.Level
	config        pipeline.Config
	sinks         []base.Sink
	metricFactory *base.MetricFactory
}

// NewBuilder creates a Builder with defaults
func NewBuilder() *Builder {
	return &Builder{
		name:     "default",
		minLevel: base.LevelDebug,
	}
}

// WithName sets the logger name
func (builder *Builder) WithName(name string) *Builder {
	builder.name = name
	return builder
}

// WithMinLevel sets the minimum level; records below it are dropped by the facade
func (builder *Builder) WithMinLevel(minLevel base.Level) *Builder {
	builder.minLevel = minLevel
	return builder
}

// WithPipelineConfig sets the pipeline construction parameters
func (builder *Builder) WithPipelineConfig(config pipeline.Config) *Builder {
	builder.config = config
	return builder
}

// WithSink appends one sink; sinks receive batches in registration order
func (builder *Builder) WithSink(s base.Sink) *Builder {
	builder.sinks = append(builder.sinks, s)
	return builder
}

// WithMetricFactory sets the metric factory; a private one is created by default
func (builder *Builder) WithMetricFactory(metricFactory *base.MetricFactory) *Builder {
	builder.metricFactory = metricFactory
	return builder
}

// Build starts the pipeline and returns the logger, or an error without anything running
func (builder *Builder) Build(parentLogger logger.Logger) (*AsyncLogger, error) {
	sinks := builder.sinks
	if len(sinks) == 0 {
		sinks = []base.Sink{sink.NewStdoutSink(parentLogger)}
	}
	metricFactory := builder.metricFactory
	if metricFactory == nil {
		metricFactory = base.NewMetricFactory("logpipe_", []string{"logger"}, []string{builder.name})
	}
	pipe, perr := pipeline.NewPipeline(parentLogger, builder.config, sinks, metricFactory)
	if perr != nil {
		return nil, perr
	}
	return NewAsyncLogger(builder.name, builder.minLevel, pipe), nil
}

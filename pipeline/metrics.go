package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
)

// pipelineMetrics carries the counters of all stages
//
// The two per-record hot-path counters are striped xsync counters exposed to Prometheus through
// read functions; everything touched at batch granularity uses plain Prometheus counters.
type pipelineMetrics struct {
	recordsPushed     *xsync.Counter // incremented by arbitrary producer goroutines
	recordsRejected   *xsync.Counter // pushes observed after stop
	recordsFormatted  *xsync.Counter // incremented by all formatters
	batchesDispatched prometheus.Counter
	batchesWritten    prometheus.Counter
	bytesWritten      prometheus.Counter
	sinkWriteErrors   *prometheus.CounterVec
	formattersActive  prometheus.Gauge
}

func newPipelineMetrics(metricFactory *base.MetricFactory) *pipelineMetrics {
	metrics := &pipelineMetrics{
		recordsPushed:     &xsync.Counter{},
		recordsRejected:   &xsync.Counter{},
		recordsFormatted:  &xsync.Counter{},
		batchesDispatched: metricFactory.AddOrGetCounter("batches_dispatched_total", "Numbers of sealed staging buffers handed to the formatter pool", nil, nil),
		batchesWritten:    metricFactory.AddOrGetCounter("batches_written_total", "Numbers of coalesced batches written to sinks", nil, nil),
		bytesWritten:      metricFactory.AddOrGetCounter("bytes_written_total", "Numbers of bytes written to each sink", nil, nil),
		sinkWriteErrors:   metricFactory.AddOrGetCounterVec("sink_write_errors_total", "Numbers of suppressed sink write failures", []string{defs.LabelSink}),
		formattersActive:  metricFactory.AddOrGetGauge("formatters_active", "Numbers of live formatter workers", nil, nil),
	}
	metricFactory.AddCounterFunc("records_pushed_total", "Numbers of records accepted by Push",
		func() float64 { return float64(metrics.recordsPushed.Value()) })
	metricFactory.AddCounterFunc("records_rejected_total", "Numbers of Push calls after stop",
		func() float64 { return float64(metrics.recordsRejected.Value()) })
	metricFactory.AddCounterFunc("records_formatted_total", "Numbers of records rendered by the formatter pool",
		func() float64 { return float64(metrics.recordsFormatted.Value()) })
	return metrics
}

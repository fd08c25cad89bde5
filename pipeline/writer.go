package pipeline

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
	"github.com/relex/logpipe/util"
)

// reorderWriter is the single task draining the reorder map in strictly increasing sequence
// order, coalescing contiguous entries into one batch and writing it to every sink
//
// The bounded wait is defensive: even if a wake signal is missed, progress and shutdown are
// guaranteed within defs.WriterWakeTimeout.
type reorderWriter struct {
	logger     logger.Logger
	rmap       *reorderMap
	sinks      []base.Sink
	sinkErrors []prometheus.Counter // per sink, same order
	workers    *util.TrackedWaitGroup
	stopped    *channels.SignalAwaitable
	metrics    *pipelineMetrics
}

func newReorderWriter(parentLogger logger.Logger, rmap *reorderMap, sinks []base.Sink,
	workers *util.TrackedWaitGroup, metrics *pipelineMetrics) *reorderWriter {
	sinkErrors := make([]prometheus.Counter, len(sinks))
	for i := range sinks {
		sinkErrors[i] = metrics.sinkWriteErrors.WithLabelValues(strconv.Itoa(i))
	}
	return &reorderWriter{
		logger:     parentLogger.WithField(defs.LabelComponent, "ReorderWriter"),
		rmap:       rmap,
		sinks:      sinks,
		sinkErrors: sinkErrors,
		workers:    workers,
		stopped:    channels.NewSignalAwaitable(),
		metrics:    metrics,
	}
}

// Launch starts the writer loop in background
func (writer *reorderWriter) Launch() {
	go writer.run()
}

// Stopped returns an Awaitable which is signaled when the writer has exited
func (writer *reorderWriter) Stopped() channels.Awaitable {
	return writer.stopped
}

func (writer *reorderWriter) run() {
	defer writer.stopped.Signal()
	writer.logger.Info("start main loop")
	batch := make([]byte, 0, defs.WriterBatchReserveBytes)
	timer := time.NewTimer(defs.WriterWakeTimeout)
	for {
		batch = writer.rmap.drainContiguous(batch[:0])
		if len(batch) > 0 {
			writer.flush(batch)
			continue
		}
		if writer.workers.Peek() == 0 && writer.rmap.isEmpty() {
			break
		}
		util.ResetTimer(timer, defs.WriterWakeTimeout)
		select {
		case <-writer.rmap.wake:
		case <-timer.C:
		}
	}
	timer.Stop()
	writer.logger.Info("end main loop after formatter drain")
}

// flush writes one contiguous batch to every sink in registration order
//
// Sink errors are counted and otherwise suppressed: surfacing them through the logging system
// itself would recurse.
func (writer *reorderWriter) flush(batch []byte) {
	for i, sink := range writer.sinks {
		if err := sink.Write(batch); err != nil {
			writer.sinkErrors[i].Inc()
		}
	}
	writer.metrics.batchesWritten.Inc()
	writer.metrics.bytesWritten.Add(float64(len(batch)))
}

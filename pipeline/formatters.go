package pipeline

import (
	"strconv"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/backup"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
	"github.com/relex/logpipe/format"
	"github.com/relex/logpipe/util"
)

// formatterWorker renders records from sealed buffers into bytes and deposits them in the
// reorder map; records within one batch may be processed in any order, the map recovers it
type formatterWorker struct {
	logger    logger.Logger
	input     <-chan *base.StagingBuffer
	formatter *format.LineFormatter
	backupFwd *backup.Forwarder // nil if backup is not configured
	rmap      *reorderMap
	workers   *util.TrackedWaitGroup
	stopped   *channels.SignalAwaitable
	metrics   *pipelineMetrics
}

func newFormatterWorker(parentLogger logger.Logger, num int, input <-chan *base.StagingBuffer,
	backupFwd *backup.Forwarder, rmap *reorderMap, workers *util.TrackedWaitGroup, metrics *pipelineMetrics) *formatterWorker {
	return &formatterWorker{
		logger:    parentLogger.WithField(defs.LabelComponent, "Formatter").WithField(defs.LabelPart, strconv.Itoa(num)),
		input:     input,
		formatter: format.NewLineFormatter(),
		backupFwd: backupFwd,
		rmap:      rmap,
		workers:   workers,
		stopped:   channels.NewSignalAwaitable(),
		metrics:   metrics,
	}
}

// Launch starts the worker in background; the worker must already be counted in workers
func (worker *formatterWorker) Launch() {
	go worker.run()
}

// Stopped returns an Awaitable which is signaled when the worker has exited
func (worker *formatterWorker) Stopped() channels.Awaitable {
	return worker.stopped
}

func (worker *formatterWorker) run() {
	defer worker.stopped.Signal()
	worker.metrics.formattersActive.Add(1)
	worker.logger.Info("start main loop")
	for task := range worker.input {
		worker.formatBatch(task)
	}
	worker.logger.Info("end main loop on task queue close")
	worker.metrics.formattersActive.Sub(1)
	// the terminal decrement must precede the final wake so the writer can observe drain
	worker.workers.Done()
	worker.rmap.notify()
}

func (worker *formatterWorker) formatBatch(task *base.StagingBuffer) {
	for _, record := range task.Records() {
		line := worker.formatter.FormatRecord(record)
		if record.Level >= base.LevelError && worker.backupFwd != nil {
			worker.backupFwd.TrySubmit(record, line)
		}
		worker.rmap.insert(record.Seq, line)
		worker.metrics.recordsFormatted.Inc()
	}
}

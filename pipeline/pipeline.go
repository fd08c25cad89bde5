package pipeline

import (
	"fmt"
	"sync/atomic"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/backup"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
	"github.com/relex/logpipe/util"
)

// Pipeline is the asynchronous ordered logging pipeline
//
// Producers call Push from arbitrary goroutines; the pipeline formats records in parallel and
// writes them to every sink in strict sequence order. Stop drains everything accepted before
// shutdown; see the stage types for the individual contracts.
//
// The sequence counter lives inside the Pipeline instance so that independent pipelines (e.g. in
// tests) each get their own monotonic domain.
type Pipeline struct {
	logger           logger.Logger
	gate             *producerGate
	disp             *dispatcher
	formatterWorkers util.TrackedWaitGroup
	formattersEnded  []channels.Awaitable
	writer           *reorderWriter
	backupFwd        *backup.Forwarder // nil if not configured
	rmap             *reorderMap
	sinks            []base.Sink
	stopFlag         uint32
	stopRequest      *channels.SignalAwaitable
	stopOnce         util.RunOnce
	metrics          *pipelineMetrics
}

// NewPipeline creates and starts a pipeline writing to the given sinks
//
// The construction either starts every stage or fails without leaving anything running;
// the sinks remain owned by the caller and are not closed by Stop.
func NewPipeline(parentLogger logger.Logger, cfg Config, sinks []base.Sink, metricFactory *base.MetricFactory) (*Pipeline, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("no sink configured")
	}

	plogger := parentLogger.WithField(defs.LabelComponent, "Pipeline")
	metrics := newPipelineMetrics(metricFactory)

	var backupFwd *backup.Forwarder
	if cfg.Backup != nil {
		fwd, berr := cfg.Backup.NewForwarder(plogger, metricFactory)
		if berr != nil {
			return nil, fmt.Errorf("backup: %w", berr)
		}
		backupFwd = fwd
	}

	gate := newProducerGate()
	rmap := newReorderMap()
	taskChan := make(chan *base.StagingBuffer, cfg.taskQueueCapacity())

	pipeline := &Pipeline{
		logger:      plogger,
		gate:        gate,
		backupFwd:   backupFwd,
		rmap:        rmap,
		sinks:       sinks,
		stopRequest: channels.NewSignalAwaitable(),
		metrics:     metrics,
	}
	pipeline.stopOnce = util.NewRunOnce(pipeline.shutdown)
	pipeline.disp = newDispatcher(plogger, gate, taskChan, pipeline.stopRequest, metrics)

	numFormatters := cfg.numFormatters()
	pipeline.formattersEnded = make([]channels.Awaitable, numFormatters)
	formatters := make([]*formatterWorker, numFormatters)
	for i := 0; i < numFormatters; i++ {
		worker := newFormatterWorker(plogger, i, taskChan, backupFwd, rmap, &pipeline.formatterWorkers, metrics)
		formatters[i] = worker
		pipeline.formattersEnded[i] = worker.Stopped()
	}
	pipeline.writer = newReorderWriter(plogger, rmap, sinks, &pipeline.formatterWorkers, metrics)

	// everything that can fail has; launch all stages
	if backupFwd != nil {
		backupFwd.Launch()
	}
	pipeline.formatterWorkers.Add(numFormatters)
	for _, worker := range formatters {
		worker.Launch()
	}
	pipeline.disp.Launch()
	pipeline.writer.Launch()
	plogger.Infof("started with %d formatters and %d sinks", numFormatters, len(sinks))
	return pipeline, nil
}

// Push hands one record to the pipeline and returns immediately
//
// The record must be fully populated except Seq. After Stop has been observed the call returns
// silently and the record is discarded; the producer is not informed.
func (pipeline *Pipeline) Push(record *base.Record) {
	if atomic.LoadUint32(&pipeline.stopFlag) != 0 {
		pipeline.metrics.recordsRejected.Inc()
		return
	}
	pipeline.gate.push(record)
	pipeline.metrics.recordsPushed.Inc()
}

// Stop shuts the pipeline down, draining every record accepted before the stop became
// observable; idempotent, only the first call runs
//
// Join order matters: dispatcher first (it seals the final staging buffer and closes the task
// queue), then the backup forwarder (its queue is drained while formatters may still submit
// into the void - submissions after its shutdown are dropped), then formatters, then the writer.
func (pipeline *Pipeline) Stop() {
	pipeline.stopOnce()
}

func (pipeline *Pipeline) shutdown() {
	atomic.StoreUint32(&pipeline.stopFlag, 1)
	pipeline.stopRequest.Signal()
	pipeline.disp.Stopped().WaitForever()
	if pipeline.backupFwd != nil {
		pipeline.backupFwd.Shutdown()
	}
	pipeline.formatterWorkers.Wait()
	channels.AllAwaitables(pipeline.formattersEnded...).WaitForever()
	pipeline.writer.Stopped().WaitForever()
	pipeline.logger.Info("stopped")
}

// NextSeqToWrite returns the first sequence number not yet written to sinks, for tests and the
// benchmark verifier; equals the total record count after a drained shutdown
func (pipeline *Pipeline) NextSeqToWrite() uint64 {
	return pipeline.rmap.nextSeqToWrite()
}

// AllocatedSeqs returns how many sequence numbers have been allocated so far
func (pipeline *Pipeline) AllocatedSeqs() uint64 {
	return pipeline.gate.allocatedSeqs()
}

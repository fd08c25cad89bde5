package backup

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/gobwas/glob"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
	"github.com/relex/logpipe/util"
)

// Forwarder queues formatted ERROR+ lines and sends them to the configured receiver in background
//
// Everything is best-effort: submissions are dropped when the queue is full or the forwarder is
// shutting down, a line is discarded when all connection attempts fail, and a line whose write
// fails is discarded without another attempt.
// The pipeline never blocks on or learns about backup failures.
type Forwarder struct {
	logger       logger.Logger
	settings     forwarderSettings
	queue        chan submission
	stopRequest  *channels.SignalAwaitable
	workersEnded []channels.Awaitable
	stopping     uint32
	shutdownOnce util.RunOnce

	metricSubmitted  prometheus.Counter
	metricDropped    prometheus.Counter
	metricSent       prometheus.Counter
	metricSendErrors prometheus.Counter
}

type forwarderSettings struct {
	address       string
	tag           string
	secret        string
	numWorkers    int
	queueCapacity int
	matcher       glob.Glob // nil to forward all
}

type submission struct {
	timestamp int64
	line      []byte
}

func newForwarder(parentLogger logger.Logger, settings forwarderSettings, metricFactory *base.MetricFactory) *Forwarder {
	fwd := &Forwarder{
		logger:       parentLogger.WithField(defs.LabelComponent, "BackupForwarder"),
		settings:     settings,
		queue:        make(chan submission, settings.queueCapacity),
		stopRequest:  channels.NewSignalAwaitable(),
		workersEnded: make([]channels.Awaitable, 0, settings.numWorkers),

		metricSubmitted:  metricFactory.AddOrGetCounter("backup_submitted_total", "Numbers of lines accepted into the backup queue", nil, nil),
		metricDropped:    metricFactory.AddOrGetCounter("backup_dropped_total", "Numbers of lines dropped due to full queue or shutdown", nil, nil),
		metricSent:       metricFactory.AddOrGetCounter("backup_sent_total", "Numbers of lines sent to the backup receiver", nil, nil),
		metricSendErrors: metricFactory.AddOrGetCounter("backup_send_errors_total", "Numbers of failed backup sends", nil, nil),
	}
	fwd.shutdownOnce = util.NewRunOnce(fwd.shutdown)
	return fwd
}

// Launch starts the sender workers in background
func (fwd *Forwarder) Launch() {
	for i := 0; i < fwd.settings.numWorkers; i++ {
		worker := newForwarderWorker(fwd, strconv.Itoa(i))
		fwd.workersEnded = append(fwd.workersEnded, worker.stopped)
		go worker.run()
	}
}

// TrySubmit offers one formatted line for forwarding without ever blocking
//
// The line must not be modified afterwards; the queue and the reorder map may share it.
func (fwd *Forwarder) TrySubmit(record *base.Record, line []byte) {
	if fwd.settings.matcher != nil && !fwd.settings.matcher.Match(record.Logger) {
		return
	}
	if atomic.LoadUint32(&fwd.stopping) != 0 {
		fwd.metricDropped.Inc()
		return
	}
	select {
	case fwd.queue <- submission{timestamp: record.Timestamp, line: line}:
		fwd.metricSubmitted.Inc()
	default:
		fwd.metricDropped.Inc()
	}
}

// Shutdown stops accepting submissions, waits for workers to drain the queue and ends them
//
// Idempotent; bounded by defs.BackupDrainTimeout.
func (fwd *Forwarder) Shutdown() {
	fwd.shutdownOnce()
}

func (fwd *Forwarder) shutdown() {
	atomic.StoreUint32(&fwd.stopping, 1)
	fwd.stopRequest.Signal()
	if !channels.AllAwaitables(fwd.workersEnded...).Wait(defs.BackupDrainTimeout) {
		fwd.logger.Errorf("timeout draining backup queue, %d lines abandoned", len(fwd.queue))
	}
	fwd.logger.Info("stopped")
}

// PendingLines returns the current queue length, for tests
func (fwd *Forwarder) PendingLines() int {
	return len(fwd.queue)
}

func (fwd *Forwarder) String() string {
	return fmt.Sprintf("backup forwarder to %s (workers=%d)", fwd.settings.address, fwd.settings.numWorkers)
}

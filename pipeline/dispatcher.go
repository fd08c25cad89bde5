package pipeline

import (
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
)

// dispatcher seals the active staging buffer on wake and hands it to the formatter pool as one task
//
// A dedicated dispatcher keeps producers off the hand-off path: the bounded task queue may block
// the dispatcher when formatters fall behind, but never a producer.
type dispatcher struct {
	logger      logger.Logger
	gate        *producerGate
	taskChan    chan<- *base.StagingBuffer
	stopRequest channels.Awaitable
	stopped     *channels.SignalAwaitable
	metrics     *pipelineMetrics
}

func newDispatcher(parentLogger logger.Logger, gate *producerGate, taskChan chan<- *base.StagingBuffer,
	stopRequest channels.Awaitable, metrics *pipelineMetrics) *dispatcher {
	return &dispatcher{
		logger:      parentLogger.WithField(defs.LabelComponent, "Dispatcher"),
		gate:        gate,
		taskChan:    taskChan,
		stopRequest: stopRequest,
		stopped:     channels.NewSignalAwaitable(),
		metrics:     metrics,
	}
}

// Launch starts the dispatcher loop in background
func (disp *dispatcher) Launch() {
	go disp.run()
}

// Stopped returns an Awaitable which is signaled when the dispatcher has exited
func (disp *dispatcher) Stopped() channels.Awaitable {
	return disp.stopped
}

func (disp *dispatcher) run() {
	defer disp.stopped.Signal()
	disp.logger.Info("start main loop")
	for {
		select {
		case <-disp.gate.wake:
			disp.sealAndEnqueue()
		case <-disp.stopRequest.Channel():
			// the final wake: producers observing stop no longer append, so one last seal
			// captures everything accepted before shutdown
			disp.sealAndEnqueue()
			close(disp.taskChan)
			disp.logger.Info("end main loop on stop request")
			return
		}
	}
}

func (disp *dispatcher) sealAndEnqueue() {
	sealed := disp.gate.swapActive()
	if sealed == nil {
		return
	}
	disp.taskChan <- sealed
	disp.metrics.batchesDispatched.Inc()
}

package backup

import (
	"bytes"
	"net"
	"time"

	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/defs"
	"github.com/vmihailenco/msgpack/v4"
)

// forwarderWorker holds one upstream connection and sends queued lines one message at a time
type forwarderWorker struct {
	logger       logger.Logger
	fwd          *Forwarder
	conn         net.Conn
	encodeBuffer *bytes.Buffer
	encoder      *msgpack.Encoder
	stopped      *channels.SignalAwaitable
}

func newForwarderWorker(fwd *Forwarder, num string) *forwarderWorker {
	encodeBuffer := bytes.NewBuffer(make([]byte, 0, 1024))
	return &forwarderWorker{
		logger:       fwd.logger.WithField(defs.LabelPart, "worker-"+num),
		fwd:          fwd,
		conn:         nil,
		encodeBuffer: encodeBuffer,
		encoder:      msgpack.NewEncoder(encodeBuffer),
		stopped:      channels.NewSignalAwaitable(),
	}
}

func (worker *forwarderWorker) run() {
	defer worker.stopped.Signal()
	defer worker.closeConnection()
	worker.logger.Info("started")
	for {
		select {
		case sub := <-worker.fwd.queue:
			worker.send(sub)
		case <-worker.fwd.stopRequest.Channel():
			worker.drainQueue()
			worker.logger.Info("stopped")
			return
		}
	}
}

// drainQueue sends what is left in the queue after shutdown was requested
func (worker *forwarderWorker) drainQueue() {
	for {
		select {
		case sub := <-worker.fwd.queue:
			worker.send(sub)
		default:
			return
		}
	}
}

func (worker *forwarderWorker) send(sub submission) {
	if !worker.ensureConnection() {
		worker.fwd.metricSendErrors.Inc()
		return
	}
	packet, eerr := worker.encode(sub)
	if eerr != nil {
		worker.logger.Errorf("failed to encode message: %s", eerr.Error())
		worker.fwd.metricSendErrors.Inc()
		return
	}
	if err := worker.conn.SetWriteDeadline(time.Now().Add(defs.BackupSendTimeout)); err != nil {
		worker.logger.Warnf("failed to set write timeout: %s", err.Error())
	}
	if _, err := worker.conn.Write(packet); err != nil {
		worker.logger.Warnf("failed to send message: %s", err.Error())
		worker.closeConnection()
		worker.fwd.metricSendErrors.Inc()
		return
	}
	worker.fwd.metricSent.Inc()
}

// encode packs one line as a single-entry Forward message
func (worker *forwarderWorker) encode(sub submission) ([]byte, error) {
	worker.encodeBuffer.Reset()
	message := forwardprotocol.Message{
		Tag: worker.fwd.settings.tag,
		Entries: []forwardprotocol.EventEntry{
			{
				Time:   forwardprotocol.EventTime{Time: time.Unix(sub.timestamp, 0)},
				Record: map[string]interface{}{"message": string(sub.line)},
			},
		},
		Option: forwardprotocol.TransportOption{
			Size: 1,
		},
	}
	if err := worker.encoder.Encode(message); err != nil {
		return nil, err
	}
	return worker.encodeBuffer.Bytes(), nil
}

func (worker *forwarderWorker) ensureConnection() bool {
	if worker.conn != nil {
		return true
	}
	for attempt := 1; ; attempt++ {
		conn, derr := net.DialTimeout("tcp", worker.fwd.settings.address, defs.BackupConnectionTimeout)
		if derr == nil {
			if len(worker.fwd.settings.secret) > 0 {
				success, reason, herr := forwardprotocol.DoClientHandshake(conn, worker.fwd.settings.secret, defs.BackupConnectionTimeout)
				if herr != nil || !success {
					worker.logger.Warnf("handshake rejected (%s): %v", reason, herr)
					conn.Close()
					return false
				}
			}
			worker.conn = conn
			return true
		}
		worker.logger.Warnf("failed to connect %s (attempt %d): %s", worker.fwd.settings.address, attempt, derr.Error())
		if attempt >= defs.BackupConnectionRetries {
			return false
		}
		time.Sleep(defs.BackupRetryInterval)
	}
}

func (worker *forwarderWorker) closeConnection() {
	if worker.conn != nil {
		worker.conn.Close()
		worker.conn = nil
	}
}

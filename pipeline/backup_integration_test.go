package pipeline

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/logpipe/backup"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
	"github.com/relex/logpipe/format"
	"github.com/relex/logpipe/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v4"
)

func init() {
	defs.EnableTestMode()
}

func TestPipelineForwardsErrorsToBackup(t *testing.T) {
	listener, lerr := net.Listen("tcp", "localhost:0")
	require.Nil(t, lerr)
	defer listener.Close()
	received := make(chan forwardprotocol.Message, 100)
	go func() {
		for {
			conn, aerr := listener.Accept()
			if aerr != nil {
				return
			}
			go func() {
				decoder := msgpack.NewDecoder(conn)
				for {
					var message forwardprotocol.Message
					if err := decoder.Decode(&message); err != nil {
						conn.Close()
						return
					}
					received <- message
				}
			}()
		}
	}()

	msink := sink.NewMemorySink()
	pipe := newTestPipeline(t, Config{
		Formatters: 2,
		Backup: &backup.Config{
			Address: listener.Addr().String(),
			Tag:     "test.pipeline",
		},
	}, msink)

	pipe.Push(makeTestRecord("calm before"))
	errorRecord := makeTestRecord("disk on fire")
	errorRecord.Level = base.LevelError
	pipe.Push(errorRecord)
	fatalRecord := makeTestRecord("rubble only")
	fatalRecord.Level = base.LevelFatal
	pipe.Push(fatalRecord)
	// the backup forwarder is shut down before the formatters are joined and drops later
	// submissions, so let all three records be formatted before stopping
	deadline := time.Now().Add(defs.TestReadTimeout)
	for pipe.NextSeqToWrite() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	pipe.Stop()

	// all three records reach the sink in order regardless of backup
	lines := format.SplitLines(msink.Bytes())
	require.Equal(t, 3, len(lines))
	assert.Contains(t, lines[0], "calm before")
	assert.Contains(t, lines[1], "disk on fire")
	assert.Contains(t, lines[2], "rubble only")

	// the ERROR and FATAL lines are forwarded, rendered in the same line format
	forwarded := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		select {
		case message := <-received:
			assert.Equal(t, "test.pipeline", message.Tag)
			require.Equal(t, 1, len(message.Entries))
			forwarded = append(forwarded, message.Entries[0].Record["message"].(string))
		case <-time.After(defs.TestReadTimeout):
			t.Fatal("timeout waiting for backup messages")
		}
	}
	joined := strings.Join(forwarded, "")
	assert.Contains(t, joined, "disk on fire")
	assert.Contains(t, joined, "rubble only")
}

package defs

import (
	"time"
)

var (
	// StagingBufferReserveLen defines the pre-allocated capacity of each staging buffer in records
	//
	// Capacity is advisory only; staging buffers grow beyond it and are never sealed by size
	StagingBufferReserveLen = 1024

	// TaskQueueCapacity defines the capacity of the sealed-buffer queue between the dispatcher and formatters
	//
	// The dispatcher blocks when the queue is full, which in turn delays sealing, not producers
	TaskQueueCapacity = 64

	// WriterWakeTimeout defines the upper bound of the reorder writer's wait for new contiguous entries
	//
	// It guarantees shutdown wake and liveness even if a wake signal is missed
	WriterWakeTimeout = 100 * time.Millisecond

	// WriterBatchReserveBytes defines the pre-allocated capacity of the writer's coalescing buffer
	WriterBatchReserveBytes = 4 * 1024

	// IntermediateChannelTimeout defines a timeout for intermediate channel reads and writes
	//
	// No pipeline stage applies it: the task queue between the dispatcher and formatters is sent to
	// and received from without a timeout
	IntermediateChannelTimeout = 60 * time.Second
)

var (
	// BackupQueueCapacity defines the capacity of the backup forwarder's submit queue; submissions are dropped when full
	BackupQueueCapacity = 1024

	// BackupConnectionTimeout is for establishing a TCP connection to the backup receiver
	BackupConnectionTimeout = 10 * time.Second

	// BackupConnectionRetries is how many connection attempts in total a backup worker makes before giving up on a line
	BackupConnectionRetries = 5

	// BackupRetryInterval is the delay between backup connection attempts
	BackupRetryInterval = 1 * time.Second

	// BackupSendTimeout is for sending one backup message
	BackupSendTimeout = 10 * time.Second

	// BackupDrainTimeout is the duration to wait for backup workers to drain their queue at shutdown
	BackupDrainTimeout = 30 * time.Second
)

// For testing and experiments
const (
	TestReadTimeout = 5 * time.Second
)

// EnableTestMode turns on test mode with very short timeouts and minimal retry delay
func EnableTestMode() {
	BackupConnectionTimeout = 1 * time.Second
	BackupRetryInterval = 50 * time.Millisecond
	BackupSendTimeout = 1 * time.Second
	BackupDrainTimeout = 5 * time.Second
}

package base

import (
	"github.com/relex/gotils/channels"
)

// PipelineWorker represents a background worker in a stage of the pipeline, e.g. the dispatcher or a formatter
type PipelineWorker interface {
	Launch()
	Stopped() channels.Awaitable
}

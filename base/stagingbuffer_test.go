package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStagingBuffer(t *testing.T) {
	buf := NewStagingBuffer()
	assert.Equal(t, 0, buf.Len())

	first := &Record{Seq: 0, Payload: "first"}
	second := &Record{Seq: 1, Payload: "second"}
	buf.Append(first)
	buf.Append(second)

	assert.Equal(t, 2, buf.Len())
	assert.Same(t, first, buf.Records()[0])
	assert.Same(t, second, buf.Records()[1])
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunOnce(t *testing.T) {
	numCalls := 0
	once := NewRunOnce(func() {
		numCalls++
	})
	assert.True(t, once())
	assert.False(t, once())
	assert.False(t, once())
	assert.Equal(t, 1, numCalls)
}

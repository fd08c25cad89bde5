package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReorderMapContiguousDrain(t *testing.T) {
	rmap := newReorderMap()
	assert.True(t, rmap.isEmpty())

	// out-of-order inserts; drain must stop at the hole
	rmap.insert(1, []byte("b\n"))
	rmap.insert(2, []byte("c\n"))
	batch := rmap.drainContiguous(nil)
	assert.Equal(t, 0, len(batch))
	assert.Equal(t, uint64(0), rmap.nextSeqToWrite())

	rmap.insert(0, []byte("a\n"))
	batch = rmap.drainContiguous(batch)
	assert.Equal(t, "a\nb\nc\n", string(batch))
	assert.Equal(t, uint64(3), rmap.nextSeqToWrite())
	assert.True(t, rmap.isEmpty())

	rmap.insert(4, []byte("e\n"))
	batch = rmap.drainContiguous(batch[:0])
	assert.Equal(t, 0, len(batch))
	rmap.insert(3, []byte("d\n"))
	batch = rmap.drainContiguous(batch[:0])
	assert.Equal(t, "d\ne\n", string(batch))
	assert.Equal(t, uint64(5), rmap.nextSeqToWrite())
}

func TestReorderMapWake(t *testing.T) {
	rmap := newReorderMap()
	rmap.insert(0, []byte("x"))
	select {
	case <-rmap.wake:
	default:
		t.Fatal("insert did not wake the writer")
	}
	// repeated notifies collapse into the buffered slot without blocking
	rmap.notify()
	rmap.notify()
}

package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{Rate: 48000, Channels: 2, SampleBytes: 2}

func TestBufferAccounting(t *testing.T) {
	b := NewBuffer(16, testParams)
	assert.Equal(t, 16, b.Size())
	assert.Equal(t, 0, b.Available())
	assert.Equal(t, 16, b.Free())

	n := b.WriteFrom([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 8)
	require.Equal(t, 8, n)
	require.NoError(t, b.Produce(8))
	assert.Equal(t, 8, b.Available())
	assert.Equal(t, 8, b.Free())
	assert.Equal(t, uint64(8), b.Produced())

	require.NoError(t, b.Consume(4))
	assert.Equal(t, 4, b.Available())
	assert.Equal(t, uint64(4), b.Consumed())

	assert.ErrorIs(t, b.Consume(5), ErrBounds)
	assert.ErrorIs(t, b.Produce(13), ErrBounds)
	assert.ErrorIs(t, b.Produce(-1), ErrBounds)
}

func TestBufferFrames(t *testing.T) {
	b := NewBuffer(64, testParams)
	sink := NewBuffer(64, testParams)

	b.WriteFrom(make([]byte, 22), 22)
	require.NoError(t, b.Produce(22))
	// 22 bytes is 5 whole frames at 4 bytes per frame
	assert.Equal(t, 5, b.AvailFrames())
	assert.Equal(t, 16, sink.FreeFrames())
	assert.Equal(t, 5, b.AvailableFrames(sink))

	sink.WriteFrom(make([]byte, 58), 58)
	require.NoError(t, sink.Produce(58))
	// sink free space now bounds the aligned count
	assert.Equal(t, 1, b.AvailableFrames(sink))
}

func TestBufferChunkHints(t *testing.T) {
	b := NewBuffer(64, testParams)
	assert.Equal(t, 4, b.MinAvailable())
	assert.Equal(t, 4, b.MinFree())

	b.SetChunkSizes(24, 12)
	assert.Equal(t, 24, b.MinAvailable())
	assert.Equal(t, 12, b.MinFree())
}

func TestBufferZeroKeepsCounters(t *testing.T) {
	b := NewBuffer(8, testParams)
	b.WriteFrom([]byte{1, 2, 3, 4}, 4)
	require.NoError(t, b.Produce(4))

	b.Zero()
	assert.Equal(t, 0, b.Available())
	assert.Equal(t, uint64(4), b.Produced())

	b.WriteFrom([]byte{9}, 1)
	require.NoError(t, b.Produce(1))
	b.Reset()
	assert.Equal(t, uint64(0), b.Produced())
	assert.Equal(t, uint64(0), b.Consumed())
}

func TestBufferResize(t *testing.T) {
	b := NewBuffer(8, testParams)
	b.WriteFrom([]byte{1, 2, 3}, 3)
	require.NoError(t, b.Produce(3))

	require.NoError(t, b.Resize(32))
	assert.Equal(t, 32, b.Size())
	assert.Equal(t, 0, b.Available())

	assert.ErrorIs(t, b.Resize(0), ErrBounds)
}

package shadow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/davidrau-renesas-opensource/sof/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueueSizing(t *testing.T) {
	q, err := New(64, 256, ModeLocal)
	require.NoError(t, err)
	// two portions of the larger chunk
	assert.Equal(t, 512, q.Size())
	assert.Equal(t, 256, q.Source().MinAvailable())
	assert.Equal(t, 256, q.Sink().MinFree())

	_, err = New(0, 0, ModeLocal)
	assert.ErrorIs(t, err, ErrSize)
}

func TestQueueMode(t *testing.T) {
	q, err := New(16, 16, ModeShared)
	require.NoError(t, err)
	assert.Equal(t, ModeShared, q.Mode())
}

func TestQueueWriteReadWrap(t *testing.T) {
	q, err := New(8, 8, ModeLocal)
	require.NoError(t, err)
	sink := q.Sink()
	src := q.Source()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	n, err := sink.Write(data)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	// drain a little, then refill across the wrap point
	require.NoError(t, src.Consume(6))
	n, err = sink.Write([]byte{11, 12, 13, 14, 15, 16})
	require.NoError(t, err)
	require.Equal(t, 6, n)

	out := make([]byte, 10)
	require.Equal(t, 10, src.Peek(out))
	assert.Equal(t, []byte{7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, out)
}

func TestQueueShortWriteWhenFull(t *testing.T) {
	q, err := New(4, 4, ModeLocal)
	require.NoError(t, err)
	sink := q.Sink()

	n, err := sink.Write(make([]byte, 12))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = sink.Write([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueueProcessedCounters(t *testing.T) {
	q, err := New(16, 16, ModeLocal)
	require.NoError(t, err)
	sink := q.Sink()
	src := q.Source()

	sink.Write(make([]byte, 12))
	src.Consume(5)
	assert.Equal(t, uint64(12), sink.Processed())
	assert.Equal(t, uint64(5), src.Processed())

	sink.ResetProcessed()
	src.ResetProcessed()
	assert.Equal(t, uint64(0), sink.Processed())
	assert.Equal(t, uint64(0), src.Processed())
}

func TestQueueClose(t *testing.T) {
	q, err := New(16, 16, ModeLocal)
	require.NoError(t, err)
	require.False(t, q.Closed())

	q.Close()
	assert.True(t, q.Closed())
	assert.Equal(t, 0, q.Source().Available())
}

// One producer and one consumer in independent contexts must hand every byte
// over exactly once and in order.
func TestQueueCrossDomain(t *testing.T) {
	q, err := New(64, 64, ModeShared)
	require.NoError(t, err)
	q.SetParams(stream.Params{Rate: 48000, Channels: 2, SampleBytes: 2})

	const total = 4096
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sink := q.Sink()
		sent := 0
		for sent < total {
			chunk := make([]byte, 48)
			for i := range chunk {
				chunk[i] = byte((sent + i) % 251)
			}
			n, err := sink.Write(chunk)
			if err != nil {
				return
			}
			sent += n
		}
	}()

	src := q.Source()
	got := make([]byte, 0, total)
	buf := make([]byte, 96)
	for len(got) < total {
		n := src.Peek(buf)
		if n == 0 {
			continue
		}
		got = append(got, buf[:n]...)
		require.NoError(t, src.Consume(n))
	}
	wg.Wait()

	for i, b := range got {
		require.Equal(t, byte(i%251), b, "byte %d out of order", i)
	}
}

package stream

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// advance moves both cursors by n so the next transfer starts mid-ring.
func advance(t *testing.T, b *Buffer, n int) {
	t.Helper()
	require.Equal(t, n, b.WriteFrom(make([]byte, n), n))
	require.NoError(t, b.Produce(n))
	require.NoError(t, b.Consume(n))
}

func pattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

// Any transfer that crosses the ring edge must equal the same transfer done
// through a linear buffer, for every cursor offset.
func TestWrapCopyMatchesLinear(t *testing.T) {
	const size = 32
	for offset := 0; offset < size; offset++ {
		for n := 0; n <= size; n++ {
			b := NewBuffer(size, testParams)
			advance(t, b, offset)

			src := pattern(n)
			require.Equal(t, n, b.WriteFrom(src, n))
			require.NoError(t, b.Produce(n))

			dst := make([]byte, n)
			require.Equal(t, n, b.PeekTo(dst, n))
			assert.Equal(t, src, dst, "offset %d size %d", offset, n)
		}
	}
}

func TestPeekToBounds(t *testing.T) {
	b := NewBuffer(16, testParams)
	b.WriteFrom(pattern(10), 10)
	require.NoError(t, b.Produce(10))

	dst := make([]byte, 4)
	// bounded by dst length
	assert.Equal(t, 4, b.PeekTo(dst, 10))
	// bounded by available bytes
	assert.Equal(t, 10, b.PeekTo(make([]byte, 16), 16))
	// peek does not consume
	assert.Equal(t, 10, b.Available())
}

func TestWriteFromBounds(t *testing.T) {
	b := NewBuffer(8, testParams)
	assert.Equal(t, 8, b.WriteFrom(pattern(12), 12))
	require.NoError(t, b.Produce(8))
	assert.Equal(t, 0, b.WriteFrom(pattern(4), 4))
}

func TestWriteZeroWraps(t *testing.T) {
	b := NewBuffer(8, testParams)
	advance(t, b, 6)

	assert.Equal(t, 8, b.WriteZero(8))
	require.NoError(t, b.Produce(8))
	dst := make([]byte, 8)
	b.PeekTo(dst, 8)
	assert.Equal(t, make([]byte, 8), dst)
}

func TestRingToRingCopy(t *testing.T) {
	for trial := 0; trial < 200; trial++ {
		rnd := rand.New(rand.NewSource(int64(trial)))
		src := NewBuffer(24, testParams)
		dst := NewBuffer(24, testParams)
		advance(t, src, rnd.Intn(24))
		advance(t, dst, rnd.Intn(24))

		data := pattern(rnd.Intn(25))
		require.Equal(t, len(data), src.WriteFrom(data, len(data)))
		require.NoError(t, src.Produce(len(data)))

		n := Copy(dst, src, len(data))
		require.Equal(t, len(data), n)
		// cursors are the caller's job
		assert.Equal(t, len(data), src.Available())
		require.NoError(t, dst.Produce(n))
		require.NoError(t, src.Consume(n))

		out := make([]byte, n)
		require.Equal(t, n, dst.PeekTo(out, n))
		assert.Equal(t, data, out, "trial %d", trial)
	}
}

func TestRingToRingCopyBoundedByFree(t *testing.T) {
	src := NewBuffer(16, testParams)
	dst := NewBuffer(16, testParams)
	src.WriteFrom(pattern(12), 12)
	require.NoError(t, src.Produce(12))
	dst.WriteFrom(make([]byte, 10), 10)
	require.NoError(t, dst.Produce(10))

	assert.Equal(t, 6, Copy(dst, src, 12))
}

func TestSourceToSink(t *testing.T) {
	src := NewBuffer(2048, testParams)
	dst := NewBuffer(2048, testParams)
	data := pattern(1300) // forces more than one scratch chunk
	src.WriteFrom(data, len(data))
	require.NoError(t, src.Produce(len(data)))

	moved, err := SourceToSink(src.Source(), dst.Sink(), len(data))
	require.NoError(t, err)
	require.Equal(t, len(data), moved)
	assert.Equal(t, 0, src.Available())
	assert.Equal(t, len(data), dst.Available())

	out := make([]byte, len(data))
	dst.PeekTo(out, len(out))
	assert.Equal(t, data, out)
}

func TestFacetProcessedCounters(t *testing.T) {
	b := NewBuffer(64, testParams)
	sink := b.Sink()
	src := b.Source()

	n, err := sink.Write(pattern(20))
	require.NoError(t, err)
	require.Equal(t, 20, n)
	assert.Equal(t, uint64(20), sink.Processed())

	require.NoError(t, src.Consume(8))
	assert.Equal(t, uint64(8), src.Processed())

	src.ResetProcessed()
	sink.ResetProcessed()
	assert.Equal(t, uint64(0), src.Processed())
	assert.Equal(t, uint64(0), sink.Processed())
}

package stream

import (
	"errors"
	"fmt"
)

// ErrBounds is returned when a produce or consume request exceeds what the
// buffer currently holds.
var ErrBounds = errors.New("stream: request exceeds buffer bounds")

// Buffer is a fixed-capacity byte ring with read/write cursors and monotonic
// produce/consume counters. It is owned by the pipeline topology and borrowed
// by components for the lifetime of a connection.
//
// A buffer is accessed from a single scheduling context. Components running
// in another domain go through a shadow queue instead of touching the buffer
// directly.
type Buffer struct {
	data  []byte
	r, w  int
	avail int

	produced uint64
	consumed uint64

	// processed bytes since the last facet reset, tracked separately for
	// the source and sink ends.
	procConsumed uint64
	procProduced uint64

	params Params

	// chunk size hints used when the buffer is shadowed by a cross-domain
	// queue. Zero means one frame.
	minAvail int
	minFree  int
}

// NewBuffer returns a buffer of the given capacity in bytes.
func NewBuffer(size int, params Params) *Buffer {
	return &Buffer{
		data:   make([]byte, size),
		params: params,
	}
}

// Size returns the buffer capacity in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Available returns the number of unconsumed bytes.
func (b *Buffer) Available() int { return b.avail }

// Free returns the number of bytes that can be produced before the buffer is
// full.
func (b *Buffer) Free() int { return len(b.data) - b.avail }

// ReadCursor returns the current read position.
func (b *Buffer) ReadCursor() int { return b.r }

// WriteCursor returns the current write position.
func (b *Buffer) WriteCursor() int { return b.w }

// BytesWithoutWrap returns the contiguous run length from the cursor to the
// end of the underlying storage.
func (b *Buffer) BytesWithoutWrap(cursor int) int {
	return len(b.data) - cursor
}

// Params returns the negotiated stream parameters.
func (b *Buffer) Params() Params { return b.params }

// SetParams replaces the negotiated stream parameters.
func (b *Buffer) SetParams(p Params) { b.params = p }

// SetChunkSizes records the declared input/output chunk sizes of the module
// bound to this buffer. Shadow queues are sized from these hints.
func (b *Buffer) SetChunkSizes(minAvail, minFree int) {
	b.minAvail = minAvail
	b.minFree = minFree
}

// MinAvailable returns the minimum number of bytes the bound module needs
// available before it can run. Defaults to one frame.
func (b *Buffer) MinAvailable() int {
	if b.minAvail > 0 {
		return b.minAvail
	}
	return b.params.FrameBytes()
}

// MinFree returns the minimum free space the bound module needs to produce
// into. Defaults to one frame.
func (b *Buffer) MinFree() int {
	if b.minFree > 0 {
		return b.minFree
	}
	return b.params.FrameBytes()
}

// Produce advances the write cursor by n bytes and updates the counters.
func (b *Buffer) Produce(n int) error {
	if n < 0 || n > b.Free() {
		return fmt.Errorf("%w: produce %d with %d free", ErrBounds, n, b.Free())
	}
	b.w = b.wrap(b.w + n)
	b.avail += n
	b.produced += uint64(n)
	b.procProduced += uint64(n)
	return nil
}

// Consume advances the read cursor by n bytes and updates the counters.
func (b *Buffer) Consume(n int) error {
	if n < 0 || n > b.avail {
		return fmt.Errorf("%w: consume %d with %d available", ErrBounds, n, b.avail)
	}
	b.r = b.wrap(b.r + n)
	b.avail -= n
	b.consumed += uint64(n)
	b.procConsumed += uint64(n)
	return nil
}

// Produced returns the monotonic total of bytes ever produced.
func (b *Buffer) Produced() uint64 { return b.produced }

// Consumed returns the monotonic total of bytes ever consumed.
func (b *Buffer) Consumed() uint64 { return b.consumed }

// AvailableFrames returns the number of whole frames available in b that also
// fit into the free space of sink, frame-aligned on b's parameters.
func (b *Buffer) AvailableFrames(sink *Buffer) int {
	fb := b.params.FrameBytes()
	if fb == 0 {
		return 0
	}
	frames := b.avail / fb
	if free := sink.Free() / fb; free < frames {
		frames = free
	}
	return frames
}

// AvailFrames returns the number of whole frames currently available.
func (b *Buffer) AvailFrames() int {
	if fb := b.params.FrameBytes(); fb > 0 {
		return b.avail / fb
	}
	return 0
}

// FreeFrames returns the number of whole frames that fit in the free space.
func (b *Buffer) FreeFrames() int {
	if fb := b.params.FrameBytes(); fb > 0 {
		return b.Free() / fb
	}
	return 0
}

// Resize replaces the backing storage with a ring of the given capacity.
// The contents are dropped and the cursors reset.
func (b *Buffer) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: resize to %d", ErrBounds, size)
	}
	if size != len(b.data) {
		b.data = make([]byte, size)
	}
	b.Zero()
	return nil
}

// Zero clears the buffer contents and resets the cursors. The monotonic
// counters are kept.
func (b *Buffer) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
	b.r, b.w, b.avail = 0, 0, 0
}

// Reset zeroes the contents and all counters.
func (b *Buffer) Reset() {
	b.Zero()
	b.produced, b.consumed = 0, 0
	b.procProduced, b.procConsumed = 0, 0
}

func (b *Buffer) wrap(pos int) int {
	if pos >= len(b.data) {
		return pos - len(b.data)
	}
	return pos
}

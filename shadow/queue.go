// Package shadow provides the cross-domain double buffer that stands in for
// a pipeline stream buffer when the module bound to it executes in a
// different scheduling domain. A queue exposes the same source/sink facets
// as a stream buffer but is safe for one producer and one consumer running
// in independent contexts; all ordering goes through the queue's own state,
// never through shared state outside it.
package shadow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Mode selects the memory placement of the queue.
type Mode int

const (
	// ModeLocal places the queue in core-local memory.
	ModeLocal Mode = iota
	// ModeShared places the queue in memory visible to all cores, used when
	// the component itself is flagged shared.
	ModeShared
)

// ErrSize is returned when a queue is created with no usable data portion.
var ErrSize = errors.New("shadow: invalid queue size")

// Queue is a cross-domain double buffer. It holds two full data portions of
// the larger of the shadowed port's input/output chunk, so the feeding side
// can refill one portion while the module drains the other.
type Queue struct {
	mu   sync.Mutex
	data []byte
	r, w int
	used int

	params stream.Params
	mode   Mode

	procRead    uint64
	procWritten uint64

	closed bool
}

// New creates a queue sized to the shadowed port's minimum available and
// minimum free bytes. The backing ring holds twice the larger of the two.
func New(minAvailable, minFree int, mode Mode) (*Queue, error) {
	portion := minAvailable
	if minFree > portion {
		portion = minFree
	}
	if portion <= 0 {
		return nil, fmt.Errorf("%w: available %d free %d", ErrSize, minAvailable, minFree)
	}
	return &Queue{
		data: make([]byte, 2*portion),
		mode: mode,
	}, nil
}

// Mode returns the memory placement mode.
func (q *Queue) Mode() Mode { return q.mode }

// Size returns the ring capacity in bytes.
func (q *Queue) Size() int { return len(q.data) }

// SetParams stores a copy of the stream parameters negotiated for the port
// this queue shadows.
func (q *Queue) SetParams(p stream.Params) {
	q.mu.Lock()
	q.params = p
	q.mu.Unlock()
}

// Close releases the queue. Further access panics on nil data rather than
// silently touching freed state.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.data = nil
	q.used = 0
	q.mu.Unlock()
}

// Closed reports whether the queue has been released.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Source returns the facet the consumer side reads from.
func (q *Queue) Source() stream.Source { return queueSource{q} }

// Sink returns the facet the producer side writes into.
func (q *Queue) Sink() stream.Sink { return queueSink{q} }

func (q *Queue) available() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}

func (q *Queue) free() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data) - q.used
}

func (q *Queue) peek(dst []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.used
	if n > len(dst) {
		n = len(dst)
	}
	if n <= 0 {
		return 0
	}
	head := len(q.data) - q.r
	if head > n {
		head = n
	}
	copy(dst[:head], q.data[q.r:q.r+head])
	if tail := n - head; tail > 0 {
		copy(dst[head:n], q.data[:tail])
	}
	return n
}

func (q *Queue) consume(n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n < 0 || n > q.used {
		return fmt.Errorf("%w: consume %d with %d available", stream.ErrBounds, n, q.used)
	}
	q.r = q.wrap(q.r + n)
	q.used -= n
	q.procRead += uint64(n)
	return nil
}

func (q *Queue) write(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.data) - q.used
	if n > len(p) {
		n = len(p)
	}
	if n <= 0 {
		return 0, nil
	}
	head := len(q.data) - q.w
	if head > n {
		head = n
	}
	copy(q.data[q.w:q.w+head], p[:head])
	if tail := n - head; tail > 0 {
		copy(q.data[:tail], p[head:n])
	}
	q.w = q.wrap(q.w + n)
	q.used += n
	q.procWritten += uint64(n)
	return n, nil
}

func (q *Queue) wrap(pos int) int {
	if pos >= len(q.data) {
		return pos - len(q.data)
	}
	return pos
}

type queueSource struct{ q *Queue }

func (f queueSource) Params() stream.Params { return f.q.params }
func (f queueSource) Available() int        { return f.q.available() }
func (f queueSource) MinAvailable() int     { return len(f.q.data) / 2 }
func (f queueSource) Peek(dst []byte) int   { return f.q.peek(dst) }
func (f queueSource) Consume(n int) error   { return f.q.consume(n) }

func (f queueSource) Processed() uint64 {
	f.q.mu.Lock()
	defer f.q.mu.Unlock()
	return f.q.procRead
}

func (f queueSource) ResetProcessed() {
	f.q.mu.Lock()
	f.q.procRead = 0
	f.q.mu.Unlock()
}

type queueSink struct{ q *Queue }

func (f queueSink) Params() stream.Params       { return f.q.params }
func (f queueSink) Free() int                   { return f.q.free() }
func (f queueSink) MinFree() int                { return len(f.q.data) / 2 }
func (f queueSink) Write(p []byte) (int, error) { return f.q.write(p) }

func (f queueSink) Processed() uint64 {
	f.q.mu.Lock()
	defer f.q.mu.Unlock()
	return f.q.procWritten
}

func (f queueSink) ResetProcessed() {
	f.q.mu.Lock()
	f.q.procWritten = 0
	f.q.mu.Unlock()
}

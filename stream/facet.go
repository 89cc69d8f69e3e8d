package stream

// Source is the read end of a stream handed to sink/source shaped modules.
// It is satisfied by the source facet of a Buffer and by the read end of a
// shadow queue.
type Source interface {
	Params() Params
	// Available returns the number of unconsumed bytes.
	Available() int
	// MinAvailable returns the declared input chunk size for this port.
	MinAvailable() int
	// Peek copies up to len(dst) bytes from the read position without
	// consuming them and returns the number of bytes copied.
	Peek(dst []byte) int
	// Consume releases n bytes.
	Consume(n int) error
	// Processed returns the bytes consumed since the last ResetProcessed.
	Processed() uint64
	// ResetProcessed zeroes the per-period processed counter.
	ResetProcessed()
}

// Sink is the write end of a stream handed to sink/source shaped modules.
type Sink interface {
	Params() Params
	// Free returns the number of bytes that can still be produced.
	Free() int
	// MinFree returns the declared output chunk size for this port.
	MinFree() int
	// Write copies p into the stream and produces it. Short writes happen
	// when free space runs out.
	Write(p []byte) (int, error)
	// Processed returns the bytes produced since the last ResetProcessed.
	Processed() uint64
	// ResetProcessed zeroes the per-period processed counter.
	ResetProcessed()
}

type sourceFacet struct{ b *Buffer }

type sinkFacet struct{ b *Buffer }

// Source returns the read facet of the buffer.
func (b *Buffer) Source() Source { return sourceFacet{b} }

// Sink returns the write facet of the buffer.
func (b *Buffer) Sink() Sink { return sinkFacet{b} }

func (f sourceFacet) Params() Params      { return f.b.params }
func (f sourceFacet) Available() int      { return f.b.Available() }
func (f sourceFacet) MinAvailable() int   { return f.b.MinAvailable() }
func (f sourceFacet) Peek(dst []byte) int { return f.b.PeekTo(dst, len(dst)) }
func (f sourceFacet) Consume(n int) error { return f.b.Consume(n) }
func (f sourceFacet) Processed() uint64   { return f.b.procConsumed }
func (f sourceFacet) ResetProcessed()     { f.b.procConsumed = 0 }

func (f sinkFacet) Params() Params    { return f.b.params }
func (f sinkFacet) Free() int         { return f.b.Free() }
func (f sinkFacet) MinFree() int      { return f.b.MinFree() }
func (f sinkFacet) Processed() uint64 { return f.b.procProduced }
func (f sinkFacet) ResetProcessed()   { f.b.procProduced = 0 }

func (f sinkFacet) Write(p []byte) (int, error) {
	n := f.b.WriteFrom(p, len(p))
	if n > 0 {
		if err := f.b.Produce(n); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// SourceToSink moves up to n bytes from src to sink through a bounded stack
// scratch, so the transfer stays allocation-free on the period path.
func SourceToSink(src Source, sink Sink, n int) (int, error) {
	var scratch [512]byte
	moved := 0
	for moved < n {
		chunk := n - moved
		if chunk > len(scratch) {
			chunk = len(scratch)
		}
		read := src.Peek(scratch[:chunk])
		if read == 0 {
			break
		}
		wrote, err := sink.Write(scratch[:read])
		if err != nil {
			return moved, err
		}
		if err := src.Consume(wrote); err != nil {
			return moved, err
		}
		moved += wrote
		if wrote < read {
			break
		}
	}
	return moved, nil
}

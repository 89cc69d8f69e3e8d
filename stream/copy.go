package stream

// The two-segment wrap-around copy is the single correctness-critical
// primitive of the copy engine. Every transfer between a ring and a linear
// staging buffer is split into a head run, bounded by the contiguous bytes
// before the ring wraps, and an optional tail run starting at the ring's
// logical beginning. Both runs are additionally bounded by the peer's
// capacity so neither side can be overrun.

// PeekTo copies up to n bytes from the read cursor into dst without
// consuming them. The copy is bounded by dst's length and by the bytes
// available. It returns the number of bytes copied.
func (b *Buffer) PeekTo(dst []byte, n int) int {
	if n > b.avail {
		n = b.avail
	}
	if n > len(dst) {
		n = len(dst)
	}
	if n <= 0 {
		return 0
	}
	head := b.BytesWithoutWrap(b.r)
	if head > n {
		head = n
	}
	copy(dst[:head], b.data[b.r:b.r+head])
	if tail := n - head; tail > 0 {
		copy(dst[head:n], b.data[:tail])
	}
	return n
}

// WriteFrom copies up to n bytes from src into the ring at the write cursor
// without producing them. The copy is bounded by src's length and by the
// free space. It returns the number of bytes copied.
func (b *Buffer) WriteFrom(src []byte, n int) int {
	if n > b.Free() {
		n = b.Free()
	}
	if n > len(src) {
		n = len(src)
	}
	if n <= 0 {
		return 0
	}
	head := b.BytesWithoutWrap(b.w)
	if head > n {
		head = n
	}
	copy(b.data[b.w:b.w+head], src[:head])
	if tail := n - head; tail > 0 {
		copy(b.data[:tail], src[head:n])
	}
	return n
}

// WriteZero zero-fills up to n bytes at the write cursor without producing
// them. It returns the number of bytes zeroed.
func (b *Buffer) WriteZero(n int) int {
	if n > b.Free() {
		n = b.Free()
	}
	if n <= 0 {
		return 0
	}
	head := b.BytesWithoutWrap(b.w)
	if head > n {
		head = n
	}
	zero(b.data[b.w : b.w+head])
	if tail := n - head; tail > 0 {
		zero(b.data[:tail])
	}
	return n
}

// Copy moves up to n bytes from the read cursor of src to the write cursor
// of dst, honouring wrap-around on both rings. Cursors are not advanced; the
// caller consumes and produces the returned count.
func Copy(dst, src *Buffer, n int) int {
	if n > src.avail {
		n = src.avail
	}
	if free := dst.Free(); n > free {
		n = free
	}
	copied := 0
	r, w := src.r, dst.w
	for copied < n {
		run := n - copied
		if h := src.BytesWithoutWrap(r); h < run {
			run = h
		}
		if h := dst.BytesWithoutWrap(w); h < run {
			run = h
		}
		copy(dst.data[w:w+run], src.data[r:r+run])
		r = src.wrap(r + run)
		w = dst.wrap(w + run)
		copied += run
	}
	return copied
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}

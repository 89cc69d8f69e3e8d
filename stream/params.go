// Package stream provides the fixed-capacity circular stream buffer that
// carries PCM and compressed audio between pipeline stages, together with the
// negotiated stream parameters and the narrow source/sink access facets
// consumed by processing modules.
package stream

// Params describe the signal negotiated for one connection point.
type Params struct {
	// Rate is the sample rate in Hz.
	Rate int
	// Channels is the number of interleaved channels.
	Channels int
	// SampleBytes is the size of one sample container in bytes.
	SampleBytes int
}

// FrameBytes returns the size of one frame: one sample across all channels.
func (p Params) FrameBytes() int {
	return p.Channels * p.SampleBytes
}

// PeriodBytes returns the number of bytes moved in one scheduling period of
// the given frame count.
func (p Params) PeriodBytes(frames int) int {
	return frames * p.FrameBytes()
}

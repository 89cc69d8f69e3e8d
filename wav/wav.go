// Package wav provides file-backed host endpoints: a Source module that
// decodes a wav file into the pipeline and a Sink module that encodes the
// pipeline output into a wav file. Both are sink/source shaped, so they own
// their pacing and work directly on the stream handles.
package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// ErrUnsupportedBitDepth is returned for anything but 16 and 32 bit PCM.
var ErrUnsupportedBitDepth = errors.New("wav: only 16 and 32 bit depth is supported")

// Format reads the stream parameters from a wav file header.
func Format(path string) (stream.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return stream.Params{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return stream.Params{}, fmt.Errorf("wav: %s is not a valid wav file", path)
	}
	if dec.BitDepth != 16 && dec.BitDepth != 32 {
		return stream.Params{}, ErrUnsupportedBitDepth
	}
	return stream.Params{
		Rate:        int(dec.SampleRate),
		Channels:    dec.Format().NumChannels,
		SampleBytes: int(dec.BitDepth) / 8,
	}, nil
}

// Source decodes a wav file into its sink stream, one free chunk per period.
type Source struct {
	path    string
	file    *os.File
	dec     *wav.Decoder
	ib      *audio.IntBuffer
	scratch []byte
	frames  uint64
	drained bool
}

// NewSource creates a wav source for path. The file is opened at prepare.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Shape returns the sink/source shape.
func (*Source) Shape() module.Shape { return module.ShapeSinkSource }

// Describe declares a pure producer.
func (*Source) Describe() module.Descriptor { return module.Descriptor{MaxSinks: 1} }

// Prepare opens and validates the file. It is idempotent so a second
// pipeline prepare reuses the open decoder.
func (s *Source) Prepare(sources []stream.Source, sinks []stream.Sink) error {
	if s.dec != nil {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return fmt.Errorf("wav: %s is not a valid wav file", s.path)
	}
	if dec.BitDepth != 16 && dec.BitDepth != 32 {
		f.Close()
		return ErrUnsupportedBitDepth
	}
	if len(sinks) > 0 {
		p := sinks[0].Params()
		if p.Rate != int(dec.SampleRate) || p.Channels != dec.Format().NumChannels ||
			p.SampleBytes != int(dec.BitDepth)/8 {
			f.Close()
			return fmt.Errorf("%w: stream %v does not match file format %d/%d/%d",
				comp.ErrInvalidConfig, p, dec.SampleRate, dec.Format().NumChannels, dec.BitDepth)
		}
	}
	s.file = f
	s.dec = dec
	s.ib = &audio.IntBuffer{
		Format:         dec.Format(),
		SourceBitDepth: int(dec.BitDepth),
	}
	s.drained = false
	return nil
}

// ProcessSinkSource fills the sink's free space with decoded samples. An
// exhausted file reports no data so the pipeline keeps running on silence.
func (s *Source) ProcessSinkSource(sources []stream.Source, sinks []stream.Sink) error {
	if s.dec == nil || len(sinks) == 0 {
		return fmt.Errorf("%w: wav source not prepared", comp.ErrInvalidConfig)
	}
	if s.drained {
		return comp.ErrNoData
	}
	sink := sinks[0]
	params := sink.Params()
	frames := sink.Free() / params.FrameBytes()
	if frames == 0 {
		return comp.ErrNoSpace
	}

	samples := frames * params.Channels
	if cap(s.ib.Data) < samples {
		s.ib.Data = make([]int, samples)
	}
	s.ib.Data = s.ib.Data[:samples]
	n, err := s.dec.PCMBuffer(s.ib)
	if err != nil {
		return err
	}
	if n == 0 {
		s.drained = true
		return comp.ErrNoData
	}

	bytes := n * params.SampleBytes
	if cap(s.scratch) < bytes {
		s.scratch = make([]byte, bytes)
	}
	buf := s.scratch[:bytes]
	intsToPCM(buf, s.ib.Data[:n], params.SampleBytes)
	wrote, err := sink.Write(buf)
	if err != nil {
		return err
	}
	s.frames += uint64(wrote / params.FrameBytes())
	return nil
}

// Drained reports whether the file has been fully decoded.
func (s *Source) Drained() bool { return s.drained }

// Position returns the number of frames pushed into the pipeline.
func (s *Source) Position() uint64 { return s.frames }

// Reset closes the decoder so the next prepare starts over from the file
// header.
func (s *Source) Reset() error {
	err := s.close()
	s.frames = 0
	s.drained = false
	return err
}

// Free releases the file.
func (s *Source) Free() error { return s.close() }

func (s *Source) close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.dec = nil
	return err
}

// Sink encodes its source stream into a wav file.
type Sink struct {
	path    string
	file    *os.File
	enc     *wav.Encoder
	ib      *audio.IntBuffer
	scratch []byte
	frames  uint64
}

// NewSink creates a wav sink for path. The file is created at prepare and
// finalized at reset or free.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// Shape returns the sink/source shape.
func (*Sink) Shape() module.Shape { return module.ShapeSinkSource }

// Describe declares a pure consumer.
func (*Sink) Describe() module.Descriptor { return module.Descriptor{MaxSources: 1} }

// Prepare creates the file and the encoder from the source stream format.
func (s *Sink) Prepare(sources []stream.Source, sinks []stream.Sink) error {
	if s.enc != nil {
		return nil
	}
	if len(sources) == 0 {
		return fmt.Errorf("%w: wav sink without a source stream", comp.ErrInvalidConfig)
	}
	p := sources[0].Params()
	if p.SampleBytes != 2 && p.SampleBytes != 4 {
		return ErrUnsupportedBitDepth
	}
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	s.file = f
	s.enc = wav.NewEncoder(f, p.Rate, p.SampleBytes*8, p.Channels, 1)
	s.ib = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: p.Channels, SampleRate: p.Rate},
		SourceBitDepth: p.SampleBytes * 8,
	}
	return nil
}

// ProcessSinkSource drains the source stream into the encoder.
func (s *Sink) ProcessSinkSource(sources []stream.Source, sinks []stream.Sink) error {
	if s.enc == nil || len(sources) == 0 {
		return fmt.Errorf("%w: wav sink not prepared", comp.ErrInvalidConfig)
	}
	src := sources[0]
	params := src.Params()
	bytes := src.Available() / params.FrameBytes() * params.FrameBytes()
	if bytes == 0 {
		return comp.ErrNoData
	}

	if cap(s.scratch) < bytes {
		s.scratch = make([]byte, bytes)
	}
	buf := s.scratch[:bytes]
	n := src.Peek(buf)
	buf = buf[:n]

	samples := n / params.SampleBytes
	if cap(s.ib.Data) < samples {
		s.ib.Data = make([]int, samples)
	}
	s.ib.Data = s.ib.Data[:samples]
	pcmToInts(s.ib.Data, buf, params.SampleBytes)
	if err := s.enc.Write(s.ib); err != nil {
		return err
	}
	if err := src.Consume(n); err != nil {
		return err
	}
	s.frames += uint64(n / params.FrameBytes())
	return nil
}

// Position returns the number of frames written to the file.
func (s *Sink) Position() uint64 { return s.frames }

// Reset finalizes the file so the next prepare starts a fresh one.
func (s *Sink) Reset() error {
	err := s.close()
	s.frames = 0
	return err
}

// Free finalizes and releases the file.
func (s *Sink) Free() error { return s.close() }

func (s *Sink) close() error {
	if s.enc == nil {
		return nil
	}
	err := s.enc.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	s.enc = nil
	s.file = nil
	return err
}

// intsToPCM packs samples into little-endian PCM at the given width.
func intsToPCM(dst []byte, src []int, width int) {
	switch width {
	case 2:
		for i, v := range src {
			dst[2*i] = byte(v)
			dst[2*i+1] = byte(v >> 8)
		}
	case 4:
		for i, v := range src {
			dst[4*i] = byte(v)
			dst[4*i+1] = byte(v >> 8)
			dst[4*i+2] = byte(v >> 16)
			dst[4*i+3] = byte(v >> 24)
		}
	}
}

// pcmToInts unpacks little-endian PCM into samples at the given width.
func pcmToInts(dst []int, src []byte, width int) {
	switch width {
	case 2:
		for i := range dst {
			dst[i] = int(int16(uint16(src[2*i]) | uint16(src[2*i+1])<<8))
		}
	case 4:
		for i := range dst {
			dst[i] = int(int32(uint32(src[4*i]) | uint32(src[4*i+1])<<8 |
				uint32(src[4*i+2])<<16 | uint32(src[4*i+3])<<24))
		}
	}
}

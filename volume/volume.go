// Package volume hosts a gain module: an audio-stream shaped processor that
// scales PCM samples by a per-channel Q16.16 gain. The gain is delivered
// through the binary configuration interface, so the package doubles as the
// reference consumer of fragmented blob transfers.
package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Unity is the Q16.16 gain for 0 dB.
const Unity = 1 << 16

// AlgorithmID identifies the gain algorithm in a driver registry.
const AlgorithmID uint32 = 0xb10c0001

// Module scales samples by a fixed-point gain. One gain value applies to all
// channels unless the configuration blob carries one value per channel.
type Module struct {
	gains   []int64
	blob    []byte
	pending []byte
	scratch []byte
}

// New returns a gain module at unity.
func New() *Module {
	return &Module{gains: []int64{Unity}}
}

// Shape returns the audio-stream shape.
func (*Module) Shape() module.Shape { return module.ShapeAudioStream }

// Describe returns the default one-source one-sink descriptor.
func (*Module) Describe() module.Descriptor { return module.Descriptor{} }

// Prepare is a no-op: the scratch area grows lazily with the period size.
func (m *Module) Prepare(sources []stream.Source, sinks []stream.Sink) error { return nil }

// Reset returns the gain to unity and drops any partial configuration.
func (m *Module) Reset() error {
	m.gains = append(m.gains[:0], Unity)
	m.blob = nil
	m.pending = nil
	return nil
}

// Free releases nothing; the module owns no external resources.
func (m *Module) Free() error { return nil }

// Gain returns the current gain for channel ch.
func (m *Module) Gain(ch int) int64 {
	if len(m.gains) == 0 {
		return Unity
	}
	return m.gains[ch%len(m.gains)]
}

// Process scales the offered frames from the input ring into the output
// ring. Without an output port the input is still consumed, so an inactive
// downstream branch does not stall the producer.
func (m *Module) Process(in []module.InputBuffer, out []module.OutputBuffer) error {
	if len(in) == 0 || in[0].Ring == nil {
		return nil
	}
	params := in[0].Ring.Params()
	bytes := in[0].Size * params.FrameBytes()
	if bytes == 0 {
		return comp.ErrNoData
	}

	if cap(m.scratch) < bytes {
		m.scratch = make([]byte, bytes)
	}
	buf := m.scratch[:bytes]
	n := in[0].Ring.PeekTo(buf, bytes)
	buf = buf[:n]

	if err := m.scale(buf, params); err != nil {
		return err
	}

	if len(out) > 0 && out[0].Ring != nil {
		wrote := out[0].Ring.WriteFrom(buf, len(buf))
		out[0].Size = wrote
		in[0].Consumed = wrote
		return nil
	}
	in[0].Consumed = n
	return nil
}

// scale applies the per-channel gain in place, saturating at the sample
// width.
func (m *Module) scale(buf []byte, params stream.Params) error {
	channels := params.Channels
	if channels <= 0 {
		channels = 1
	}
	switch params.SampleBytes {
	case 2:
		for i := 0; i+2 <= len(buf); i += 2 {
			s := int64(int16(binary.LittleEndian.Uint16(buf[i:])))
			s = s * m.Gain((i/2)%channels) >> 16
			if s > 32767 {
				s = 32767
			} else if s < -32768 {
				s = -32768
			}
			binary.LittleEndian.PutUint16(buf[i:], uint16(int16(s)))
		}
	case 4:
		for i := 0; i+4 <= len(buf); i += 4 {
			s := int64(int32(binary.LittleEndian.Uint32(buf[i:])))
			s = s * m.Gain((i/4)%channels) >> 16
			if s > 2147483647 {
				s = 2147483647
			} else if s < -2147483648 {
				s = -2147483648
			}
			binary.LittleEndian.PutUint32(buf[i:], uint32(int32(s)))
		}
	default:
		return fmt.Errorf("%w: sample width %d", comp.ErrNotSupported, params.SampleBytes)
	}
	return nil
}

// SetConfiguration accepts one fragment of the gain blob. The blob is a
// sequence of little-endian uint32 Q16.16 gains, one per channel; a single
// value applies to every channel. The new gains take effect once the last
// fragment lands.
func (m *Module) SetConfiguration(id uint32, pos module.FragmentPosition, offset uint32, fragment []byte) error {
	switch pos {
	case module.FragmentFirst, module.FragmentSingle:
		m.pending = append(m.pending[:0], fragment...)
	case module.FragmentMiddle, module.FragmentLast:
		if int(offset) != len(m.pending) {
			return fmt.Errorf("%w: fragment offset %d, have %d bytes",
				comp.ErrInvalidConfig, offset, len(m.pending))
		}
		m.pending = append(m.pending, fragment...)
	}
	if pos != module.FragmentSingle && pos != module.FragmentLast {
		return nil
	}

	if len(m.pending) == 0 || len(m.pending)%4 != 0 {
		return fmt.Errorf("%w: gain blob of %d bytes", comp.ErrInvalidConfig, len(m.pending))
	}
	m.gains = m.gains[:0]
	for i := 0; i+4 <= len(m.pending); i += 4 {
		m.gains = append(m.gains, int64(binary.LittleEndian.Uint32(m.pending[i:])))
	}
	m.blob = append(m.blob[:0], m.pending...)
	m.pending = nil
	return nil
}

// GetConfiguration serves the applied gain blob.
func (m *Module) GetConfiguration(pos module.FragmentPosition, size *uint32, buf []byte) (int, error) {
	blob := m.blob
	if len(blob) == 0 {
		var unity [4]byte
		binary.LittleEndian.PutUint32(unity[:], Unity)
		blob = unity[:]
	}
	*size = uint32(len(blob))
	return copy(buf, blob), nil
}

// Package mock provides configurable fake modules for every processing
// shape. Tests use them to drive the adapter's copy strategies, lifecycle
// and configuration protocol without a real algorithm.
package mock

import (
	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Counters records how often each module entry ran.
type Counters struct {
	Prepared  int
	Processed int
	Resets    int
	Frees     int
	Triggers  []comp.TriggerCmd
}

// Base implements the mandatory capability set with failure hooks shared by
// all shapes.
type Base struct {
	Counters
	Desc module.Descriptor

	// PrepareErr, ProcessErr, ResetErr and FreeErr are returned by the
	// respective entries when set.
	PrepareErr error
	ProcessErr error
	ResetErr   error
	FreeErr    error
}

// Describe returns the declared descriptor.
func (b *Base) Describe() module.Descriptor { return b.Desc }

// Prepare counts the call and fails when configured to.
func (b *Base) Prepare(sources []stream.Source, sinks []stream.Sink) error {
	b.Prepared++
	return b.PrepareErr
}

// Reset counts the call.
func (b *Base) Reset() error {
	b.Resets++
	return b.ResetErr
}

// Free counts the call.
func (b *Base) Free() error {
	b.Frees++
	return b.FreeErr
}

// AudioStream is an audio-stream shaped passthrough: it concatenates the
// frames offered on every input ring into the first output ring.
type AudioStream struct {
	Base
	scratch []byte
}

// Shape returns the audio-stream shape.
func (*AudioStream) Shape() module.Shape { return module.ShapeAudioStream }

// Process stages the offered frames and writes them to the first output
// ring in one pass. With no output port offered it still consumes, like a
// mixin feeding an inactive branch. Cursor advancement is the caller's job.
func (m *AudioStream) Process(in []module.InputBuffer, out []module.OutputBuffer) error {
	m.Processed++
	if m.ProcessErr != nil {
		return m.ProcessErr
	}
	m.scratch = m.scratch[:0]
	for i := range in {
		if in[i].Ring == nil || in[i].Size == 0 {
			continue
		}
		bytes := in[i].Size * in[i].Ring.Params().FrameBytes()
		start := len(m.scratch)
		m.scratch = append(m.scratch, make([]byte, bytes)...)
		n := in[i].Ring.PeekTo(m.scratch[start:], bytes)
		m.scratch = m.scratch[:start+n]
		in[i].Consumed = n
	}
	if len(out) == 0 || out[0].Ring == nil {
		return nil
	}
	wrote := out[0].Ring.WriteFrom(m.scratch, len(m.scratch))
	out[0].Size = wrote
	// a short write leaves trailing inputs unconsumed
	deficit := len(m.scratch) - wrote
	for i := len(in) - 1; i >= 0 && deficit > 0; i-- {
		if in[i].Consumed >= deficit {
			in[i].Consumed -= deficit
			deficit = 0
			break
		}
		deficit -= in[i].Consumed
		in[i].Consumed = 0
	}
	return nil
}

// RawData is a raw-data shaped accumulator: it gathers staged input until a
// full input chunk is available, then emits one output chunk per call.
type RawData struct {
	Base
	acc []byte
}

// Shape returns the raw-data shape.
func (*RawData) Shape() module.Shape { return module.ShapeRawData }

// Acc returns the bytes gathered but not yet emitted.
func (m *RawData) Acc() []byte { return m.acc }

// Process consumes the staged bytes into an internal accumulator and emits
// up to one output chunk once a full input chunk has been gathered.
func (m *RawData) Process(in []module.InputBuffer, out []module.OutputBuffer) error {
	m.Processed++
	if m.ProcessErr != nil {
		return m.ProcessErr
	}
	for i := range in {
		if in[i].Size == 0 {
			continue
		}
		m.acc = append(m.acc, in[i].Data[:in[i].Size]...)
		in[i].Consumed = in[i].Size
	}
	if len(m.acc) < m.Desc.InBuffSize {
		return comp.ErrNoData
	}
	for i := range out {
		n := copy(out[i].Data, m.acc)
		out[i].Size = n
	}
	emitted := m.Desc.InBuffSize
	if emitted > len(m.acc) {
		emitted = len(m.acc)
	}
	m.acc = m.acc[emitted:]
	return nil
}

// SinkSource is a sink/source shaped mover: it drains every source into the
// matching sink at its own pace.
type SinkSource struct {
	Base
}

// Shape returns the sink/source shape.
func (*SinkSource) Shape() module.Shape { return module.ShapeSinkSource }

// ProcessSinkSource moves whatever fits from each source to each sink.
func (m *SinkSource) ProcessSinkSource(sources []stream.Source, sinks []stream.Sink) error {
	m.Processed++
	if m.ProcessErr != nil {
		return m.ProcessErr
	}
	for i, src := range sources {
		if i >= len(sinks) {
			break
		}
		n := src.Available()
		if free := sinks[i].Free(); free < n {
			n = free
		}
		if _, err := stream.SourceToSink(src, sinks[i], n); err != nil {
			return err
		}
	}
	return nil
}

// Triggered adds the module trigger capability to a shape.
type Triggered struct {
	AudioStream
	TriggerErr error
}

// Trigger records the command.
func (m *Triggered) Trigger(cmd comp.TriggerCmd) error {
	m.Triggers = append(m.Triggers, cmd)
	return m.TriggerErr
}

// Endpoint is a host/DAI typed module that records its endpoint calls.
type Endpoint struct {
	Base
	EndpointPeriods  int
	EndpointTriggers []comp.TriggerCmd
	Pos              uint64
	TS               module.TimestampData
	EndpointErr      error
}

// Shape returns the audio-stream shape; endpoint components bypass copy.
func (*Endpoint) Shape() module.Shape { return module.ShapeAudioStream }

// ProcessEndpoint counts one gateway period.
func (m *Endpoint) ProcessEndpoint() error {
	m.EndpointPeriods++
	return m.EndpointErr
}

// EndpointTrigger records the command.
func (m *Endpoint) EndpointTrigger(cmd comp.TriggerCmd) error {
	m.EndpointTriggers = append(m.EndpointTriggers, cmd)
	return m.EndpointErr
}

// Position returns the configured position.
func (m *Endpoint) Position() (uint64, error) { return m.Pos, m.EndpointErr }

// HWParams returns empty parameters.
func (m *Endpoint) HWParams(dir int) (stream.Params, error) {
	return stream.Params{}, m.EndpointErr
}

// TimestampConfig is a no-op.
func (m *Endpoint) TimestampConfig() error { return m.EndpointErr }

// TimestampStart is a no-op.
func (m *Endpoint) TimestampStart() error { return m.EndpointErr }

// TimestampStop is a no-op.
func (m *Endpoint) TimestampStop() error { return m.EndpointErr }

// Timestamp returns the configured timestamp data.
func (m *Endpoint) Timestamp() (module.TimestampData, error) { return m.TS, m.EndpointErr }

// Configured records configuration fragments and reassembles the blob, so
// tests can verify the adapter's offset computation end to end.
type Configured struct {
	AudioStream

	Blob      []byte
	Positions []module.FragmentPosition
	Offsets   []uint32

	// Stored is served back by GetConfiguration.
	Stored []byte

	ConfigErr error
}

// SetConfiguration appends the fragment at its computed position.
func (m *Configured) SetConfiguration(id uint32, pos module.FragmentPosition, offset uint32, fragment []byte) error {
	if m.ConfigErr != nil {
		return m.ConfigErr
	}
	m.Positions = append(m.Positions, pos)
	m.Offsets = append(m.Offsets, offset)
	switch pos {
	case module.FragmentFirst, module.FragmentSingle:
		m.Blob = append(m.Blob[:0], fragment...)
	default:
		m.Blob = append(m.Blob, fragment...)
	}
	return nil
}

// GetConfiguration serves the stored blob into buf.
func (m *Configured) GetConfiguration(pos module.FragmentPosition, size *uint32, buf []byte) (int, error) {
	if m.ConfigErr != nil {
		return 0, m.ConfigErr
	}
	m.Positions = append(m.Positions, pos)
	*size = uint32(len(m.Stored))
	return copy(buf, m.Stored), nil
}

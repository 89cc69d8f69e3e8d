// Package module defines the narrow call contract between the adapter and a
// hosted processing algorithm. A module declares exactly one processing shape
// for its lifetime and may expose optional capabilities (configuration,
// trigger, endpoint operations) that the adapter discovers by assertion.
package module

import (
	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Shape declares how a module moves data.
type Shape int

const (
	// ShapeAudioStream modules copy exactly one period per call and work
	// directly on the connected stream buffers.
	ShapeAudioStream Shape = iota
	// ShapeRawData modules buffer variable amounts internally and work on
	// staged linear buffers owned by the adapter.
	ShapeRawData
	// ShapeSinkSource modules own their pacing and are handed the full set
	// of source and sink handles.
	ShapeSinkSource
)

func (s Shape) String() string {
	switch s {
	case ShapeAudioStream:
		return "audio-stream"
	case ShapeRawData:
		return "raw-data"
	case ShapeSinkSource:
		return "sink-source"
	}
	return "unknown"
}

// Descriptor carries the static declarations of a module. Zero values mean
// the defaults: one source, one sink, no internal chunking, pausable.
type Descriptor struct {
	// MaxSources and MaxSinks bound the connected port counts. Multi-port
	// modules override them before prepare.
	MaxSources int
	MaxSinks   int

	// InBuffSize and OutBuffSize are the declared input/output chunk sizes
	// in bytes for raw-data shaped modules.
	InBuffSize  int
	OutBuffSize int

	// NoPause marks modules that cannot pause. A pause trigger keeps them
	// active and stops propagating downstream instead.
	NoPause bool
}

// InputBuffer describes one input port offered to the module for a single
// processing call. For audio-stream shapes Ring is set and Size counts
// frames; for raw-data shapes Data is the staged bytes and Size counts bytes.
// The module reports back through Consumed.
type InputBuffer struct {
	Data     []byte
	Ring     *stream.Buffer
	Size     int
	Consumed int
}

// OutputBuffer describes one output port. For audio-stream shapes Ring is
// set; for raw-data shapes Data is the staging area. The module reports the
// bytes it produced through Size.
type OutputBuffer struct {
	Data []byte
	Ring *stream.Buffer
	Size int
}

// Interface is the mandatory capability set of every hosted module.
type Interface interface {
	// Shape returns the processing shape, fixed for the module's lifetime.
	Shape() Shape
	// Describe returns the module's static declarations.
	Describe() Descriptor
	// Prepare negotiates stream shapes. Sink/source shaped modules receive
	// their port handles here; other shapes receive nil slices.
	Prepare(sources []stream.Source, sinks []stream.Sink) error
	// Reset returns the module to its post-init state.
	Reset() error
	// Free releases module-owned resources.
	Free() error
}

// Processor is implemented by audio-stream and raw-data shaped modules.
type Processor interface {
	Process(in []InputBuffer, out []OutputBuffer) error
}

// SinkSourceProcessor is implemented by sink/source shaped modules. The
// module consumes and produces directly through the handles and the adapter
// accounts the bytes it reports as processed.
type SinkSourceProcessor interface {
	ProcessSinkSource(sources []stream.Source, sinks []stream.Sink) error
}

// Triggerer is an optional capability: the module handles lifecycle trigger
// commands itself instead of the generic state transition.
type Triggerer interface {
	Trigger(cmd comp.TriggerCmd) error
}

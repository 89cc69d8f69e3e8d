package module

import (
	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// TimestampData is one DAI timestamp sample: the wallclock reading and the
// stream sample count taken together.
type TimestampData struct {
	Walclk     uint64
	Sample     uint64
	SampleRate int
}

// Endpoint is the optional sub-table implemented by host and DAI typed
// modules. Endpoint components bypass the generic copy and trigger bodies
// and delegate to these operations directly.
type Endpoint interface {
	// ProcessEndpoint runs one period of endpoint transfer. The component
	// moves data over its gateway, not through pipeline buffers.
	ProcessEndpoint() error
	// EndpointTrigger handles lifecycle commands for the gateway.
	EndpointTrigger(cmd comp.TriggerCmd) error
	// Position returns the stream position in frames.
	Position() (uint64, error)
	// HWParams returns the hardware stream parameters for a direction.
	HWParams(dir int) (stream.Params, error)
	// TimestampConfig configures timestamping on the gateway.
	TimestampConfig() error
	// TimestampStart starts timestamping.
	TimestampStart() error
	// TimestampStop stops timestamping.
	TimestampStop() error
	// Timestamp reads the current timestamp data.
	Timestamp() (TimestampData, error)
}

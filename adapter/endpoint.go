package adapter

import (
	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Endpoint passthroughs. Each operation delegates to the module's endpoint
// sub-table and reports comp.ErrNotSupported when the capability is absent,
// so callers can treat it as an optional feature rather than a failure.

func (a *Adapter) endpoint() (module.Endpoint, bool) {
	ep, ok := a.mod.(module.Endpoint)
	return ep, ok
}

// HWParams returns the hardware stream parameters of a DAI endpoint.
func (a *Adapter) HWParams(dir int) (stream.Params, error) {
	if ep, ok := a.endpoint(); ok {
		return ep.HWParams(dir)
	}
	return stream.Params{}, comp.ErrNotSupported
}

// Position returns the endpoint stream position in frames.
func (a *Adapter) Position() (uint64, error) {
	if ep, ok := a.endpoint(); ok {
		return ep.Position()
	}
	return 0, comp.ErrNotSupported
}

// TimestampConfig configures timestamping on the endpoint.
func (a *Adapter) TimestampConfig() error {
	if ep, ok := a.endpoint(); ok {
		return ep.TimestampConfig()
	}
	return comp.ErrNotSupported
}

// TimestampStart starts endpoint timestamping.
func (a *Adapter) TimestampStart() error {
	if ep, ok := a.endpoint(); ok {
		return ep.TimestampStart()
	}
	return comp.ErrNotSupported
}

// TimestampStop stops endpoint timestamping.
func (a *Adapter) TimestampStop() error {
	if ep, ok := a.endpoint(); ok {
		return ep.TimestampStop()
	}
	return comp.ErrNotSupported
}

// Timestamp reads the current endpoint timestamp data.
func (a *Adapter) Timestamp() (module.TimestampData, error) {
	if ep, ok := a.endpoint(); ok {
		return ep.Timestamp()
	}
	return module.TimestampData{}, comp.ErrNotSupported
}

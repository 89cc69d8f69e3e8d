package adapter

import (
	"errors"
	"fmt"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Prepare negotiates stream shapes with the module and allocates the
// buffering the chosen copy strategy needs. It is idempotent: preparing an
// already active or already prepared instance returns comp.ErrPathStop so
// the caller stops walking the chain instead of re-preparing it.
func (a *Adapter) Prepare() error {
	a.log.Debug("prepare start")

	shape := a.mod.Shape()
	var err error
	switch {
	case shape == module.ShapeSinkSource && a.cfg.Domain == comp.DomainDP:
		err = a.dpQueuePrepare()
	case shape == module.ShapeSinkSource:
		err = a.sinkSrcPrepare()
	case a.cfg.Domain == comp.DomainLL:
		err = a.mod.Prepare(nil, nil)
	default:
		err = fmt.Errorf("%w: shape %s in domain %d", comp.ErrInvalidConfig, shape, a.cfg.Domain)
	}
	if err != nil {
		if !errors.Is(err, comp.ErrPathStop) {
			a.log.Errorf("prepare: module prepare failed: %v", err)
		}
		return err
	}

	// The component may already be active, e.g. a mixer whose other source
	// has started the chain.
	if a.state == comp.StateActive {
		return comp.ErrPathStop
	}

	next, err := comp.Transition(a.state, comp.TriggerPrepare)
	if errors.Is(err, comp.ErrStateAlreadySet) {
		a.log.Warn("prepare: already prepared")
		return comp.ErrPathStop
	}
	if err != nil {
		return err
	}
	a.state = next

	// nothing more to do for host/DAI components
	if a.cfg.Kind.IsEndpoint() {
		return nil
	}

	a.deepBuffBytes = 0

	if len(a.sources) == 0 && len(a.sinks) == 0 {
		return fmt.Errorf("%w: no source and sink buffers connected", comp.ErrInvalidConfig)
	}

	// Period bytes settle once the sink buffer parameters are negotiated,
	// prior to all other uses below.
	a.periodBytes = a.portParams().PeriodBytes(a.cfg.PeriodFrames)
	a.log.Debugf("prepare: period bytes %d", a.periodBytes)

	if shape == module.ShapeSinkSource {
		return nil
	}

	if shape == module.ShapeAudioStream && a.desc.MaxSources > 1 && a.desc.MaxSinks > 1 {
		return fmt.Errorf("%w: audio-stream shape with %d sources and %d sinks",
			comp.ErrInvalidConfig, a.desc.MaxSources, a.desc.MaxSinks)
	}

	a.input = make([]module.InputBuffer, a.desc.MaxSources)
	a.output = make([]module.OutputBuffer, a.desc.MaxSinks)

	// Audio-stream modules produce exactly period bytes per period straight
	// into the connected buffers; no staging needed.
	if shape != module.ShapeRawData {
		return nil
	}

	return a.prepareRawData()
}

// prepareRawData computes the deep-buffering geometry and allocates the
// staging and local sink buffers for raw-data shaped modules. Any failure
// rolls every resource acquired here back in reverse order.
func (a *Adapter) prepareRawData() error {
	if a.desc.InBuffSize <= 0 || a.desc.OutBuffSize <= 0 {
		return fmt.Errorf("%w: raw-data module without chunk sizes", comp.ErrInvalidConfig)
	}

	// deepBuffBytes measures how much input must accumulate before the
	// module can start producing. Until then the sinks are fed zeroes so a
	// downstream endpoint never starves.
	inPeriods := buffPeriods(a.desc.InBuffSize, a.periodBytes)
	if a.desc.InBuffSize != a.periodBytes {
		a.deepBuffBytes = minInt(a.periodBytes, a.desc.InBuffSize) * inPeriods
	}

	// The module may produce more than period bytes in one call while the
	// sink drains only one period per period; the local buffer must hold
	// the burst.
	outPeriods := buffPeriods(a.desc.OutBuffSize, a.periodBytes)
	a.outputBufferSize = maxInt(a.periodBytes, a.desc.OutBuffSize) * outPeriods

	inSize := maxInt(a.deepBuffBytes, a.periodBytes)
	a.stagedIdx = make([]int, 0, len(a.sources))
	for i := range a.sources {
		a.input[i].Data = make([]byte, inSize)
	}
	for i := range a.sinks {
		a.output[i].Data = make([]byte, a.desc.OutBuffSize)
	}

	params := a.portParams()
	if len(a.snapshotLocalSinks()) == 0 {
		for range a.sinks {
			ring := a.allocRing(a.outputBufferSize, params)
			a.attachLocalSink(ring)
		}
	} else {
		for _, ring := range a.snapshotLocalSinks() {
			if err := ring.Resize(a.outputBufferSize); err != nil {
				a.rollbackRawData()
				return fmt.Errorf("prepare: local sink buffer resize: %w", err)
			}
			ring.SetParams(params)
		}
	}
	return nil
}

// rollbackRawData releases everything prepareRawData acquired, in reverse
// order, leaving the adapter in a consistent pre-prepare layout.
func (a *Adapter) rollbackRawData() {
	for _, ring := range a.detachLocalSinks() {
		ring.Reset()
	}
	for i := range a.output {
		a.output[i] = module.OutputBuffer{}
	}
	for i := range a.input {
		a.input[i] = module.InputBuffer{}
	}
	a.input = nil
	a.output = nil
}

// sinkSrcPrepare hands the real port handles to a sink/source shaped module
// and lets it negotiate shapes.
func (a *Adapter) sinkSrcPrepare() error {
	a.srcHandles = make([]stream.Source, len(a.sources))
	for i, p := range a.sources {
		a.srcHandles[i] = p.buf.Source()
	}
	a.sinkHandles = make([]stream.Sink, len(a.sinks))
	for i, p := range a.sinks {
		a.sinkHandles[i] = p.buf.Sink()
	}
	return a.mod.Prepare(a.srcHandles, a.sinkHandles)
}

// portParams returns the parameters settled on the first sink, falling back
// to the first source for components with no sink connected.
func (a *Adapter) portParams() stream.Params {
	if len(a.sinks) > 0 {
		return a.sinks[0].buf.Params()
	}
	if len(a.sources) > 0 {
		return a.sources[0].buf.Params()
	}
	return stream.Params{}
}

// buffPeriods returns the number of pipeline periods needed to accumulate
// one full chunk, with one spare period of margin when the division is exact
// and two otherwise.
func buffPeriods(chunk, period int) int {
	big, small := chunk, period
	if small > big {
		big, small = small, big
	}
	if big%small != 0 {
		return big/small + 2
	}
	return big/small + 1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

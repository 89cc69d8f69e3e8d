package adapter

import (
	"errors"
	"fmt"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
)

// Copy moves one period of data through the module. The strategy is chosen
// from the module's shape and the processing domain. "No data" and "no
// space" reported by the module are absorbed so the pipeline continues at
// the next period; every other module error propagates.
func (a *Adapter) Copy() error {
	consumedBefore, producedBefore := a.totalConsumed, a.totalProduced
	var err error
	switch a.mod.Shape() {
	case module.ShapeAudioStream:
		err = a.audioStreamCopy()
	case module.ShapeRawData:
		err = a.rawDataCopy()
	case module.ShapeSinkSource:
		if a.cfg.Domain == comp.DomainDP {
			err = a.copyShadowQueues()
		} else {
			err = a.sinkSourceCopy()
		}
	default:
		err = fmt.Errorf("%w: unknown processing shape", comp.ErrInvalidConfig)
	}
	if err == nil && a.measure != nil {
		a.measure(int(a.totalConsumed-consumedBefore), int(a.totalProduced-producedBefore))
	}
	return err
}

func (a *Adapter) audioStreamCopy() error {
	// host/DAI components move data over their gateway, not through
	// pipeline buffers
	if a.cfg.Kind.IsEndpoint() {
		ep, ok := a.mod.(module.Endpoint)
		if !ok {
			return fmt.Errorf("%w: endpoint component without endpoint ops", comp.ErrInvalidConfig)
		}
		return ep.ProcessEndpoint()
	}

	if len(a.sources) > a.desc.MaxSources {
		return fmt.Errorf("%w: %d sources connected", comp.ErrInvalidConfig, len(a.sources))
	}
	if len(a.sinks) > a.desc.MaxSinks {
		return fmt.Errorf("%w: %d sinks connected", comp.ErrInvalidConfig, len(a.sinks))
	}

	if len(a.sources) == 1 && len(a.sinks) == 1 {
		return a.copyOneToOne()
	}
	switch {
	case len(a.sinks) == 1:
		return a.copyManyToOne()
	case len(a.sources) == 1:
		return a.copyOneToMany()
	}
	return fmt.Errorf("%w: unsupported audio-stream topology %d:%d",
		comp.ErrInvalidConfig, len(a.sources), len(a.sinks))
}

// copyOneToOne is the fast path for exactly one source and one sink.
func (a *Adapter) copyOneToOne() error {
	src := a.sources[0]
	sink := a.sinks[0]

	frames := src.buf.AvailableFrames(sink.buf)
	a.input[0] = module.InputBuffer{Ring: src.buf, Size: frames}
	a.output[0] = module.OutputBuffer{Ring: sink.buf}

	// Source state is deliberately not checked so a mixout can keep
	// producing zero PCM while its source is inactive. A sink in another
	// state gets no output port offered.
	numOut := 0
	if sink.peerState(a.state) == a.state {
		numOut = 1
	}

	err := a.process(a.input[:1], a.output[:numOut])

	if consumed := a.input[0].Consumed; consumed > 0 {
		if cerr := src.buf.Consume(consumed); cerr != nil {
			return cerr
		}
		a.totalConsumed += uint64(consumed)
	}
	if produced := a.output[0].Size; produced > 0 {
		if perr := sink.buf.Produce(produced); perr != nil {
			return perr
		}
		a.totalProduced += uint64(produced)
	}
	a.input[0] = module.InputBuffer{}
	a.output[0] = module.OutputBuffer{}
	return err
}

// copyManyToOne offers every source aligned against the single sink's free
// space and invokes the module once with all inputs.
func (a *Adapter) copyManyToOne() error {
	sink := a.sinks[0]
	numIn := len(a.sources)
	for i, p := range a.sources {
		frames := p.buf.AvailableFrames(sink.buf)
		a.input[i] = module.InputBuffer{Ring: p.buf, Size: frames}
	}
	a.output[0] = module.OutputBuffer{Ring: sink.buf}
	numOut := 0
	if sink.peerState(a.state) == a.state {
		numOut = 1
	}

	err := a.process(a.input[:numIn], a.output[:numOut])
	return a.finishStreamCopy(numIn, 1, err)
}

// copyOneToMany aligns the single source across all sinks, or runs on all
// available frames when no sink is connected.
func (a *Adapter) copyOneToMany() error {
	src := a.sources[0]
	numOut := len(a.sinks)

	minFrames := src.buf.AvailFrames()
	for i, p := range a.sinks {
		frames := src.buf.AvailableFrames(p.buf)
		if frames < minFrames {
			minFrames = frames
		}
		a.output[i] = module.OutputBuffer{Ring: p.buf}
	}
	a.input[0] = module.InputBuffer{Ring: src.buf, Size: minFrames}
	numIn := 1
	if src.peerState(a.state) != a.state {
		numIn = 0
	}

	err := a.process(a.input[:numIn], a.output[:numOut])
	return a.finishStreamCopy(1, numOut, err)
}

// finishStreamCopy settles buffer cursors from what the module reported and
// clears the port descriptors. A hard module error skips the settling.
func (a *Adapter) finishStreamCopy(numIn, numOut int, err error) error {
	if err != nil {
		for i := 0; i < numOut; i++ {
			a.output[i] = module.OutputBuffer{}
		}
		for i := 0; i < numIn; i++ {
			a.input[i] = module.InputBuffer{}
		}
		return err
	}

	for i := 0; i < numIn; i++ {
		if consumed := a.input[i].Consumed; consumed > 0 && a.input[i].Ring != nil {
			if cerr := a.input[i].Ring.Consume(consumed); cerr != nil {
				return cerr
			}
		}
	}
	// pin 0 carries the base config the totals are accounted against
	if numIn > 0 {
		a.totalConsumed += uint64(a.input[0].Consumed)
	}
	for i := 0; i < numIn; i++ {
		a.input[i] = module.InputBuffer{}
	}

	for i := 0; i < numOut; i++ {
		if produced := a.output[i].Size; produced > 0 && a.output[i].Ring != nil {
			if perr := a.output[i].Ring.Produce(produced); perr != nil {
				return perr
			}
		}
	}
	if numOut > 0 {
		a.totalProduced += uint64(a.output[0].Size)
	}
	for i := 0; i < numOut; i++ {
		a.output[i] = module.OutputBuffer{}
	}
	return nil
}

// process invokes the module's legacy processing entry and absorbs the
// transient no-data/no-space conditions.
func (a *Adapter) process(in []module.InputBuffer, out []module.OutputBuffer) error {
	proc, ok := a.mod.(module.Processor)
	if !ok {
		return fmt.Errorf("%w: module has no processing entry", comp.ErrInvalidConfig)
	}
	err := proc.Process(in, out)
	if errors.Is(err, comp.ErrNoData) || errors.Is(err, comp.ErrNoSpace) {
		a.log.Debugf("copy: absorbed %v", err)
		return nil
	}
	if err != nil {
		a.log.Errorf("copy: module processing failed: %v", err)
	}
	return err
}

// sinkSourceCopy lets the module own its pacing: it gets the full handle
// set and the adapter accounts whatever the module reports as processed.
func (a *Adapter) sinkSourceCopy() error {
	for _, s := range a.srcHandles {
		s.ResetProcessed()
	}
	for _, s := range a.sinkHandles {
		s.ResetProcessed()
	}

	proc, ok := a.mod.(module.SinkSourceProcessor)
	if !ok {
		return fmt.Errorf("%w: sink/source module without processing entry", comp.ErrInvalidConfig)
	}
	err := proc.ProcessSinkSource(a.srcHandles, a.sinkHandles)
	if errors.Is(err, comp.ErrNoData) || errors.Is(err, comp.ErrNoSpace) {
		err = nil
	}
	if err != nil {
		a.log.Errorf("copy: sink/source processing failed: %v", err)
	}

	for _, s := range a.srcHandles {
		a.totalConsumed += s.Processed()
	}
	for _, s := range a.sinkHandles {
		a.totalProduced += s.Processed()
	}
	return err
}

package adapter

import (
	"errors"
	"fmt"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/module"
)

// Trigger requests a lifecycle transition. Host/DAI components delegate to
// their endpoint operations; modules with their own trigger capability
// handle the command themselves; everything else takes the generic state
// transition.
func (a *Adapter) Trigger(cmd comp.TriggerCmd) error {
	a.log.Debugf("trigger: %s", cmd)

	if a.cfg.Kind.IsEndpoint() {
		ep, ok := a.mod.(module.Endpoint)
		if !ok {
			return comp.ErrNotSupported
		}
		return ep.EndpointTrigger(cmd)
	}

	// a module that cannot pause stays active and the chain downstream
	// keeps running
	if cmd == comp.TriggerPause && a.desc.NoPause {
		a.state = comp.StateActive
		return comp.ErrPathStop
	}

	if t, ok := a.mod.(module.Triggerer); ok {
		return t.Trigger(cmd)
	}
	return a.setState(cmd)
}

func (a *Adapter) setState(cmd comp.TriggerCmd) error {
	next, err := comp.Transition(a.state, cmd)
	if errors.Is(err, comp.ErrStateAlreadySet) {
		return comp.ErrPathStop
	}
	if err != nil {
		return fmt.Errorf("trigger %s in state %s: %w", cmd, a.state, err)
	}
	a.state = next
	return nil
}

// Reset releases everything prepare acquired and returns the instance to
// the pre-prepare state. The module stays instantiated and the topology
// connections stay in place.
func (a *Adapter) Reset() error {
	a.log.Debug("reset")

	if err := a.mod.Reset(); err != nil {
		if !errors.Is(err, comp.ErrPathStop) {
			a.log.Errorf("reset: module reset failed: %v", err)
		}
		return err
	}

	shape := a.mod.Shape()

	if shape == module.ShapeRawData || shape == module.ShapeAudioStream {
		a.input = nil
		a.output = nil
		a.stagedIdx = nil
	}

	if shape == module.ShapeSinkSource {
		if a.cfg.Domain == comp.DomainDP {
			a.releaseQueues()
		}
		a.srcHandles = nil
		a.sinkHandles = nil
	}

	a.totalConsumed = 0
	a.totalProduced = 0
	a.deepBuffBytes = 0
	a.cfgTotal = 0
	a.period = 0

	// local sink buffers survive reset but start the next activation clean
	for _, ring := range a.snapshotLocalSinks() {
		ring.Zero()
	}

	a.streamParams = nil

	return a.setState(comp.TriggerReset)
}

// Free releases the module and every resource the instance still owns. The
// adapter must not be used afterwards.
func (a *Adapter) Free() {
	a.log.Debug("free")

	if err := a.mod.Free(); err != nil {
		a.log.Errorf("free: module free failed: %v", err)
	}

	for _, ring := range a.detachLocalSinks() {
		ring.Reset()
	}
	a.releaseQueues()
	a.input = nil
	a.output = nil
	a.srcHandles = nil
	a.sinkHandles = nil
	a.streamParams = nil
	a.freed = true
}

// Freed reports whether Free has run.
func (a *Adapter) Freed() bool { return a.freed }

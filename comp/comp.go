// Package comp holds the component-level vocabulary shared by the module
// adapter, the driver registry and the pipeline: lifecycle states, trigger
// commands, processing domains and the control-flow sentinels used to steer
// pipeline walks.
package comp

import "errors"

// State identifies one of the lifecycle states a component can be in.
type State int

const (
	// StateReady means the component is instantiated but not prepared.
	StateReady State = iota
	// StatePrepare means buffers and processing settings are allocated.
	StatePrepare
	// StateActive means the component processes data every period.
	StateActive
	// StatePaused means the component is stopped but keeps its buffers.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StatePrepare:
		return "prepare"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// TriggerCmd requests a lifecycle state transition.
type TriggerCmd int

const (
	// TriggerStart activates a prepared component.
	TriggerStart TriggerCmd = iota
	// TriggerStop returns an active or paused component to prepared.
	TriggerStop
	// TriggerPause suspends an active component.
	TriggerPause
	// TriggerRelease resumes a paused component.
	TriggerRelease
	// TriggerPrepare moves a ready component to prepared.
	TriggerPrepare
	// TriggerReset returns a component to the pre-prepare state.
	TriggerReset
)

func (c TriggerCmd) String() string {
	switch c {
	case TriggerStart:
		return "start"
	case TriggerStop:
		return "stop"
	case TriggerPause:
		return "pause"
	case TriggerRelease:
		return "release"
	case TriggerPrepare:
		return "prepare"
	case TriggerReset:
		return "reset"
	}
	return "unknown"
}

// Domain identifies the scheduling context a component executes in.
type Domain int

const (
	// DomainLL is the pipeline's own low-latency context, synchronous with
	// period ticks.
	DomainLL Domain = iota
	// DomainDP is an independently scheduled context, possibly on another
	// core. Components in DP consume and produce through shadow queues.
	DomainDP
)

// Kind distinguishes generic processing components from the endpoint
// components that represent host and DAI gateways.
type Kind int

const (
	// KindGeneric is a regular processing component.
	KindGeneric Kind = iota
	// KindHost represents the host transfer endpoint.
	KindHost
	// KindDAI represents a digital audio interface endpoint.
	KindDAI
)

// IsEndpoint reports whether the component bypasses the generic copy and
// trigger paths in favour of its endpoint operations.
func (k Kind) IsEndpoint() bool {
	return k == KindHost || k == KindDAI
}

// Control-flow and error sentinels. ErrPathStop is not a failure: it tells
// the caller to stop propagating the current operation downstream while the
// operation itself succeeded.
var (
	// ErrPathStop stops propagation of an operation to the rest of the
	// pipeline. Callers must treat it as success for the local component.
	ErrPathStop = errors.New("pipeline path stop")

	// ErrNoData is reported by a module when no input is available. The
	// adapter absorbs it so the pipeline continues at the next period.
	ErrNoData = errors.New("no data available")

	// ErrNoSpace is reported by a module when no output space is available.
	// Absorbed like ErrNoData.
	ErrNoSpace = errors.New("no space available")

	// ErrNotSupported is returned for optional capabilities the module does
	// not implement. Distinct from a hard failure.
	ErrNotSupported = errors.New("operation not supported")

	// ErrInvalidConfig is returned for unsupported port counts, missing
	// buffers or wire-format mismatches. No partial mutation remains.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidState is returned when a trigger command is not legal in the
	// current lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	// ErrStateAlreadySet is returned by Transition when the requested state
	// is already held. It lets prepare stay idempotent.
	ErrStateAlreadySet = errors.New("state already set")
)

// Transition applies a trigger command to a state and returns the resulting
// state. ErrStateAlreadySet is returned with the unchanged state when the
// command requests a state the component already holds.
func Transition(s State, cmd TriggerCmd) (State, error) {
	switch cmd {
	case TriggerPrepare:
		if s == StatePrepare {
			return s, ErrStateAlreadySet
		}
		if s == StateReady {
			return StatePrepare, nil
		}
	case TriggerStart:
		if s == StateActive {
			return s, ErrStateAlreadySet
		}
		if s == StatePrepare || s == StatePaused {
			return StateActive, nil
		}
	case TriggerRelease:
		if s == StatePaused {
			return StateActive, nil
		}
	case TriggerPause:
		if s == StatePaused {
			return s, ErrStateAlreadySet
		}
		if s == StateActive {
			return StatePaused, nil
		}
	case TriggerStop:
		if s == StateActive || s == StatePaused {
			return StatePrepare, nil
		}
		if s == StatePrepare {
			return s, ErrStateAlreadySet
		}
	case TriggerReset:
		return StateReady, nil
	}
	return s, ErrInvalidState
}

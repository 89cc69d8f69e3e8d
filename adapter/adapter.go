// Package adapter hosts a processing module and bridges it to the circular
// stream buffers that carry audio between pipeline stages. It selects and
// executes a buffer-topology copy strategy every period, enforces
// deep-buffering warm-up, manages the shadow queues that let a module run in
// another scheduling domain and drives the component lifecycle and the
// fragmented configuration protocol.
package adapter

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/log"
	"github.com/davidrau-renesas-opensource/sof/metric"
	"github.com/davidrau-renesas-opensource/sof/module"
	"github.com/davidrau-renesas-opensource/sof/shadow"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Neighbor exposes the lifecycle state of the component on the far side of a
// buffer. The copy strategies use it to offer zero ports to the module when a
// neighbor is not in the adapter's state, so an inactive downstream still
// lets the module run for ordering without producing into it.
type Neighbor interface {
	State() comp.State
}

// port is one connection point: the borrowed buffer and the component on the
// other end of it.
type port struct {
	buf  *stream.Buffer
	peer Neighbor
}

func (p port) peerState(fallback comp.State) comp.State {
	if p.peer == nil {
		return fallback
	}
	return p.peer.State()
}

// Config carries the per-instance settings the topology builder decides.
type Config struct {
	// ID identifies the instance. Generated when empty.
	ID string
	// Kind distinguishes generic components from host/DAI endpoints.
	Kind comp.Kind
	// Domain is the scheduling domain the module executes in.
	Domain comp.Domain
	// Shared flags components visible from all cores; shadow queues for
	// shared components use shared memory mode.
	Shared bool
	// PeriodFrames is the pipeline period in frames.
	PeriodFrames int
	// Metrics receives per-period counters when set.
	Metrics *metric.Metrics
	// Logger overrides the default component logger.
	Logger *logrus.Entry
}

// Adapter owns one module instance and the state needed to run it inside a
// pipeline: borrowed source/sink buffers, owned staging buffers and shadow
// queues, cached stream parameters and the lifecycle state.
type Adapter struct {
	id   string
	cfg  Config
	mod  module.Interface
	desc module.Descriptor
	log  *logrus.Entry

	state comp.State
	freed bool

	sources []port
	sinks   []port

	// handles offered to sink/source shaped modules. In the DP domain they
	// point at shadow queues instead of the pipeline buffers.
	srcHandles  []stream.Source
	sinkHandles []stream.Sink

	// staging descriptors for audio-stream and raw-data processing.
	input  []module.InputBuffer
	output []module.OutputBuffer

	// scratch mapping of staged input index to source port, reused across
	// periods to keep the copy path allocation-free.
	stagedIdx []int

	// local intermediate sink buffers, owned, one per connected sink in
	// raw-data mode. Attach/detach is the only critical section in the
	// adapter; the mutex scopes exactly that list edit.
	mu         sync.Mutex
	localSinks []*stream.Buffer

	// shadow queues per direction, owned, DP sink/source mode only.
	llToDP []*shadow.Queue
	dpToLL []*shadow.Queue

	streamParams *stream.Params

	periodBytes      int
	deepBuffBytes    int
	outputBufferSize int

	totalConsumed uint64
	totalProduced uint64

	// running total size of the configuration blob being reassembled.
	// Deliberately per-instance state.
	cfgTotal uint32

	// period adopted for DP modules, derived from the sink queues unless
	// the module fixed it during prepare.
	period time.Duration

	measure metric.MeasureFunc

	// seams kept narrow for fault-injection in tests.
	newQueue  func(minAvailable, minFree int, mode shadow.Mode) (*shadow.Queue, error)
	allocRing func(size int, p stream.Params) *stream.Buffer
}

// New creates an adapter hosting mod. The returned instance is in the ready
// state with default port bounds applied.
func New(cfg Config, mod module.Interface) (*Adapter, error) {
	if mod == nil {
		return nil, fmt.Errorf("%w: nil module", comp.ErrInvalidConfig)
	}
	if cfg.PeriodFrames <= 0 && !cfg.Kind.IsEndpoint() {
		return nil, fmt.Errorf("%w: period frames %d", comp.ErrInvalidConfig, cfg.PeriodFrames)
	}
	if cfg.ID == "" {
		cfg.ID = xid.New().String()
	}
	desc := mod.Describe()
	if desc.MaxSources == 0 {
		desc.MaxSources = 1
	}
	if desc.MaxSinks == 0 {
		desc.MaxSinks = 1
	}
	a := &Adapter{
		id:        cfg.ID,
		cfg:       cfg,
		mod:       mod,
		desc:      desc,
		state:     comp.StateReady,
		newQueue:  shadow.New,
		allocRing: stream.NewBuffer,
	}
	a.log = cfg.Logger
	if a.log == nil {
		a.log = log.Component(mod.Shape().String(), a.id)
	}
	if cfg.Metrics != nil {
		a.measure = cfg.Metrics.Meter(a.id)()
	}
	return a, nil
}

// ID returns the instance id.
func (a *Adapter) ID() string { return a.id }

// State returns the current lifecycle state.
func (a *Adapter) State() comp.State { return a.state }

// Module returns the hosted module.
func (a *Adapter) Module() module.Interface { return a.mod }

// Period returns the adopted scheduling period for DP modules. Zero for
// modules paced by the pipeline.
func (a *Adapter) Period() time.Duration { return a.period }

// TotalConsumed returns the monotonic count of bytes consumed from sources
// since the last reset.
func (a *Adapter) TotalConsumed() uint64 { return a.totalConsumed }

// TotalProduced returns the monotonic count of bytes produced into sinks
// since the last reset.
func (a *Adapter) TotalProduced() uint64 { return a.totalProduced }

// ConnectSource borrows a buffer as the next source port. peer may be nil
// when the producing component's state is not tracked.
func (a *Adapter) ConnectSource(b *stream.Buffer, peer Neighbor) error {
	if b == nil {
		return fmt.Errorf("%w: nil source buffer", comp.ErrInvalidConfig)
	}
	if len(a.sources) >= a.desc.MaxSources {
		return fmt.Errorf("%w: %d sources connected, module allows %d",
			comp.ErrInvalidConfig, len(a.sources), a.desc.MaxSources)
	}
	a.sources = append(a.sources, port{buf: b, peer: peer})
	return nil
}

// ConnectSink borrows a buffer as the next sink port.
func (a *Adapter) ConnectSink(b *stream.Buffer, peer Neighbor) error {
	if b == nil {
		return fmt.Errorf("%w: nil sink buffer", comp.ErrInvalidConfig)
	}
	if len(a.sinks) >= a.desc.MaxSinks {
		return fmt.Errorf("%w: %d sinks connected, module allows %d",
			comp.ErrInvalidConfig, len(a.sinks), a.desc.MaxSinks)
	}
	a.sinks = append(a.sinks, port{buf: b, peer: peer})
	return nil
}

// DisconnectSource drops the source port bound to b.
func (a *Adapter) DisconnectSource(b *stream.Buffer) {
	a.sources = dropPort(a.sources, b)
}

// DisconnectSink drops the sink port bound to b.
func (a *Adapter) DisconnectSink(b *stream.Buffer) {
	a.sinks = dropPort(a.sinks, b)
}

func dropPort(ports []port, b *stream.Buffer) []port {
	for i := range ports {
		if ports[i].buf == b {
			return append(ports[:i], ports[i+1:]...)
		}
	}
	return ports
}

// Params verifies and caches stream parameters. The cached copy is
// reallocated on every call so stale readers never observe a partial update.
func (a *Adapter) Params(p stream.Params) error {
	if p.Rate <= 0 || p.Channels <= 0 || p.SampleBytes <= 0 {
		return fmt.Errorf("%w: params %+v", comp.ErrInvalidConfig, p)
	}
	cp := p
	a.streamParams = &cp
	for _, b := range a.snapshotLocalSinks() {
		b.SetParams(p)
	}
	return nil
}

// StreamParams returns the cached stream parameters, nil before the first
// Params call.
func (a *Adapter) StreamParams() *stream.Params { return a.streamParams }

func (a *Adapter) attachLocalSink(b *stream.Buffer) {
	a.mu.Lock()
	a.localSinks = append(a.localSinks, b)
	a.mu.Unlock()
}

func (a *Adapter) detachLocalSinks() []*stream.Buffer {
	a.mu.Lock()
	detached := a.localSinks
	a.localSinks = nil
	a.mu.Unlock()
	return detached
}

func (a *Adapter) snapshotLocalSinks() []*stream.Buffer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*stream.Buffer(nil), a.localSinks...)
}

func (a *Adapter) String() string {
	return fmt.Sprintf("%s %s", a.mod.Shape(), a.id)
}

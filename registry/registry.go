// Package registry keeps the lookup table of component drivers and creates
// adapter instances by algorithm identifier. The registry is an explicit
// object handed to the system at initialization; its lifetime spans the
// firmware image, not a package global.
package registry

import (
	"fmt"
	"sync"

	"github.com/davidrau-renesas-opensource/sof/adapter"
)

// Driver creates adapter instances for one algorithm identifier.
type Driver interface {
	// ID returns the algorithm identifier the driver serves.
	ID() uint32
	// New creates one adapter instance.
	New(cfg adapter.Config) (*adapter.Adapter, error)
}

// ErrNotFound is returned when no driver serves the requested identifier.
var ErrNotFound = fmt.Errorf("registry: driver not found")

// Registry is an internally synchronized driver lookup table.
type Registry struct {
	mu      sync.Mutex
	drivers map[uint32]Driver
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{drivers: make(map[uint32]Driver)}
}

// Register adds a driver to the table, replacing a previous driver with the
// same identifier.
func (r *Registry) Register(drv Driver) {
	r.mu.Lock()
	r.drivers[drv.ID()] = drv
	r.mu.Unlock()
}

// Unregister removes a driver from the table.
func (r *Registry) Unregister(drv Driver) {
	r.mu.Lock()
	if cur, ok := r.drivers[drv.ID()]; ok && cur == drv {
		delete(r.drivers, drv.ID())
	}
	r.mu.Unlock()
}

// Create instantiates an adapter for the algorithm identifier.
func (r *Registry) Create(algorithmID uint32, cfg adapter.Config) (*adapter.Adapter, error) {
	r.mu.Lock()
	drv, ok := r.drivers[algorithmID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: algorithm %#x", ErrNotFound, algorithmID)
	}
	return drv.New(cfg)
}

// DriverFunc adapts a constructor function into a Driver. Always used by
// pointer so driver identity survives the table round trip.
type DriverFunc struct {
	AlgorithmID uint32
	Create      func(cfg adapter.Config) (*adapter.Adapter, error)
}

// ID returns the algorithm identifier.
func (d *DriverFunc) ID() uint32 { return d.AlgorithmID }

// New creates one adapter instance.
func (d *DriverFunc) New(cfg adapter.Config) (*adapter.Adapter, error) { return d.Create(cfg) }

// Package pipeline provides a minimal static topology: an ordered line of
// adapters wired with stream buffers, walked once per period. It exists so
// integration code can drive adapters the way the scheduler does; all
// per-period behaviour lives in the adapter itself.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/davidrau-renesas-opensource/sof/adapter"
	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/log"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// Line is an ordered chain of components executed source-first.
type Line struct {
	comps []*adapter.Adapter
	log   *logrus.Entry
}

// New builds a line from already wired components, ordered upstream to
// downstream.
func New(comps ...*adapter.Adapter) *Line {
	return &Line{
		comps: comps,
		log:   log.Component("pipeline", "static"),
	}
}

// Link wires one buffer between two components: from produces into buf, to
// consumes from it. Each side learns the other as its neighbor so the copy
// strategies can compare lifecycle states.
func Link(from, to *adapter.Adapter, buf *stream.Buffer) error {
	if err := from.ConnectSink(buf, to); err != nil {
		return fmt.Errorf("link sink: %w", err)
	}
	if err := to.ConnectSource(buf, from); err != nil {
		from.DisconnectSink(buf)
		return fmt.Errorf("link source: %w", err)
	}
	return nil
}

// Prepare walks the line downstream. A component answering ErrPathStop ends
// the walk without error: the rest of the chain is already set up.
func (l *Line) Prepare() error {
	for _, c := range l.comps {
		if err := c.Prepare(); err != nil {
			if errors.Is(err, comp.ErrPathStop) {
				l.log.Debugf("prepare: path stop at %s", c.ID())
				return nil
			}
			return fmt.Errorf("prepare %s: %w", c.ID(), err)
		}
	}
	return nil
}

// Trigger walks the line downstream with a lifecycle command, honoring the
// path-stop sentinel.
func (l *Line) Trigger(cmd comp.TriggerCmd) error {
	for _, c := range l.comps {
		if err := c.Trigger(cmd); err != nil {
			if errors.Is(err, comp.ErrPathStop) {
				l.log.Debugf("trigger %s: path stop at %s", cmd, c.ID())
				return nil
			}
			return fmt.Errorf("trigger %s %s: %w", cmd, c.ID(), err)
		}
	}
	return nil
}

// Copy executes one period over every component, sink-first so each
// downstream stage drains before its producer refills the buffer.
func (l *Line) Copy() error {
	for i := len(l.comps) - 1; i >= 0; i-- {
		if err := l.comps[i].Copy(); err != nil {
			return fmt.Errorf("copy %s: %w", l.comps[i].ID(), err)
		}
	}
	return nil
}

// Reset resets every component, continuing past path stops.
func (l *Line) Reset() error {
	var firstErr error
	for _, c := range l.comps {
		if err := c.Reset(); err != nil && !errors.Is(err, comp.ErrPathStop) && firstErr == nil {
			firstErr = fmt.Errorf("reset %s: %w", c.ID(), err)
		}
	}
	return firstErr
}

// Free releases every component.
func (l *Line) Free() {
	for _, c := range l.comps {
		c.Free()
	}
}

// Components returns the line's components in order.
func (l *Line) Components() []*adapter.Adapter {
	return l.comps
}

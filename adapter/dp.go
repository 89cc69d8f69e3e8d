package adapter

import (
	"fmt"
	"time"

	"github.com/davidrau-renesas-opensource/sof/shadow"
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// dpQueuePrepare runs the normal port discovery, then builds one shadow
// queue per port so the module, scheduled on its own domain, never touches
// the pipeline buffers directly. If any queue allocation fails, every queue
// already created in both directions is destroyed before returning.
func (a *Adapter) dpQueuePrepare() error {
	mode := shadow.ModeLocal
	if a.cfg.Shared {
		mode = shadow.ModeShared
	}

	if err := a.sinkSrcPrepare(); err != nil {
		return err
	}

	a.llToDP = a.llToDP[:0]
	for i, p := range a.sources {
		q, err := a.newQueue(p.buf.MinAvailable(), p.buf.MinFree(), mode)
		if err != nil {
			a.releaseQueues()
			return fmt.Errorf("prepare: source shadow queue %d: %w", i, err)
		}
		q.SetParams(p.buf.Params())
		a.llToDP = append(a.llToDP, q)
		// the module processes through the shadow, not the pipeline buffer
		a.srcHandles[i] = q.Source()
	}

	period := time.Duration(1<<63 - 1)
	a.dpToLL = a.dpToLL[:0]
	for i, p := range a.sinks {
		q, err := a.newQueue(p.buf.MinAvailable(), p.buf.MinFree(), mode)
		if err != nil {
			a.releaseQueues()
			return fmt.Errorf("prepare: sink shadow queue %d: %w", i, err)
		}
		params := p.buf.Params()
		q.SetParams(params)
		a.dpToLL = append(a.dpToLL, q)
		a.sinkHandles[i] = q.Sink()

		// time for the module to fill one queue portion at the negotiated
		// rate; the shortest sink bounds the module's deadline
		if fb := params.FrameBytes(); fb > 0 && params.Rate > 0 {
			sinkPeriod := time.Duration(q.Sink().MinFree()) * time.Second /
				time.Duration(fb*params.Rate)
			if sinkPeriod < period {
				period = sinkPeriod
			}
		}
	}

	// adopt the derived period unless the module fixed one during prepare,
	// e.g. event-only detectors with no continuous output
	if a.period == 0 && len(a.dpToLL) > 0 {
		a.log.Infof("prepare: dp module period set to %v", period)
		a.period = period
	}
	return nil
}

// releaseQueues destroys every shadow queue in both direction lists and
// drops the module-side handles that pointed at them. No queue stays
// allocated after this returns.
func (a *Adapter) releaseQueues() {
	for i, q := range a.dpToLL {
		q.Close()
		if i < len(a.sinkHandles) {
			a.sinkHandles[i] = nil
		}
	}
	a.dpToLL = nil
	for i, q := range a.llToDP {
		q.Close()
		if i < len(a.srcHandles) {
			a.srcHandles[i] = nil
		}
	}
	a.llToDP = nil
}

// copyShadowQueues is the per-period data movement for DP components: it
// only shuttles bytes between the pipeline buffers and the shadow queues.
// The module itself drains and fills the queues from its own domain.
func (a *Adapter) copyShadowQueues() error {
	for i, p := range a.sources {
		if i >= len(a.llToDP) {
			break
		}
		sink := a.llToDP[i].Sink()
		toCopy := minInt(sink.Free(), p.buf.Available())
		if _, err := stream.SourceToSink(p.buf.Source(), sink, toCopy); err != nil {
			return err
		}
	}
	for i, p := range a.sinks {
		if i >= len(a.dpToLL) {
			break
		}
		src := a.dpToLL[i].Source()
		toCopy := minInt(p.buf.Free(), src.Available())
		if _, err := stream.SourceToSink(src, p.buf.Sink(), toCopy); err != nil {
			return err
		}
	}
	return nil
}

// ShadowQueues returns the queue counts per direction, pipeline-to-module
// and module-to-pipeline.
func (a *Adapter) ShadowQueues() (toModule, toPipeline int) {
	return len(a.llToDP), len(a.dpToLL)
}

package adapter

import (
	"github.com/davidrau-renesas-opensource/sof/stream"
)

// rawDataCopy stages input from the circular buffers into the module's
// linear buffers, runs the module once, then distributes the produced output
// through the local sink buffers into the true sinks.
func (a *Adapter) rawDataCopy() error {
	a.log.Debug("raw copy start")

	localSinks := a.snapshotLocalSinks()
	minFreeFrames := int(^uint(0) >> 1)
	for _, ring := range localSinks {
		if free := ring.FreeFrames(); free < minFreeFrames {
			minFreeFrames = free
		}
	}

	// stage source samples into the input buffers; sources whose producer
	// is not in our state are skipped this period
	staged := a.stagedIdx[:0]
	for pi, p := range a.sources {
		if p.peerState(a.state) != a.state {
			continue
		}
		i := len(staged)
		frames := minInt(minFreeFrames, p.buf.AvailFrames())
		toProcess := minInt(frames*p.buf.Params().FrameBytes(), a.desc.InBuffSize)

		a.input[i].Size = toProcess
		a.input[i].Consumed = 0
		p.buf.PeekTo(a.input[i].Data, toProcess)
		staged = append(staged, pi)
	}
	a.stagedIdx = staged

	err := a.process(a.input[:len(a.sources)], a.output[:len(a.sinks)])
	if err != nil {
		for i := range a.sinks {
			a.output[i].Size = 0
		}
		for i := range staged {
			zeroBytes(a.input[i].Data)
			a.input[i].Size = 0
			a.input[i].Consumed = 0
		}
		a.log.Debugf("raw copy error: %v", err)
		return err
	}

	// consume what the module reported, then scrub the staged input so the
	// next period starts from clean buffers
	var pinConsumed int
	for i, pi := range staged {
		if i == 0 {
			pinConsumed = a.input[i].Consumed
		}
		if consumed := a.input[i].Consumed; consumed > 0 {
			if cerr := a.sources[pi].buf.Consume(consumed); cerr != nil {
				return cerr
			}
		}
		zeroBytes(a.input[i].Data)
		a.input[i].Size = 0
		a.input[i].Consumed = 0
	}
	a.totalConsumed += uint64(pinConsumed)

	a.processOutput()

	a.log.Debug("raw copy done")
	return nil
}

// processOutput drains the module's staged output: first into the local
// sink buffers, then from those into the true sinks under the warm-up gate.
func (a *Adapter) processOutput() {
	localSinks := a.snapshotLocalSinks()

	// the loop moves nothing when the module produced no samples
	for i, ring := range localSinks {
		if i >= len(a.output) {
			break
		}
		if size := a.output[i].Size; size > 0 {
			n := ring.WriteFrom(a.output[i].Data, size)
			if err := ring.Produce(n); err != nil {
				a.log.Errorf("output: local sink produce: %v", err)
			}
		}
	}

	for i, p := range a.sinks {
		if i >= len(localSinks) {
			break
		}
		a.copySamples(localSinks[i], p.buf, a.output[i].Size)
		if i == 0 {
			a.totalProduced += uint64(a.output[i].Size)
		}
		a.output[i].Size = 0
	}
}

// copySamples moves one period from a local sink buffer into a true sink,
// feeding silence while the deep-buffering warm-up still needs input to
// accumulate. The warm-up exit is one-shot for the activation.
func (a *Adapter) copySamples(src, sink *stream.Buffer, produced int) {
	if a.deepBuffBytes > 0 {
		if a.deepBuffBytes >= src.Available() {
			a.generateZeroes(sink, a.periodBytes)
			if a.cfg.Metrics != nil {
				a.cfg.Metrics.Warmup(a.id)
			}
			return
		}
		a.log.Debugf("copy: deep buffering ended after gathering %d bytes", src.Available())
		a.deepBuffBytes = 0
	} else if produced == 0 {
		a.log.Debug("copy: nothing processed in this call")
		// the buffer may still hold data worth a period from earlier calls
		if src.Available() < a.periodBytes {
			return
		}
	}

	frames := src.AvailableFrames(sink)
	copyBytes := frames * src.Params().FrameBytes()
	if copyBytes == 0 {
		return
	}
	n := stream.Copy(sink, src, copyBytes)
	if err := sink.Produce(n); err != nil {
		a.log.Errorf("copy: sink produce: %v", err)
		return
	}
	if err := src.Consume(n); err != nil {
		a.log.Errorf("copy: local sink consume: %v", err)
	}
}

// generateZeroes produces bytes of silence into the sink.
func (a *Adapter) generateZeroes(sink *stream.Buffer, bytes int) {
	n := sink.WriteZero(bytes)
	if err := sink.Produce(n); err != nil {
		a.log.Errorf("copy: zero fill produce: %v", err)
	}
}

func zeroBytes(p []byte) {
	for i := range p {
		p[i] = 0
	}
}

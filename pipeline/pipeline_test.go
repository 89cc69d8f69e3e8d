package pipeline

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrau-renesas-opensource/sof/adapter"
	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/mock"
	"github.com/davidrau-renesas-opensource/sof/module"
	"github.com/davidrau-renesas-opensource/sof/stream"
	"github.com/davidrau-renesas-opensource/sof/volume"
	"github.com/davidrau-renesas-opensource/sof/wav"
)

var testParams = stream.Params{Rate: 48000, Channels: 2, SampleBytes: 2}

func newAdapter(t *testing.T, mod module.Interface) *adapter.Adapter {
	t.Helper()
	a, err := adapter.New(adapter.Config{PeriodFrames: 48}, mod)
	require.NoError(t, err)
	return a
}

func newBuffer() *stream.Buffer {
	return stream.NewBuffer(2*testParams.PeriodBytes(48), testParams)
}

func TestLinkRollback(t *testing.T) {
	from := newAdapter(t, &mock.AudioStream{})
	to := newAdapter(t, &mock.AudioStream{})
	// the consumer's single source port is already taken
	require.NoError(t, to.ConnectSource(newBuffer(), nil))

	err := Link(from, to, newBuffer())
	require.Error(t, err)

	// the producer side must not keep the half-made connection
	require.NoError(t, from.ConnectSink(newBuffer(), nil))
}

func TestPrepareStopsAtPreparedComponent(t *testing.T) {
	first := &mock.AudioStream{}
	second := &mock.AudioStream{}
	a1 := newAdapter(t, first)
	a2 := newAdapter(t, second)
	require.NoError(t, Link(a1, a2, newBuffer()))
	require.NoError(t, a1.ConnectSource(newBuffer(), nil))
	require.NoError(t, a2.ConnectSink(newBuffer(), nil))

	// the tail of the chain is already set up
	require.NoError(t, a2.Prepare())

	line := New(a1, a2)
	require.NoError(t, line.Prepare())
	assert.Equal(t, 1, first.Prepared)
	assert.Equal(t, 1, second.Prepared)
	assert.Equal(t, comp.StatePrepare, a1.State())
}

func TestTriggerStopsAtNoPause(t *testing.T) {
	first := &mock.AudioStream{}
	locked := &mock.AudioStream{}
	locked.Desc = module.Descriptor{NoPause: true}
	third := &mock.AudioStream{}

	a1 := newAdapter(t, first)
	a2 := newAdapter(t, locked)
	a3 := newAdapter(t, third)
	require.NoError(t, Link(a1, a2, newBuffer()))
	require.NoError(t, Link(a2, a3, newBuffer()))
	require.NoError(t, a1.ConnectSource(newBuffer(), nil))
	require.NoError(t, a3.ConnectSink(newBuffer(), nil))

	line := New(a1, a2, a3)
	require.NoError(t, line.Prepare())
	require.NoError(t, line.Trigger(comp.TriggerStart))

	require.NoError(t, line.Trigger(comp.TriggerPause))
	assert.Equal(t, comp.StatePaused, a1.State())
	// the unpausable component and everything downstream keep running
	assert.Equal(t, comp.StateActive, a2.State())
	assert.Equal(t, comp.StateActive, a3.State())
}

func TestCopyRunsSinkFirst(t *testing.T) {
	a1 := newAdapter(t, &mock.AudioStream{})
	a2 := newAdapter(t, &mock.AudioStream{})
	middle := newBuffer()
	require.NoError(t, Link(a1, a2, middle))
	in := newBuffer()
	out := newBuffer()
	require.NoError(t, a1.ConnectSource(in, nil))
	require.NoError(t, a2.ConnectSink(out, nil))

	line := New(a1, a2)
	require.NoError(t, line.Prepare())
	require.NoError(t, line.Trigger(comp.TriggerStart))

	in.WriteFrom(make([]byte, 96), 96)
	require.NoError(t, in.Produce(96))

	// the downstream stage drains the middle buffer before the upstream
	// stage refills it, so data takes one period per hop
	require.NoError(t, line.Copy())
	assert.Equal(t, 0, out.Available())
	assert.Equal(t, 96, middle.Available())

	require.NoError(t, line.Copy())
	assert.Equal(t, 96, out.Available())
}

func TestResetContinuesPastPathStops(t *testing.T) {
	a1 := newAdapter(t, &mock.AudioStream{})
	a2 := newAdapter(t, &mock.AudioStream{})
	require.NoError(t, Link(a1, a2, newBuffer()))
	require.NoError(t, a1.ConnectSource(newBuffer(), nil))
	require.NoError(t, a2.ConnectSink(newBuffer(), nil))

	line := New(a1, a2)
	require.NoError(t, line.Prepare())
	require.NoError(t, line.Reset())
	assert.Equal(t, comp.StateReady, a1.State())
	assert.Equal(t, comp.StateReady, a2.State())
}

// writeTestWav synthesizes a 16 bit stereo file with an even-valued ramp so
// a 0.5 gain halves every sample exactly.
func writeTestWav(t *testing.T, path string, frames int) []int {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := gowav.NewEncoder(f, testParams.Rate, 16, testParams.Channels, 1)

	data := make([]int, frames*testParams.Channels)
	for i := range data {
		data[i] = (i%100 - 50) * 2
	}
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: testParams.Channels, SampleRate: testParams.Rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return data
}

func readTestWav(t *testing.T, path string) []int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	dec := gowav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return buf.Data
}

func TestEndToEndWavGainWav(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")
	input := writeTestWav(t, inPath, 480)

	src := wav.NewSource(inPath)
	srcAd := newAdapter(t, src)
	volAd := newAdapter(t, volume.New())
	snkAd := newAdapter(t, wav.NewSink(outPath))

	upstream := newBuffer()
	downstream := newBuffer()
	require.NoError(t, Link(srcAd, volAd, upstream))
	require.NoError(t, Link(volAd, snkAd, downstream))

	// half gain through the binary configuration path
	var blob [4]byte
	binary.LittleEndian.PutUint32(blob[:], volume.Unity/2)
	cdata := adapter.CtrlData{
		Type:     adapter.CtrlBinary,
		ABI:      adapter.CurrentABI,
		NumElems: 4,
		Data:     blob[:],
	}
	require.NoError(t, volAd.Cmd(adapter.CmdSetData, &cdata))

	line := New(srcAd, volAd, snkAd)
	require.NoError(t, line.Prepare())
	require.NoError(t, line.Trigger(comp.TriggerStart))

	for i := 0; i < 1000; i++ {
		require.NoError(t, line.Copy())
		if src.Drained() && upstream.Available() == 0 && downstream.Available() == 0 {
			break
		}
	}
	require.True(t, src.Drained())

	require.NoError(t, line.Trigger(comp.TriggerStop))
	require.NoError(t, line.Reset())
	line.Free()

	output := readTestWav(t, outPath)
	require.Len(t, output, len(input))
	for i, v := range input {
		assert.Equal(t, v/2, output[i], "sample %d", i)
	}
}

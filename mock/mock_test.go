package mock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/mock"
	"github.com/davidrau-renesas-opensource/sof/module"
)

// The fakes must satisfy the capability interfaces the adapter discovers by
// assertion.
var (
	_ module.Interface           = (*mock.AudioStream)(nil)
	_ module.Processor           = (*mock.AudioStream)(nil)
	_ module.Processor           = (*mock.RawData)(nil)
	_ module.SinkSourceProcessor = (*mock.SinkSource)(nil)
	_ module.Triggerer           = (*mock.Triggered)(nil)
	_ module.Endpoint            = (*mock.Endpoint)(nil)
	_ module.Configurable        = (*mock.Configured)(nil)
)

func TestRawDataChunking(t *testing.T) {
	m := &mock.RawData{}
	m.Desc = module.Descriptor{InBuffSize: 8, OutBuffSize: 8}

	in := []module.InputBuffer{{Data: []byte{1, 2, 3, 4}, Size: 4}}
	out := []module.OutputBuffer{{Data: make([]byte, 8)}}

	// below one chunk, the module gathers and reports no data
	err := m.Process(in, out)
	assert.ErrorIs(t, err, comp.ErrNoData)
	assert.Equal(t, 4, in[0].Consumed)
	assert.Zero(t, out[0].Size)

	in[0] = module.InputBuffer{Data: []byte{5, 6, 7, 8}, Size: 4}
	require.NoError(t, m.Process(in, out))
	assert.Equal(t, 8, out[0].Size)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, out[0].Data)
	assert.Empty(t, m.Acc())
}

func TestCountersAndFailureHooks(t *testing.T) {
	m := &mock.AudioStream{}
	require.NoError(t, m.Prepare(nil, nil))
	require.NoError(t, m.Reset())
	require.NoError(t, m.Free())
	assert.Equal(t, 1, m.Prepared)
	assert.Equal(t, 1, m.Resets)
	assert.Equal(t, 1, m.Frees)

	m.ProcessErr = comp.ErrNoSpace
	assert.ErrorIs(t, m.Process(nil, nil), comp.ErrNoSpace)
}

func TestConfiguredReassembly(t *testing.T) {
	m := &mock.Configured{}
	require.NoError(t, m.SetConfiguration(0, module.FragmentFirst, 8, []byte{1, 2}))
	require.NoError(t, m.SetConfiguration(0, module.FragmentLast, 2, []byte{3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, m.Blob)

	// a fresh transfer replaces the blob
	require.NoError(t, m.SetConfiguration(0, module.FragmentSingle, 0, []byte{9}))
	assert.Equal(t, []byte{9}, m.Blob)
}

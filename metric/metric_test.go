package metric_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrau-renesas-opensource/sof/metric"
)

func TestMeter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.New(reg)

	measure := m.Meter("eq0")()
	measure(192, 192)
	measure(192, 96)

	families, err := reg.Gather()
	require.NoError(t, err)
	byName := map[string]float64{}
	for _, f := range families {
		for _, pm := range f.GetMetric() {
			if c := pm.GetCounter(); c != nil {
				byName[f.GetName()] = c.GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), byName["sof_component_periods_total"])
	assert.Equal(t, float64(384), byName["sof_component_consumed_bytes_total"])
	assert.Equal(t, float64(288), byName["sof_component_produced_bytes_total"])
}

func TestMeterPerComponent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.New(reg)

	m.Meter("a")()(10, 0)
	m.Meter("b")()(20, 0)

	count, err := testutil.GatherAndCount(reg, "sof_component_consumed_bytes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWarmup(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.New(reg)

	m.Warmup("src0")
	m.Warmup("src0")

	count, err := testutil.GatherAndCount(reg, "sof_component_warmup_periods_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetrics(t *testing.T) {
	var m *metric.Metrics
	// nil receiver must stay usable so unmetered adapters need no branches
	assert.NotPanics(t, func() {
		m.Meter("x")()(1, 2)
		m.Warmup("x")
	})
}

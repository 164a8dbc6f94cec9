package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	mm := NewMeshMetrics(reg)

	mm.ObserveMesh(72, 108, time.Millisecond)
	mm.ObserveMesh(24, 36, 2*time.Millisecond)
	mm.ObserveDraw()
	mm.ObserveFrame()
	mm.SetWorldState(4, 100, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(mm.chunksMeshed))
	assert.Equal(t, 96.0, testutil.ToFloat64(mm.verticesEmitted))
	assert.Equal(t, 144.0, testutil.ToFloat64(mm.indicesEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.drawCalls))
	assert.Equal(t, 4.0, testutil.ToFloat64(mm.allocated))
	assert.Equal(t, 100.0, testutil.ToFloat64(mm.activeBlocks))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 10)
}

func TestMeshMetrics_NilSafe(t *testing.T) {
	var mm *MeshMetrics

	assert.NotPanics(t, func() {
		mm.ObserveMesh(1, 1, time.Second)
		mm.ObserveDraw()
		mm.ObserveFrame()
		mm.ObserveError()
		mm.SetWorldState(1, 1, 1)
	})
}

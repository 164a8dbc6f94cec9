package render

import (
	"context"
	"testing"

	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/annel0/voxel-chunks/internal/gpu/headless"
	"github.com/annel0/voxel-chunks/internal/metrics"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConstantBuffer(t *testing.T, dev *headless.Device) gpu.Buffer {
	t.Helper()
	cb, err := dev.CreateBuffer(gpu.ConstantBuffer, make([]byte, gpu.PrimConstantsSize))
	require.NoError(t, err)
	return cb
}

func TestWorldRenderer_DefaultScene(t *testing.T) {
	dev := headless.NewDevice()
	r, err := NewDefaultWorldRenderer(dev, WithMetrics(metrics.NewMeshMetrics(prometheus.NewRegistry())))
	require.NoError(t, err)
	defer r.Release()

	stats := r.World().Stats()
	assert.Equal(t, vec.New(64, 64, 64), stats.Size)
	assert.Equal(t, 4, stats.AllocatedChunks)
	assert.Equal(t, 4, stats.DirtyChunks)

	cb := newConstantBuffer(t, dev)
	report, err := r.Render(context.Background(), dev, cb)
	require.NoError(t, err)

	assert.Equal(t, 4, report.ChunksMeshed)
	assert.Equal(t, 4, report.DrawCalls)
	assert.Equal(t, stats.ActiveBlocks*world.VerticesPerCube, report.Vertices)
	assert.Equal(t, stats.ActiveBlocks*world.IndicesPerCube, report.Indices)
	assert.Len(t, dev.DrawCalls(), 4)
	assert.Equal(t, 0, r.World().Stats().DirtyChunks)
}

func TestWorldRenderer_RemeshesOnlyDirtyChunks(t *testing.T) {
	dev := headless.NewDevice()
	w := world.MustNewWorld(vec.New(64, 32, 32))
	w.AddVoxel(vec.New(0, 0, 0))
	w.AddVoxel(vec.New(40, 0, 0))
	r := NewWorldRenderer(dev, w)
	cb := newConstantBuffer(t, dev)
	ctx := context.Background()

	report, err := r.Render(ctx, dev, cb)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ChunksMeshed)

	dev.ResetFrame()
	report, err = r.Render(ctx, dev, cb)
	require.NoError(t, err)
	assert.Equal(t, 0, report.ChunksMeshed, "Чистые чанки не перестраиваются")
	assert.Equal(t, 2, report.DrawCalls)

	w.AddVoxel(vec.New(41, 0, 0))
	dev.ResetFrame()
	report, err = r.Render(ctx, dev, cb)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChunksMeshed)
	assert.Equal(t, 48, report.Vertices)

	calls := dev.DrawCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, 36, calls[0].IndexCount)
	assert.Equal(t, 72, calls[1].IndexCount)
}

func TestWorldRenderer_EmptyChunkIsNotDrawn(t *testing.T) {
	dev := headless.NewDevice()
	w := world.MustNewWorld(vec.New(32, 32, 32))
	w.AddVoxel(vec.New(1, 1, 1))
	w.RemoveVoxel(vec.New(1, 1, 1))
	r := NewWorldRenderer(dev, w)

	report, err := r.Render(context.Background(), dev, newConstantBuffer(t, dev))
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChunksMeshed)
	assert.Equal(t, 0, report.DrawCalls)
}

func TestWorldRenderer_PropagatesDeviceFailure(t *testing.T) {
	// Константный буфер + 2 буфера первого чанка, на втором чанке устройство "теряется"
	dev := headless.NewDevice(headless.WithBufferLimit(3))
	w := world.MustNewWorld(vec.New(64, 32, 32))
	w.AddVoxel(vec.New(0, 0, 0))
	w.AddVoxel(vec.New(40, 0, 0))
	r := NewWorldRenderer(dev, w)
	cb := newConstantBuffer(t, dev)

	report, err := r.Render(context.Background(), dev, cb)
	assert.ErrorIs(t, err, headless.ErrDeviceLost)
	assert.Equal(t, 1, report.ChunksMeshed)
	assert.Equal(t, 1, report.DrawCalls)
	assert.Equal(t, 1, w.Stats().DirtyChunks)
}

func TestWorldRenderer_MeshDirty(t *testing.T) {
	dev := headless.NewDevice()
	w := world.MustNewWorld(vec.New(32, 32, 32))
	world.Generator{Height: func(x, z int) int { return 2 }}.Fill(w, 4, 4)
	r := NewWorldRenderer(dev, w)

	report, err := r.MeshDirty(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChunksMeshed)
	assert.Equal(t, 32*world.VerticesPerCube, report.Vertices)
	assert.Empty(t, dev.DrawCalls())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.AddVoxel(vec.New(10, 10, 10))
	_, err = r.MeshDirty(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

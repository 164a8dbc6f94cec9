package headless

import (
	"testing"

	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_CreateAndRelease(t *testing.T) {
	d := NewDevice()

	buf, err := d.CreateBuffer(gpu.VertexBuffer, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, buf.Size())
	assert.Equal(t, gpu.VertexBuffer, buf.Kind())
	assert.Equal(t, 1, d.LiveBuffers())

	buf.Release()
	buf.Release()
	assert.Equal(t, 0, d.LiveBuffers(), "буфер должен быть освобождён")
	assert.Equal(t, 1, d.CreatedBuffers())

	err = d.UpdateSubresource(buf, []byte{1})
	assert.ErrorIs(t, err, gpu.ErrReleased)
}

func TestDevice_EmptyBufferRejected(t *testing.T) {
	d := NewDevice()

	_, err := d.CreateBuffer(gpu.IndexBuffer, nil)
	assert.ErrorIs(t, err, gpu.ErrEmptyBuffer)
}

func TestDevice_BufferLimit(t *testing.T) {
	d := NewDevice(WithBufferLimit(1))

	_, err := d.CreateBuffer(gpu.VertexBuffer, []byte{0})
	require.NoError(t, err)

	_, err = d.CreateBuffer(gpu.VertexBuffer, []byte{0})
	assert.ErrorIs(t, err, ErrDeviceLost)
}

func TestDevice_DrawCallCapturesBindings(t *testing.T) {
	d := NewDevice()

	cb, err := d.CreateBuffer(gpu.ConstantBuffer, make([]byte, gpu.PrimConstantsSize))
	require.NoError(t, err)
	vb, err := d.CreateBuffer(gpu.VertexBuffer, gpu.EncodeVertices([]gpu.Vertex{{}}))
	require.NoError(t, err)
	ib, err := d.CreateBuffer(gpu.IndexBuffer, gpu.EncodeIndices([]uint32{0, 0, 0}, gpu.IndexUint16))
	require.NoError(t, err)

	consts := gpu.PrimConstants{World: mgl32.Translate3D(1, 2, 3), SpecularPower: 15}
	require.NoError(t, d.UpdateSubresource(cb, consts.Bytes()))
	d.SetVertexBuffer(0, vb, gpu.VertexStride, 0)
	d.SetIndexBuffer(ib, gpu.IndexUint16, 0)
	d.SetPrimitiveTopology(gpu.TriangleList)
	d.DrawIndexed(3, 0, 0)

	calls := d.DrawCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 3, calls[0].IndexCount)
	assert.Equal(t, gpu.VertexStride, calls[0].Stride)
	assert.Equal(t, vb, calls[0].VertexBuffer)
	assert.Equal(t, ib, calls[0].IndexBuffer)
	assert.Equal(t, float32(15), calls[0].Constants.SpecularPower)
	assert.Equal(t, consts.World, calls[0].Constants.World)

	d.ResetFrame()
	assert.Empty(t, d.DrawCalls())
}

package gpu

import (
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEncodeVertices_Layout(t *testing.T) {
	in := []Vertex{
		{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{-0.5, 0.5, 7}, Normal: mgl32.Vec3{0, 0, -1}, UV: mgl32.Vec2{0, 1}},
	}

	data := EncodeVertices(in)
	assert.Len(t, data, 2*VertexStride)
	assert.Equal(t, in, DecodeVertices(data))
	assert.Equal(t, 24, VertexLayout[2].Offset)
}

func TestEncodeIndices_Formats(t *testing.T) {
	idx := []uint32{0, 1, 65535}

	short := EncodeIndices(idx, IndexUint16)
	assert.Len(t, short, 6)
	assert.Equal(t, uint16(65535), binary.LittleEndian.Uint16(short[4:]))

	wide := EncodeIndices([]uint32{70000}, IndexUint32)
	assert.Len(t, wide, 4)
	assert.Equal(t, uint32(70000), binary.LittleEndian.Uint32(wide))
}

func TestPrimConstants_Aligned(t *testing.T) {
	assert.Zero(t, PrimConstantsSize%16)

	c := PrimConstants{
		World:         mgl32.Scale3D(2, 2, 2),
		MeshColor:     mgl32.Vec4{0.8, 0.8, 0.8, 0.5},
		DiffuseColor:  mgl32.Vec4{0.1, 0.2, 0.3, 0.4},
		SpecularColor: mgl32.Vec4{1, 1, 1, 1},
		SpecularPower: 15,
	}
	data := c.Bytes()
	assert.Len(t, data, PrimConstantsSize)
	assert.Equal(t, c, DecodePrimConstants(data))
}

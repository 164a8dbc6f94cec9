package gpu

import "github.com/go-gl/mathgl/mgl32"

// PrimConstants - константный буфер, обновляемый для каждого примитива
// (матрица модели и параметры материала).
type PrimConstants struct {
	World         mgl32.Mat4
	MeshColor     mgl32.Vec4
	DiffuseColor  mgl32.Vec4
	SpecularColor mgl32.Vec4
	SpecularPower float32
}

// PrimConstantsSize - размер буфера с выравниванием до 16 байт
const PrimConstantsSize = (16*4 + 3*4*4 + 4 + 15) / 16 * 16

// Bytes упаковывает константы в формат, ожидаемый шейдером.
// Матрица пишется в порядке хранения mgl32 (column-major).
func (c PrimConstants) Bytes() []byte {
	buf := make([]byte, PrimConstantsSize)
	off := putFloats(buf, 0, c.World[:]...)
	off = putFloats(buf, off, c.MeshColor[:]...)
	off = putFloats(buf, off, c.DiffuseColor[:]...)
	off = putFloats(buf, off, c.SpecularColor[:]...)
	putFloats(buf, off, c.SpecularPower)
	return buf
}

// DecodePrimConstants разбирает буфер, записанный Bytes
func DecodePrimConstants(data []byte) PrimConstants {
	f := readFloats(data, 16+12+1)
	var c PrimConstants
	copy(c.World[:], f[0:16])
	copy(c.MeshColor[:], f[16:20])
	copy(c.DiffuseColor[:], f[20:24])
	copy(c.SpecularColor[:], f[24:28])
	c.SpecularPower = f[28]
	return c
}

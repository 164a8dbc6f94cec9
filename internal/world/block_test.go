package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_ZeroValueIsInactive(t *testing.T) {
	var b Block

	assert.False(t, b.Active, "Блок по умолчанию должен быть неактивным")
	assert.Equal(t, MaterialDefault, b.Material)
	assert.Equal(t, Block{Active: true, Material: MaterialSand}, NewActiveBlock(MaterialSand))
}

func TestParseMaterial(t *testing.T) {
	for m := MaterialDefault; m < materialCount; m++ {
		parsed, err := ParseMaterial(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	m, err := ParseMaterial("  Stone ")
	require.NoError(t, err)
	assert.Equal(t, MaterialStone, m)

	m, err = ParseMaterial("")
	require.NoError(t, err)
	assert.Equal(t, MaterialDefault, m)

	_, err = ParseMaterial("lava")
	assert.Error(t, err)

	assert.False(t, BlockMaterial(200).Valid())
	assert.Equal(t, "material(200)", BlockMaterial(200).String())
}

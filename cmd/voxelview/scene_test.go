package main

import (
	"testing"

	"github.com/annel0/voxel-chunks/internal/config"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWorldDefaults(t *testing.T) {
	w, err := buildWorld(&config.WorldConfig{})
	require.NoError(t, err)

	stats := w.Stats()
	assert.Equal(t, vec.New(64, 64, 64), stats.Size)
	assert.Equal(t, 4, stats.AllocatedChunks)
	assert.Equal(t, stats.AllocatedChunks, stats.DirtyChunks)
}

func TestBuildWorldGenerators(t *testing.T) {
	w, err := buildWorld(&config.WorldConfig{SizeX: 32, SizeY: 32, SizeZ: 32, Generator: "flat", Layered: true})
	require.NoError(t, err)
	assert.Equal(t, 32*32, w.Stats().ActiveBlocks)
	b, ok := w.BlockAt(vec.New(3, 0, 3))
	require.True(t, ok)
	assert.Equal(t, world.LayeredMaterial(0, 1), b.Material)

	w, err = buildWorld(&config.WorldConfig{SizeX: 32, SizeY: 32, SizeZ: 32, Generator: "empty"})
	require.NoError(t, err)
	assert.Equal(t, 0, w.Stats().AllocatedChunks)

	w, err = buildWorld(&config.WorldConfig{SizeX: 32, SizeY: 32, SizeZ: 32, Generator: "perlin", Seed: 7, MaxHeight: 8})
	require.NoError(t, err)
	assert.Greater(t, w.Stats().ActiveBlocks, 0)

	_, err = buildWorld(&config.WorldConfig{Generator: "volcano"})
	assert.Error(t, err)

	_, err = buildWorld(&config.WorldConfig{SizeX: 33})
	assert.ErrorIs(t, err, world.ErrInvalidSize)
}

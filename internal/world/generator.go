package world

import (
	"math"

	"github.com/annel0/voxel-chunks/internal/util"
	"github.com/annel0/voxel-chunks/internal/vec"
)

// HeightFunc возвращает высоту столбца (количество блоков от y=0) для (x, z)
type HeightFunc func(x, z int) int

// MaterialFunc выбирает материал блока на высоте y в столбце высотой height
type MaterialFunc func(y, height int) BlockMaterial

// SineHills - два наложенных синуса: 1 + ⌊(sin(x/8)+1)*4⌋ + ⌊(sin(z/4)+1)*4⌋
func SineHills(x, z int) int {
	hx := int((math.Sin(float64(x)/8.0) + 1) * 4)
	hz := int((math.Sin(float64(z)/4.0) + 1) * 4)
	return 1 + hx + hz
}

// ZeroHeight - плоский пустой ландшафт
func ZeroHeight(x, z int) int {
	return 0
}

// PerlinHills возвращает функцию высоты на шуме Перлина.
// scale - масштаб координат шума, maxHeight - максимальная высота столбца.
func PerlinHills(seed int64, scale float64, maxHeight int) HeightFunc {
	noise := util.NewNoise2D(seed)
	return func(x, z int) int {
		return 1 + int(noise.At(float64(x)*scale, float64(z)*scale)*float64(maxHeight-1))
	}
}

// Константы слоёв для LayeredMaterial
const (
	dirtDepth  = 3 // Сколько блоков земли под травой
	waterLevel = 3 // Столбцы ниже - песок и вода
)

// LayeredMaterial: трава сверху, под ней земля, глубже камень.
// Низкие столбцы покрываются песком, а самый нижний слой у воды - водой.
func LayeredMaterial(y, height int) BlockMaterial {
	top := height - 1
	switch {
	case height <= waterLevel && y == top:
		return MaterialWater
	case height <= waterLevel:
		return MaterialSand
	case y == top:
		return MaterialGrass
	case y >= top-dirtDepth:
		return MaterialDirt
	default:
		return MaterialStone
	}
}

// Generator заполняет мир столбцами по функции высоты
type Generator struct {
	Height   HeightFunc
	Material MaterialFunc // nil - все блоки с материалом по умолчанию
}

// Fill заполняет столбцы в области [0,footprintX) × [0,footprintZ) от y=0 до высоты.
// Блоки вне мира пропускаются. Возвращает количество размещённых блоков.
func (g Generator) Fill(w *World, footprintX, footprintZ int) int {
	placed := 0
	for x := 0; x < footprintX; x++ {
		for z := 0; z < footprintZ; z++ {
			height := g.Height(x, z)
			for y := 0; y < height; y++ {
				p := vec.New(x, y, z)
				var ok bool
				if g.Material == nil {
					ok = w.AddVoxel(p)
				} else {
					ok = w.SetVoxel(p, g.Material(y, height))
				}
				if ok {
					placed++
				}
			}
		}
	}
	return placed
}

package world

import (
	"fmt"
	"strings"
)

// BlockMaterial определяет визуальный материал блока
type BlockMaterial uint8

const (
	MaterialDefault BlockMaterial = iota
	MaterialGrass
	MaterialDirt
	MaterialWater
	MaterialStone
	MaterialWood
	MaterialSand

	materialCount
)

var materialNames = [materialCount]string{
	MaterialDefault: "default",
	MaterialGrass:   "grass",
	MaterialDirt:    "dirt",
	MaterialWater:   "water",
	MaterialStone:   "stone",
	MaterialWood:    "wood",
	MaterialSand:    "sand",
}

// String возвращает имя материала
func (m BlockMaterial) String() string {
	if m < materialCount {
		return materialNames[m]
	}
	return fmt.Sprintf("material(%d)", uint8(m))
}

// Valid возвращает true для известных материалов
func (m BlockMaterial) Valid() bool {
	return m < materialCount
}

// ParseMaterial разбирает имя материала (без учёта регистра).
// Пустая строка означает MaterialDefault.
func ParseMaterial(name string) (BlockMaterial, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return MaterialDefault, nil
	}
	for i, n := range materialNames {
		if n == name {
			return BlockMaterial(i), nil
		}
	}
	return MaterialDefault, fmt.Errorf("неизвестный материал %q", name)
}

// Block - одна ячейка воксельной сетки.
// Нулевое значение - неактивный блок с материалом по умолчанию.
type Block struct {
	Active   bool
	Material BlockMaterial
}

// NewActiveBlock создаёт активный блок с указанным материалом
func NewActiveBlock(material BlockMaterial) Block {
	return Block{Active: true, Material: material}
}

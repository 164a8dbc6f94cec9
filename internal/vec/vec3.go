package vec

import "github.com/go-gl/mathgl/mgl32"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется для мировых координат вокселей, локальных координат внутри
// чанка и индексов чанков в сетке мира.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// New создаёт вектор из трёх компонент
func New(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Mul умножает все компоненты на скаляр
func (v Vec3) Mul(k int) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Shr сдвигает все компоненты вправо (деление на 2^n)
func (v Vec3) Shr(n uint) Vec3 {
	return Vec3{X: v.X >> n, Y: v.Y >> n, Z: v.Z >> n}
}

// And применяет битовую маску к каждой компоненте (остаток от деления на 2^n)
func (v Vec3) And(mask int) Vec3 {
	return Vec3{X: v.X & mask, Y: v.Y & mask, Z: v.Z & mask}
}

// AnyNegative возвращает true, если хотя бы одна компонента меньше нуля
func (v Vec3) AnyNegative() bool {
	return v.X < 0 || v.Y < 0 || v.Z < 0
}

// AnyAtLeast возвращает true, если хотя бы одна компонента >= соответствующей компоненты limit
func (v Vec3) AnyAtLeast(limit Vec3) bool {
	return v.X >= limit.X || v.Y >= limit.Y || v.Z >= limit.Z
}

// Volume возвращает произведение компонент
func (v Vec3) Volume() int {
	return v.X * v.Y * v.Z
}

// ToFloat преобразует вектор в mgl32.Vec3
func (v Vec3) ToFloat() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

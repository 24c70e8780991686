package vec

import "math"

// Vec2 представляет целочисленные координаты клетки сетки
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// SideOffsets - смещения к четырём соседям по сторонам (право, низ, лево, верх).
// Порядок важен: генератор пещер тратит случайные числа именно в этом порядке.
var SideOffsets = [4]Vec2{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
}

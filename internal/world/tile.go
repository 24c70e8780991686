package world

import (
	"math"

	"github.com/Sunlight4/subterranea/internal/vec"
)

// SlopeRotation - поворот скоса клетки в градусах (0, 90, 180, 270)
type SlopeRotation int

const (
	Slope0   SlopeRotation = 0   // заполнены право и низ
	Slope90  SlopeRotation = 90  // заполнены лево и низ
	Slope180 SlopeRotation = 180 // заполнены лево и верх
	Slope270 SlopeRotation = 270 // заполнены право и верх
)

// Valid проверяет, что поворот кратен 90 и лежит в [0, 360)
func (r SlopeRotation) Valid() bool {
	return r == Slope0 || r == Slope90 || r == Slope180 || r == Slope270
}

// Tile - клетка сетки размером 1x1.
//
// Occupants хранит идентификаторы тел, пересекающих клетку на момент
// последней перераскладки этих тел. Клетка не владеет телами.
type Tile struct {
	Pos           vec.Vec2
	Filled        bool
	Sloped        bool
	SlopeRotation SlopeRotation

	occupants []BodyID
}

// Occupants возвращает копию списка тел в клетке
func (t *Tile) Occupants() []BodyID {
	if len(t.occupants) == 0 {
		return nil
	}
	out := make([]BodyID, len(t.occupants))
	copy(out, t.occupants)
	return out
}

// HasOccupant проверяет, числится ли тело в клетке
func (t *Tile) HasOccupant(id BodyID) bool {
	for _, o := range t.occupants {
		if o == id {
			return true
		}
	}
	return false
}

// Bounds возвращает прямоугольник клетки в мировых координатах
func (t *Tile) Bounds() vec.Rect {
	return vec.Rect{X: float64(t.Pos.X), Y: float64(t.Pos.Y), Width: 1, Height: 1}
}

// Normal возвращает единичную нормаль скоса (ось Y направлена вниз).
// Для клеток без скоса возвращается нулевой вектор.
func (t *Tile) Normal() vec.Vec2Float {
	if !t.Sloped {
		return vec.Vec2Float{}
	}
	return SlopeNormal(t.SlopeRotation)
}

// SlopeNormal возвращает нормаль для поворота скоса
func SlopeNormal(r SlopeRotation) vec.Vec2Float {
	d := 1 / math.Sqrt2
	switch r {
	case Slope0:
		return vec.Vec2Float{X: -d, Y: -d}
	case Slope90:
		return vec.Vec2Float{X: d, Y: -d}
	case Slope180:
		return vec.Vec2Float{X: d, Y: d}
	case Slope270:
		return vec.Vec2Float{X: -d, Y: d}
	default:
		return vec.Vec2Float{}
	}
}

// reset сбрасывает заливку и скос на месте, не трогая список тел
func (t *Tile) reset(filled bool) {
	t.Filled = filled
	t.Sloped = false
	t.SlopeRotation = Slope0
}

func (t *Tile) addOccupant(id BodyID) {
	if t.HasOccupant(id) {
		return
	}
	t.occupants = append(t.occupants, id)
}

// removeOccupant удаляет тело из клетки; false, если тела там не было
func (t *Tile) removeOccupant(id BodyID) bool {
	for i, o := range t.occupants {
		if o == id {
			last := len(t.occupants) - 1
			copy(t.occupants[i:], t.occupants[i+1:])
			t.occupants[last] = 0
			t.occupants = t.occupants[:last]
			return true
		}
	}
	return false
}

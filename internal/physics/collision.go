package physics

import (
	"math"

	"github.com/Sunlight4/subterranea/internal/vec"
	"github.com/Sunlight4/subterranea/internal/world"
)

// Коэффициенты отклика по умолчанию
const (
	DefaultBounce   = 0.2
	DefaultFriction = 0.9
)

// Resolver - узкая фаза столкновений для тел Box.
// Тела других типов пропускаются.
type Resolver struct {
	Bounce   float64
	Friction float64
}

// NewResolver создаёт резолвер с коэффициентами по умолчанию
func NewResolver() *Resolver {
	return &Resolver{Bounce: DefaultBounce, Friction: DefaultFriction}
}

// CheckTerrainCollision выталкивает тело из заполненной клетки.
// Обычная клетка выталкивает по оси наименьшего проникновения,
// клетка со скосом - вдоль нормали скоса.
func (r *Resolver) CheckTerrainCollision(b world.Body, t *world.Tile) {
	box, ok := b.(*Box)
	if !ok || !t.Filled {
		return
	}
	bounds := box.Bounds()
	cell := t.Bounds()
	if !bounds.Intersects(cell) {
		return
	}

	var axis vec.Vec2Float
	var depth float64
	if t.Sloped {
		axis = t.Normal()
		depth = slopePenetration(bounds, cell, axis)
	} else {
		axis, depth = separation(bounds, cell)
	}
	if depth <= 0 {
		return
	}

	box.Move(axis.Mul(depth))
	box.Collide(axis, r.Bounce, r.Friction)
}

// CheckBodyCollision раздвигает два тела поровну по оси наименьшего проникновения
func (r *Resolver) CheckBodyCollision(a, b world.Body) {
	boxA, okA := a.(*Box)
	boxB, okB := b.(*Box)
	if !okA || !okB || boxA == boxB {
		return
	}
	ra, rb := boxA.Bounds(), boxB.Bounds()
	if !ra.Intersects(rb) {
		return
	}

	axis, depth := separation(ra, rb)
	if depth <= 0 {
		return
	}
	half := depth / 2
	boxA.Move(axis.Mul(half))
	boxB.Move(axis.Mul(-half))
	boxA.Collide(axis, r.Bounce, r.Friction)
	boxB.Collide(axis.Mul(-1), r.Bounce, r.Friction)
}

// separation возвращает единичную ось, вдоль которой нужно сдвинуть a,
// чтобы вывести его из b, и глубину проникновения
func separation(a, b vec.Rect) (vec.Vec2Float, float64) {
	ox, oy := a.Overlap(b)
	if ox <= 0 || oy <= 0 {
		return vec.Vec2Float{}, 0
	}
	ca, cb := a.Center(), b.Center()
	if ox < oy {
		if ca.X < cb.X {
			return vec.Vec2Float{X: -1}, ox
		}
		return vec.Vec2Float{X: 1}, ox
	}
	if ca.Y < cb.Y {
		return vec.Vec2Float{Y: -1}, oy
	}
	return vec.Vec2Float{Y: 1}, oy
}

// slopePenetration возвращает глубину проникновения прямоугольника в
// сплошную половину клетки со скосом. Граница скоса - диагональ через
// центр клетки с внешней нормалью n.
func slopePenetration(box, cell vec.Rect, n vec.Vec2Float) float64 {
	// Самый глубокий угол лежит против нормали
	corner := vec.Vec2Float{X: box.Left(), Y: box.Top()}
	if n.X < 0 {
		corner.X = box.Right()
	}
	if n.Y < 0 {
		corner.Y = box.Bottom()
	}
	d := corner.Sub(cell.Center()).Dot(n)
	// Сплошная часть не выходит за клетку
	maxDepth := math.Sqrt2 / 2
	return math.Min(-d, maxDepth)
}

package physics

import (
	"github.com/Sunlight4/subterranea/internal/vec"
	"github.com/Sunlight4/subterranea/internal/world"
)

// DefaultGravity - ускорение свободного падения в клетках/с², ось Y вниз
const DefaultGravity = 20.0

// Box - прямоугольное динамическое тело
type Box struct {
	world.BodyFlags

	Pos      vec.Vec2Float // Левый верхний угол
	Size     vec.Vec2Float
	Velocity vec.Vec2Float
	Gravity  float64

	collisionAxis vec.Vec2Float
	collided      bool
}

// NewBox создаёт тело с гравитацией по умолчанию
func NewBox(x, y, width, height float64) *Box {
	return &Box{
		Pos:     vec.Vec2Float{X: x, Y: y},
		Size:    vec.Vec2Float{X: width, Y: height},
		Gravity: DefaultGravity,
	}
}

// Bounds возвращает AABB тела
func (b *Box) Bounds() vec.Rect {
	return vec.Rect{X: b.Pos.X, Y: b.Pos.Y, Width: b.Size.X, Height: b.Size.Y}
}

// Update интегрирует скорость за dt секунд
func (b *Box) Update(dt float64) {
	b.Velocity.Y += b.Gravity * dt
	b.Move(b.Velocity.Mul(dt))
}

// Move сдвигает тело и помечает его для перераскладки
func (b *Box) Move(d vec.Vec2Float) {
	if d.IsZero() {
		return
	}
	b.Pos = b.Pos.Add(d)
	b.SetDirty(true)
}

// Collide реагирует на контакт с поверхностью, нормаль которой axis.
// Нормальная составляющая скорости отражается с коэффициентом bounce,
// касательная умножается на friction. Если тело уже удаляется от
// поверхности, скорость не меняется.
func (b *Box) Collide(axis vec.Vec2Float, bounce, friction float64) {
	n := axis.Normalized()
	if n.IsZero() {
		return
	}
	b.collisionAxis = n
	b.collided = true

	if b.Velocity.Dot(n) >= 0 {
		return
	}
	normal := b.Velocity.Project(n)
	tangent := b.Velocity.Sub(normal)
	b.Velocity = normal.Mul(-bounce).Add(tangent.Mul(friction))
}

// CollisionAxis возвращает нормаль последнего контакта
func (b *Box) CollisionAxis() (vec.Vec2Float, bool) {
	return b.collisionAxis, b.collided
}

// Surface возвращает единичное направление вдоль последней поверхности
// контакта, повёрнутое в сторону +X. Для вертикальной стены X равен нулю,
// и тело не может двигаться вдоль неё по горизонтали.
func (b *Box) Surface() (vec.Vec2Float, bool) {
	if !b.collided {
		return vec.Vec2Float{}, false
	}
	along := b.collisionAxis.Rotate90()
	if along.X < 0 {
		along = along.Mul(-1)
	}
	return along.Normalized(), true
}

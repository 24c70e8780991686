package world

import (
	"github.com/Sunlight4/subterranea/internal/vec"
)

// BodyID - дескриптор зарегистрированного тела; 0 не используется
type BodyID uint32

// Body - динамическое тело, которым владеет внешний код.
// TileManager хранит только дескриптор и диапазон занятых клеток.
type Body interface {
	Bounds() vec.Rect  // Текущий AABB тела
	Update(dt float64) // Собственное поведение тела за шаг

	Dirty() bool // Границы изменились и тело нужно переразложить
	SetDirty(bool)

	Processed() bool // Тело уже прошло проход столкновений в этом шаге
	SetProcessed(bool)
}

// BodyFlags реализует флаговую часть Body; удобно встраивать в тела
type BodyFlags struct {
	dirty     bool
	processed bool
}

func (f *BodyFlags) Dirty() bool { return f.dirty }
func (f *BodyFlags) SetDirty(v bool) { f.dirty = v }
func (f *BodyFlags) Processed() bool { return f.processed }
func (f *BodyFlags) SetProcessed(v bool) { f.processed = v }

// Resolver - узкая фаза столкновений, внешний коллаборатор.
// Обе проверки могут корректировать положение и скорость тел.
type Resolver interface {
	CheckTerrainCollision(b Body, t *Tile)
	CheckBodyCollision(a, b Body)
}

// noopResolver используется, когда узкая фаза не задана
type noopResolver struct{}

func (noopResolver) CheckTerrainCollision(Body, *Tile) {}
func (noopResolver) CheckBodyCollision(Body, Body) {}

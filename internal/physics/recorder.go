package physics

import (
	"github.com/Sunlight4/subterranea/internal/vec"
	"github.com/Sunlight4/subterranea/internal/world"
)

// TerrainCall - запрос проверки тела с клеткой
type TerrainCall struct {
	Body world.Body
	Cell vec.Vec2
}

// PairCall - запрос проверки двух тел
type PairCall struct {
	A, B world.Body
}

// Recorder только запоминает запросы узкой фазы, ничего не двигая.
// Полезен для сухих прогонов и отладки раскладки.
type Recorder struct {
	Terrain []TerrainCall
	Pairs   []PairCall
}

func (r *Recorder) CheckTerrainCollision(b world.Body, t *world.Tile) {
	r.Terrain = append(r.Terrain, TerrainCall{Body: b, Cell: t.Pos})
}

func (r *Recorder) CheckBodyCollision(a, b world.Body) {
	r.Pairs = append(r.Pairs, PairCall{A: a, B: b})
}

// PairChecked сообщает, проверялась ли неупорядоченная пара
func (r *Recorder) PairChecked(a, b world.Body) bool {
	for _, p := range r.Pairs {
		if (p.A == a && p.B == b) || (p.A == b && p.B == a) {
			return true
		}
	}
	return false
}

// Reset очищает записанные запросы
func (r *Recorder) Reset() {
	r.Terrain = r.Terrain[:0]
	r.Pairs = r.Pairs[:0]
}

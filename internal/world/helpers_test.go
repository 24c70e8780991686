package world

import (
	"github.com/Sunlight4/subterranea/internal/vec"
)

// testBody - простое тело для тестов: прямоугольник и опциональное смещение за шаг
type testBody struct {
	BodyFlags
	rect    vec.Rect
	move    vec.Vec2Float
	updates int
}

func newTestBody(x, y, w, h float64) *testBody {
	return &testBody{rect: vec.Rect{X: x, Y: y, Width: w, Height: h}}
}

func (b *testBody) Bounds() vec.Rect { return b.rect }

func (b *testBody) Update(float64) {
	b.updates++
	if !b.move.IsZero() {
		b.rect = b.rect.Translate(b.move)
		b.SetDirty(true)
	}
}

// recordingResolver запоминает все запросы проверок
type recordingResolver struct {
	terrain map[Body][]vec.Vec2
	pairs   map[[2]Body]int
}

func newRecordingResolver() *recordingResolver {
	return &recordingResolver{
		terrain: make(map[Body][]vec.Vec2),
		pairs:   make(map[[2]Body]int),
	}
}

func (r *recordingResolver) CheckTerrainCollision(b Body, t *Tile) {
	r.terrain[b] = append(r.terrain[b], t.Pos)
}

func (r *recordingResolver) CheckBodyCollision(a, b Body) {
	r.pairs[[2]Body{a, b}]++
}

// pairCount считает вызовы для неупорядоченной пары
func (r *recordingResolver) pairCount(a, b Body) int {
	return r.pairs[[2]Body{a, b}] + r.pairs[[2]Body{b, a}]
}

func (r *recordingResolver) reset() {
	r.terrain = make(map[Body][]vec.Vec2)
	r.pairs = make(map[[2]Body]int)
}

func newTestManager(w, h int) *TileManager {
	return NewTileManager(Options{Width: w, Height: h, Seed: 1})
}

// fillSnapshot возвращает построчную картину заливки
func fillSnapshot(tm *TileManager) []bool {
	out := make([]bool, 0, tm.Width()*tm.Height())
	for y := 0; y < tm.Height(); y++ {
		for x := 0; x < tm.Width(); x++ {
			out = append(out, tm.IsFilled(x, y))
		}
	}
	return out
}

// fillRect заполняет прямоугольник [x0, x1] x [y0, y1]
func fillRect(tm *TileManager, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			tm.SetAt(x, y, true)
		}
	}
}

package world

import (
	"math"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/Sunlight4/subterranea/internal/logging"
	"github.com/Sunlight4/subterranea/internal/vec"
)

// cellRange - включительный диапазон клеток, обрезанный по карте
type cellRange struct {
	minX, minY int
	maxX, maxY int
	empty      bool
}

// each обходит клетки диапазона
func (r cellRange) each(fn func(x, y int)) {
	if r.empty {
		return
	}
	for x := r.minX; x <= r.maxX; x++ {
		for y := r.minY; y <= r.maxY; y++ {
			fn(x, y)
		}
	}
}

// bodyEntry - запись о зарегистрированном теле
type bodyEntry struct {
	id    BodyID
	body  Body
	cells cellRange // Клетки, в которых тело числится сейчас
}

// StepStats - счётчики одного шага
type StepStats struct {
	Bodies        int
	Rebucketed    int
	TerrainChecks int
	PairChecks    int
}

// coveringRange вычисляет клетки, покрытые прямоугольником.
// Нижняя граница округляется вниз, верхняя вверх, обе включительно,
// чтобы ни одна пересекаемая клетка не потерялась из-за округления.
// Границы обрезаются по карте до перевода в int, поэтому огромные и
// бесконечные прямоугольники покрывают всю карту. NaN даёт пустой диапазон.
func (tm *TileManager) coveringRange(b vec.Rect) cellRange {
	left, top := b.Left(), b.Top()
	right, bottom := b.Right(), b.Bottom()
	if math.IsNaN(left) || math.IsNaN(top) || math.IsNaN(right) || math.IsNaN(bottom) {
		return cellRange{empty: true}
	}

	minX := math.Max(0, math.Floor(left))
	minY := math.Max(0, math.Floor(top))
	maxX := math.Min(float64(tm.width-1), math.Ceil(right))
	maxY := math.Min(float64(tm.height-1), math.Ceil(bottom))
	if minX > maxX || minY > maxY {
		return cellRange{empty: true}
	}
	return cellRange{
		minX: int(minX), minY: int(minY),
		maxX: int(maxX), maxY: int(maxY),
	}
}

// Register начинает отслеживать тело и помечает его для раскладки на следующем шаге
func (tm *TileManager) Register(b Body) BodyID {
	id := tm.nextID
	tm.nextID++

	tm.bodies[id] = &bodyEntry{id: id, body: b, cells: cellRange{empty: true}}
	tm.order = append(tm.order, id)
	b.SetDirty(true)

	tm.metrics.setBodies(len(tm.order))
	logging.Debug("Тело %d зарегистрировано", id)
	return id
}

// Unregister убирает тело из отслеживания и из всех клеток
func (tm *TileManager) Unregister(id BodyID) bool {
	entry, ok := tm.bodies[id]
	if !ok {
		return false
	}
	tm.detach(entry)
	delete(tm.bodies, id)

	for i, oid := range tm.order {
		if oid == id {
			tm.order = append(tm.order[:i], tm.order[i+1:]...)
			break
		}
	}

	tm.metrics.setBodies(len(tm.order))
	logging.Debug("Тело %d снято с учёта", id)
	return true
}

// Body возвращает тело по дескриптору
func (tm *TileManager) Body(id BodyID) (Body, bool) {
	entry, ok := tm.bodies[id]
	if !ok {
		return nil, false
	}
	return entry.body, true
}

// Bodies возвращает дескрипторы в порядке регистрации
func (tm *TileManager) Bodies() []BodyID {
	out := make([]BodyID, len(tm.order))
	copy(out, tm.order)
	return out
}

// OccupiedCells возвращает клетки, в которых сейчас числится тело
func (tm *TileManager) OccupiedCells(id BodyID) []vec.Vec2 {
	entry, ok := tm.bodies[id]
	if !ok {
		return nil
	}
	var cells []vec.Vec2
	entry.cells.each(func(x, y int) {
		cells = append(cells, vec.Vec2{X: x, Y: y})
	})
	return cells
}

// detach удаляет тело из всех клеток прежнего диапазона
func (tm *TileManager) detach(entry *bodyEntry) {
	entry.cells.each(func(x, y int) {
		if !tm.tiles[y*tm.width+x].removeOccupant(entry.id) {
			tm.metrics.invariantError()
			invariantViolation("тело %d не найдено в клетке %d:%d", entry.id, x, y)
		}
	})
	entry.cells = cellRange{empty: true}
}

// rebucket перекладывает тело по клеткам его текущих границ.
// Сначала удаление из старых клеток, затем добавление в новые.
func (tm *TileManager) rebucket(entry *bodyEntry) {
	tm.detach(entry)
	r := tm.coveringRange(entry.body.Bounds())
	r.each(func(x, y int) {
		tm.tiles[y*tm.width+x].addOccupant(entry.id)
	})
	entry.cells = r
}

// Step выполняет один шаг симуляции.
//
// Фаза 1: для каждого тела вызывается Update, изменившиеся тела
// перекладываются по клеткам. Фаза 2: для каждого тела по порядку
// запрашиваются проверки с заполненными клетками его диапазона и с телами,
// делящими с ним клетку и ещё не прошедшими фазу 2. Каждая пара
// проверяется не более одного раза за шаг.
func (tm *TileManager) Step(dt float64) StepStats {
	start := time.Now()
	stats := StepStats{Bodies: len(tm.order)}

	// Тела не должны регистрироваться и сниматься во время шага
	order := tm.order

	for _, id := range order {
		entry := tm.bodies[id]
		entry.body.Update(dt)
		if entry.body.Dirty() {
			entry.body.SetDirty(false)
			tm.rebucket(entry)
			stats.Rebucketed++
		}
	}

	for _, id := range order {
		tm.bodies[id].body.SetProcessed(false)
	}

	for _, id := range order {
		entry := tm.bodies[id]
		b := entry.body
		seen := mapset.New[BodyID]()

		entry.cells.each(func(x, y int) {
			tile := &tm.tiles[y*tm.width+x]
			if tile.Filled {
				tm.resolver.CheckTerrainCollision(b, tile)
				stats.TerrainChecks++
			}
			for _, other := range tile.occupants {
				if other == id || seen.Has(other) {
					continue
				}
				otherEntry, ok := tm.bodies[other]
				if !ok {
					invariantViolation("клетка %d:%d ссылается на неизвестное тело %d", x, y, other)
					continue
				}
				if otherEntry.body.Processed() {
					continue
				}
				seen.Put(other)
				tm.resolver.CheckBodyCollision(b, otherEntry.body)
				stats.PairChecks++
			}
		})

		b.SetProcessed(true)
	}

	took := time.Since(start)
	tm.metrics.observeStep(stats, took)
	logging.Trace("Шаг: тел %d, переложено %d, проверок рельефа %d, пар %d, %v",
		stats.Bodies, stats.Rebucketed, stats.TerrainChecks, stats.PairChecks, took)
	return stats
}

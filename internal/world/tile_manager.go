package world

import (
	"github.com/Sunlight4/subterranea/internal/vec"
)

// Размер карты по умолчанию
const (
	MapX = 1000
	MapY = 1000
)

// SlopeMode определяет, снимает ли классификатор устаревшие скосы
type SlopeMode int

const (
	// SlopeReset: заполненная клетка без углового шаблона получает Sloped=false
	SlopeReset SlopeMode = iota
	// SlopeKeepStale: классификатор только добавляет скосы, старые остаются
	SlopeKeepStale
)

// Options - параметры TileManager; нулевые значения заменяются значениями по умолчанию
type Options struct {
	Width     int
	Height    int
	Seed      int64
	Generator GeneratorParams
	Seeder    Seeder   // nil - RandomSeeder{Generator.CaveDensity}
	Resolver  Resolver // nil - без реакции на столкновения
	Metrics   *Metrics // nil - без метрик
	SlopeMode SlopeMode
}

// TileManager владеет плотным массивом клеток фиксированного размера,
// раскладывает динамические тела по клеткам и запускает генерацию.
//
// Однопоточный: все методы должны вызываться из одной горутины.
type TileManager struct {
	width, height int
	tiles         []Tile // row-major: index = y*width + x
	nullTile      Tile

	seed      int64
	rng       *RNG
	params    GeneratorParams
	seeder    Seeder
	resolver  Resolver
	metrics   *Metrics
	slopeMode SlopeMode

	bodies map[BodyID]*bodyEntry
	order  []BodyID // порядок регистрации, определяет порядок обхода в Step
	nextID BodyID
}

// NewTileManager создаёт сетку; все клетки пустые
func NewTileManager(opts Options) *TileManager {
	if opts.Width <= 0 {
		opts.Width = MapX
	}
	if opts.Height <= 0 {
		opts.Height = MapY
	}
	params := opts.Generator.withDefaults()

	tm := &TileManager{
		width:     opts.Width,
		height:    opts.Height,
		tiles:     make([]Tile, opts.Width*opts.Height),
		seed:      opts.Seed,
		rng:       NewRNG(opts.Seed),
		params:    params,
		seeder:    opts.Seeder,
		resolver:  opts.Resolver,
		metrics:   opts.Metrics,
		slopeMode: opts.SlopeMode,
		bodies:    make(map[BodyID]*bodyEntry),
		nextID:    1,
	}
	if tm.seeder == nil {
		tm.seeder = RandomSeeder{Density: params.CaveDensity}
	}
	if tm.resolver == nil {
		tm.resolver = noopResolver{}
	}
	// Клетка вне карты: всегда пустая, без скоса и без тел
	tm.nullTile = Tile{Pos: vec.Vec2{X: -1, Y: -1}}

	for y := 0; y < tm.height; y++ {
		for x := 0; x < tm.width; x++ {
			tm.tiles[y*tm.width+x].Pos = vec.Vec2{X: x, Y: y}
		}
	}
	return tm
}

func (tm *TileManager) Width() int  { return tm.width }
func (tm *TileManager) Height() int { return tm.height }
func (tm *TileManager) Seed() int64 { return tm.seed }

// Params возвращает действующие параметры генерации
func (tm *TileManager) Params() GeneratorParams { return tm.params }

// SetResolver подменяет узкую фазу столкновений; nil отключает её
func (tm *TileManager) SetResolver(r Resolver) {
	if r == nil {
		r = noopResolver{}
	}
	tm.resolver = r
}

// Reseed пересоздаёт генератор случайных чисел и, если сеятель это
// поддерживает, его собственный шум
func (tm *TileManager) Reseed(seed int64) {
	tm.seed = seed
	tm.rng = NewRNG(seed)
	if rs, ok := tm.seeder.(reseeder); ok {
		rs.Reseed(seed)
	}
}

// IsValid проверяет, лежит ли клетка внутри карты
func (tm *TileManager) IsValid(x, y int) bool {
	return x >= 0 && y >= 0 && x < tm.width && y < tm.height
}

// IsOutside - обратное к IsValid
func (tm *TileManager) IsOutside(x, y int) bool {
	return !tm.IsValid(x, y)
}

// GetAt возвращает клетку или клетку-заглушку для координат вне карты.
// Заглушку изменять нельзя.
func (tm *TileManager) GetAt(x, y int) *Tile {
	if tm.IsOutside(x, y) {
		tm.nullTile.reset(false)
		tm.nullTile.occupants = nil
		return &tm.nullTile
	}
	return &tm.tiles[y*tm.width+x]
}

// NullTile возвращает клетку-заглушку
func (tm *TileManager) NullTile() *Tile {
	return tm.GetAt(-1, -1)
}

// SetAt задаёт заливку клетки и сбрасывает её скос.
// Вне карты ничего не меняет и возвращает false.
func (tm *TileManager) SetAt(x, y int, filled bool) bool {
	if tm.IsOutside(x, y) {
		return false
	}
	tm.tiles[y*tm.width+x].reset(filled)
	return true
}

// IsFilled - заполнена ли клетка; вне карты всегда false
func (tm *TileManager) IsFilled(x, y int) bool {
	if tm.IsOutside(x, y) {
		return false
	}
	return tm.tiles[y*tm.width+x].Filled
}

// BatchSet задаёт заливку для списка клеток
func (tm *TileManager) BatchSet(cells []vec.Vec2, filled bool) {
	for _, c := range cells {
		tm.SetAt(c.X, c.Y, filled)
	}
}

// Fill задаёт заливку всей карты
func (tm *TileManager) Fill(filled bool) {
	for i := range tm.tiles {
		tm.tiles[i].reset(filled)
	}
}

// FilledCount возвращает число заполненных клеток
func (tm *TileManager) FilledCount() int {
	n := 0
	for i := range tm.tiles {
		if tm.tiles[i].Filled {
			n++
		}
	}
	return n
}

// Occupants возвращает тела в клетке (пусто вне карты)
func (tm *TileManager) Occupants(x, y int) []BodyID {
	return tm.GetAt(x, y).Occupants()
}

package world

import (
	"fmt"
	"time"

	"github.com/Sunlight4/subterranea/internal/logging"
	"github.com/Sunlight4/subterranea/internal/vec"
)

// Параметры генерации по умолчанию
const (
	DefaultCaveDensity        = 50 // 1 из 50 клеток засевается пещерой
	DefaultMinCaveSize        = 5
	DefaultMaxCaveSize        = 15
	DefaultSmoothPasses       = 5
	DefaultSmoothMinNeighbors = 2
	DefaultMaxCarveLife       = 4096
)

// GeneratorParams настраивает генерацию пещер
type GeneratorParams struct {
	CaveDensity        int // Вероятность засева клетки 1/CaveDensity
	MinCaveSize        int // Нижняя граница life (включительно)
	MaxCaveSize        int // Верхняя граница life (не включительно)
	SmoothPasses       int // 0 - по умолчанию, отрицательное - без сглаживания
	SmoothMinNeighbors int
	MaxCarveLife       int // Expand отвергает life больше этого значения
}

func (p GeneratorParams) withDefaults() GeneratorParams {
	if p.CaveDensity <= 0 {
		p.CaveDensity = DefaultCaveDensity
	}
	if p.MinCaveSize <= 0 {
		p.MinCaveSize = DefaultMinCaveSize
	}
	if p.MaxCaveSize <= 0 {
		p.MaxCaveSize = DefaultMaxCaveSize
	}
	if p.MaxCaveSize <= p.MinCaveSize {
		p.MaxCaveSize = p.MinCaveSize + 1
	}
	if p.SmoothPasses < 0 {
		p.SmoothPasses = 0
	} else if p.SmoothPasses == 0 {
		p.SmoothPasses = DefaultSmoothPasses
	}
	if p.SmoothMinNeighbors <= 0 {
		p.SmoothMinNeighbors = DefaultSmoothMinNeighbors
	}
	if p.MaxCarveLife <= 0 {
		p.MaxCarveLife = DefaultMaxCarveLife
	}
	if p.MaxCaveSize-1 > p.MaxCarveLife {
		p.MaxCarveLife = p.MaxCaveSize - 1
	}
	return p
}

// GenerateStats - итог генерации
type GenerateStats struct {
	Seeded   int // Число засеянных пещер
	Carved   int // Клеток опустошено при выкапывании
	Smoothed int // Клеток убрано сглаживанием
	Filled   int // Заполненных клеток в итоге
	Took     time.Duration
}

// Generate заполняет карту, выкапывает пещеры и сглаживает результат.
// При фиксированном сиде результат воспроизводим.
func (tm *TileManager) Generate() (GenerateStats, error) {
	start := time.Now()
	var stats GenerateStats

	// Первый проход - заливка всей карты
	tm.Fill(true)

	// Второй проход - засев и выкапывание пещер
	for x := 0; x < tm.width; x++ {
		for y := 0; y < tm.height; y++ {
			if !tm.seeder.Seed(x, y, tm.rng) {
				continue
			}
			life := tm.rng.Range(tm.params.MinCaveSize, tm.params.MaxCaveSize)
			carved, err := tm.Expand(x, y, life)
			if err != nil {
				return stats, fmt.Errorf("выкапывание пещеры в %d:%d: %w", x, y, err)
			}
			stats.Seeded++
			stats.Carved += carved
		}
	}

	// Третий проход - убираем висящие и плавающие блоки
	for i := 0; i < tm.params.SmoothPasses; i++ {
		stats.Smoothed += tm.Smooth(tm.params.SmoothMinNeighbors)
	}

	stats.Filled = tm.FilledCount()
	stats.Took = time.Since(start)
	tm.metrics.observeGenerate(stats.Filled, stats.Took)

	logging.Info("Генерация %dx%d (seed=%d): пещер %d, выкопано %d, сглажено %d, заполнено %d, %v",
		tm.width, tm.height, tm.seed, stats.Seeded, stats.Carved, stats.Smoothed, stats.Filled, stats.Took)
	return stats, nil
}

// Начальная ёмкость стека выкапывания; дальше растёт через append
const carveStackCap = 64

// carveFrame - кадр явного стека выкапывания
type carveFrame struct {
	x, y int
	life int
	next int // Индекс следующего соседа в vec.SideOffsets
}

// Expand выкапывает пещеру из клетки (x, y) на глубину life.
//
// Итеративная версия рекурсивного обхода: случайные числа расходуются в том
// же порядке, что и при рекурсии, поэтому результат совпадает бит в бит.
// Глубина стека не превышает ни life+1, ни числа заполненных клеток.
// Возвращает число опустошённых клеток.
func (tm *TileManager) Expand(x, y, life int) (int, error) {
	if life < 0 || life > tm.params.MaxCarveLife {
		return 0, fmt.Errorf("%w: life=%d, limit=%d", ErrCarveTooDeep, life, tm.params.MaxCarveLife)
	}
	if !tm.IsFilled(x, y) || life == 0 {
		return 0, nil
	}

	tm.SetAt(x, y, false)
	carved := 1
	stack := make([]carveFrame, 1, carveStackCap)
	stack[0] = carveFrame{x: x, y: y, life: life}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(vec.SideOffsets) {
			stack = stack[:len(stack)-1]
			continue
		}
		offset := vec.SideOffsets[top.next]
		top.next++

		// Пропуск ветви с вероятностью 1/4 даёт неровные стены
		if tm.rng.OneIn(4) {
			continue
		}

		nx, ny, nlife := top.x+offset.X, top.y+offset.Y, top.life-1
		if !tm.IsFilled(nx, ny) || nlife == 0 {
			continue
		}
		tm.SetAt(nx, ny, false)
		carved++
		stack = append(stack, carveFrame{x: nx, y: ny, life: nlife})
	}
	return carved, nil
}

// Smooth опустошает заполненные клетки, у которых меньше minNeighbors
// заполненных соседей по сторонам. Соседи вне карты считаются пустыми.
// Опустошение выполняется пакетом после полного прохода.
// Возвращает число опустошённых клеток.
func (tm *TileManager) Smooth(minNeighbors int) int {
	var toRemove []vec.Vec2
	for x := 0; x < tm.width; x++ {
		for y := 0; y < tm.height; y++ {
			if !tm.tiles[y*tm.width+x].Filled {
				continue
			}
			if tm.filledNeighbors(x, y) < minNeighbors {
				toRemove = append(toRemove, vec.Vec2{X: x, Y: y})
			}
		}
	}
	tm.BatchSet(toRemove, false)
	return len(toRemove)
}

func (tm *TileManager) filledNeighbors(x, y int) int {
	n := 0
	for _, off := range vec.SideOffsets {
		if tm.IsFilled(x+off.X, y+off.Y) {
			n++
		}
	}
	return n
}

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sunlight4/subterranea/internal/vec"
)

// recursiveExpand - эталонная рекурсивная версия выкапывания для сравнения
func recursiveExpand(tm *TileManager, x, y, life int) {
	if !tm.IsFilled(x, y) || life == 0 {
		return
	}
	tm.SetAt(x, y, false)
	for _, off := range vec.SideOffsets {
		if tm.rng.OneIn(4) {
			continue
		}
		recursiveExpand(tm, x+off.X, y+off.Y, life-1)
	}
}

func TestExpand_BaseCases(t *testing.T) {
	tm := newTestManager(5, 5)
	tm.Fill(true)

	carved, err := tm.Expand(2, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, carved, "life=0 ничего не выкапывает")
	assert.True(t, tm.IsFilled(2, 2))

	tm.SetAt(1, 1, false)
	carved, err = tm.Expand(1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, carved, "Пустая клетка - базовый случай")

	carved, err = tm.Expand(-1, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, carved, "Клетка вне карты считается пустой")

	carved, err = tm.Expand(3, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, carved, "life=1 выкапывает ровно одну клетку")
	assert.False(t, tm.IsFilled(3, 3))
}

func TestExpand_CarvesWithinLifeRadius(t *testing.T) {
	tm := NewTileManager(Options{Width: 41, Height: 41, Seed: 7})
	tm.Fill(true)

	const life = 8
	carved, err := tm.Expand(20, 20, life)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, carved, 1)

	empty := 0
	for x := 0; x < 41; x++ {
		for y := 0; y < 41; y++ {
			if tm.IsFilled(x, y) {
				continue
			}
			empty++
			d := abs(x-20) + abs(y-20)
			assert.Less(t, d, life, "клетка %d:%d дальше, чем позволяет life", x, y)
		}
	}
	assert.Equal(t, carved, empty)
}

func TestExpand_MatchesRecursiveFormulation(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 99, 12345} {
		iter := NewTileManager(Options{Width: 30, Height: 30, Seed: seed})
		rec := NewTileManager(Options{Width: 30, Height: 30, Seed: seed})
		iter.Fill(true)
		rec.Fill(true)

		for i, start := range []vec.Vec2{{X: 15, Y: 15}, {X: 3, Y: 27}, {X: 0, Y: 0}} {
			_, err := iter.Expand(start.X, start.Y, 6+i*3)
			require.NoError(t, err)
			recursiveExpand(rec, start.X, start.Y, 6+i*3)
		}
		assert.Equal(t, fillSnapshot(rec), fillSnapshot(iter), "seed %d", seed)
	}
}

func TestExpand_RejectsLifeOverLimit(t *testing.T) {
	tm := NewTileManager(Options{Width: 4, Height: 4, Generator: GeneratorParams{MaxCarveLife: 20}})
	tm.Fill(true)

	_, err := tm.Expand(1, 1, 21)
	assert.ErrorIs(t, err, ErrCarveTooDeep)
	_, err = tm.Expand(1, 1, -1)
	assert.ErrorIs(t, err, ErrCarveTooDeep)
	assert.Equal(t, 16, tm.FilledCount(), "Отвергнутый вызов ничего не меняет")

	_, err = tm.Expand(1, 1, 20)
	assert.NoError(t, err)
}

func TestExpand_LargeLifeDoesNotOverflow(t *testing.T) {
	tm := NewTileManager(Options{Width: 200, Height: 200, Seed: 5,
		Generator: GeneratorParams{MaxCarveLife: 100000}})
	tm.Fill(true)

	carved, err := tm.Expand(100, 100, 100000)
	require.NoError(t, err)
	assert.Greater(t, carved, 1)
}

func TestExpand_HugeLimitDoesNotPreallocate(t *testing.T) {
	tm := NewTileManager(Options{Width: 5, Height: 5, Seed: 2,
		Generator: GeneratorParams{MaxCarveLife: 1 << 50}})
	tm.Fill(true)

	var carved int
	var err error
	require.NotPanics(t, func() { carved, err = tm.Expand(2, 2, 1<<50) })
	require.NoError(t, err)
	assert.GreaterOrEqual(t, carved, 1)
	assert.LessOrEqual(t, carved, 25, "Выкопать больше клеток карты нельзя")
}

func TestSmooth_StableConfigurationIsIdempotent(t *testing.T) {
	tm := newTestManager(10, 10)
	fillRect(tm, 2, 2, 5, 5) // у каждой клетки блока 4x4 не меньше 2 соседей
	fillRect(tm, 7, 0, 9, 1)
	before := fillSnapshot(tm)

	assert.Equal(t, 0, tm.Smooth(2))
	assert.Equal(t, 0, tm.Smooth(2))
	assert.Equal(t, before, fillSnapshot(tm))
}

func TestSmooth_BatchNotInPlace(t *testing.T) {
	tm := newTestManager(5, 3)
	fillRect(tm, 1, 1, 3, 1) // горизонтальная линия из трёх клеток

	removed := tm.Smooth(2)

	assert.Equal(t, 2, removed, "Убираются только концы линии")
	assert.False(t, tm.IsFilled(1, 1))
	assert.True(t, tm.IsFilled(2, 1), "Середина считалась до удаления концов")
	assert.False(t, tm.IsFilled(3, 1))
}

func TestSmooth_OutOfBoundsNeighborsCountAsEmpty(t *testing.T) {
	tm := newTestManager(4, 4)
	tm.SetAt(0, 0, true)

	assert.Equal(t, 0, tm.filledNeighbors(0, 0))
	assert.Equal(t, 1, tm.Smooth(1))
	assert.False(t, tm.IsFilled(0, 0))
}

func TestSmooth_FullGridKeepsEdges(t *testing.T) {
	tm := newTestManager(6, 6)
	tm.Fill(true)

	// Угол имеет 2 соседей внутри карты, граница - 3
	assert.Equal(t, 0, tm.Smooth(2))
	assert.Equal(t, 4, tm.Smooth(3), "С порогом 3 уходят только углы")
}

func TestGenerate_ReproducibleWithSeed(t *testing.T) {
	params := GeneratorParams{CaveDensity: 10, MinCaveSize: 3, MaxCaveSize: 8}
	a := NewTileManager(Options{Width: 20, Height: 20, Seed: 42, Generator: params})
	b := NewTileManager(Options{Width: 20, Height: 20, Seed: 42, Generator: params})

	statsA, err := a.Generate()
	require.NoError(t, err)
	statsB, err := b.Generate()
	require.NoError(t, err)

	assert.Equal(t, fillSnapshot(a), fillSnapshot(b))
	assert.Equal(t, statsA.Seeded, statsB.Seeded)
	assert.Equal(t, statsA.Filled, a.FilledCount())

	// Повторная генерация после пересева тем же сидом даёт ту же карту
	snap := fillSnapshot(a)
	a.Reseed(42)
	_, err = a.Generate()
	require.NoError(t, err)
	assert.Equal(t, snap, fillSnapshot(a))
}

func TestGenerate_StatsAccountForEveryCell(t *testing.T) {
	tm := NewTileManager(Options{Width: 40, Height: 40, Seed: 3})
	stats, err := tm.Generate()
	require.NoError(t, err)
	assert.Greater(t, stats.Seeded, 0)

	// Каждая клетка либо осталась, либо выкопана, либо убрана сглаживанием
	assert.Equal(t, 40*40, stats.Filled+stats.Carved+stats.Smoothed)
	assert.Equal(t, stats.Filled, tm.FilledCount())
	assert.Equal(t, 0, tm.SlopedCount(), "Генерация не классифицирует скосы")
}

func TestGenerate_NoSmoothingWhenNegativePasses(t *testing.T) {
	tm := NewTileManager(Options{Width: 10, Height: 10, Seed: 1,
		Generator: GeneratorParams{CaveDensity: 1000000, SmoothPasses: -1}})
	stats, err := tm.Generate()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Smoothed)
	assert.Equal(t, 100-stats.Carved, stats.Filled)
}

func TestGeneratorParams_Defaults(t *testing.T) {
	p := GeneratorParams{}.withDefaults()
	assert.Equal(t, DefaultCaveDensity, p.CaveDensity)
	assert.Equal(t, DefaultMinCaveSize, p.MinCaveSize)
	assert.Equal(t, DefaultMaxCaveSize, p.MaxCaveSize)
	assert.Equal(t, DefaultSmoothPasses, p.SmoothPasses)
	assert.Equal(t, DefaultSmoothMinNeighbors, p.SmoothMinNeighbors)

	p = GeneratorParams{MinCaveSize: 9, MaxCaveSize: 4}.withDefaults()
	assert.Equal(t, 10, p.MaxCaveSize, "Верхняя граница не меньше нижней")
}

func TestNoiseSeeder_Deterministic(t *testing.T) {
	opts := func() Options {
		return Options{Width: 24, Height: 24, Seed: 11, Seeder: NewNoiseSeeder(8, 0.1, 11)}
	}
	a := NewTileManager(opts())
	b := NewTileManager(opts())
	_, err := a.Generate()
	require.NoError(t, err)
	_, err = b.Generate()
	require.NoError(t, err)

	assert.Equal(t, fillSnapshot(a), fillSnapshot(b))

	s := NewNoiseSeeder(8, 0, 1)
	w := s.Weight(3, 4)
	assert.GreaterOrEqual(t, w, 0.0)
	assert.LessOrEqual(t, w, 2.0)
}

func TestReseed_ResetsNoiseField(t *testing.T) {
	seeder := NewNoiseSeeder(8, 0.1, 1)
	a := NewTileManager(Options{Width: 24, Height: 24, Seed: 1, Seeder: seeder})
	a.Reseed(11)

	fresh := NewNoiseSeeder(8, 0.1, 11)
	for _, p := range []vec.Vec2{{X: 0, Y: 0}, {X: 3, Y: 7}, {X: 20, Y: 13}} {
		assert.Equal(t, fresh.Weight(p.X, p.Y), seeder.Weight(p.X, p.Y), "Шум в %d:%d", p.X, p.Y)
	}

	// После Reseed генерация совпадает с картой, созданной сразу с новым сидом
	b := NewTileManager(Options{Width: 24, Height: 24, Seed: 11, Seeder: fresh})
	_, err := a.Generate()
	require.NoError(t, err)
	_, err = b.Generate()
	require.NoError(t, err)
	assert.Equal(t, fillSnapshot(b), fillSnapshot(a))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

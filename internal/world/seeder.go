package world

import (
	"github.com/aquilax/go-perlin"
)

// DefaultNoiseScale - масштаб координат шума по умолчанию
const DefaultNoiseScale = 0.05

// Seeder решает, начинается ли в клетке новая пещера
type Seeder interface {
	Seed(x, y int, rng *RNG) bool
}

// reseeder - сеятель с собственным источником случайности
type reseeder interface {
	Reseed(seed int64)
}

// RandomSeeder засевает каждую клетку с вероятностью 1/Density
type RandomSeeder struct {
	Density int
}

func (s RandomSeeder) Seed(_, _ int, rng *RNG) bool {
	return rng.OneIn(s.Density)
}

// NoiseSeeder модулирует вероятность засева шумом Перлина:
// в "холмах" шума пещеры появляются чаще, в "низинах" реже.
type NoiseSeeder struct {
	Density int
	Scale   float64 // Масштаб координат для шума
	noise   *perlin.Perlin
}

// NewNoiseSeeder создаёт сеятель с детерминированным шумом
func NewNoiseSeeder(density int, scale float64, seed int64) *NoiseSeeder {
	if scale <= 0 {
		scale = DefaultNoiseScale
	}
	return &NoiseSeeder{
		Density: density,
		Scale:   scale,
		noise:   newNoise(seed),
	}
}

func newNoise(seed int64) *perlin.Perlin {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return perlin.NewPerlin(alpha, beta, n, seed)
}

// Reseed пересоздаёт поле шума; вызывается из TileManager.Reseed
func (s *NoiseSeeder) Reseed(seed int64) {
	s.noise = newNoise(seed)
}

// Weight возвращает множитель вероятности в [0, 2] для клетки
func (s *NoiseSeeder) Weight(x, y int) float64 {
	v := s.noise.Noise2D(float64(x)*s.Scale, float64(y)*s.Scale)
	// Шум лежит примерно в [-1, 1]
	w := v + 1
	if w < 0 {
		return 0
	}
	if w > 2 {
		return 2
	}
	return w
}

func (s *NoiseSeeder) Seed(x, y int, rng *RNG) bool {
	if s.Density <= 1 {
		return true
	}
	p := s.Weight(x, y) / float64(s.Density)
	return rng.Float64() < p
}

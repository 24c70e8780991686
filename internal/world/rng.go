package world

import "math/rand/v2"

// RNG - детерминированный генератор случайных чисел, принадлежащий TileManager
type RNG struct {
	r *rand.Rand
}

// NewRNG создаёт генератор PCG с указанным сидом
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// IntN возвращает число в [0, n); для n <= 0 возвращает 0
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Range возвращает число в [lo, hi); при hi <= lo возвращает lo
func (r *RNG) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.IntN(hi-lo)
}

// OneIn возвращает true с вероятностью 1/n
func (r *RNG) OneIn(n int) bool {
	if n <= 1 {
		return true
	}
	return r.r.IntN(n) == 0
}

// Float64 возвращает число в [0, 1)
func (r *RNG) Float64() float64 {
	return r.r.Float64()
}

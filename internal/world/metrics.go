package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics инкапсулирует Prometheus-метрики сетки.
// Nil-указатель допустим: все методы становятся no-op.
type Metrics struct {
	steps           prometheus.Counter
	rebucketed      prometheus.Counter
	terrainChecks   prometheus.Counter
	pairChecks      prometheus.Counter
	stepDuration    prometheus.Histogram
	genDuration     prometheus.Histogram
	filledCells     prometheus.Gauge
	trackedBodies   prometheus.Gauge
	invariantErrors prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "steps_total",
			Help:      "Число выполненных шагов симуляции.",
		}),
		rebucketed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "rebucketed_total",
			Help:      "Число перераскладок тел по клеткам.",
		}),
		terrainChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "terrain_checks_total",
			Help:      "Запросы проверки столкновения тела с заполненной клеткой.",
		}),
		pairChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "pair_checks_total",
			Help:      "Запросы проверки столкновения двух тел.",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "step_duration_seconds",
			Help:      "Длительность одного шага.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14),
		}),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "subterranea",
			Subsystem: "generator",
			Name:      "generate_duration_seconds",
			Help:      "Длительность полной генерации.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		filledCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "filled_cells",
			Help:      "Число заполненных клеток после последней генерации.",
		}),
		trackedBodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "tracked_bodies",
			Help:      "Число зарегистрированных тел.",
		}),
		invariantErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "subterranea",
			Subsystem: "grid",
			Name:      "occupant_invariant_errors_total",
			Help:      "Тела, не найденные в клетке при удалении.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.steps, m.rebucketed, m.terrainChecks, m.pairChecks,
			m.stepDuration, m.genDuration, m.filledCells, m.trackedBodies,
			m.invariantErrors,
		)
	}
	return m
}

func (m *Metrics) observeStep(stats StepStats, took time.Duration) {
	if m == nil {
		return
	}
	m.steps.Inc()
	m.rebucketed.Add(float64(stats.Rebucketed))
	m.terrainChecks.Add(float64(stats.TerrainChecks))
	m.pairChecks.Add(float64(stats.PairChecks))
	m.stepDuration.Observe(took.Seconds())
}

func (m *Metrics) observeGenerate(filled int, took time.Duration) {
	if m == nil {
		return
	}
	m.genDuration.Observe(took.Seconds())
	m.filledCells.Set(float64(filled))
}

func (m *Metrics) setBodies(n int) {
	if m == nil {
		return
	}
	m.trackedBodies.Set(float64(n))
}

func (m *Metrics) invariantError() {
	if m == nil {
		return
	}
	m.invariantErrors.Inc()
}

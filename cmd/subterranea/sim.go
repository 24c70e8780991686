package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sunlight4/subterranea/internal/config"
	"github.com/Sunlight4/subterranea/internal/logging"
	"github.com/Sunlight4/subterranea/internal/observability"
	"github.com/Sunlight4/subterranea/internal/physics"
	"github.com/Sunlight4/subterranea/internal/storage"
	"github.com/Sunlight4/subterranea/internal/vec"
	"github.com/Sunlight4/subterranea/internal/world"
)

// Размер окна ASCII-превью
const (
	previewWidth  = 120
	previewHeight = 50
)

type runOptions struct {
	Save        string
	Load        string
	Preview     bool
	MetricsAddr string
}

// run выполняет полный цикл: генерация или загрузка, классификация скосов,
// сохранение, симуляция и превью
func run(ctx context.Context, cfg *config.Config, opts runOptions, out io.Writer) error {
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("инициализация OpenTelemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	metrics := world.NewMetrics(registry)
	var srv *http.Server
	if opts.MetricsAddr != "" {
		srv = serveMetrics(opts.MetricsAddr, registry)
		defer srv.Close()
	}

	tm, err := buildManager(cfg, metrics)
	if err != nil {
		return err
	}

	seedAttr := attribute.Int64("seed", tm.Seed())
	if opts.Load != "" {
		err = withStorage(cfg, func(gs *storage.GridStorage) error {
			return observability.Phase(ctx, "load", func(context.Context) error {
				return gs.LoadGrid(opts.Load, tm)
			}, attribute.String("name", opts.Load))
		})
	} else {
		err = observability.Phase(ctx, "generate", func(ctx context.Context) error {
			stats, err := tm.Generate()
			observability.Annotate(ctx,
				attribute.Int("caves", stats.Seeded),
				attribute.Int("filled", stats.Filled),
			)
			return err
		}, seedAttr)
		if err == nil {
			err = observability.Phase(ctx, "classify", func(ctx context.Context) error {
				tm.UpdateSlopes()
				observability.Annotate(ctx, attribute.Int("sloped", tm.SlopedCount()))
				return nil
			})
		}
	}
	if err != nil {
		return err
	}
	logging.Info("Карта %dx%d готова: заполнено %d, скосов %d",
		tm.Width(), tm.Height(), tm.FilledCount(), tm.SlopedCount())

	if opts.Save != "" {
		err = withStorage(cfg, func(gs *storage.GridStorage) error {
			_, err := gs.SaveGrid(opts.Save, tm)
			return err
		})
		if err != nil {
			return err
		}
	}

	boxes := spawnBoxes(tm, cfg.Simulation.Bodies, tm.Seed()+1)
	if cfg.Simulation.Steps > 0 {
		err = observability.Phase(ctx, "simulate", func(ctx context.Context) error {
			return simulate(ctx, tm, cfg.Simulation.Steps, cfg.Simulation.TickRate)
		}, attribute.Int("steps", cfg.Simulation.Steps), attribute.Int("bodies", len(boxes)))
		if err != nil {
			return err
		}
	}

	if opts.Preview {
		region := world.Region{W: min(tm.Width(), previewWidth), H: min(tm.Height(), previewHeight)}
		fmt.Fprint(out, RenderASCII(tm, region, boxes))
	}

	if srv != nil {
		logging.Info("Метрики доступны на %s/metrics, Ctrl+C для выхода", opts.MetricsAddr)
		<-ctx.Done()
	}
	return nil
}

// buildManager создаёт карту по конфигурации
func buildManager(cfg *config.Config, metrics *world.Metrics) (*world.TileManager, error) {
	mode, err := cfg.World.GetSlopeMode()
	if err != nil {
		return nil, err
	}
	seed := cfg.World.GetSeed()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	params := cfg.Generator.Params()
	var seeder world.Seeder
	if cfg.Generator.Seeder == "noise" {
		seeder = world.NewNoiseSeeder(params.CaveDensity, cfg.Generator.NoiseScale, seed)
	}

	resolver := physics.NewResolver()
	resolver.Bounce = cfg.Simulation.Bounce
	resolver.Friction = cfg.Simulation.Friction

	return world.NewTileManager(world.Options{
		Width:     cfg.World.Width,
		Height:    cfg.World.Height,
		Seed:      seed,
		Generator: params,
		Seeder:    seeder,
		Resolver:  resolver,
		Metrics:   metrics,
		SlopeMode: mode,
	}), nil
}

func withStorage(cfg *config.Config, fn func(gs *storage.GridStorage) error) error {
	gs, err := storage.NewGridStorage(cfg.Storage.GetDataPath())
	if err != nil {
		return err
	}
	defer gs.Close()
	return fn(gs)
}

func serveMetrics(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}

// spawnBoxes бросает n тел в случайные пустые клетки
func spawnBoxes(tm *world.TileManager, n int, seed int64) []*physics.Box {
	if n <= 0 {
		return nil
	}
	rng := world.NewRNG(seed)
	boxes := make([]*physics.Box, 0, n)
	used := make(map[vec.Vec2]bool, n)
	for attempt := 0; attempt < n*100 && len(boxes) < n; attempt++ {
		cell := vec.Vec2{X: rng.IntN(tm.Width()), Y: rng.IntN(tm.Height())}
		if tm.IsFilled(cell.X, cell.Y) || used[cell] {
			continue
		}
		used[cell] = true
		x, y := cell.X, cell.Y
		b := physics.NewBox(float64(x)+0.1, float64(y)+0.1, 0.8, 0.8)
		tm.Register(b)
		boxes = append(boxes, b)
	}
	if len(boxes) < n {
		logging.Warn("Размещено %d тел из %d: мало пустых клеток", len(boxes), n)
	}
	return boxes
}

// simulate выполняет steps шагов с фиксированным dt
func simulate(ctx context.Context, tm *world.TileManager, steps, tickRate int) error {
	log := logging.GetComponentLogger("sim")
	if tickRate <= 0 {
		tickRate = 60
	}
	dt := 1 / float64(tickRate)

	var total world.StepStats
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats := tm.Step(dt)
		total.Rebucketed += stats.Rebucketed
		total.TerrainChecks += stats.TerrainChecks
		total.PairChecks += stats.PairChecks
		if (i+1)%tickRate == 0 {
			log.Debug("Шаг %d: переложено %d, рельеф %d, пары %d",
				i+1, stats.Rebucketed, stats.TerrainChecks, stats.PairChecks)
		}
	}
	log.Info("Симуляция: %d шагов, тел %d, перераскладок %d, проверок рельефа %d, пар %d",
		steps, len(tm.Bodies()), total.Rebucketed, total.TerrainChecks, total.PairChecks)
	return nil
}

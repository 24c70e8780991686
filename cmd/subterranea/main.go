package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sunlight4/subterranea/internal/config"
	"github.com/Sunlight4/subterranea/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (falls back to $SUBTERRANEA_CONFIG)")
		seed       = flag.Int64("seed", 0, "World seed")
		width      = flag.Int("width", 0, "World width in tiles")
		height     = flag.Int("height", 0, "World height in tiles")
		steps      = flag.Int("steps", -1, "Simulation steps to run after generation")
		bodies     = flag.Int("bodies", -1, "Number of demo boxes to drop into caves")
		dataPath   = flag.String("data", "", "Directory for saved grids")
		save       = flag.String("save", "", "Save the grid under this name")
		load       = flag.String("load", "", "Load the grid with this name instead of generating")
		preview    = flag.Bool("preview", false, "Print an ASCII preview of the top-left corner")
		metrics    = flag.String("metrics", "", "Serve Prometheus /metrics on this address (e.g. :2112)")
		trace      = flag.Bool("trace", false, "Export OpenTelemetry spans over OTLP/HTTP")
	)
	flag.Parse()

	if err := logging.InitDefaultLogger("subterranea"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer closeComponentLoggers()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		os.Exit(1)
	}

	// Флаги командной строки важнее конфига
	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if *width > 0 {
		cfg.World.Width = *width
	}
	if *height > 0 {
		cfg.World.Height = *height
	}
	if *steps >= 0 {
		cfg.Simulation.Steps = *steps
	}
	if *bodies >= 0 {
		cfg.Simulation.Bodies = *bodies
	}
	if *dataPath != "" {
		cfg.Storage.DataPath = *dataPath
	}
	if *metrics != "" {
		cfg.Metrics.Enabled = true
	}
	if *trace {
		cfg.Telemetry.Enabled = true
	}
	logging.Default().SetLevel(logging.ParseLevel(cfg.LogLevel))

	metricsAddr := *metrics
	if cfg.Metrics.Enabled && metricsAddr == "" {
		metricsAddr = fmt.Sprintf(":%d", cfg.Metrics.GetPort())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, runOptions{
		Save:        *save,
		Load:        *load,
		Preview:     *preview,
		MetricsAddr: metricsAddr,
	}, os.Stdout)
	if err != nil {
		logging.Error("❌ %v", err)
		closeComponentLoggers()
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

// closeComponentLoggers закрывает файлы логгеров компонентов ("sim" и др.)
func closeComponentLoggers() {
	if err := logging.GetLoggerManager().CloseAll(); err != nil {
		logging.Warn("Ошибка закрытия логов компонентов: %v", err)
	}
}

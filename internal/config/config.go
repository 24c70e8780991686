package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Sunlight4/subterranea/internal/world"
)

// Config корневая структура конфигурации приложения
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Simulation SimulationConfig `yaml:"simulation"`
	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	LogLevel   string           `yaml:"log_level"`
}

type WorldConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Seed      int64  `yaml:"seed"`
	SlopeMode string `yaml:"slope_mode"` // reset | keep_stale
}

type GeneratorConfig struct {
	Seeder             string  `yaml:"seeder"` // random | noise
	CaveDensity        int     `yaml:"cave_density"`
	MinCaveSize        int     `yaml:"min_cave_size"`
	MaxCaveSize        int     `yaml:"max_cave_size"`
	SmoothPasses       int     `yaml:"smooth_passes"`
	SmoothMinNeighbors int     `yaml:"smooth_min_neighbors"`
	MaxCarveLife       int     `yaml:"max_carve_life"`
	NoiseScale         float64 `yaml:"noise_scale"`
}

type SimulationConfig struct {
	Steps    int     `yaml:"steps"`
	Bodies   int     `yaml:"bodies"`
	TickRate int     `yaml:"tick_rate"` // шагов в секунду, dt = 1/TickRate
	Bounce   float64 `yaml:"bounce"`
	Friction float64 `yaml:"friction"`
}

type StorageConfig struct {
	DataPath string `yaml:"data_path"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:     world.MapX,
			Height:    world.MapY,
			SlopeMode: "reset",
		},
		Generator: GeneratorConfig{
			Seeder:             "random",
			CaveDensity:        world.DefaultCaveDensity,
			MinCaveSize:        world.DefaultMinCaveSize,
			MaxCaveSize:        world.DefaultMaxCaveSize,
			SmoothPasses:       world.DefaultSmoothPasses,
			SmoothMinNeighbors: world.DefaultSmoothMinNeighbors,
			MaxCarveLife:       world.DefaultMaxCarveLife,
			NoiseScale:         world.DefaultNoiseScale,
		},
		Simulation: SimulationConfig{
			Steps:    0,
			Bodies:   0,
			TickRate: 60,
			Bounce:   0.2,
			Friction: 0.9,
		},
		Storage: StorageConfig{DataPath: "data"},
		Metrics: MetricsConfig{Port: 2112},
		Telemetry: TelemetryConfig{
			ServiceName: "subterranea",
		},
		LogLevel: "INFO",
	}
}

// GetSeed возвращает сид с приоритетом: config -> env -> default
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != 0 {
		return w.Seed
	}
	if envVal := os.Getenv("SUBTERRANEA_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}
	return 0
}

// GetSlopeMode переводит строку конфигурации в world.SlopeMode
func (w *WorldConfig) GetSlopeMode() (world.SlopeMode, error) {
	switch w.SlopeMode {
	case "", "reset":
		return world.SlopeReset, nil
	case "keep_stale":
		return world.SlopeKeepStale, nil
	default:
		return 0, fmt.Errorf("неизвестный slope_mode %q", w.SlopeMode)
	}
}

// Params переводит секцию генератора в параметры world
func (g *GeneratorConfig) Params() world.GeneratorParams {
	return world.GeneratorParams{
		CaveDensity:        g.CaveDensity,
		MinCaveSize:        g.MinCaveSize,
		MaxCaveSize:        g.MaxCaveSize,
		SmoothPasses:       g.SmoothPasses,
		SmoothMinNeighbors: g.SmoothMinNeighbors,
		MaxCarveLife:       g.MaxCarveLife,
	}
}

// GetDataPath возвращает каталог данных с поддержкой fallback значений
func (s *StorageConfig) GetDataPath() string {
	if s.DataPath != "" {
		return s.DataPath
	}
	if envVal := os.Getenv("SUBTERRANEA_DATA_PATH"); envVal != "" {
		return envVal
	}
	return "data"
}

// GetPort возвращает порт метрик с поддержкой fallback значений
func (m *MetricsConfig) GetPort() int {
	return getPortWithEnvFallback(m.Port, "SUBTERRANEA_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Validate проверяет значения, которые нельзя молча заменить значениями по умолчанию
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("размер мира должен быть положительным: %dx%d", c.World.Width, c.World.Height)
	}
	if _, err := c.World.GetSlopeMode(); err != nil {
		return err
	}
	switch c.Generator.Seeder {
	case "", "random", "noise":
	default:
		return fmt.Errorf("неизвестный seeder %q", c.Generator.Seeder)
	}
	if c.Simulation.Steps < 0 || c.Simulation.Bodies < 0 {
		return fmt.Errorf("steps и bodies не могут быть отрицательными")
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV SUBTERRANEA_CONFIG,
// иначе возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SUBTERRANEA_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("конфигурация %s: %w", path, err)
	}

	return cfg, nil
}

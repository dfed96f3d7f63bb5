// Package config holds the settings of a spreading analysis. Values come
// from defaults, an optional config file, SPREAD_* environment variables
// and command line flags, in increasing precedence.
package config

import (
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/spreading-analysis/pkg/epidemic"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
	"github.com/gilchrisn/spreading-analysis/pkg/validation"
)

// ErrInvalidConfig is returned when settings fail validation
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes environment overrides, e.g. SPREAD_EPIDEMIC_BETA
const EnvPrefix = "SPREAD"

// Config manages configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Network
	v.SetDefault("network.name", "power")
	v.SetDefault("network.path", "data/{name}.gml")
	v.SetDefault("network.format", "auto")
	v.SetDefault("network.model", "")
	v.SetDefault("network.model_nodes", 1000)
	v.SetDefault("network.model_p", 0.1)
	v.SetDefault("network.model_m", 2)
	v.SetDefault("network.model_degree", 5)

	// Epidemic parameters
	v.SetDefault("epidemic.model", "sir")
	v.SetDefault("epidemic.beta", 0.65)
	v.SetDefault("epidemic.gamma", 1.0)
	v.SetDefault("epidemic.lambda", 0.8)
	v.SetDefault("epidemic.fraction_infected", 0.1)

	// Simulation
	v.SetDefault("simulation.iterations", 30)
	v.SetDefault("simulation.repetitions", 50)
	v.SetDefault("simulation.random_seed", 42)
	v.SetDefault("simulation.start_node", 0)

	// Performance parameters
	v.SetDefault("performance.num_workers", runtime.NumCPU())

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.debug_dir", "debugging")
	v.SetDefault("output.archive_path", "")
	v.SetDefault("output.metrics_file", "")

	v.SetDefault("plot.width_cm", 16.0)
	v.SetDefault("plot.height_cm", 12.0)
	v.SetDefault("plot.layout_max_nodes", 2000)

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.progress_interval_ms", 1000)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Viper exposes the underlying store for flag binding
func (c *Config) Viper() *viper.Viper { return c.v }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// AllSettings returns the effective configuration as a nested map
func (c *Config) AllSettings() map[string]interface{} {
	return c.v.AllSettings()
}

// Getters for network parameters
func (c *Config) NetworkName() string   { return c.v.GetString("network.name") }
func (c *Config) NetworkFormat() string { return c.v.GetString("network.format") }
func (c *Config) NetworkModel() string  { return c.v.GetString("network.model") }

// NetworkPath returns the input path with {name} replaced by the network name
func (c *Config) NetworkPath() string {
	return strings.ReplaceAll(c.v.GetString("network.path"), "{name}", c.NetworkName())
}

// GeneratorConfig describes the model network to generate in place of a
// file. ok is false when no model is configured.
func (c *Config) GeneratorConfig() (cfg network.ModelConfig, ok bool, err error) {
	if c.NetworkModel() == "" {
		return network.ModelConfig{}, false, nil
	}
	model, err := network.ParseModel(c.NetworkModel())
	if err != nil {
		return network.ModelConfig{}, true, err
	}
	return network.ModelConfig{
		Model:  model,
		Nodes:  c.v.GetInt("network.model_nodes"),
		P:      c.v.GetFloat64("network.model_p"),
		M:      c.v.GetInt("network.model_m"),
		Degree: c.v.GetInt("network.model_degree"),
		Seed:   c.RandomSeed(),
	}, true, nil
}

// Getters for epidemic and simulation parameters
func (c *Config) EpidemicModel() string     { return c.v.GetString("epidemic.model") }
func (c *Config) Beta() float64             { return c.v.GetFloat64("epidemic.beta") }
func (c *Config) Gamma() float64            { return c.v.GetFloat64("epidemic.gamma") }
func (c *Config) Lambda() float64           { return c.v.GetFloat64("epidemic.lambda") }
func (c *Config) FractionInfected() float64 { return c.v.GetFloat64("epidemic.fraction_infected") }
func (c *Config) Iterations() int           { return c.v.GetInt("simulation.iterations") }
func (c *Config) Repetitions() int          { return c.v.GetInt("simulation.repetitions") }
func (c *Config) RandomSeed() uint64        { return c.v.GetUint64("simulation.random_seed") }
func (c *Config) StartNode() int            { return c.v.GetInt("simulation.start_node") }
func (c *Config) NumWorkers() int           { return c.v.GetInt("performance.num_workers") }

func (c *Config) OutputDir() string   { return c.v.GetString("output.dir") }
func (c *Config) DebugDir() string    { return c.v.GetString("output.debug_dir") }
func (c *Config) ArchivePath() string { return c.v.GetString("output.archive_path") }
func (c *Config) MetricsFile() string { return c.v.GetString("output.metrics_file") }

func (c *Config) PlotWidthCM() float64  { return c.v.GetFloat64("plot.width_cm") }
func (c *Config) PlotHeightCM() float64 { return c.v.GetFloat64("plot.height_cm") }
func (c *Config) LayoutMaxNodes() int   { return c.v.GetInt("plot.layout_max_nodes") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// ProgressInterval is the sweep progress logging period; zero disables it
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.v.GetInt("logging.progress_interval_ms")) * time.Millisecond
}

// Settings is the validated subset of the configuration a simulation needs
type Settings struct {
	Network          string         `validate:"required"`
	Model            epidemic.Model `validate:"oneof=sir sis"`
	Params           epidemic.Params
	FractionInfected float64 `validate:"gt=0,lte=1"`
	Repetitions      int     `validate:"gte=1"`
	Seed             uint64
	StartNode        int `validate:"gte=0"`
	Workers          int `validate:"gte=1"`
	ProgressInterval time.Duration
}

// Simulation collects and validates the simulation settings
func (c *Config) Simulation() (Settings, error) {
	s := Settings{
		Network: c.NetworkName(),
		Model:   epidemic.Model(strings.ToLower(c.EpidemicModel())),
		Params: epidemic.Params{
			Beta:       c.Beta(),
			Gamma:      c.Gamma(),
			Lambda:     c.Lambda(),
			Iterations: c.Iterations(),
		},
		FractionInfected: c.FractionInfected(),
		Repetitions:      c.Repetitions(),
		Seed:             c.RandomSeed(),
		StartNode:        c.StartNode(),
		Workers:          c.NumWorkers(),
		ProgressInterval: c.ProgressInterval(),
	}
	if err := validation.Struct(s, ErrInvalidConfig); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// CreateLogger creates a zerolog logger based on config. Logs go to
// stderr so that command output on stdout stays clean.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "spread").Logger()
}

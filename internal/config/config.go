package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wavefit/internal/ga"
	"wavefit/internal/signal"
	"wavefit/internal/trainer"
)

// Config is the root configuration structure
type Config struct {
	Seed        uint64             `yaml:"seed"`
	Population  int                `yaml:"population"`
	Hyper       ga.HyperParameters `yaml:"hyper"`
	Selection   SelectionConfig    `yaml:"selection"`
	Target      signal.Spec        `yaml:"target"`
	Termination TerminationConfig  `yaml:"termination"`
	Eval        EvalConfig         `yaml:"eval"`
	Logging     LogConfig          `yaml:"logging"`
	Storage     StorageConfig      `yaml:"storage"`
	Metrics     MetricsConfig      `yaml:"metrics"`
}

// SelectionConfig picks how replaced agents choose their parent
type SelectionConfig struct {
	ParentSelection string `yaml:"parent_selection"` // uniform|tournament|proportional
	TournamentK     int    `yaml:"tournament_k"`
}

// TerminationConfig defines when a run ends. Zero disables a condition.
type TerminationConfig struct {
	MaxGenerations     int     `yaml:"max_generations"`
	FitnessThreshold   float64 `yaml:"fitness_threshold"`
	PlateauGenerations int     `yaml:"plateau_generations"`
	PlateauEpsilon     float64 `yaml:"plateau_epsilon"`
}

// EvalConfig defines evaluation parameters
type EvalConfig struct {
	Workers int `yaml:"workers"`
}

// LogConfig defines logging parameters
type LogConfig struct {
	Level             string `yaml:"level"`  // debug|info|warn|error
	Format            string `yaml:"format"` // text|json
	EveryGenSummary   bool   `yaml:"every_gen_summary"`
	SaveChampionEvery int    `yaml:"save_champion_every"`
	ReplayEvery       int    `yaml:"replay_every"`
	ArtifactsDir      string `yaml:"artifacts_dir"`
	CSVPath           string `yaml:"csv_path"`
	JSONPath          string `yaml:"json_path"`
}

// StorageConfig selects where runs are persisted
type StorageConfig struct {
	Backend    string `yaml:"backend"` // memory|sqlite
	SQLitePath string `yaml:"sqlite_path"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used for any field a file leaves out
func Default() *Config {
	tc := trainer.DefaultConfig()
	return &Config{
		Seed:       tc.Seed,
		Population: tc.Population,
		Hyper:      tc.Hyper,
		Selection: SelectionConfig{
			ParentSelection: string(tc.ParentSelection),
			TournamentK:     tc.TournamentK,
		},
		Target: signal.DefaultSpec(),
		Termination: TerminationConfig{
			MaxGenerations:     tc.MaxGenerations,
			FitnessThreshold:   tc.FitnessThreshold,
			PlateauGenerations: tc.PlateauGenerations,
			PlateauEpsilon:     tc.PlateauEpsilon,
		},
		Logging: LogConfig{
			Level:           "info",
			Format:          "text",
			EveryGenSummary: true,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
	}
}

// Load reads a YAML config file and returns a Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults, so fields set to 0 explicitly stay 0
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Target.Kind == "" {
		cfg.Target.Kind = signal.KindSine
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.ArtifactsDir == "" {
		cfg.Logging.ArtifactsDir = "artifacts"
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/run.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/run.jsonl"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.Backend == "sqlite" && cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "runs/wavefit.db"
	}
}

// Validate checks everything the trainer checks plus the ambient sections
func (c *Config) Validate() error {
	var errs []error
	if err := c.Trainer().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, &ga.ConfigError{Field: "logging.format", Rule: "oneof=text json", Value: c.Logging.Format})
	}
	switch c.Storage.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, &ga.ConfigError{Field: "storage.backend", Rule: "oneof=memory sqlite", Value: c.Storage.Backend})
	}
	return errors.Join(errs...)
}

// Trainer converts the file layout into a trainer.Config
func (c *Config) Trainer() trainer.Config {
	return trainer.Config{
		Population:         c.Population,
		Hyper:              c.Hyper,
		ParentSelection:    ga.ParentPolicy(c.Selection.ParentSelection),
		TournamentK:        c.Selection.TournamentK,
		MaxGenerations:     c.Termination.MaxGenerations,
		FitnessThreshold:   c.Termination.FitnessThreshold,
		PlateauGenerations: c.Termination.PlateauGenerations,
		PlateauEpsilon:     c.Termination.PlateauEpsilon,
		Workers:            c.Eval.Workers,
		Seed:               c.Seed,
	}
}

// SlogLevel parses Logging.Level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Logging.Level))); err != nil {
		return 0, &ga.ConfigError{Field: "logging.level", Rule: "oneof=debug info warn error", Value: c.Logging.Level}
	}
	return level, nil
}

// NewLogger builds the slog logger described by Logging
func (c *Config) NewLogger() *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

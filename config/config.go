// Package config holds solver, lattice and output parameters shared by the
// pricers and the CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/meenmo/moderiv/logger"
)

// Config holds solver and lattice parameters.
type Config struct {
	Solver  SolverConfig  `mapstructure:"solver"`
	Lattice LatticeConfig `mapstructure:"lattice"`
	Bond    BondConfig    `mapstructure:"bond"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging logger.Config `mapstructure:"logging"`

	// Workers bounds how many requests of a batch are priced at once.
	Workers int `mapstructure:"workers"`
}

// SolverConfig drives the implied volatility search.
type SolverConfig struct {
	// Accuracy is the tolerance on σ.
	Accuracy       float64 `mapstructure:"accuracy"`
	MaxEvaluations int     `mapstructure:"max_evaluations"`
	MinVol         float64 `mapstructure:"min_vol"`
	MaxVol         float64 `mapstructure:"max_vol"`
}

// LatticeConfig sets the binomial trees used when a request does not.
type LatticeConfig struct {
	// AmericanSteps is the tree size for American implied volatility.
	AmericanSteps int `mapstructure:"american_steps"`
	// Smoothing averages N and N+1 step trees for vanilla options.
	Smoothing bool `mapstructure:"smoothing"`
}

// BondConfig holds the convertible bond conventions.
type BondConfig struct {
	Face           float64 `mapstructure:"face"`
	Redemption     float64 `mapstructure:"redemption"`
	SettlementDays int     `mapstructure:"settlement_days"`
	Calendar       string  `mapstructure:"calendar"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	// Decimals is the rounding applied to every number written by the CLI.
	Decimals int32 `mapstructure:"decimals"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Solver: SolverConfig{
		Accuracy:       1e-6,
		MaxEvaluations: 100,
		MinVol:         1e-7,
		MaxVol:         4.0,
	},
	Lattice: LatticeConfig{
		AmericanSteps: 801,
	},
	Bond: BondConfig{
		Face:           100,
		Redemption:     100,
		SettlementDays: 1,
		Calendar:       "USGOVTBOND",
	},
	Output: OutputConfig{
		Decimals: 10,
	},
	Logging: logger.Config{
		Level:      "info",
		Format:     "text",
		Output:     "stderr",
		FilePath:   "logs/moderiv.log",
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
	},
	Workers: 4,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}

// Validate rejects settings the pricers cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Solver.Accuracy <= 0:
		return fmt.Errorf("config: solver.accuracy must be positive, got %v", c.Solver.Accuracy)
	case c.Solver.MaxEvaluations <= 0:
		return fmt.Errorf("config: solver.max_evaluations must be positive, got %d", c.Solver.MaxEvaluations)
	case c.Solver.MinVol < 0 || c.Solver.MaxVol <= c.Solver.MinVol:
		return fmt.Errorf("config: invalid volatility range [%v, %v]", c.Solver.MinVol, c.Solver.MaxVol)
	case c.Lattice.AmericanSteps < 1:
		return fmt.Errorf("config: lattice.american_steps must be at least 1, got %d", c.Lattice.AmericanSteps)
	case c.Bond.Face <= 0:
		return fmt.Errorf("config: bond.face must be positive, got %v", c.Bond.Face)
	case c.Bond.SettlementDays < 0:
		return fmt.Errorf("config: bond.settlement_days must be non-negative, got %d", c.Bond.SettlementDays)
	case c.Output.Decimals < 0:
		return fmt.Errorf("config: output.decimals must be non-negative, got %d", c.Output.Decimals)
	case c.Workers < 1:
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Load reads configuration from path, or from moderiv.yaml in the working
// directory or ~/.moderiv when path is empty, on top of DefaultConfig.
//
// Environment variables override file values:
// MODERIV_<SECTION>_<KEY>, e.g. MODERIV_SOLVER_ACCURACY.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("moderiv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.moderiv")
	}
	v.SetEnvPrefix("MODERIV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("solver.accuracy", d.Solver.Accuracy)
	v.SetDefault("solver.max_evaluations", d.Solver.MaxEvaluations)
	v.SetDefault("solver.min_vol", d.Solver.MinVol)
	v.SetDefault("solver.max_vol", d.Solver.MaxVol)

	v.SetDefault("lattice.american_steps", d.Lattice.AmericanSteps)
	v.SetDefault("lattice.smoothing", d.Lattice.Smoothing)

	v.SetDefault("bond.face", d.Bond.Face)
	v.SetDefault("bond.redemption", d.Bond.Redemption)
	v.SetDefault("bond.settlement_days", d.Bond.SettlementDays)
	v.SetDefault("bond.calendar", d.Bond.Calendar)

	v.SetDefault("output.decimals", d.Output.Decimals)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.compress", d.Logging.Compress)
	v.SetDefault("logging.with_caller", d.Logging.WithCaller)

	v.SetDefault("workers", d.Workers)
}

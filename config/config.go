// Package config loads engine, valuation, logging and report settings from
// YAML with CASHFLOWRISK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/utils"
)

// EnvPrefix prefixes every environment override, e.g. CASHFLOWRISK_VALUATION_WORKERS.
const EnvPrefix = "CASHFLOWRISK"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tunable of the engine and its front ends.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Report    ReportConfig    `mapstructure:"report"`
	// Holidays maps a calendar id to ISO holiday dates.
	Holidays map[string][]string `mapstructure:"holidays"`
}

// EngineConfig controls the analytics.
type EngineConfig struct {
	// DivisionPrecision is the number of decimal places kept by decimal division.
	DivisionPrecision int32 `mapstructure:"division_precision"`

	// Delta1PDHPerturbation divides the repricing difference of each perturbed
	// discount curve.
	Delta1PDHPerturbation float64 `mapstructure:"delta1_pdh_perturbation"`

	// Delta0PDHPerturbation is the same for perturbed forecast curves.
	Delta0PDHPerturbation float64 `mapstructure:"delta0_pdh_perturbation"`

	// PillarShiftBP is the zero rate bump applied to each curve pillar when
	// perturbed curves are generated.
	PillarShiftBP float64 `mapstructure:"pillar_shift_bp"`

	// BucketLadder enables discount factor ladders for bucketed delta.
	BucketLadder bool `mapstructure:"bucket_ladder"`
}

// ValuationConfig controls the valuation engine.
type ValuationConfig struct {
	// Workers bounds the number of flows evaluated concurrently.
	Workers           int      `mapstructure:"workers"`
	ReportingCurrency string   `mapstructure:"reporting_currency"`
	Metrics           []string `mapstructure:"metrics"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

type ReportConfig struct {
	// Format is "csv" or "parquet".
	Format string `mapstructure:"format"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Engine: EngineConfig{
		DivisionPrecision:     16,
		Delta1PDHPerturbation: 10,
		Delta0PDHPerturbation: 10,
		PillarShiftBP:         1,
		BucketLadder:          true,
	},
	Valuation: ValuationConfig{
		Workers: 4,
	},
	Logging: LoggingConfig{
		Level:    "info",
		Encoding: "json",
	},
	Report: ReportConfig{
		Format: "csv",
	},
}

// Default returns a copy of DefaultConfig.
func Default() *Config {
	c := DefaultConfig
	c.Valuation.Metrics = append([]string(nil), DefaultConfig.Valuation.Metrics...)
	return &c
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig
	v.SetDefault("engine.division_precision", d.Engine.DivisionPrecision)
	v.SetDefault("engine.delta1_pdh_perturbation", d.Engine.Delta1PDHPerturbation)
	v.SetDefault("engine.delta0_pdh_perturbation", d.Engine.Delta0PDHPerturbation)
	v.SetDefault("engine.pillar_shift_bp", d.Engine.PillarShiftBP)
	v.SetDefault("engine.bucket_ladder", d.Engine.BucketLadder)
	v.SetDefault("valuation.workers", d.Valuation.Workers)
	v.SetDefault("valuation.reporting_currency", d.Valuation.ReportingCurrency)
	v.SetDefault("valuation.metrics", d.Valuation.Metrics)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("report.format", d.Report.Format)
	return v
}

// Load reads path (YAML) over the defaults. An empty path uses defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return decode(v)
}

// LoadReader reads YAML from r over the defaults.
func LoadReader(r io.Reader) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ranges and formats.
func (c *Config) Validate() error {
	switch {
	case c.Engine.DivisionPrecision <= 0:
		return fmt.Errorf("%w: engine.division_precision must be positive", ErrInvalidConfig)
	case c.Engine.Delta1PDHPerturbation == 0 || c.Engine.Delta0PDHPerturbation == 0:
		return fmt.Errorf("%w: PDH perturbations must be non-zero", ErrInvalidConfig)
	case c.Valuation.Workers < 1:
		return fmt.Errorf("%w: valuation.workers must be at least 1", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Report.Format) {
	case "csv", "parquet":
	default:
		return fmt.Errorf("%w: report.format %q", ErrInvalidConfig, c.Report.Format)
	}
	for cal, days := range c.Holidays {
		for _, s := range days {
			if _, err := utils.ParseDate(s); err != nil {
				return fmt.Errorf("%w: holidays.%s: %v", ErrInvalidConfig, cal, err)
			}
		}
	}
	return nil
}

// Apply installs process-wide settings: decimal division precision and
// holiday calendars. Call it once before valuing.
func (c *Config) Apply() error {
	decimal.DivisionPrecision = int(c.Engine.DivisionPrecision)
	for cal, days := range c.Holidays {
		dates := make([]time.Time, 0, len(days))
		for _, s := range days {
			d, err := utils.ParseDate(s)
			if err != nil {
				return err
			}
			dates = append(dates, d)
		}
		calendar.SetHolidays(calendar.CalendarID(strings.ToUpper(cal)), dates)
	}
	return nil
}

// Delta1Perturbation is Engine.Delta1PDHPerturbation as a decimal.
func (c *Config) Delta1Perturbation() decimal.Decimal {
	return decimal.NewFromFloat(c.Engine.Delta1PDHPerturbation)
}

// Delta0Perturbation is Engine.Delta0PDHPerturbation as a decimal.
func (c *Config) Delta0Perturbation() decimal.Decimal {
	return decimal.NewFromFloat(c.Engine.Delta0PDHPerturbation)
}

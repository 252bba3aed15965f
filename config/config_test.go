package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := config.Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 4, c.Valuation.Workers)
	assert.Equal(t, "csv", c.Report.Format)
	assert.True(t, c.Delta1Perturbation().Equal(c.Delta0Perturbation()))

	c.Valuation.Workers = 99
	assert.Equal(t, 4, config.DefaultConfig.Valuation.Workers)
}

func TestLoadReader(t *testing.T) {
	t.Parallel()

	yaml := `
engine:
  delta1_pdh_perturbation: 1
valuation:
  workers: 8
  reporting_currency: USD
  metrics: [NPV, Delta1]
report:
  format: parquet
holidays:
  aud: ["2024-12-25", "2024-12-26"]
`
	c, err := config.LoadReader(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, 8, c.Valuation.Workers)
	assert.Equal(t, "USD", c.Valuation.ReportingCurrency)
	assert.Equal(t, []string{"NPV", "Delta1"}, c.Valuation.Metrics)
	assert.Equal(t, "parquet", c.Report.Format)
	assert.InDelta(t, 1.0, c.Engine.Delta1PDHPerturbation, 0)
	// untouched keys keep their defaults
	assert.InDelta(t, 10.0, c.Engine.Delta0PDHPerturbation, 0)
	assert.Equal(t, int32(16), c.Engine.DivisionPrecision)
	assert.Len(t, c.Holidays["aud"], 2)
}

func TestLoadReader_Invalid(t *testing.T) {
	t.Parallel()

	for name, yaml := range map[string]string{
		"workers":      "valuation:\n  workers: 0\n",
		"format":       "report:\n  format: xlsx\n",
		"perturbation": "engine:\n  delta0_pdh_perturbation: 0\n",
		"holiday":      "holidays:\n  aud: [\"25/12/2024\"]\n",
	} {
		_, err := config.LoadReader(strings.NewReader(yaml))
		assert.ErrorIs(t, err, config.ErrInvalidConfig, name)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CASHFLOWRISK_VALUATION_WORKERS", "2")
	t.Setenv("CASHFLOWRISK_LOGGING_LEVEL", "debug")

	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Valuation.Workers)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestApply_InstallsHolidays(t *testing.T) {
	c := config.Default()
	c.Holidays = map[string][]string{"krw": {"2031-03-03"}}
	require.NoError(t, c.Apply())

	assert.False(t, calendar.IsBusinessDay(calendar.KRW, time.Date(2031, 3, 3, 0, 0, 0, 0, time.UTC)))
}

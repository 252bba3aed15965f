package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/cashflowrisk/analytics"
)

func TestRun_Price(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"price", "-input", "testdata/swap.json"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String()+stderr.String())

	var out struct {
		RunID  string `json:"run_id"`
		Totals struct {
			NPV     string            `json:"npv"`
			RiskNPV map[string]string `json:"risk_npv"`
		} `json:"totals"`
		Legs []struct {
			Name  string `json:"name"`
			Flows []struct {
				Metrics map[string]any `json:"metrics"`
			} `json:"flows"`
		} `json:"legs"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.NotEmpty(t, out.RunID)
	assert.NotEmpty(t, out.Totals.NPV)
	assert.Contains(t, out.Totals.RiskNPV, "AUD")
	assert.Contains(t, out.Totals.RiskNPV, "USD")
	require.Len(t, out.Legs, 2)
	// 8 quarterly coupons and the principal
	assert.Len(t, out.Legs[0].Flows, 9)
	assert.Len(t, out.Legs[1].Flows, 4)
	assert.Len(t, out.Legs[0].Flows[0].Metrics, len(analytics.AllMetrics()))
}

func TestRun_ReportCSV(t *testing.T) {
	b, err := os.ReadFile("testdata/swap.json")
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := run([]string{"report", "-format", "csv"}, bytes.NewReader(b), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	recs, err := csv.NewReader(&stdout).ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs, 1+9+4)
	assert.Equal(t, "aud-fixed", recs[1][0])
}

func TestRun_ReportToFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "flows.parquet")

	var stdout, stderr bytes.Buffer
	code := run([]string{"report", "-input", "testdata/swap.json", "-format", "parquet", "-out", out},
		strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	stderr.Reset()
	code = run([]string{"report", "-input", "testdata/swap.json", "-out", filepath.Join(dir, "missing", "flows.csv")},
		strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `"error"`)
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"theta"}, strings.NewReader(""), &stdout, &stderr))

	stdout.Reset()
	assert.Equal(t, 1, run([]string{"price"}, strings.NewReader("{"), &stdout, &stderr))
	assert.Contains(t, stdout.String(), `"error"`)
}

func TestRun_Metrics(t *testing.T) {
	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"metrics"}, strings.NewReader(""), &stdout, &bytes.Buffer{}))
	assert.Equal(t, len(analytics.AllMetrics()), strings.Count(stdout.String(), "\n"))
}

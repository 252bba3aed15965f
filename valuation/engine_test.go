package valuation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/curve"
	"github.com/meenmo/cashflowrisk/leg"
	"github.com/meenmo/cashflowrisk/utils"
	"github.com/meenmo/cashflowrisk/valuation"
)

var valDate = time.Date(2008, 7, 22, 0, 0, 0, 0, time.UTC)

func audCurve(t *testing.T) *curve.NodeCurve {
	t.Helper()
	c, err := curve.NewNodeCurve("AUD-Zero", valDate, map[time.Time]float64{
		valDate.AddDate(1, 0, 0): 0.93,
		valDate.AddDate(2, 0, 0): 0.865,
	}, utils.Act365F)
	require.NoError(t, err)
	return c
}

func legs() []leg.Leg {
	fixed := leg.Leg{
		Name:                  "fixed",
		Type:                  leg.Fixed,
		Direction:             leg.Receive,
		Currency:              "AUD",
		Notional:              decimal.NewFromInt(10_000_000),
		Rate:                  decimal.RequireFromString("0.0725"),
		DayCount:              utils.Act365F,
		PayFrequency:          leg.FreqQuarterly,
		Calendar:              calendar.WeekendsOnly,
		Adjustment:            calendar.ModifiedFollowing,
		EffectiveDate:         valDate,
		MaturityDate:          valDate.AddDate(1, 0, 0),
		IncludeFinalPrincipal: true,
	}
	floating := fixed
	floating.Name = "floating"
	floating.Type = leg.Floating
	floating.Direction = leg.Pay
	floating.Rate = decimal.Zero
	floating.IncludeFinalPrincipal = false
	return []leg.Leg{fixed, floating}
}

func TestEngine_ValueAggregatesFlows(t *testing.T) {
	t.Parallel()

	c := audCurve(t)
	curves := analytics.Curves{Discount: c, Forecast: c}
	reg := prometheus.NewRegistry()
	m := valuation.NewMetrics(reg)
	eng := valuation.NewEngine(
		valuation.WithLogger(zaptest.NewLogger(t)),
		valuation.WithMetrics(m),
		valuation.WithWorkers(3),
	)

	opts := leg.Options{
		Delta1PDHCurves:       valuation.PerturbedCurves(c.PerturbPillars(1)),
		Delta1PDHPerturbation: decimal.NewFromInt(1),
		Ladder:                valuation.CurveLadder(c, 3),
	}
	res, err := eng.Value(context.Background(), valuation.Request{
		ValuationDate: valDate,
		Legs:          legs(),
		Market:        valuation.StaticMarket{"AUD": curves},
		Options:       opts,
	})
	require.NoError(t, err)
	require.Len(t, res.Legs, 2)
	assert.Len(t, res.Legs[0].Flows, 5)
	assert.Len(t, res.Legs[1].Flows, 4)

	// independent sum over the same flows
	want := decimal.Zero
	for _, l := range legs() {
		flows, err := l.Flows(valDate, opts)
		require.NoError(t, err)
		for _, f := range flows {
			a, err := f.Analytic(curves)
			require.NoError(t, err)
			r, err := a.Calculate(analytics.MetricNPV)
			require.NoError(t, err)
			want = want.Add(r.NPV.Reporting)
		}
	}
	assert.True(t, res.Totals.NPV.Equal(want), "got %s want %s", res.Totals.NPV, want)
	assert.True(t, res.Totals.NPV.Equal(res.Legs[0].Totals.NPV.Add(res.Legs[1].Totals.NPV)))

	require.Len(t, res.Totals.RiskNPV, 1)
	assert.Equal(t, "AUD", res.Totals.RiskNPV[0].Currency)
	assert.True(t, res.Totals.RiskNPV[0].Amount.Equal(res.Totals.NPV))

	assert.Contains(t, res.Totals.Delta1PDH, "AUD-Zero-2009-07-22")
	assert.NotEqual(t, uuid.Nil, res.RunID)

	assert.InDelta(t, 8, testutil.ToFloat64(m.FlowsValued.WithLabelValues("COUPON", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FlowsValued.WithLabelValues("PRINCIPAL", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Runs.WithLabelValues("ok")), 0)
}

func TestEngine_SelectedMetrics(t *testing.T) {
	t.Parallel()

	c := audCurve(t)
	eng := valuation.NewEngine()
	res, err := eng.Value(context.Background(), valuation.Request{
		ValuationDate: valDate,
		Legs:          legs()[:1],
		Market:        valuation.StaticMarket{"AUD": {Discount: c}},
		Metrics:       []analytics.Metric{analytics.MetricNPV, analytics.MetricDelta1},
	})
	require.NoError(t, err)
	for _, f := range res.Legs[0].Flows {
		assert.Equal(t, []analytics.Metric{analytics.MetricNPV, analytics.MetricDelta1}, f.Results.Calculated)
	}
	assert.True(t, res.Totals.Gamma1.IsZero())
	assert.False(t, res.Totals.Delta1.IsZero())
	assert.Empty(t, res.Totals.RiskNPV)
}

func TestEngine_MissingCurves(t *testing.T) {
	t.Parallel()

	m := valuation.NewMetrics(prometheus.NewRegistry())
	eng := valuation.NewEngine(valuation.WithMetrics(m), valuation.WithWorkers(1))
	_, err := eng.Value(context.Background(), valuation.Request{
		ValuationDate: valDate,
		Legs:          legs(),
		Market:        valuation.StaticMarket{"USD": {}},
	})
	require.ErrorIs(t, err, valuation.ErrNoCurves)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Runs.WithLabelValues("error")), 0)

	_, err = eng.Value(context.Background(), valuation.Request{ValuationDate: valDate, Legs: legs()})
	assert.ErrorIs(t, err, valuation.ErrNoCurves)
}

func TestEngine_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := audCurve(t)
	_, err := valuation.NewEngine().Value(ctx, valuation.Request{
		ValuationDate: valDate,
		Legs:          legs(),
		Market:        valuation.StaticMarket{"AUD": {Discount: c, Forecast: c}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_InvalidLeg(t *testing.T) {
	t.Parallel()

	l := legs()[0]
	l.Name = ""
	_, err := valuation.NewEngine().Value(context.Background(), valuation.Request{
		ValuationDate: valDate,
		Legs:          []leg.Leg{l},
		Market:        valuation.StaticMarket{},
	})
	assert.ErrorIs(t, err, leg.ErrInvalidLeg)
}

func TestCurveLadder(t *testing.T) {
	t.Parallel()

	ladder := valuation.CurveLadder(audCurve(t), 3)
	dfs, err := ladder(valDate, valDate.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.Len(t, dfs, 5)
	assert.True(t, dfs[0].Equal(decimal.NewFromInt(1)))
	assert.InDelta(t, 0.93, dfs[4].InexactFloat64(), 1e-9)
}

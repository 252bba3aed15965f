package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/curve"
	"github.com/meenmo/cashflowrisk/utils"
)

var base = time.Date(2008, 7, 22, 0, 0, 0, 0, time.UTC)

var (
	_ analytics.RateCurve      = (*curve.NodeCurve)(nil)
	_ analytics.PerturbedCurve = (*curve.Perturbed)(nil)
	_ analytics.FxCurve        = curve.FlatFx(1)
)

func sample(t *testing.T) *curve.NodeCurve {
	t.Helper()
	c, err := curve.NewNodeCurve("AUD-Zero", base, map[time.Time]float64{
		base.AddDate(1, 0, 0): 0.95,
		base.AddDate(2, 0, 0): 0.90,
	}, utils.Act365F)
	require.NoError(t, err)
	return c
}

func TestNodeCurve_PillarsAndInterpolation(t *testing.T) {
	t.Parallel()

	c := sample(t)
	require.Len(t, c.Pillars(), 3)
	assert.Equal(t, 1.0, c.DF(base))
	assert.Equal(t, 0.95, c.DF(base.AddDate(1, 0, 0)))

	mid := base.AddDate(1, 6, 0)
	df := c.DF(mid)
	assert.Less(t, df, 0.95)
	assert.Greater(t, df, 0.90)

	// log-linear: the zero rate between two pillars lies between their zero rates
	z := c.ZeroRate(mid)
	assert.Greater(t, z, c.ZeroRate(base.AddDate(1, 0, 0)))
	assert.Less(t, z, c.ZeroRate(base.AddDate(2, 0, 0)))
}

func TestNodeCurve_DiscountFactorIsRelativeToValuation(t *testing.T) {
	t.Parallel()

	c := sample(t)
	val := base.AddDate(1, 0, 0)
	df, err := c.DiscountFactor(val, base.AddDate(2, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.90/0.95, df, 1e-12)

	df, err = c.DiscountFactor(val, base)
	require.NoError(t, err)
	assert.Equal(t, 1.0, df)

	_, err = c.DiscountFactor(base.AddDate(0, 0, -1), val)
	assert.ErrorIs(t, err, curve.ErrBeforeBase)
}

func TestNewNodeCurve_Errors(t *testing.T) {
	t.Parallel()

	_, err := curve.NewNodeCurve("empty", base, nil, utils.Act365F)
	assert.ErrorIs(t, err, curve.ErrNoPillars)

	_, err = curve.NewNodeCurve("neg", base, map[time.Time]float64{base.AddDate(1, 0, 0): -0.1}, utils.Act365F)
	assert.ErrorIs(t, err, curve.ErrInvalidPillar)
}

func TestNodeCurve_Shifted(t *testing.T) {
	t.Parallel()

	c := sample(t)
	up := c.Shifted("AUD-Zero-parallel", 1)
	assert.Equal(t, "AUD-Zero-parallel", up.PerturbedAsset())

	d := base.AddDate(2, 0, 0)
	yf := utils.YearFraction(base, d, utils.Act365F)
	assert.InDelta(t, c.DF(d)*math.Exp(-0.0001*yf), up.DF(d), 1e-12)
	assert.InDelta(t, c.ZeroRate(d)+0.0001, up.ZeroRate(d), 1e-12)
}

func TestNodeCurve_PerturbPillars(t *testing.T) {
	t.Parallel()

	c := sample(t)
	bumps := c.PerturbPillars(1)
	require.Len(t, bumps, 2)
	assert.Equal(t, "AUD-Zero-2009-07-22", bumps[0].PerturbedAsset())
	assert.Equal(t, "AUD-Zero-2010-07-22", bumps[1].PerturbedAsset())

	// the one year bump leaves the two year pillar alone
	assert.Equal(t, c.DF(base.AddDate(2, 0, 0)), bumps[0].DF(base.AddDate(2, 0, 0)))
	assert.Less(t, bumps[0].DF(base.AddDate(1, 0, 0)), c.DF(base.AddDate(1, 0, 0)))
}

func TestNodeCurve_Ladder(t *testing.T) {
	t.Parallel()

	c := sample(t)
	ladder, err := c.Ladder(base, base.AddDate(1, 0, 0), 3)
	require.NoError(t, err)
	require.Len(t, ladder, 5)
	assert.Equal(t, 1.0, ladder[0])
	for i := 1; i < len(ladder); i++ {
		assert.Less(t, ladder[i], ladder[i-1])
	}

	_, err = c.Ladder(base, base.AddDate(1, 0, 0), 0)
	assert.Error(t, err)
}

func TestFlatFx(t *testing.T) {
	t.Parallel()

	fx, err := curve.FlatFx(0.65).Forward(base, base)
	require.NoError(t, err)
	assert.Equal(t, 0.65, fx)
}

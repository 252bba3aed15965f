// Package curve provides discount factor curves that satisfy the analytics
// curve interfaces. Curves are built from known discount factor pillars;
// bootstrapping from market quotes is left to the caller.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/cashflowrisk/utils"
)

var (
	// ErrNoPillars is returned when a curve is built without discount factors.
	ErrNoPillars = errors.New("curve has no pillars")
	// ErrInvalidPillar is returned for a non-positive discount factor.
	ErrInvalidPillar = errors.New("pillar discount factor must be positive")
	// ErrBeforeBase is returned for a lookup before the curve's base date.
	ErrBeforeBase = errors.New("date before curve base date")
)

// NodeCurve interpolates discount factors log-linearly between pillars and
// extrapolates flat in the forward rate beyond the first and last pillar.
//
// A NodeCurve is immutable after construction and safe for concurrent reads.
type NodeCurve struct {
	id       string
	base     time.Time
	dayCount utils.DayCount
	pillars  []time.Time
	dfs      map[time.Time]float64
}

// NewNodeCurve builds a curve dated base from pillar discount factors. The
// base date is pinned to a discount factor of 1 unless it is supplied.
func NewNodeCurve(id string, base time.Time, dfs map[time.Time]float64, dayCount utils.DayCount) (*NodeCurve, error) {
	if len(dfs) == 0 {
		return nil, fmt.Errorf("curve %s: %w", id, ErrNoPillars)
	}
	c := &NodeCurve{
		id:       id,
		base:     base,
		dayCount: dayCount,
		dfs:      make(map[time.Time]float64, len(dfs)+1),
	}
	for t, df := range dfs {
		if !(df > 0) {
			return nil, fmt.Errorf("curve %s at %s: %w (got %g)", id, t.Format(utils.DateLayout), ErrInvalidPillar, df)
		}
		c.dfs[t] = df
	}
	if _, ok := c.dfs[base]; !ok {
		c.dfs[base] = 1.0
	}
	for t := range c.dfs {
		c.pillars = append(c.pillars, t)
	}
	utils.SortDates(c.pillars)
	return c, nil
}

// ID names the curve.
func (c *NodeCurve) ID() string { return c.id }

// Base is the date the pillars are discounted to.
func (c *NodeCurve) Base() time.Time { return c.base }

// Pillars returns the sorted pillar dates.
func (c *NodeCurve) Pillars() []time.Time {
	out := make([]time.Time, len(c.pillars))
	copy(out, c.pillars)
	return out
}

// DF returns the discount factor from the base date to t.
func (c *NodeCurve) DF(t time.Time) float64 {
	if df, ok := c.dfs[t]; ok {
		return df
	}
	if len(c.pillars) < 2 {
		return c.dfs[c.pillars[0]]
	}
	d1, d2 := utils.AdjacentDates(t, c.pillars)
	df1, df2 := c.dfs[d1], c.dfs[d2]

	t1 := utils.YearFraction(c.base, d1, c.dayCount)
	t2 := utils.YearFraction(c.base, d2, c.dayCount)
	tTarget := utils.YearFraction(c.base, t, c.dayCount)
	if t2 == t1 {
		return df1
	}
	forwardRate := math.Log(df1/df2) / (t2 - t1)
	return utils.RoundTo(df1*math.Exp(-forwardRate*(tTarget-t1)), 12)
}

// DiscountFactor implements analytics.RateCurve: the factor from
// valuationDate to targetDate, DF(target) / DF(valuation).
func (c *NodeCurve) DiscountFactor(valuationDate, targetDate time.Time) (float64, error) {
	if valuationDate.Before(c.base) {
		return 0, fmt.Errorf("curve %s: valuation %s: %w", c.id, valuationDate.Format(utils.DateLayout), ErrBeforeBase)
	}
	if targetDate.Before(valuationDate) {
		return 1.0, nil
	}
	return c.DF(targetDate) / c.DF(valuationDate), nil
}

// ZeroRate is the continuously compounded zero rate to t on the curve's day count.
func (c *NodeCurve) ZeroRate(t time.Time) float64 {
	yf := utils.YearFraction(c.base, t, c.dayCount)
	if yf == 0 {
		return 0
	}
	return -math.Log(c.DF(t)) / yf
}

// Ladder samples discount factors every periodMonths from valuationDate
// until the first date on or after end. The first element is 1.
func (c *NodeCurve) Ladder(valuationDate, end time.Time, periodMonths int) ([]float64, error) {
	if periodMonths <= 0 {
		return nil, fmt.Errorf("curve %s: ladder period must be positive, got %d", c.id, periodMonths)
	}
	out := []float64{1.0}
	for i := 1; ; i++ {
		d := utils.AddMonth(valuationDate, i*periodMonths)
		df, err := c.DiscountFactor(valuationDate, d)
		if err != nil {
			return nil, err
		}
		out = append(out, df)
		if !d.Before(end) {
			return out, nil
		}
	}
}

// Shifted returns a copy whose zero rates are moved by shiftBP basis points
// at every pillar, tagged with asset for perturbation reports.
func (c *NodeCurve) Shifted(asset string, shiftBP float64) *Perturbed {
	return c.shift(asset, shiftBP, nil)
}

// PerturbPillars returns one curve per pillar after the base date, each with
// only that pillar's zero rate shifted by shiftBP basis points. The asset of
// each curve is "<id>-<pillar date>".
func (c *NodeCurve) PerturbPillars(shiftBP float64) []*Perturbed {
	out := make([]*Perturbed, 0, len(c.pillars))
	for _, p := range c.pillars {
		if !p.After(c.base) {
			continue
		}
		p := p
		asset := fmt.Sprintf("%s-%s", c.id, p.Format(utils.DateLayout))
		out = append(out, c.shift(asset, shiftBP, &p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].asset < out[j].asset })
	return out
}

func (c *NodeCurve) shift(asset string, shiftBP float64, only *time.Time) *Perturbed {
	dfs := make(map[time.Time]float64, len(c.dfs))
	for t, df := range c.dfs {
		if only == nil || t.Equal(*only) {
			yf := utils.YearFraction(c.base, t, c.dayCount)
			df *= math.Exp(-shiftBP / 10000 * yf)
		}
		dfs[t] = df
	}
	bumped := &NodeCurve{
		id:       c.id,
		base:     c.base,
		dayCount: c.dayCount,
		pillars:  c.pillars,
		dfs:      dfs,
	}
	return &Perturbed{NodeCurve: bumped, asset: asset}
}

// Perturbed is a NodeCurve bumped for a single market asset.
type Perturbed struct {
	*NodeCurve
	asset string
}

// PerturbedAsset implements analytics.PerturbedCurve.
func (p *Perturbed) PerturbedAsset() string { return p.asset }

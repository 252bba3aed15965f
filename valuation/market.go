package valuation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/curve"
	"github.com/meenmo/cashflowrisk/leg"
)

// ErrNoCurves is returned when the market has no curves for a leg.
var ErrNoCurves = errors.New("no curves for leg")

// Market resolves the curves a leg is valued against.
type Market interface {
	Curves(l leg.Leg) (analytics.Curves, error)
}

// StaticMarket keys curves by settlement currency.
type StaticMarket map[string]analytics.Curves

func (m StaticMarket) Curves(l leg.Leg) (analytics.Curves, error) {
	c, ok := m[strings.ToUpper(l.Currency)]
	if !ok {
		return analytics.Curves{}, fmt.Errorf("%w %s (%s)", ErrNoCurves, l.Name, l.Currency)
	}
	return c, nil
}

// CurveLadder adapts a node curve's discount factor ladder to leg.LadderFunc.
func CurveLadder(c *curve.NodeCurve, periodMonths int) leg.LadderFunc {
	return func(valuationDate, paymentDate time.Time) ([]decimal.Decimal, error) {
		dfs, err := c.Ladder(valuationDate, paymentDate, periodMonths)
		if err != nil {
			return nil, err
		}
		out := make([]decimal.Decimal, len(dfs))
		for i, df := range dfs {
			out[i] = decimal.NewFromFloat(df)
		}
		return out, nil
	}
}

// PerturbedCurves widens curve perturbations to the analytics interface.
func PerturbedCurves(ps []*curve.Perturbed) []analytics.PerturbedCurve {
	out := make([]analytics.PerturbedCurve, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

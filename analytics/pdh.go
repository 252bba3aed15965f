package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	discountCurveSuffix = ".DiscountCurve"
	basisCurveSuffix    = ".BasisCurve"
)

// perturbedPoint is a perturbed curve read at construction: one discount
// factor per requested date.
type perturbedPoint struct {
	asset string
	dfs   []decimal.Decimal
}

func snapshotPerturbed(curves []PerturbedCurve, valuationDate time.Time, dates ...time.Time) ([]perturbedPoint, error) {
	if len(curves) == 0 {
		return nil, nil
	}
	out := make([]perturbedPoint, 0, len(curves))
	for _, c := range curves {
		if c == nil {
			continue
		}
		pt := perturbedPoint{asset: c.PerturbedAsset(), dfs: make([]decimal.Decimal, len(dates))}
		for i, d := range dates {
			df, err := discountFactor(c, valuationDate, d)
			if err != nil {
				return nil, fmt.Errorf("perturbed curve %q: %w", pt.asset, err)
			}
			pt.dfs[i] = df
		}
		out = append(out, pt)
	}
	return out, nil
}

// perturbationSensitivities reports -(value(point) - base) / perturbation for
// each point. A repeated asset is keyed with suffix; a second repeat fails.
func perturbationSensitivities(points []perturbedPoint, base, perturbation decimal.Decimal, suffix string,
	value func(perturbedPoint) (decimal.Decimal, error)) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(points))
	if len(points) == 0 {
		return out, nil
	}
	if perturbation.IsZero() {
		return nil, ErrZeroPerturbation
	}
	for _, pt := range points {
		v, err := value(pt)
		if err != nil {
			return nil, fmt.Errorf("perturbed asset %q: %w", pt.asset, err)
		}
		key := pt.asset
		if _, dup := out[key]; dup {
			key += suffix
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicatePerturbedAsset, pt.asset)
			}
		}
		out[key] = v.Sub(base).Div(perturbation).Neg()
	}
	return out, nil
}

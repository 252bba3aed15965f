package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateCurve provides discount factors between two dates.
//
// Implementations must be safe for concurrent reads when analytics are
// evaluated in parallel. An error means the factor is not available for the
// requested date and is treated as fatal by the engine.
type RateCurve interface {
	DiscountFactor(valuationDate, targetDate time.Time) (float64, error)
}

// PerturbedCurve is a rate curve produced by bumping a single market asset.
// PerturbedAsset names that asset and keys the PDH result maps.
type PerturbedCurve interface {
	RateCurve
	PerturbedAsset() string
}

// FxCurve converts the settlement currency to the reporting currency.
type FxCurve interface {
	Forward(valuationDate, targetDate time.Time) (float64, error)
}

// Curves is the curve triple an analytic is bound to. Any member may be nil:
// a nil curve yields a discount factor or FX rate of 1.
type Curves struct {
	Discount RateCurve
	Forecast RateCurve
	Fx       FxCurve
}

func discountFactor(c RateCurve, valuationDate, date time.Time) (decimal.Decimal, error) {
	if c == nil {
		return one, nil
	}
	df, err := c.DiscountFactor(valuationDate, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: discount factor at %s: %v", ErrCurveUnavailable, date.Format("2006-01-02"), err)
	}
	return decimal.NewFromFloat(df), nil
}

func reportingFxRate(c FxCurve, valuationDate time.Time) (decimal.Decimal, error) {
	if c == nil {
		return one, nil
	}
	fx, err := c.Forward(valuationDate, valuationDate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fx forward at %s: %v", ErrCurveUnavailable, valuationDate.Format("2006-01-02"), err)
	}
	return decimal.NewFromFloat(fx), nil
}

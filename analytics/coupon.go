package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CouponStyle selects how a coupon's rate is sourced.
type CouponStyle int

const (
	// StyleFixed accrues at the contractual rate.
	StyleFixed CouponStyle = iota
	// StyleFloating accrues at the forward rate implied by the forecast curve.
	StyleFloating
)

func (s CouponStyle) String() string {
	if s == StyleFloating {
		return "Floating"
	}
	return "Fixed"
}

// Coupon is the analytic for a single fixed or floating rate coupon.
//
// Every curve lookup happens in the constructor; metric evaluation afterwards
// only reads the snapshot, so a Coupon may be shared between goroutines.
type Coupon struct {
	style      CouponStyle
	p          CashflowParameters
	multiplier decimal.Decimal

	fxRate         decimal.Decimal
	paymentDF      decimal.Decimal
	startDF        decimal.Decimal
	endDF          decimal.Decimal
	continuousRate decimal.Decimal
	breakEven      decimal.NullDecimal
	disc           discounting

	delta1PDH []perturbedPoint
	delta0PDH []perturbedPoint
}

var _ Analytic = (*Coupon)(nil)

// NewFixedCoupon binds a fixed rate coupon to its curves.
func NewFixedCoupon(p CashflowParameters, curves Curves) (*Coupon, error) {
	return newCoupon(StyleFixed, p, curves)
}

// NewFloatingCoupon binds a floating rate coupon to its curves. The forward
// rate must be computable, so YearFraction and the end discount factor must
// be non-zero.
func NewFloatingCoupon(p CashflowParameters, curves Curves) (*Coupon, error) {
	return newCoupon(StyleFloating, p, curves)
}

func newCoupon(style CouponStyle, p CashflowParameters, curves Curves) (*Coupon, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c := &Coupon{style: style, p: p, multiplier: p.multiplier()}

	var err error
	if c.fxRate, err = overrideOr(p.ToReportingCurrencyRate, func() (decimal.Decimal, error) {
		return reportingFxRate(curves.Fx, p.ValuationDate)
	}); err != nil {
		return nil, err
	}
	if c.paymentDF, err = overrideOr(p.PaymentDiscountFactor, func() (decimal.Decimal, error) {
		return discountFactor(curves.Discount, p.ValuationDate, p.PaymentDate)
	}); err != nil {
		return nil, err
	}

	forecast := curves.Forecast
	if forecast == nil {
		forecast = curves.Discount
	}
	if c.startDF, err = overrideOr(p.StartDiscountFactor, func() (decimal.Decimal, error) {
		return discountFactor(forecast, p.ValuationDate, p.StartDate)
	}); err != nil {
		return nil, err
	}
	if c.endDF, err = overrideOr(p.EndDiscountFactor, func() (decimal.Decimal, error) {
		return discountFactor(forecast, p.ValuationDate, p.EndDate)
	}); err != nil {
		return nil, err
	}

	if c.continuousRate, err = couponContinuousRate(c.paymentDF, p.ValuationDate, p.PaymentDate); err != nil {
		return nil, err
	}

	be, beErr := forwardRate(c.startDF, c.endDF, p.YearFraction)
	if beErr == nil {
		c.breakEven = Some(be)
	} else if style == StyleFloating && !p.ExpectedAmount.Valid {
		return nil, fmt.Errorf("floating coupon forward rate: %w", beErr)
	}

	if c.disc, err = resolveDiscounting(p, c.breakEven); err != nil {
		return nil, err
	}

	if c.delta1PDH, err = snapshotPerturbed(p.Delta1PDHCurves, p.ValuationDate, p.PaymentDate); err != nil {
		return nil, err
	}
	if style == StyleFloating {
		if c.delta0PDH, err = snapshotPerturbed(p.Delta0PDHCurves, p.ValuationDate, p.StartDate, p.EndDate); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func overrideOr(v decimal.NullDecimal, lookup func() (decimal.Decimal, error)) (decimal.Decimal, error) {
	if v.Valid {
		return v.Decimal, nil
	}
	return lookup()
}

// Calculate implements Analytic.
func (c *Coupon) Calculate(metrics ...Metric) (*Results, error) {
	return calculate(c, metrics)
}

func (c *Coupon) Style() CouponStyle { return c.style }
func (c *Coupon) parameters() CashflowParameters { return c.p }
func (c *Coupon) FxRate() decimal.Decimal { return c.fxRate }
func (c *Coupon) PaymentDiscountFactor() decimal.Decimal { return c.paymentDF }
func (c *Coupon) StartDiscountFactor() decimal.Decimal { return c.startDF }
func (c *Coupon) EndDiscountFactor() decimal.Decimal { return c.endDF }
func (c *Coupon) ContinuousRate() decimal.Decimal { return c.continuousRate }

// DiscountRate is the rate AFMA and ISDA coupons discount the notional at.
func (c *Coupon) DiscountRate() (decimal.Decimal, bool) { return c.disc.discountRate() }

// BreakEvenRate is (DF_start/DF_end - 1) / YearFraction.
func (c *Coupon) BreakEvenRate() (decimal.Decimal, error) {
	if !c.breakEven.Valid {
		_, err := forwardRate(c.startDF, c.endDF, c.p.YearFraction)
		return decimal.Zero, err
	}
	return c.breakEven.Decimal, nil
}

// accrualRate is the rate the coupon amount is computed from before spread.
func (c *Coupon) accrualRate() decimal.Decimal {
	if c.style == StyleFloating {
		return c.breakEven.Decimal
	}
	return c.disc.couponRate(c.p.Rate)
}

// expectedAt is the coupon amount accrued at rate plus spread less base rate.
func (c *Coupon) expectedAt(rate decimal.Decimal) decimal.Decimal {
	nm := c.p.NotionalAmount.Mul(c.multiplier)
	return c.disc.accrue(nm, c.p.YearFraction, rate.Add(c.p.Spread).Sub(c.p.BaseRate))
}

func (c *Coupon) expectedValue() decimal.Decimal {
	if c.p.ExpectedAmount.Valid {
		return c.p.ExpectedAmount.Decimal
	}
	return c.expectedAt(c.accrualRate())
}

func (c *Coupon) npv() decimal.Decimal {
	return c.expectedValue().Mul(c.paymentDF)
}

func (c *Coupon) compounding() decimal.Decimal {
	return one.Add(c.p.PeriodAsTimesPerYear.Mul(c.continuousRate))
}

func (c *Coupon) delta1() decimal.Decimal {
	return bucketWeight(c.npv(), c.p.CurveYearFraction, c.compounding())
}

func (c *Coupon) gamma1() decimal.Decimal {
	return bucketWeight(c.delta1(), c.p.CurveYearFraction, c.compounding())
}

func (c *Coupon) deltaCCR() decimal.Decimal {
	return c.npv().Mul(c.p.CurveYearFraction).Div(basisPoint)
}

// deltaR is the sensitivity of the amount to the accrual rate.
func (c *Coupon) deltaR() decimal.Decimal {
	if c.p.DiscountType == DiscountNone {
		return c.p.NotionalAmount.Mul(c.p.YearFraction).Mul(c.paymentDF).Mul(c.multiplier).Div(basisPoint)
	}
	dr, ok := c.disc.discountRate()
	if !ok {
		return decimal.Zero
	}
	return c.expectedValue().Mul(c.p.YearFraction).Div(one.Add(dr.Mul(c.p.YearFraction))).Div(basisPoint)
}

// delta0 is the forecast rate sensitivity; fixed coupons have none.
func (c *Coupon) delta0() decimal.Decimal {
	if c.style == StyleFixed {
		return decimal.Zero
	}
	return c.deltaR().Neg()
}

func (c *Coupon) delta0Delta1() decimal.Decimal {
	return decimal.NewFromInt(2).Mul(c.p.CurveYearFraction).Div(c.compounding()).Div(basisPoint).Mul(c.delta0())
}

func (c *Coupon) accrualFactor() decimal.Decimal {
	if c.p.DiscountType == DiscountNone || c.p.ExpectedAmount.Valid {
		return c.p.NotionalAmount.Mul(c.p.YearFraction).Mul(c.multiplier).Mul(c.paymentDF).Div(basisPoint)
	}
	down := c.expectedAt(c.accrualRate().Sub(oneBasisPoint)).Mul(c.paymentDF)
	return c.npv().Sub(down)
}

func (c *Coupon) floatingNPV() (decimal.Decimal, error) {
	be, err := c.BreakEvenRate()
	if err != nil {
		return decimal.Zero, err
	}
	nm := c.p.NotionalAmount.Mul(c.multiplier)
	return c.disc.accrue(nm, c.p.YearFraction, be).Mul(c.paymentDF), nil
}

func (c *Coupon) bucketedDelta1() (decimal.Decimal, error) {
	rates, err := bucketedRates(c.p.BucketedDiscountFactors, c.p.PeriodAsTimesPerYear)
	if err != nil {
		return decimal.Zero, err
	}
	if c.style == StyleFloating {
		return floatingBucketedDelta1(c.expectedValue(), c.p.PeriodAsTimesPerYear, rates), nil
	}
	return fixedBucketedDelta1(c.expectedValue(), c.p.Rate, c.p.PeriodAsTimesPerYear, len(rates)), nil
}

// forward zeroes v for realised coupons.
func (c *Coupon) forward(v decimal.Decimal) decimal.Decimal {
	if c.p.IsRealised {
		return decimal.Zero
	}
	return v
}

// historical zeroes v for coupons that have not been realised.
func (c *Coupon) historical(v decimal.Decimal) decimal.Decimal {
	if !c.p.IsRealised {
		return decimal.Zero
	}
	return v
}

func (c *Coupon) amount(m Metric) (decimal.Decimal, error) {
	switch m {
	case MetricNPV:
		return c.forward(c.npv()), nil
	case MetricNFV:
		return c.historical(c.npv()), nil
	case MetricExpectedValue:
		return c.forward(c.expectedValue()), nil
	case MetricCalculatedValue:
		return c.expectedValue(), nil
	case MetricHistoricalValue:
		return c.historical(c.expectedValue()), nil
	case MetricFloatingNPV:
		return c.floatingNPV()
	case MetricAccrualFactor:
		return c.accrualFactor(), nil
	case MetricHistoricalAccrualFactor:
		return c.historical(c.accrualFactor()), nil
	case MetricDelta0:
		return c.forward(c.delta0()), nil
	case MetricHistoricalDelta0:
		return c.historical(c.delta0()), nil
	case MetricDelta1:
		return c.forward(c.delta1()), nil
	case MetricHistoricalDelta1:
		return c.historical(c.delta1()), nil
	case MetricDeltaR:
		return c.forward(c.deltaR()), nil
	case MetricHistoricalDeltaR:
		return c.historical(c.deltaR()), nil
	case MetricDeltaCCR:
		return c.forward(c.deltaCCR()), nil
	case MetricGamma0:
		return decimal.Zero, nil
	case MetricGamma1:
		return c.forward(c.gamma1()), nil
	case MetricDelta0Delta1:
		return c.forward(c.delta0Delta1()), nil
	case MetricAnalyticalDelta:
		return c.forward(c.delta1().Add(c.delta0())), nil
	case MetricAnalyticalGamma:
		return c.forward(c.gamma1().Add(c.delta0Delta1())), nil
	case MetricBucketedDelta1:
		if c.p.IsRealised {
			return decimal.Zero, nil
		}
		return c.bucketedDelta1()
	case MetricSimpleCVA:
		return decimal.Zero, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q for coupon", ErrUnsupportedMetric, m)
}

func (c *Coupon) rate(m Metric) (decimal.Decimal, error) {
	switch m {
	case MetricBreakEvenRate, MetricImpliedQuote:
		return c.BreakEvenRate()
	case MetricBreakEvenSpread:
		be, err := c.BreakEvenRate()
		if err != nil {
			return decimal.Zero, err
		}
		return be.Sub(c.p.Rate), nil
	case MetricBreakEvenStrike:
		return decimal.Zero, nil
	case MetricMarketQuote:
		return c.p.Rate, nil
	case MetricDiscountFactorAtMaturity:
		return c.startDF.Div(one.Add(c.p.YearFraction.Mul(c.p.Rate))), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q for coupon", ErrUnsupportedMetric, m)
}

func (c *Coupon) vector(m Metric) ([]decimal.Decimal, error) {
	if m != MetricBucketedDeltaVector {
		return nil, fmt.Errorf("%w: %q for coupon", ErrUnsupportedMetric, m)
	}
	v, err := bucketedDeltaVector(c.npv(), c.p.CurveYearFraction, c.p.PeriodAsTimesPerYear, c.continuousRate, -1)
	if err != nil {
		return nil, err
	}
	if c.p.IsRealised {
		return make([]decimal.Decimal, len(v)), nil
	}
	return v, nil
}

func (c *Coupon) sensitivity(m Metric) (map[string]decimal.Decimal, error) {
	if c.p.IsRealised {
		return map[string]decimal.Decimal{}, nil
	}
	switch m {
	case MetricDelta1PDH:
		ev := c.expectedValue()
		return perturbationSensitivities(c.delta1PDH, c.npv(), c.p.Delta1PDHPerturbation, discountCurveSuffix,
			func(pt perturbedPoint) (decimal.Decimal, error) {
				return ev.Mul(pt.dfs[0]), nil
			})
	case MetricDelta0PDH:
		// a fixed amount does not move with the forecast curve
		if c.p.ExpectedAmount.Valid {
			return map[string]decimal.Decimal{}, nil
		}
		return perturbationSensitivities(c.delta0PDH, c.npv(), c.p.Delta0PDHPerturbation, basisCurveSuffix,
			func(pt perturbedPoint) (decimal.Decimal, error) {
				fwd, err := forwardRate(pt.dfs[0], pt.dfs[1], c.p.YearFraction)
				if err != nil {
					return decimal.Zero, err
				}
				return c.expectedAt(fwd).Mul(c.paymentDF), nil
			})
	}
	return nil, fmt.Errorf("%w: %q for coupon", ErrUnsupportedMetric, m)
}

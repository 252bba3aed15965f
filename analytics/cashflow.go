package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cashflow is the analytic for a single known amount, such as a principal
// exchange. Its expected value is Notional * Multiplier unless overridden.
type Cashflow struct {
	p          CashflowParameters
	multiplier decimal.Decimal

	fxRate         decimal.Decimal
	paymentDF      decimal.Decimal
	continuousRate decimal.Decimal

	delta1PDH []perturbedPoint
}

var _ Analytic = (*Cashflow)(nil)

// NewCashflow binds a cashflow to its discount and FX curves. The forecast
// curve is not used.
//
// A cashflow paying on the valuation date implies its continuous rate from
// the discount factor one day later.
func NewCashflow(p CashflowParameters, curves Curves) (*Cashflow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cf := &Cashflow{p: p, multiplier: p.multiplier()}

	var err error
	if cf.fxRate, err = overrideOr(p.ToReportingCurrencyRate, func() (decimal.Decimal, error) {
		return reportingFxRate(curves.Fx, p.ValuationDate)
	}); err != nil {
		return nil, err
	}
	if cf.paymentDF, err = overrideOr(p.PaymentDiscountFactor, func() (decimal.Decimal, error) {
		return discountFactor(curves.Discount, p.ValuationDate, p.PaymentDate)
	}); err != nil {
		return nil, err
	}

	rateDF := cf.paymentDF
	days := wholeDays(p.ValuationDate, p.PaymentDate)
	if days == 0 {
		days = 1
		if rateDF, err = discountFactor(curves.Discount, p.ValuationDate, p.PaymentDate.AddDate(0, 0, 1)); err != nil {
			return nil, err
		}
	}
	if cf.continuousRate, err = continuousRate(rateDF, float64(days)/daysPerYear); err != nil {
		return nil, err
	}

	if cf.delta1PDH, err = snapshotPerturbed(p.Delta1PDHCurves, p.ValuationDate, p.PaymentDate); err != nil {
		return nil, err
	}
	return cf, nil
}

// Calculate implements Analytic.
func (cf *Cashflow) Calculate(metrics ...Metric) (*Results, error) {
	return calculate(cf, metrics)
}

func (cf *Cashflow) parameters() CashflowParameters { return cf.p }

func (cf *Cashflow) FxRate() decimal.Decimal { return cf.fxRate }

func (cf *Cashflow) PaymentDiscountFactor() decimal.Decimal { return cf.paymentDF }

func (cf *Cashflow) ContinuousRate() decimal.Decimal { return cf.continuousRate }

func (cf *Cashflow) expectedValue() decimal.Decimal {
	if cf.p.ExpectedAmount.Valid {
		return cf.p.ExpectedAmount.Decimal
	}
	return cf.p.NotionalAmount.Mul(cf.multiplier)
}

func (cf *Cashflow) npv() decimal.Decimal {
	return cf.expectedValue().Mul(cf.paymentDF)
}

func (cf *Cashflow) compounding() decimal.Decimal {
	return one.Add(cf.p.PeriodAsTimesPerYear.Mul(cf.continuousRate))
}

func (cf *Cashflow) delta1() decimal.Decimal {
	return bucketWeight(cf.npv(), cf.p.CurveYearFraction, cf.compounding())
}

func (cf *Cashflow) gamma1() decimal.Decimal {
	return bucketWeight(cf.delta1(), cf.p.CurveYearFraction, cf.compounding())
}

func (cf *Cashflow) amount(m Metric) (decimal.Decimal, error) {
	realised := cf.p.IsRealised
	zeroIf := func(cond bool, v decimal.Decimal) decimal.Decimal {
		if cond {
			return decimal.Zero
		}
		return v
	}
	switch m {
	case MetricNPV:
		return zeroIf(realised, cf.npv()), nil
	case MetricNFV:
		return zeroIf(!realised, cf.npv()), nil
	case MetricExpectedValue:
		return zeroIf(realised, cf.expectedValue()), nil
	case MetricCalculatedValue:
		return cf.expectedValue(), nil
	case MetricHistoricalValue:
		return zeroIf(!realised, cf.expectedValue()), nil
	case MetricDelta1, MetricAnalyticalDelta, MetricBucketedDelta1:
		return zeroIf(realised, cf.delta1()), nil
	case MetricHistoricalDelta1:
		return zeroIf(!realised, cf.delta1()), nil
	case MetricGamma1, MetricAnalyticalGamma:
		return zeroIf(realised, cf.gamma1()), nil
	case MetricDeltaCCR:
		return zeroIf(realised, cf.npv().Mul(cf.p.CurveYearFraction).Div(basisPoint)), nil
	case MetricFloatingNPV, MetricAccrualFactor, MetricHistoricalAccrualFactor,
		MetricDelta0, MetricHistoricalDelta0, MetricDeltaR, MetricHistoricalDeltaR,
		MetricGamma0, MetricDelta0Delta1, MetricSimpleCVA:
		// No rate to be sensitive to.
		return decimal.Zero, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q for cashflow", ErrUnsupportedMetric, m)
}

func (cf *Cashflow) rate(m Metric) (decimal.Decimal, error) {
	switch m {
	case MetricDiscountFactorAtMaturity:
		return cf.paymentDF, nil
	case MetricBreakEvenRate, MetricBreakEvenSpread, MetricBreakEvenStrike, MetricMarketQuote, MetricImpliedQuote:
		return decimal.Zero, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q for cashflow", ErrUnsupportedMetric, m)
}

func (cf *Cashflow) vector(m Metric) ([]decimal.Decimal, error) {
	if m != MetricBucketedDeltaVector {
		return nil, fmt.Errorf("%w: %q for cashflow", ErrUnsupportedMetric, m)
	}
	v, err := bucketedDeltaVector(cf.npv(), cf.p.CurveYearFraction, cf.p.PeriodAsTimesPerYear, cf.continuousRate, +1)
	if err != nil {
		return nil, err
	}
	if cf.p.IsRealised {
		return make([]decimal.Decimal, len(v)), nil
	}
	return v, nil
}

func (cf *Cashflow) sensitivity(m Metric) (map[string]decimal.Decimal, error) {
	switch m {
	case MetricDelta1PDH:
		if cf.p.IsRealised {
			return map[string]decimal.Decimal{}, nil
		}
		ev := cf.expectedValue()
		return perturbationSensitivities(cf.delta1PDH, cf.npv(), cf.p.Delta1PDHPerturbation, discountCurveSuffix,
			func(pt perturbedPoint) (decimal.Decimal, error) {
				return ev.Mul(pt.dfs[0]), nil
			})
	case MetricDelta0PDH:
		return map[string]decimal.Decimal{}, nil
	}
	return nil, fmt.Errorf("%w: %q for cashflow", ErrUnsupportedMetric, m)
}

package leg

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/utils"
)

// Kind separates interest coupons from principal exchanges.
type Kind string

const (
	KindCoupon    Kind = "COUPON"
	KindPrincipal Kind = "PRINCIPAL"
)

// LadderFunc returns the bucketed discount factor ladder for a flow paying
// on paymentDate.
type LadderFunc func(valuationDate, paymentDate time.Time) ([]decimal.Decimal, error)

// Options carries the valuation-wide inputs shared by every flow of a leg.
type Options struct {
	ReportingCurrency string

	Delta1PDHCurves       []analytics.PerturbedCurve
	Delta1PDHPerturbation decimal.Decimal
	Delta0PDHCurves       []analytics.PerturbedCurve
	Delta0PDHPerturbation decimal.Decimal

	// Ladder, when set, supplies BucketedDiscountFactors.
	Ladder LadderFunc
}

// Flow is one priced flow of a leg.
type Flow struct {
	Leg    string
	Index  int
	Kind   Kind
	Type   Type
	Params analytics.CashflowParameters
}

// Analytic binds the flow to its curves.
func (f Flow) Analytic(curves analytics.Curves) (analytics.Analytic, error) {
	switch {
	case f.Kind == KindPrincipal:
		return analytics.NewCashflow(f.Params, curves)
	case f.Type == Floating:
		return analytics.NewFloatingCoupon(f.Params, curves)
	default:
		return analytics.NewFixedCoupon(f.Params, curves)
	}
}

// Flows builds the analytic parameters of every coupon, plus the final
// principal when the leg exchanges it.
func (l Leg) Flows(valuationDate time.Time, opts Options) ([]Flow, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	periods, err := l.Schedule()
	if err != nil {
		return nil, err
	}

	flows := make([]Flow, 0, len(periods)+1)
	for _, p := range periods {
		params, err := l.flowParameters(valuationDate, p.Payment, opts)
		if err != nil {
			return nil, err
		}
		params.StartDate = p.Start
		params.EndDate = p.End
		params.Rate = l.Rate
		params.Spread = l.Spread
		params.BaseRate = l.BaseRate
		params.YearFraction = utils.AccrualFraction(p.Start, p.End, l.DayCount)
		params.DiscountType = l.DiscountType
		if l.Type == Floating {
			params.Rate = decimal.Zero
			if fix, ok := l.Fixings[p.Start]; ok {
				params.ExpectedAmount = analytics.Some(l.fixedAmount(params.YearFraction, fix))
			}
		}
		flows = append(flows, Flow{Leg: l.Name, Index: p.Index, Kind: KindCoupon, Type: l.Type, Params: params})
	}

	if l.IncludeFinalPrincipal && len(periods) > 0 {
		last := periods[len(periods)-1]
		params, err := l.flowParameters(valuationDate, last.Payment, opts)
		if err != nil {
			return nil, err
		}
		params.StartDate = last.Payment
		params.EndDate = last.Payment
		flows = append(flows, Flow{Leg: l.Name, Index: len(periods), Kind: KindPrincipal, Type: l.Type, Params: params})
	}
	return flows, nil
}

// fixedAmount is the amount of a floating coupon whose rate has fixed. AFMA
// and ISDA coupons pay the discount on the notional, N - N/(1 + r*YF).
func (l Leg) fixedAmount(yearFraction, fixing decimal.Decimal) decimal.Decimal {
	nm := l.Notional.Mul(l.multiplier())
	rate := fixing.Add(l.Spread).Sub(l.BaseRate)
	if l.DiscountType == analytics.DiscountNone {
		return nm.Mul(yearFraction).Mul(rate)
	}
	return nm.Sub(nm.Div(decimal.NewFromInt(1).Add(rate.Mul(yearFraction))))
}

func (l Leg) flowParameters(valuationDate, payment time.Time, opts Options) (analytics.CashflowParameters, error) {
	cyf := decimal.Zero
	if payment.After(valuationDate) {
		cyf = utils.AccrualFraction(valuationDate, payment, utils.Act365F)
	}
	reporting := opts.ReportingCurrency
	if reporting == "" {
		reporting = l.Currency
	}
	p := analytics.CashflowParameters{
		ValuationDate:         valuationDate,
		PaymentDate:           payment,
		Currency:              l.Currency,
		ReportingCurrency:     reporting,
		NotionalAmount:        l.Notional,
		CurveYearFraction:     cyf,
		PeriodAsTimesPerYear:  l.PeriodAsTimesPerYear(),
		IsRealised:            l.IsRealised(valuationDate, payment),
		Multiplier:            analytics.Some(l.multiplier()),
		Delta1PDHCurves:       opts.Delta1PDHCurves,
		Delta1PDHPerturbation: opts.Delta1PDHPerturbation,
		Delta0PDHCurves:       opts.Delta0PDHCurves,
		Delta0PDHPerturbation: opts.Delta0PDHPerturbation,
	}
	if opts.Ladder != nil && payment.After(valuationDate) {
		ladder, err := opts.Ladder(valuationDate, payment)
		if err != nil {
			return p, fmt.Errorf("leg %s: ladder to %s: %w", l.Name, payment.Format(utils.DateLayout), err)
		}
		p.BucketedDiscountFactors = ladder
	}
	return p, nil
}

package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	one           = decimal.NewFromInt(1)
	basisPoint    = decimal.NewFromInt(10000)
	oneBasisPoint = decimal.New(1, -4)
)

const daysPerYear = 365.25

// discounting is the coupon amount convention, resolved once from the
// discount type and the optional discount rate override.
type discounting interface {
	// couponRate is the rate a fixed coupon accrues at.
	couponRate(fixed decimal.Decimal) decimal.Decimal
	// accrue turns a notional, year fraction and rate into a coupon amount.
	accrue(notional, yearFraction, rate decimal.Decimal) decimal.Decimal
	// discountRate is the rate the notional is discounted at, if any.
	discountRate() (decimal.Decimal, bool)
}

type simpleDiscounting struct{}

func (simpleDiscounting) couponRate(fixed decimal.Decimal) decimal.Decimal { return fixed }

func (simpleDiscounting) accrue(notional, yearFraction, rate decimal.Decimal) decimal.Decimal {
	return notional.Mul(yearFraction).Mul(rate)
}

func (simpleDiscounting) discountRate() (decimal.Decimal, bool) { return decimal.Zero, false }

// compoundDiscounting pays the discount on the notional: N - N/(1 + r*YF).
type compoundDiscounting struct {
	rate   decimal.Decimal
	source string
}

func (d compoundDiscounting) couponRate(decimal.Decimal) decimal.Decimal { return d.rate }

func (compoundDiscounting) accrue(notional, yearFraction, rate decimal.Decimal) decimal.Decimal {
	return notional.Sub(notional.Div(one.Add(rate.Mul(yearFraction))))
}

func (d compoundDiscounting) discountRate() (decimal.Decimal, bool) { return d.rate, true }

func (d compoundDiscounting) String() string {
	return fmt.Sprintf("compound(%s=%s)", d.source, d.rate)
}

// resolveDiscounting picks the convention: an explicit override wins, then
// the AFMA fixed rate, then the ISDA forward rate.
func resolveDiscounting(p CashflowParameters, forward decimal.NullDecimal) (discounting, error) {
	switch p.DiscountType {
	case DiscountNone:
		return simpleDiscounting{}, nil
	case DiscountAFMA:
		if p.DiscountRate.Valid {
			return compoundDiscounting{rate: p.DiscountRate.Decimal, source: "override"}, nil
		}
		return compoundDiscounting{rate: p.Rate, source: "fixed"}, nil
	case DiscountISDA:
		if p.DiscountRate.Valid {
			return compoundDiscounting{rate: p.DiscountRate.Decimal, source: "override"}, nil
		}
		if !forward.Valid {
			return nil, fmt.Errorf("ISDA discounting needs a forward rate: %w", ErrZeroYearFraction)
		}
		return compoundDiscounting{rate: forward.Decimal, source: "forward"}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDiscountType, int(p.DiscountType))
	}
}

// forwardRate is the simple rate implied by two discount factors.
func forwardRate(startDF, endDF, yearFraction decimal.Decimal) (decimal.Decimal, error) {
	if yearFraction.IsZero() {
		return decimal.Zero, ErrZeroYearFraction
	}
	if endDF.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: end discount factor is zero", ErrInvalidDiscountFactor)
	}
	return startDF.Div(endDF).Sub(one).Div(yearFraction), nil
}

// wholeDays counts complete 24 hour days from a to b, truncating toward zero.
func wholeDays(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// continuousRate solves df = exp(-r*t) for r.
func continuousRate(df decimal.Decimal, t float64) (decimal.Decimal, error) {
	if !df.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidDiscountFactor, df)
	}
	if t == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(-math.Log(df.InexactFloat64()) / t), nil
}

// couponContinuousRate uses t = days * 365.25 for the coupon analytics. The
// time is a product, not a quotient, and the resulting rate is only ever used
// inside the 1 + P*r compounding of Delta1 and Gamma1.
func couponContinuousRate(df decimal.Decimal, valuationDate, paymentDate time.Time) (decimal.Decimal, error) {
	days := wholeDays(valuationDate, paymentDate)
	if days == 0 {
		if !df.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidDiscountFactor, df)
		}
		return decimal.Zero, nil
	}
	return continuousRate(df, float64(days)*daysPerYear)
}

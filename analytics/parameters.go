package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon amount is computed from its rate.
type DiscountType int

const (
	// DiscountNone accrues simple interest: N * YF * rate.
	DiscountNone DiscountType = iota
	// DiscountAFMA discounts the notional at a fixed rate (AFMA bank bill convention).
	DiscountAFMA
	// DiscountISDA discounts the notional at the forward rate implied by the forecast curve.
	DiscountISDA
)

func (d DiscountType) String() string {
	switch d {
	case DiscountNone:
		return "None"
	case DiscountAFMA:
		return "AFMA"
	case DiscountISDA:
		return "ISDA"
	default:
		return fmt.Sprintf("DiscountType(%d)", int(d))
	}
}

// ParseDiscountType accepts "none", "afma" or "isda" in any case. An empty
// string is DiscountNone.
func ParseDiscountType(s string) (DiscountType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return DiscountNone, nil
	case "AFMA":
		return DiscountAFMA, nil
	case "ISDA":
		return DiscountISDA, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDiscountType, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d DiscountType) MarshalText() ([]byte, error) {
	if d < DiscountNone || d > DiscountISDA {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDiscountType, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DiscountType) UnmarshalText(b []byte) error {
	v, err := ParseDiscountType(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// CashflowParameters carries every input a cashflow or coupon analytic needs.
//
// Year fractions are supplied pre-computed by the caller. Optional fields use
// decimal.NullDecimal; when set they override the value the analytic would
// otherwise read from its curves.
type CashflowParameters struct {
	ValuationDate time.Time
	StartDate     time.Time
	EndDate       time.Time
	PaymentDate   time.Time

	Currency          string
	ReportingCurrency string

	NotionalAmount decimal.Decimal
	Rate           decimal.Decimal
	Spread         decimal.Decimal
	BaseRate       decimal.Decimal

	YearFraction         decimal.Decimal
	CurveYearFraction    decimal.Decimal
	PeriodAsTimesPerYear decimal.Decimal

	DiscountType DiscountType
	// DiscountRate overrides the rate used by AFMA/ISDA discounting.
	DiscountRate decimal.NullDecimal

	IsRealised bool
	// Multiplier is +1 (receive) or -1 (pay). Unset means +1.
	Multiplier decimal.NullDecimal

	StartDiscountFactor     decimal.NullDecimal
	EndDiscountFactor       decimal.NullDecimal
	PaymentDiscountFactor   decimal.NullDecimal
	ToReportingCurrencyRate decimal.NullDecimal
	// ExpectedAmount replaces the computed coupon amount, typically for fixed
	// or realised flows.
	ExpectedAmount decimal.NullDecimal

	// BucketedDiscountFactors is a discount factor ladder spaced
	// PeriodAsTimesPerYear apart, used for bucketed delta.
	BucketedDiscountFactors []decimal.Decimal

	Delta1PDHCurves       []PerturbedCurve
	Delta1PDHPerturbation decimal.Decimal
	Delta0PDHCurves       []PerturbedCurve
	Delta0PDHPerturbation decimal.Decimal
}

// Validate checks the invariants callers are expected to uphold.
func (p CashflowParameters) Validate() error {
	if p.YearFraction.IsNegative() {
		return fmt.Errorf("%w: YearFraction %s", ErrNegativeYearFraction, p.YearFraction)
	}
	if p.CurveYearFraction.IsNegative() {
		return fmt.Errorf("%w: CurveYearFraction %s", ErrNegativeYearFraction, p.CurveYearFraction)
	}
	if p.Multiplier.Valid && !p.Multiplier.Decimal.Abs().Equal(one) {
		return fmt.Errorf("%w: got %s", ErrInvalidMultiplier, p.Multiplier.Decimal)
	}
	if p.DiscountType < DiscountNone || p.DiscountType > DiscountISDA {
		return fmt.Errorf("%w: %d", ErrUnsupportedDiscountType, int(p.DiscountType))
	}
	return nil
}

func (p CashflowParameters) multiplier() decimal.Decimal {
	if p.Multiplier.Valid {
		return p.Multiplier.Decimal
	}
	return one
}

// Some wraps a value as a set optional parameter.
func Some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

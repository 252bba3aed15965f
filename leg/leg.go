// Package leg turns a swap leg description into per-flow analytic parameters.
package leg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/utils"
)

var (
	ErrUnsupportedFrequency = errors.New("unsupported pay frequency")
	ErrInvalidLeg           = errors.New("invalid leg")
)

// Type distinguishes floating vs fixed.
type Type string

const (
	Fixed    Type = "FIXED"
	Floating Type = "FLOATING"
)

// Direction is the side of the leg: received flows are positive.
type Direction string

const (
	Receive Direction = "RECEIVE"
	Pay     Direction = "PAY"
)

// Frequency enumerates payment frequencies in months.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
)

// ScheduleDirection selects which end of the leg regular periods align with.
type ScheduleDirection string

const (
	Forward  ScheduleDirection = "FORWARD"
	Backward ScheduleDirection = "BACKWARD"
)

// Leg captures a single fixed or floating leg.
type Leg struct {
	Name      string
	Type      Type
	Direction Direction
	Currency  string

	Notional decimal.Decimal
	// Rate is the fixed rate. Floating legs ignore it and project from the
	// forecast curve.
	Rate     decimal.Decimal
	Spread   decimal.Decimal
	BaseRate decimal.Decimal

	DayCount          utils.DayCount
	PayFrequency      Frequency
	PayDelayDays      int
	Calendar          calendar.CalendarID
	Adjustment        calendar.Convention
	ScheduleDirection ScheduleDirection

	EffectiveDate time.Time
	MaturityDate  time.Time

	DiscountType analytics.DiscountType
	// PaymentDateIncluded counts a flow paying on the valuation date as realised.
	PaymentDateIncluded   bool
	IncludeFinalPrincipal bool

	// Fixings holds known floating rates keyed by accrual start date. A
	// floating coupon with a fixing is valued off the fixing, not the curve.
	Fixings map[time.Time]decimal.Decimal
}

// Validate checks the leg can be scheduled and priced.
func (l Leg) Validate() error {
	switch {
	case l.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidLeg)
	case l.Type != Fixed && l.Type != Floating:
		return fmt.Errorf("%w %s: type %q", ErrInvalidLeg, l.Name, l.Type)
	case l.Direction != Pay && l.Direction != Receive:
		return fmt.Errorf("%w %s: direction %q", ErrInvalidLeg, l.Name, l.Direction)
	case !l.MaturityDate.After(l.EffectiveDate):
		return fmt.Errorf("%w %s: maturity must be after effective", ErrInvalidLeg, l.Name)
	case l.PayFrequency <= 0 || 12%int(l.PayFrequency) != 0:
		return fmt.Errorf("leg %s: %w %d", l.Name, ErrUnsupportedFrequency, l.PayFrequency)
	case l.Notional.IsNegative():
		return fmt.Errorf("%w %s: notional must be non-negative", ErrInvalidLeg, l.Name)
	}
	return nil
}

// ParseType accepts "fixed" or "floating" in any case.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case Fixed, Floating:
		return t, nil
	}
	return "", fmt.Errorf("%w: type %q", ErrInvalidLeg, s)
}

// ParseDirection accepts "pay" or "receive" in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case Pay, Receive:
		return d, nil
	}
	return "", fmt.Errorf("%w: direction %q", ErrInvalidLeg, s)
}

func (l Leg) multiplier() decimal.Decimal {
	if l.Direction == Pay {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// PeriodAsTimesPerYear is the payment period in years.
func (l Leg) PeriodAsTimesPerYear() decimal.Decimal {
	return decimal.NewFromInt(int64(l.PayFrequency)).Div(decimal.NewFromInt(12))
}

// IsRealised reports whether a flow paying on payment has already settled.
func (l Leg) IsRealised(valuationDate, payment time.Time) bool {
	if l.PaymentDateIncluded {
		return !valuationDate.Before(payment)
	}
	return valuationDate.After(payment)
}

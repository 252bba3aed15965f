package leg_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/leg"
	"github.com/meenmo/cashflowrisk/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedLeg() leg.Leg {
	return leg.Leg{
		Name:          "fixed",
		Type:          leg.Fixed,
		Direction:     leg.Receive,
		Currency:      "AUD",
		Notional:      decimal.NewFromInt(10_000_000),
		Rate:          decimal.RequireFromString("0.0725"),
		DayCount:      utils.Act365F,
		PayFrequency:  leg.FreqQuarterly,
		Calendar:      calendar.WeekendsOnly,
		Adjustment:    calendar.ModifiedFollowing,
		EffectiveDate: date(2008, 7, 22),
		MaturityDate:  date(2009, 7, 22),
	}
}

func TestSchedule_Forward(t *testing.T) {
	t.Parallel()

	periods, err := fixedLeg().Schedule()
	require.NoError(t, err)
	require.Len(t, periods, 4)

	assert.Equal(t, date(2008, 7, 22), periods[0].Start)
	// 2008-10-22 is a Wednesday
	assert.Equal(t, date(2008, 10, 22), periods[0].End)
	// 2009-07-22 is a Wednesday
	assert.Equal(t, date(2009, 7, 22), periods[3].Payment)
	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].End, periods[i].Start)
		assert.Equal(t, i, periods[i].Index)
	}
}

func TestSchedule_BackwardFrontStub(t *testing.T) {
	t.Parallel()

	l := fixedLeg()
	l.ScheduleDirection = leg.Backward
	l.Adjustment = calendar.Unadjusted
	l.EffectiveDate = date(2008, 6, 1)

	periods, err := l.Schedule()
	require.NoError(t, err)
	require.Len(t, periods, 5)
	assert.Equal(t, date(2008, 6, 1), periods[0].Start)
	assert.Equal(t, date(2008, 7, 22), periods[0].End)
	assert.Equal(t, date(2008, 10, 22), periods[1].End)

	// a stub of a week or less is absorbed into the first period
	l.EffectiveDate = date(2008, 7, 18)
	periods, err = l.Schedule()
	require.NoError(t, err)
	require.Len(t, periods, 4)
	assert.Equal(t, date(2008, 7, 18), periods[0].Start)
	assert.Equal(t, date(2008, 10, 22), periods[0].End)
}

func TestSchedule_PayDelay(t *testing.T) {
	t.Parallel()

	l := fixedLeg()
	l.PayDelayDays = 2
	periods, err := l.Schedule()
	require.NoError(t, err)
	assert.Equal(t, date(2008, 10, 24), periods[0].Payment)
}

func TestFlows_Parameters(t *testing.T) {
	t.Parallel()

	l := fixedLeg()
	l.Direction = leg.Pay
	l.IncludeFinalPrincipal = true
	val := date(2008, 10, 22)

	flows, err := l.Flows(val, leg.Options{ReportingCurrency: "USD"})
	require.NoError(t, err)
	require.Len(t, flows, 5)

	first := flows[0].Params
	// paying on the valuation date is still live unless the payment date is included
	assert.False(t, first.IsRealised)
	assert.True(t, first.CurveYearFraction.IsZero())
	assert.Equal(t, "USD", first.ReportingCurrency)
	assert.True(t, first.Multiplier.Decimal.Equal(decimal.NewFromInt(-1)))
	assert.True(t, first.PeriodAsTimesPerYear.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, first.YearFraction.Equal(utils.AccrualFraction(date(2008, 7, 22), date(2008, 10, 22), utils.Act365F)))

	second := flows[1].Params
	assert.False(t, second.IsRealised)
	assert.True(t, second.CurveYearFraction.IsPositive())

	principal := flows[4]
	assert.Equal(t, leg.KindPrincipal, principal.Kind)
	assert.Equal(t, date(2009, 7, 22), principal.Params.PaymentDate)

	a, err := principal.Analytic(analytics.Curves{})
	require.NoError(t, err)
	_, ok := a.(*analytics.Cashflow)
	assert.True(t, ok)
}

func TestIsRealised(t *testing.T) {
	t.Parallel()

	l := fixedLeg()
	pay := date(2008, 10, 22)
	assert.False(t, l.IsRealised(pay, pay))
	assert.True(t, l.IsRealised(pay.AddDate(0, 0, 1), pay))

	l.PaymentDateIncluded = true
	assert.True(t, l.IsRealised(pay, pay))
	assert.False(t, l.IsRealised(pay.AddDate(0, 0, -1), pay))
}

func TestFlows_FloatingFixing(t *testing.T) {
	t.Parallel()

	l := fixedLeg()
	l.Name = "float"
	l.Type = leg.Floating
	l.Spread = decimal.RequireFromString("0.001")
	l.Fixings = map[time.Time]decimal.Decimal{date(2008, 7, 22): decimal.RequireFromString("0.0775")}

	flows, err := l.Flows(date(2008, 8, 1), leg.Options{})
	require.NoError(t, err)
	require.Len(t, flows, 4)

	fixed := flows[0].Params
	require.True(t, fixed.ExpectedAmount.Valid)
	want := l.Notional.Mul(fixed.YearFraction).Mul(decimal.RequireFromString("0.0785"))
	assert.True(t, fixed.ExpectedAmount.Decimal.Equal(want))
	assert.True(t, fixed.Rate.IsZero())
	assert.False(t, flows[1].Params.ExpectedAmount.Valid)

	a, err := flows[1].Analytic(analytics.Curves{})
	require.NoError(t, err)
	c, ok := a.(*analytics.Coupon)
	require.True(t, ok)
	assert.Equal(t, analytics.StyleFloating, c.Style())
}

func TestFlows_DiscountedFixing(t *testing.T) {
	t.Parallel()

	for _, dt := range []analytics.DiscountType{analytics.DiscountAFMA, analytics.DiscountISDA} {
		t.Run(dt.String(), func(t *testing.T) {
			t.Parallel()

			l := fixedLeg()
			l.Name = "bbsw"
			l.Type = leg.Floating
			l.Direction = leg.Pay
			l.DiscountType = dt
			l.Fixings = map[time.Time]decimal.Decimal{date(2008, 7, 22): decimal.RequireFromString("0.05")}

			flows, err := l.Flows(date(2008, 8, 1), leg.Options{})
			require.NoError(t, err)

			p := flows[0].Params
			require.True(t, p.ExpectedAmount.Valid)
			rate := decimal.RequireFromString("0.05")
			nm := l.Notional.Neg()
			want := nm.Sub(nm.Div(decimal.NewFromInt(1).Add(rate.Mul(p.YearFraction))))
			assert.True(t, p.ExpectedAmount.Decimal.Equal(want), "got %s want %s", p.ExpectedAmount.Decimal, want)

			simple := nm.Mul(p.YearFraction).Mul(rate)
			assert.True(t, p.ExpectedAmount.Decimal.Abs().LessThan(simple.Abs()))

			a, err := flows[0].Analytic(analytics.Curves{})
			require.NoError(t, err)
			res, err := a.Calculate(analytics.MetricExpectedValue)
			require.NoError(t, err)
			assert.True(t, res.ExpectedValue.Local.Equal(want))
		})
	}
}

func TestFlows_Ladder(t *testing.T) {
	t.Parallel()

	calls := 0
	opts := leg.Options{Ladder: func(v, p time.Time) ([]decimal.Decimal, error) {
		calls++
		return []decimal.Decimal{decimal.NewFromInt(1), decimal.RequireFromString("0.99")}, nil
	}}
	flows, err := fixedLeg().Flows(date(2008, 7, 22), opts)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Len(t, flows[0].Params.BucketedDiscountFactors, 2)

	boom := errors.New("boom")
	opts.Ladder = func(time.Time, time.Time) ([]decimal.Decimal, error) { return nil, boom }
	_, err = fixedLeg().Flows(date(2008, 7, 22), opts)
	assert.ErrorIs(t, err, boom)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	l := fixedLeg()
	l.PayFrequency = 5
	assert.ErrorIs(t, l.Validate(), leg.ErrUnsupportedFrequency)

	l = fixedLeg()
	l.MaturityDate = l.EffectiveDate
	assert.ErrorIs(t, l.Validate(), leg.ErrInvalidLeg)

	l = fixedLeg()
	l.Direction = "SIDEWAYS"
	assert.ErrorIs(t, l.Validate(), leg.ErrInvalidLeg)

	typ, err := leg.ParseType(" floating ")
	require.NoError(t, err)
	assert.Equal(t, leg.Floating, typ)
	dir, err := leg.ParseDirection("pay")
	require.NoError(t, err)
	assert.Equal(t, leg.Pay, dir)
}

func TestConvention_Apply(t *testing.T) {
	t.Parallel()

	c, err := leg.LookupConvention(" jpy-tibor6m ")
	require.NoError(t, err)

	l := c.Apply(leg.Leg{Name: "jpy", PayDelayDays: 1})
	assert.Equal(t, leg.Floating, l.Type)
	assert.Equal(t, "JPY", l.Currency)
	assert.Equal(t, calendar.JPN, l.Calendar)
	assert.Equal(t, leg.FreqSemi, l.PayFrequency)
	// explicit settings win
	assert.Equal(t, 1, l.PayDelayDays)

	_, err = leg.LookupConvention("GBP-SONIA")
	assert.ErrorIs(t, err, leg.ErrInvalidLeg)
}

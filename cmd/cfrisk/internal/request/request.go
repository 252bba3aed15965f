// Package request decodes the cfrisk JSON input into a valuation request.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/config"
	"github.com/meenmo/cashflowrisk/curve"
	"github.com/meenmo/cashflowrisk/leg"
	"github.com/meenmo/cashflowrisk/utils"
	"github.com/meenmo/cashflowrisk/valuation"
)

var ErrInvalidInput = errors.New("invalid input")

// Input is the JSON request.
//
// Conventions:
// - rates, spreads and fixings are decimals (0.05 means 5%)
// - dates are ISO "2006-01-02"
type Input struct {
	ValuationDate     string                 `json:"valuation_date"`
	ReportingCurrency string                 `json:"reporting_currency,omitempty"`
	Metrics           []string               `json:"metrics,omitempty"`
	Markets           map[string]MarketInput `json:"markets"`
	Legs              []LegInput             `json:"legs"`
	PDH               PDHInput               `json:"pdh"`
	BucketLadder      *bool                  `json:"bucket_ladder,omitempty"`
}

// MarketInput holds the curves of one settlement currency.
type MarketInput struct {
	Discount CurveInput  `json:"discount"`
	Forecast *CurveInput `json:"forecast,omitempty"`
	// FxRate converts this currency into the reporting currency. Zero means 1.
	FxRate float64 `json:"fx_rate,omitempty"`
}

// CurveInput holds pillar discount factors keyed by ISO date. The valuation
// date is the curve's base.
type CurveInput struct {
	ID       string             `json:"id"`
	DayCount string             `json:"day_count,omitempty"`
	Pillars  map[string]float64 `json:"pillars"`
}

// PDHInput switches on perturbed-curve sensitivities. Each pillar of the
// discount (Delta1) or forecast (Delta0) curve is shifted by ShiftBP.
type PDHInput struct {
	Delta1  bool    `json:"delta1"`
	Delta0  bool    `json:"delta0"`
	ShiftBP float64 `json:"shift_bp,omitempty"`
}

// LegInput describes one leg. Convention names a preset (see
// leg.Conventions) whose settings fill any field left empty.
type LegInput struct {
	Name                  string                     `json:"name"`
	Convention            string                     `json:"convention,omitempty"`
	Type                  string                     `json:"type"`
	Direction             string                     `json:"direction"`
	Currency              string                     `json:"currency"`
	Notional              decimal.Decimal            `json:"notional"`
	Rate                  decimal.Decimal            `json:"rate"`
	Spread                decimal.Decimal            `json:"spread"`
	BaseRate              decimal.Decimal            `json:"base_rate"`
	DayCount              string                     `json:"day_count"`
	PayFrequencyMonths    int                        `json:"pay_frequency_months"`
	PayDelayDays          int                        `json:"pay_delay_days"`
	Calendar              string                     `json:"calendar"`
	Adjustment            string                     `json:"adjustment"`
	ScheduleDirection     string                     `json:"schedule_direction"`
	EffectiveDate         string                     `json:"effective_date"`
	MaturityDate          string                     `json:"maturity_date"`
	DiscountType          analytics.DiscountType     `json:"discount_type"`
	PaymentDateIncluded   bool                       `json:"payment_date_included"`
	IncludeFinalPrincipal bool                       `json:"include_final_principal"`
	Fixings               map[string]decimal.Decimal `json:"fixings,omitempty"`
}

// Parse decodes and minimally checks b.
func Parse(b []byte) (*Input, error) {
	var in Input
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(in.Legs) == 0 {
		return nil, fmt.Errorf("%w: no legs", ErrInvalidInput)
	}
	if len(in.Markets) == 0 {
		return nil, fmt.Errorf("%w: no markets", ErrInvalidInput)
	}
	return &in, nil
}

// Build resolves curves, legs and options. Settings missing from the input
// fall back to cfg.
func (in *Input) Build(cfg *config.Config) (valuation.Request, error) {
	var req valuation.Request

	val, err := utils.ParseDate(in.ValuationDate)
	if err != nil {
		return req, fmt.Errorf("%w: valuation_date: %v", ErrInvalidInput, err)
	}
	req.ValuationDate = val

	names := in.Metrics
	if len(names) == 0 {
		names = cfg.Valuation.Metrics
	}
	if req.Metrics, err = analytics.ParseMetrics(names); err != nil {
		return req, err
	}

	reporting := strings.ToUpper(in.ReportingCurrency)
	if reporting == "" {
		reporting = strings.ToUpper(cfg.Valuation.ReportingCurrency)
	}

	market := valuation.StaticMarket{}
	discount := map[string]*curve.NodeCurve{}
	forecast := map[string]*curve.NodeCurve{}
	for ccy, m := range in.Markets {
		ccy = strings.ToUpper(ccy)
		d, err := m.Discount.build(val)
		if err != nil {
			return req, fmt.Errorf("%s discount: %w", ccy, err)
		}
		f := d
		if m.Forecast != nil {
			if f, err = m.Forecast.build(val); err != nil {
				return req, fmt.Errorf("%s forecast: %w", ccy, err)
			}
		}
		curves := analytics.Curves{Discount: d, Forecast: f}
		if m.FxRate != 0 {
			curves.Fx = curve.FlatFx(m.FxRate)
		}
		market[ccy] = curves
		discount[ccy], forecast[ccy] = d, f
	}
	req.Market = market

	shift := in.PDH.ShiftBP
	if shift == 0 {
		shift = cfg.Engine.PillarShiftBP
	}
	ladder := cfg.Engine.BucketLadder
	if in.BucketLadder != nil {
		ladder = *in.BucketLadder
	}

	req.LegOptions = make(map[string]leg.Options, len(in.Legs))
	for i, li := range in.Legs {
		l, err := li.build()
		if err != nil {
			return req, fmt.Errorf("legs[%d]: %w", i, err)
		}
		if _, dup := req.LegOptions[l.Name]; dup {
			return req, fmt.Errorf("%w: duplicate leg name %q", ErrInvalidInput, l.Name)
		}
		ccy := strings.ToUpper(l.Currency)
		d, ok := discount[ccy]
		if !ok {
			return req, fmt.Errorf("leg %s: %w (%s)", l.Name, valuation.ErrNoCurves, ccy)
		}

		opts := leg.Options{
			ReportingCurrency:     reporting,
			Delta1PDHPerturbation: cfg.Delta1Perturbation(),
			Delta0PDHPerturbation: cfg.Delta0Perturbation(),
		}
		if in.PDH.Delta1 {
			opts.Delta1PDHCurves = valuation.PerturbedCurves(d.PerturbPillars(shift))
		}
		if in.PDH.Delta0 && l.Type == leg.Floating {
			opts.Delta0PDHCurves = valuation.PerturbedCurves(forecast[ccy].PerturbPillars(shift))
		}
		if ladder {
			opts.Ladder = valuation.CurveLadder(d, int(l.PayFrequency))
		}
		req.LegOptions[l.Name] = opts
		req.Legs = append(req.Legs, l)
	}
	return req, nil
}

func (c CurveInput) build(base time.Time) (*curve.NodeCurve, error) {
	dc := utils.Act365F
	if c.DayCount != "" {
		var err error
		if dc, err = utils.ParseDayCount(c.DayCount); err != nil {
			return nil, err
		}
	}

	dfs := make(map[time.Time]float64, len(c.Pillars))
	for s, df := range c.Pillars {
		d, err := utils.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: pillar %q: %v", ErrInvalidInput, s, err)
		}
		dfs[d] = df
	}
	return curve.NewNodeCurve(c.ID, base, dfs, dc)
}

func (li LegInput) build() (leg.Leg, error) {
	l := leg.Leg{
		Name:                  li.Name,
		Currency:              strings.ToUpper(li.Currency),
		Notional:              li.Notional,
		Rate:                  li.Rate,
		Spread:                li.Spread,
		BaseRate:              li.BaseRate,
		PayFrequency:          leg.Frequency(li.PayFrequencyMonths),
		PayDelayDays:          li.PayDelayDays,
		DiscountType:          li.DiscountType,
		PaymentDateIncluded:   li.PaymentDateIncluded,
		IncludeFinalPrincipal: li.IncludeFinalPrincipal,
	}

	var err error
	if li.Type != "" {
		if l.Type, err = leg.ParseType(li.Type); err != nil {
			return l, err
		}
	}
	if l.Direction, err = leg.ParseDirection(li.Direction); err != nil {
		return l, err
	}
	if li.DayCount != "" {
		if l.DayCount, err = utils.ParseDayCount(li.DayCount); err != nil {
			return l, err
		}
	}
	if li.Adjustment != "" {
		if l.Adjustment, err = calendar.ParseConvention(li.Adjustment); err != nil {
			return l, err
		}
	}
	if li.Calendar != "" {
		l.Calendar = calendar.CalendarID(strings.ToUpper(li.Calendar))
	}
	if li.ScheduleDirection != "" {
		l.ScheduleDirection = leg.Forward
		if strings.EqualFold(li.ScheduleDirection, string(leg.Backward)) {
			l.ScheduleDirection = leg.Backward
		}
	}
	if l.EffectiveDate, err = utils.ParseDate(li.EffectiveDate); err != nil {
		return l, fmt.Errorf("%w: effective_date: %v", ErrInvalidInput, err)
	}
	if l.MaturityDate, err = utils.ParseDate(li.MaturityDate); err != nil {
		return l, fmt.Errorf("%w: maturity_date: %v", ErrInvalidInput, err)
	}

	if li.Convention != "" {
		c, err := leg.LookupConvention(li.Convention)
		if err != nil {
			return l, err
		}
		l = c.Apply(l)
	}
	l = defaults.Apply(l)

	if len(li.Fixings) > 0 {
		l.Fixings = make(map[time.Time]decimal.Decimal, len(li.Fixings))
		for s, r := range li.Fixings {
			d, err := utils.ParseDate(s)
			if err != nil {
				return l, fmt.Errorf("%w: fixing %q: %v", ErrInvalidInput, s, err)
			}
			l.Fixings[d] = r
		}
	}
	return l, l.Validate()
}

// defaults fill whatever neither the input nor a named convention set.
var defaults = leg.Convention{
	DayCount:     utils.Act365F,
	PayFrequency: leg.FreqQuarterly,
	Calendar:     calendar.WeekendsOnly,
	Adjustment:   calendar.ModifiedFollowing,
}

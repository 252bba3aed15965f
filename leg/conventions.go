package leg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/utils"
)

// Convention captures the standard settings of a market leg.
type Convention struct {
	Type                  Type
	Currency              string
	DayCount              utils.DayCount
	PayFrequency          Frequency
	PayDelayDays          int
	Calendar              calendar.CalendarID
	Adjustment            calendar.Convention
	ScheduleDirection     ScheduleDirection
	IncludeFinalPrincipal bool
}

// Preset leg conventions, keyed by name in Conventions.
var (
	BBSW3MFloat = Convention{
		Type:              Floating,
		Currency:          "AUD",
		DayCount:          utils.Act365F,
		PayFrequency:      FreqQuarterly,
		Calendar:          calendar.AUD,
		Adjustment:        calendar.ModifiedFollowing,
		ScheduleDirection: Backward,
	}

	BBSW6MFloat = Convention{
		Type:              Floating,
		Currency:          "AUD",
		DayCount:          utils.Act365F,
		PayFrequency:      FreqSemi,
		Calendar:          calendar.AUD,
		Adjustment:        calendar.ModifiedFollowing,
		ScheduleDirection: Backward,
	}

	AudFixedQuarterly = Convention{
		Type:              Fixed,
		Currency:          "AUD",
		DayCount:          utils.Act365F,
		PayFrequency:      FreqQuarterly,
		Calendar:          calendar.AUD,
		Adjustment:        calendar.ModifiedFollowing,
		ScheduleDirection: Backward,
	}

	EURIBOR3MFloat = Convention{
		Type:                  Floating,
		Currency:              "EUR",
		DayCount:              utils.Act360,
		PayFrequency:          FreqQuarterly,
		Calendar:              calendar.TARGET,
		Adjustment:            calendar.ModifiedFollowing,
		ScheduleDirection:     Backward,
		IncludeFinalPrincipal: true,
	}

	EURIBOR6MFloat = Convention{
		Type:                  Floating,
		Currency:              "EUR",
		DayCount:              utils.Act360,
		PayFrequency:          FreqSemi,
		Calendar:              calendar.TARGET,
		Adjustment:            calendar.ModifiedFollowing,
		ScheduleDirection:     Backward,
		IncludeFinalPrincipal: true,
	}

	// EUR IBOR fixed leg: annual 30/360.
	Euribor6MFixed = Convention{
		Type:              Fixed,
		Currency:          "EUR",
		DayCount:          utils.Thirty360,
		PayFrequency:      FreqAnnual,
		PayDelayDays:      2,
		Calendar:          calendar.TARGET,
		Adjustment:        calendar.ModifiedFollowing,
		ScheduleDirection: Backward,
	}

	TIBOR6MFloat = Convention{
		Type:         Floating,
		Currency:     "JPY",
		DayCount:     utils.Act365F,
		PayFrequency: FreqSemi,
		PayDelayDays: 2,
		Calendar:     calendar.JPN,
		Adjustment:   calendar.ModifiedFollowing,
	}

	JpyFixedSemi = Convention{
		Type:         Fixed,
		Currency:     "JPY",
		DayCount:     utils.Act365F,
		PayFrequency: FreqSemi,
		Calendar:     calendar.JPN,
		Adjustment:   calendar.ModifiedFollowing,
	}

	CD91Float = Convention{
		Type:         Floating,
		Currency:     "KRW",
		DayCount:     utils.Act365F,
		PayFrequency: FreqQuarterly,
		Calendar:     calendar.KRW,
		Adjustment:   calendar.ModifiedFollowing,
	}

	KrwFixedQuarterly = Convention{
		Type:         Fixed,
		Currency:     "KRW",
		DayCount:     utils.Act365F,
		PayFrequency: FreqQuarterly,
		Calendar:     calendar.KRW,
		Adjustment:   calendar.ModifiedFollowing,
	}
)

// Conventions maps preset names to conventions.
var Conventions = map[string]Convention{
	"AUD-BBSW3M":    BBSW3MFloat,
	"AUD-BBSW6M":    BBSW6MFloat,
	"AUD-FIXED-3M":  AudFixedQuarterly,
	"EUR-EURIBOR3M": EURIBOR3MFloat,
	"EUR-EURIBOR6M": EURIBOR6MFloat,
	"EUR-FIXED-1Y":  Euribor6MFixed,
	"JPY-TIBOR6M":   TIBOR6MFloat,
	"JPY-FIXED-6M":  JpyFixedSemi,
	"KRW-CD91":      CD91Float,
	"KRW-FIXED-3M":  KrwFixedQuarterly,
}

// LookupConvention finds a preset by case-insensitive name.
func LookupConvention(name string) (Convention, error) {
	c, ok := Conventions[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(Conventions))
		for n := range Conventions {
			names = append(names, n)
		}
		sort.Strings(names)
		return Convention{}, fmt.Errorf("%w: unknown convention %q (have %s)", ErrInvalidLeg, name, strings.Join(names, ", "))
	}
	return c, nil
}

// Apply fills the zero-valued fields of l from c. Fields already set on l
// are kept; IncludeFinalPrincipal is only ever switched on.
func (c Convention) Apply(l Leg) Leg {
	if l.Type == "" {
		l.Type = c.Type
	}
	if l.Currency == "" {
		l.Currency = c.Currency
	}
	if l.DayCount == "" {
		l.DayCount = c.DayCount
	}
	if l.PayFrequency == 0 {
		l.PayFrequency = c.PayFrequency
	}
	if l.PayDelayDays == 0 {
		l.PayDelayDays = c.PayDelayDays
	}
	if l.Calendar == "" {
		l.Calendar = c.Calendar
	}
	if l.Adjustment == "" {
		l.Adjustment = c.Adjustment
	}
	if l.ScheduleDirection == "" {
		l.ScheduleDirection = c.ScheduleDirection
	}
	l.IncludeFinalPrincipal = l.IncludeFinalPrincipal || c.IncludeFinalPrincipal
	return l
}

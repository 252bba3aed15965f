package leg

import (
	"fmt"
	"time"

	"github.com/meenmo/cashflowrisk/calendar"
	"github.com/meenmo/cashflowrisk/utils"
)

// Period is one accrual period of a leg.
type Period struct {
	Index   int
	Start   time.Time
	End     time.Time
	Payment time.Time
}

// Schedule generates the adjusted accrual periods of the leg.
func (l Leg) Schedule() ([]Period, error) {
	if l.MaturityDate.Before(l.EffectiveDate) {
		return nil, fmt.Errorf("leg %s: maturity %s before effective %s", l.Name,
			l.MaturityDate.Format(utils.DateLayout), l.EffectiveDate.Format(utils.DateLayout))
	}
	if l.PayFrequency <= 0 {
		return nil, fmt.Errorf("leg %s: %w %d", l.Name, ErrUnsupportedFrequency, l.PayFrequency)
	}

	var dates []time.Time
	if l.ScheduleDirection == Backward {
		dates = l.unadjustedBackward()
	} else {
		dates = l.unadjustedForward()
	}

	periods := make([]Period, 0, len(dates)-1)
	for i := 0; i < len(dates)-1; i++ {
		start := calendar.Roll(l.Calendar, l.Adjustment, dates[i])
		end := calendar.Roll(l.Calendar, l.Adjustment, dates[i+1])
		pay := end
		if l.PayDelayDays != 0 {
			pay = calendar.AddBusinessDays(l.Calendar, end, l.PayDelayDays)
		}
		periods = append(periods, Period{Index: i, Start: start, End: end, Payment: pay})
	}
	return periods, nil
}

// unadjustedForward rolls from the effective date; a short final stub ends
// on maturity.
func (l Leg) unadjustedForward() []time.Time {
	months := int(l.PayFrequency)
	dates := []time.Time{l.EffectiveDate}
	for i := 1; ; i++ {
		next := utils.AddMonth(l.EffectiveDate, i*months)
		if !next.Before(l.MaturityDate) {
			break
		}
		dates = append(dates, next)
	}
	return append(dates, l.MaturityDate)
}

// unadjustedBackward rolls back from maturity so regular dates align with
// it. A front stub of a week or less is merged into the first period.
func (l Leg) unadjustedBackward() []time.Time {
	months := int(l.PayFrequency)
	var rev []time.Time
	for i := 0; ; i++ {
		d := utils.AddMonth(l.MaturityDate, -i*months)
		if !d.After(l.EffectiveDate) {
			break
		}
		rev = append(rev, d)
	}
	if n := len(rev); n > 1 {
		if days := int(utils.Days(l.EffectiveDate, rev[n-1])); days > 0 && days <= 7 {
			rev = rev[:n-1]
		}
	}
	dates := make([]time.Time, 0, len(rev)+1)
	dates = append(dates, l.EffectiveDate)
	for i := len(rev) - 1; i >= 0; i-- {
		dates = append(dates, rev[i])
	}
	return dates
}

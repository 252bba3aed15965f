package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayCount names a day count convention.
type DayCount string

const (
	Act360     DayCount = "ACT/360"
	Act365F    DayCount = "ACT/365F"
	Thirty360  DayCount = "30/360"
	Thirty360E DayCount = "30E/360"
)

// ParseDayCount accepts the common spellings of the supported conventions.
func ParseDayCount(s string) (DayCount, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "ACT/360", "A360", "ACTUAL/360":
		return Act360, nil
	case "ACT/365F", "ACT/365", "A365F", "ACTUAL/365FIXED":
		return Act365F, nil
	case "30/360", "30U/360", "BOND":
		return Thirty360, nil
	case "30E/360", "EUROBOND":
		return Thirty360E, nil
	}
	return "", fmt.Errorf("unsupported day count %q", s)
}

// YearFraction computes year fraction between two dates using the specified day count convention.
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention DayCount) float64 {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Thirty360, Thirty360E:
		return float64(days30360(start, end, convention)) / 360.0
	default:
		return Days(start, end) / 365.0
	}
}

// AccrualFraction is YearFraction in decimal. ACT conventions divide whole
// days exactly, so the fraction carries no binary rounding.
func AccrualFraction(start, end time.Time, convention DayCount) decimal.Decimal {
	switch convention {
	case Act360:
		return decimal.NewFromInt(int64(Days(start, end))).Div(decimal.NewFromInt(360))
	case Thirty360, Thirty360E:
		return decimal.NewFromInt(int64(days30360(start, end, convention))).Div(decimal.NewFromInt(360))
	default:
		return decimal.NewFromInt(int64(Days(start, end))).Div(decimal.NewFromInt(365))
	}
}

func days30360(start, end time.Time, convention DayCount) int {
	d1, d2 := start.Day(), end.Day()
	if d1 > 30 {
		d1 = 30
	}
	if convention == Thirty360E {
		if d2 > 30 {
			d2 = 30
		}
	} else if d2 > 30 && d1 == 30 {
		d2 = 30
	}
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return 360*(y2-y1) + 30*(m2-m1) + (d2 - d1)
}

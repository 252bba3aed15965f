package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/cashflowrisk/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonth_EndOfMonth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     time.Time
		months int
		want   time.Time
	}{
		{date(2024, 1, 31), 1, date(2024, 2, 29)},
		{date(2023, 1, 31), 1, date(2023, 2, 28)},
		{date(2024, 3, 31), -1, date(2024, 2, 29)},
		{date(2024, 5, 15), 12, date(2025, 5, 15)},
		{date(2024, 8, 31), 3, date(2024, 11, 30)},
	}
	for _, tc := range cases {
		got := utils.AddMonth(tc.in, tc.months)
		assert.True(t, got.Equal(tc.want), "%s%+d: got %s want %s", tc.in.Format(utils.DateLayout), tc.months,
			got.Format(utils.DateLayout), tc.want.Format(utils.DateLayout))
	}
}

func TestAccrualFraction(t *testing.T) {
	t.Parallel()

	start, end := date(2024, 1, 15), date(2024, 7, 15)
	assert.Equal(t, "0.5055555555555556", utils.AccrualFraction(start, end, utils.Act360).String())
	assert.Equal(t, "0.5", utils.AccrualFraction(start, end, utils.Thirty360).String())
	assert.InDelta(t, 182.0/365.0, utils.AccrualFraction(start, end, utils.Act365F).InexactFloat64(), 1e-15)
	assert.InDelta(t, 182.0/365.0, utils.YearFraction(start, end, utils.Act365F), 1e-15)

	assert.InDelta(t, 60.0/360.0, utils.YearFraction(date(2024, 1, 31), date(2024, 3, 31), utils.Thirty360E), 1e-15)
}

func TestParseDayCount(t *testing.T) {
	t.Parallel()

	dc, err := utils.ParseDayCount("act/365")
	require.NoError(t, err)
	assert.Equal(t, utils.Act365F, dc)

	_, err = utils.ParseDayCount("ACT/ACT")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := utils.ParseDate("2008-07-22")
	require.NoError(t, err)
	assert.True(t, d.Equal(date(2008, 7, 22)))

	_, err = utils.ParseDate("22/07/2008")
	assert.Error(t, err)
}

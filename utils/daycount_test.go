package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/moderiv/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		start, end time.Time
		convention string
		want       float64
	}{
		{"act360", date(2025, 1, 1), date(2026, 1, 1), utils.Act360, 365.0 / 360.0},
		{"act365f", date(2024, 1, 1), date(2025, 1, 1), utils.Act365F, 366.0 / 365.0},
		{"actact same year", date(2024, 1, 1), date(2024, 7, 1), utils.ActAct, 182.0 / 366.0},
		{"actact across years", date(2023, 7, 1), date(2024, 7, 1), utils.ActAct, 184.0/365.0 + 182.0/366.0},
		{"30/360 half year", date(2025, 1, 15), date(2025, 7, 15), utils.Thirty360, 0.5},
		{"30/360 end 31 start 30", date(2025, 1, 30), date(2025, 3, 31), utils.Thirty360, 60.0 / 360.0},
		{"30/360 end 31 start 15", date(2025, 1, 15), date(2025, 3, 31), utils.Thirty360, 76.0 / 360.0},
		{"30E/360", date(2025, 1, 31), date(2025, 3, 31), utils.Thirty360E, 60.0 / 360.0},
		{"one day", date(2025, 1, 1), date(2030, 1, 1), utils.OneDay, 1},
		{"simple whole months", date(2025, 1, 15), date(2026, 7, 15), utils.Simple, 1.5},
		{"unknown falls back to act365", date(2025, 1, 1), date(2025, 12, 27), "XYZ", 360.0 / 365.0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, utils.YearFraction(tc.start, tc.end, tc.convention), 1e-12)
		})
	}
}

func TestDayCountFromBasis(t *testing.T) {
	t.Parallel()

	for code, want := range map[int]string{
		0: utils.Act360,
		1: utils.Act365F,
		2: utils.ActAct,
		4: utils.OneDay,
		5: utils.Simple,
		6: utils.Thirty360,
		9: utils.Thirty360,
	} {
		got, err := utils.DayCountFromBasis(code)
		require.NoError(t, err)
		assert.Equal(t, want, got, "code %d", code)
	}

	_, err := utils.DayCountFromBasis(3)
	assert.Error(t, err)
}

func TestAddMonthEndOfMonth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, date(2025, 2, 28), utils.AddMonth(date(2025, 1, 31), 1))
	assert.Equal(t, date(2024, 2, 29), utils.AddMonth(date(2023, 8, 31), 6))
	assert.Equal(t, date(2025, 7, 15), utils.AddMonth(date(2025, 1, 15), 6))
}

func TestParseDateAndOrdering(t *testing.T) {
	t.Parallel()

	d, err := utils.ParseDate(" 2025-03-10 ")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 10), d)

	_, err = utils.ParseDate("10/03/2025")
	assert.Error(t, err)

	assert.True(t, utils.StrictlyIncreasing([]time.Time{date(2025, 1, 1), date(2025, 2, 1)}))
	assert.False(t, utils.StrictlyIncreasing([]time.Time{date(2025, 1, 1), date(2025, 1, 1)}))
}

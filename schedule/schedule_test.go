package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/moderiv/calendar"
	"github.com/meenmo/moderiv/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_RegularSemiannual(t *testing.T) {
	t.Parallel()

	periods, err := schedule.Generate(date(2020, 1, 15), date(2022, 1, 15), schedule.Rule{
		Frequency:             schedule.Semiannual,
		Calendar:              calendar.NullCalendar,
		Convention:            calendar.Unadjusted,
		TerminationConvention: calendar.Unadjusted,
	})
	require.NoError(t, err)
	require.Len(t, periods, 4)

	want := []time.Time{date(2020, 1, 15), date(2020, 7, 15), date(2021, 1, 15), date(2021, 7, 15), date(2022, 1, 15)}
	assert.Equal(t, want, schedule.Dates(periods))
}

func TestGenerate_FrontStubAndFollowing(t *testing.T) {
	t.Parallel()

	// Backward from 2026-03-15 annually leaves a short first period from 2024-10-01.
	periods, err := schedule.Generate(date(2024, 10, 1), date(2026, 3, 15), schedule.Rule{
		Frequency:             schedule.Annual,
		Calendar:              calendar.WeekendsOnly,
		Convention:            calendar.Following,
		TerminationConvention: calendar.Following,
	})
	require.NoError(t, err)
	require.Len(t, periods, 2)

	assert.Equal(t, date(2024, 10, 1), periods[0].StartDate)
	// 2025-03-15 is a Saturday.
	assert.Equal(t, date(2025, 3, 17), periods[0].EndDate)
	// 2026-03-15 is a Sunday.
	assert.Equal(t, date(2026, 3, 16), periods[1].EndDate)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	_, err := schedule.Generate(date(2025, 1, 1), date(2024, 1, 1), schedule.Rule{Frequency: schedule.Annual})
	assert.Error(t, err)

	_, err = schedule.Generate(date(2024, 1, 1), date(2025, 1, 1), schedule.Rule{Frequency: 5})
	assert.Error(t, err)

	_, err = schedule.FrequencyFromCode(7)
	assert.Error(t, err)
	f, err := schedule.FrequencyFromCode(4)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Months())
}

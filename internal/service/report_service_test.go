package service

import (
	"context"
	"habit_tracker_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reports := NewReportService(f.habits, f.completions, f.clock)

	a := f.durationHabit(t, 1)
	b := f.durationHabit(t, 1)
	gone := f.durationHabit(t, 1)
	f.durationHabit(t, 2)

	f.seedDone(t, a.ID, 3)
	f.seedDone(t, gone.ID, 3)
	_, err := f.habitSvc.RecordCompletion(ctx, 1, a.ID, CompletionRequest{Status: model.StatusDone})
	require.NoError(t, err)
	_, err = f.habitSvc.RecordCompletion(ctx, 1, b.ID, CompletionRequest{Status: model.StatusDone})
	require.NoError(t, err)
	_, err = f.habitSvc.Delete(ctx, gone.ID, 1, "")
	require.NoError(t, err)

	report, err := reports.Weekly(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.TotalHabits)
	require.Len(t, report.DailyData, 7)
	assert.Equal(t, "2024-03-14", report.DailyData[0].Date)
	assert.Equal(t, today, report.DailyData[6].Date)
	assert.Equal(t, "Wed", report.DailyData[6].DayName)
	assert.Equal(t, int64(2), report.DailyData[6].Completed)
	assert.Equal(t, "excellent", report.DailyData[6].Status)
	assert.Equal(t, int64(1), report.DailyData[5].Completed)
	assert.Equal(t, "fair", report.DailyData[5].Status)

	assert.Equal(t, 4, report.CompletedDays)
	assert.Equal(t, 4, report.LongestStreak)
	// 5 done out of 2 habits * 7 days
	assert.Equal(t, 36, report.CompletionRate)
}

func TestMonthlyReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reports := NewReportService(f.habits, f.completions, f.clock)

	a := f.durationHabit(t, 1)
	b := f.durationHabit(t, 1)
	f.seedDone(t, a.ID, 4)
	f.seedDone(t, b.ID, 2)

	report, err := reports.Monthly(ctx, 1, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-03", report.Month)
	require.Len(t, report.CalendarData, 31)
	assert.Equal(t, 4, report.CalendarData[18].Intensity) // 19th, both done
	assert.Equal(t, 2, report.CalendarData[16].Intensity) // 17th, one of two
	assert.Equal(t, 0, report.CalendarData[19].Intensity)
	assert.Equal(t, int64(6), report.TotalCompletions)
	assert.Equal(t, 2, report.PerfectDays)
	assert.Equal(t, int64(2), report.AverageDaily)
	assert.Equal(t, 4, report.BestStreak)

	feb, err := reports.Monthly(ctx, 1, "2024-02")
	require.NoError(t, err)
	assert.Len(t, feb.CalendarData, 29)
	assert.Zero(t, feb.TotalCompletions)

	_, err = reports.Monthly(ctx, 1, "2024-13")
	assert.Error(t, err)
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 0, intensity(0, 4))
	assert.Equal(t, 1, intensity(1, 4))
	assert.Equal(t, 2, intensity(2, 4))
	assert.Equal(t, 3, intensity(3, 4))
	assert.Equal(t, 4, intensity(4, 4))
	assert.Equal(t, 4, intensity(5, 4))
}

package service

import (
	"context"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/util"
	"math"
)

// ReportService builds the weekly and monthly progress views.
type ReportService struct {
	habits      *repository.HabitRepository
	completions *repository.CompletionRepository
	clock       util.Clock
}

// NewReportService creates a ReportService.
func NewReportService(habits *repository.HabitRepository, completions *repository.CompletionRepository, clock util.Clock) *ReportService {
	return &ReportService{habits: habits, completions: completions, clock: clock}
}

var dayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Weekly covers the seven days ending today. A day is "excellent" when at
// least 70% of the active habits were done.
func (s *ReportService) Weekly(ctx context.Context, userID uint) (*model.WeeklyReport, error) {
	today := util.Today(s.clock)
	from, err := util.AddDays(today, -6)
	if err != nil {
		return nil, err
	}

	counts, err := s.completions.CountDoneByDate(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}
	total, err := s.habits.CountByUser(ctx, userID, model.ViewActive)
	if err != nil {
		return nil, err
	}

	byDate := countsByDate(counts)
	report := &model.WeeklyReport{TotalHabits: total, DailyData: make([]model.WeeklyDay, 0, 7)}

	var sum int64
	for i := 6; i >= 0; i-- {
		date, _ := util.AddDays(today, -i)
		t, _ := util.ParseDate(date)
		completed := byDate[date]
		sum += completed

		status := "fair"
		if completed > 0 && float64(completed) >= float64(total)*0.7 {
			status = "excellent"
		}
		report.DailyData = append(report.DailyData, model.WeeklyDay{
			Date:      date,
			DayName:   dayNames[t.Weekday()],
			Completed: completed,
			Total:     total,
			Status:    status,
		})
	}

	report.CompletedDays = len(counts)
	report.LongestStreak = longestRun(counts)
	if total > 0 {
		report.CompletionRate = int(math.Round(float64(sum) / float64(total*7) * 100))
	}
	return report, nil
}

// Monthly builds the heatmap for month (YYYY-MM). Intensity is the share of
// the user's habits done that day: 1 below half, 2 from half, 3 from three
// quarters, 4 for all of them.
func (s *ReportService) Monthly(ctx context.Context, userID uint, month string) (*model.MonthlyReport, error) {
	if month == "" {
		month = s.clock.Now().Format(util.MonthFormat)
	}
	first, err := util.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	last := first.AddDate(0, 1, -1)

	counts, err := s.completions.CountDoneByDate(ctx, userID, util.FormatDate(first), util.FormatDate(last))
	if err != nil {
		return nil, err
	}
	total, err := s.habits.CountNonDeletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byDate := countsByDate(counts)
	report := &model.MonthlyReport{
		Month:        month,
		CalendarData: make([]model.CalendarDay, 0, last.Day()),
	}

	for day := 1; day <= last.Day(); day++ {
		date := util.FormatDate(first.AddDate(0, 0, day-1))
		completed := byDate[date]
		report.CalendarData = append(report.CalendarData, model.CalendarDay{
			Date:      date,
			DayNumber: day,
			Completed: completed,
			Intensity: intensity(completed, total),
		})
		report.TotalCompletions += completed
		if completed > 0 && completed >= total {
			report.PerfectDays++
		}
	}

	if len(counts) > 0 {
		report.AverageDaily = int64(math.Round(float64(report.TotalCompletions) / float64(len(counts))))
	}
	report.BestStreak = longestRun(counts)
	return report, nil
}

func intensity(completed, total int64) int {
	if completed <= 0 {
		return 0
	}
	if total <= 0 {
		return 4
	}
	ratio := float64(completed) / float64(total)
	switch {
	case ratio >= 1:
		return 4
	case ratio >= 0.75:
		return 3
	case ratio >= 0.5:
		return 2
	default:
		return 1
	}
}

func countsByDate(counts []model.DailyCount) map[string]int64 {
	m := make(map[string]int64, len(counts))
	for _, c := range counts {
		m[c.Date] = c.Count
	}
	return m
}

// longestRun is the longest chain of consecutive dates in counts, which must
// be sorted ascending.
func longestRun(counts []model.DailyCount) int {
	best, run := 0, 0
	prev := ""
	for _, c := range counts {
		if prev != "" {
			if d, err := util.DaysBetween(prev, c.Date); err == nil && d == 1 {
				run++
			} else {
				run = 1
			}
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = c.Date
	}
	return best
}

package model

// DailyCount is one GROUP BY date row.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type WeeklyDay struct {
	Date      string `json:"date"`
	DayName   string `json:"dayName"`
	Completed int64  `json:"completed"`
	Total     int64  `json:"total"`
	Status    string `json:"status"`
}

type WeeklyReport struct {
	CompletedDays  int         `json:"completedDays"`
	LongestStreak  int         `json:"longestStreak"`
	CompletionRate int         `json:"completionRate"`
	TotalHabits    int64       `json:"totalHabits"`
	DailyData      []WeeklyDay `json:"dailyData"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	DayNumber int    `json:"dayNumber"`
	Completed int64  `json:"completed"`
	Intensity int    `json:"intensity"`
}

type MonthlyReport struct {
	Month            string        `json:"month"`
	TotalCompletions int64         `json:"totalCompletions"`
	PerfectDays      int           `json:"perfectDays"`
	AverageDaily     int64         `json:"averageDaily"`
	BestStreak       int           `json:"bestStreak"`
	CalendarData     []CalendarDay `json:"calendarData"`
}

type SystemStatus struct {
	Timestamp     string       `json:"timestamp"`
	UptimeSeconds int64        `json:"uptimeSeconds"`
	ActiveHabits  int64        `json:"activeHabits"`
	Graduated     int64        `json:"graduatedHabits"`
	Completions   int64        `json:"completions"`
	AvailableSkip int64        `json:"availableSkipDays"`
	LastSweep     *SweepResult `json:"lastSweep,omitempty"`
}

// SweepResult summarises one run of the daily sweep.
type SweepResult struct {
	RunID         string `json:"runId" yaml:"run_id"`
	Date          string `json:"date" yaml:"date"`
	StartedAt     string `json:"startedAt" yaml:"started_at"`
	Backfilled    int64  `json:"backfilled" yaml:"backfilled"`
	Expired       int64  `json:"expired" yaml:"expired"`
	BackfillError string `json:"backfillError,omitempty" yaml:"backfill_error,omitempty"`
	ExpireError   string `json:"expireError,omitempty" yaml:"expire_error,omitempty"`
}

// Runs the daily sweep once, for a missed night or a backfill after an
// outage. The server runs the same sweep on its schedule.
//
// Usage: go run scripts/run_sweep.go [-config configs] [-date YYYY-MM-DD]

package main

import (
	"context"
	"flag"
	"habit_tracker_backend/internal/config"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/service"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/database"
	"habit_tracker_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	date := flag.String("date", "", "day to sweep, defaults to today")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	// same day boundary as the server's scheduled sweep
	clock, _, err := util.ClockIn(cfg.Sweep.Timezone)
	if err != nil {
		log.Fatalf("invalid sweep.timezone %q: %v", cfg.Sweep.Timezone, err)
	}
	if *date == "" {
		*date = util.Today(clock)
	}
	if !util.IsValidDate(*date) {
		log.Fatalf("invalid -date %q, expected YYYY-MM-DD", *date)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	habits := repository.NewHabitRepository(db)
	completions := repository.NewCompletionRepository(db)
	ledger := service.NewSkipDayService(
		repository.NewSkipDayRepository(db),
		repository.NewSettingRepository(db),
		clock,
		cfg.Habit.DefaultSkipExpiryDays,
	)
	sweep := service.NewSweepService(habits, completions, ledger, clock)

	result := sweep.RunForDate(context.Background(), *date)

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		log.Fatalf("print result: %v", err)
	}
	enc.Close()

	if result.BackfillError != "" || result.ExpireError != "" {
		os.Exit(1)
	}
}

// Package scheduler runs the periodic due-reminder sweep. The sweep cadence
// lives in the settings table so operators can change it without a restart.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/toozhub/toozhub/internal/metrics"
	"github.com/toozhub/toozhub/internal/repo"
)

const defaultSweepCron = "@every 1h"

// Run starts a background scheduler that refreshes the due-reminder gauge on
// the cron cadence stored in settings (system/reminder_sweep_cron). It re-reads
// the setting every 60 seconds and reschedules when it changes.
func Run(reminders *repo.ReminderRepo, settings *repo.SettingRepo) {
	c := cron.New()
	var mu sync.Mutex
	var currentExpr string
	var currentEntry cron.EntryID

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		due, err := reminders.CountDue(ctx)
		if err != nil {
			slog.Error("reminder sweep failed", "error", err)
			return
		}
		metrics.RemindersDue.Set(float64(due))
		slog.Info("reminder sweep", "due", due)
	}

	syncSchedule := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		expr, err := settings.Get(ctx, "system", "reminder_sweep_cron")
		if err != nil {
			if err != sql.ErrNoRows {
				slog.Error("scheduler: read sweep cron", "error", err)
				return
			}
			expr = ""
		}
		if expr == "" {
			expr = defaultSweepCron
		}

		mu.Lock()
		defer mu.Unlock()
		if expr == currentExpr {
			return
		}
		if currentExpr != "" {
			c.Remove(currentEntry)
		}
		entry, err := c.AddFunc(expr, sweep)
		if err != nil {
			slog.Error("scheduler: invalid sweep cron", "expr", expr, "error", err)
			return
		}
		currentExpr = expr
		currentEntry = entry
		slog.Info("scheduler: sweep scheduled", "cron", expr)
	}

	syncSchedule()
	c.Start()

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		syncSchedule()
	}
}

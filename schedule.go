package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// RunScheduled re-runs the pipeline on a 5-field cron expression (minute
// hour day-of-month month day-of-week), re-reading the input file each time
// so a growing survey export picks up new rows. Blocks forever; per-run
// errors are logged and the next run still fires.
func RunScheduled(cfg Config, set *CategorySet, db *sql.DB, api *slack.Client) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(cfg.RunSchedule)
	if err != nil {
		return err
	}
	log.Printf("scheduled runs enabled (cron: %s) input=%s", cfg.RunSchedule, cfg.InputPath)

	for {
		now := time.Now()
		next := sched.Next(now)
		log.Printf("next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))
		time.Sleep(next.Sub(now))

		if err := runOnce(context.Background(), cfg, set, db, api); err != nil {
			log.Printf("scheduled run error: %v", err)
		}
	}
}

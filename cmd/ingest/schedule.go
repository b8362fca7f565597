package main

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"stocklens/pkg/config"
	"stocklens/pkg/database"
)

// newScheduler builds the cron runner. Schedules carry a seconds field and a
// run that is still going when the next one fires is skipped.
func newScheduler(spec string, job func()) (*cron.Cron, error) {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return c, nil
}

// runSchedule blocks, running the download on cfg.Ingest.Cron until ctx ends
func runSchedule(ctx context.Context, cfg *config.Config, db *database.DB) error {
	ingester := newIngester(cfg, db)

	c, err := newScheduler(cfg.Ingest.Cron, func() {
		summary, err := ingester.Run(ctx)
		if err != nil {
			log.Printf("Scheduled run failed after %d symbols: %v", summary.Symbols, err)
			return
		}
		log.Printf("Scheduled run saved %d rows for %d symbols", summary.Rows, summary.Symbols)
	})
	if err != nil {
		return err
	}

	log.Printf("Scheduled ingest on %q, waiting for next run...", cfg.Ingest.Cron)
	c.Start()

	<-ctx.Done()
	log.Println("Stopping scheduler...")
	<-c.Stop().Done()
	return nil
}

// Package main provides the ingest command: it downloads daily price history
// for every tracked company and hosts the database maintenance commands.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocklens/pkg/config"
	"stocklens/pkg/database"
	"stocklens/services/market"
	"stocklens/services/news"
)

func main() {
	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, cleaning up...")
		cancel()
	}()

	// Parse command
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	db, err := database.New(database.DefaultConfig(cfg.Database.Driver, cfg.Database.URL))
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	switch command {
	case "run":
		if err := runIngest(ctx, cfg, db); err != nil {
			log.Fatalf("run failed: %v", err)
		}
	case "schedule":
		if err := runSchedule(ctx, cfg, db); err != nil {
			log.Fatalf("schedule failed: %v", err)
		}
	case "migrate":
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("migrate failed: %v", err)
		}
	case "add-company":
		if len(os.Args) < 4 {
			log.Fatalf("Usage: ingest add-company <symbol> <name>")
		}
		if err := addCompany(ctx, db, os.Args[2], os.Args[3:]); err != nil {
			log.Fatalf("add-company failed: %v", err)
		}
	case "list-companies":
		if err := listCompanies(ctx, db); err != nil {
			log.Fatalf("list-companies failed: %v", err)
		}
	case "add-news":
		if err := addNews(ctx, news.NewStore(db), os.Stdin); err != nil {
			log.Fatalf("add-news failed: %v", err)
		}
	case "import-news":
		if len(os.Args) < 3 {
			log.Fatalf("Usage: ingest import-news <csv-file>")
		}
		if err := importNewsCSV(ctx, news.NewStore(db), os.Args[2]); err != nil {
			log.Fatalf("import-news failed: %v", err)
		}
	case "status":
		if err := showStatus(ctx, db); err != nil {
			log.Fatalf("status failed: %v", err)
		}
	default:
		log.Printf("Unknown command: %s", command)
		printUsage()
		os.Exit(1)
	}

	log.Println("Command completed successfully")
}

func printUsage() {
	fmt.Println(`Usage: ingest <command>

Commands:
  run                  Download price history for every company
  schedule             Run the download on the configured cron schedule
  migrate              Create the tables if they do not exist

  add-company          Add or rename a company: add-company <symbol> <name>
  list-companies       Show tracked companies

  add-news             Manually add a news article
  import-news          Import news from CSV: date,polarity,content,link

  status               Show database status and counts`)
}

func newIngester(cfg *config.Config, db *database.DB) *market.Ingester {
	fetcher := market.NewFetcher(
		market.WithBaseURL(cfg.Yahoo.BaseURL),
		market.WithPeriod(cfg.Ingest.Period),
		market.WithRateLimit(cfg.Ingest.RequestsPerSecond),
		market.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Yahoo.TimeoutSeconds) * time.Second}),
	)
	return market.NewIngester(fetcher, market.NewStore(db), cfg.Ingest.Retries)
}

func runIngest(ctx context.Context, cfg *config.Config, db *database.DB) error {
	log.Println("=== Price History Download ===")
	log.Printf("Started at: %s", time.Now().Format(time.RFC3339))

	summary, err := newIngester(cfg, db).Run(ctx)
	if err != nil {
		log.Printf("Stopped after %d symbols (%d rows)", summary.Symbols, summary.Rows)
		return err
	}

	log.Printf("Saved %d rows for %d symbols in %s",
		summary.Rows, summary.Symbols, summary.Finished.Sub(summary.Started).Round(time.Second))
	return nil
}

func showStatus(ctx context.Context, db *database.DB) error {
	log.Println("=== Database Status ===")

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	for _, table := range []string{"companies", "stockprices", "newscrawl"} {
		count, err := db.Count(ctx, table)
		if err != nil {
			return err
		}
		log.Printf("%s: %d", table, count)
	}

	summaries, err := market.NewStore(db).Summaries(ctx)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		log.Printf("  %s: %d rows, %s to %s", s.Symbol, s.Rows, s.First, s.Last)
	}

	return nil
}

package market

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HistoryFetcher downloads daily bars for one symbol
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string) ([]Bar, error)
}

// PriceStore is the part of Store the ingester writes through
type PriceStore interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	SaveBars(ctx context.Context, symbol string, bars []Bar) (int, error)
}

// Summary reports one ingest run
type Summary struct {
	Symbols  int
	Rows     int
	Started  time.Time
	Finished time.Time
}

// Ingester downloads and stores history for every company, one symbol at a time
type Ingester struct {
	fetcher         HistoryFetcher
	store           PriceStore
	retries         uint64
	initialInterval time.Duration
}

// NewIngester creates an ingester. With retries == 0 the first failure aborts the run.
func NewIngester(fetcher HistoryFetcher, store PriceStore, retries uint64) *Ingester {
	return &Ingester{
		fetcher:         fetcher,
		store:           store,
		retries:         retries,
		initialInterval: time.Second,
	}
}

// Run ingests every company. Each symbol commits on its own, so symbols saved
// before a failure stay saved while the rest of the batch is abandoned.
func (in *Ingester) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Started: time.Now()}

	companies, err := in.store.ListCompanies(ctx)
	if err != nil {
		return summary, fmt.Errorf("list companies: %w", err)
	}
	log.Printf("Ingesting %d companies", len(companies))

	for _, c := range companies {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		var bars []Bar
		err := in.retry(ctx, func() error {
			var fetchErr error
			bars, fetchErr = in.fetcher.FetchHistory(ctx, c.Symbol)
			return fetchErr
		})
		if err != nil {
			return summary, fmt.Errorf("%s: fetch: %w", c.Symbol, err)
		}

		var saved int
		err = in.retry(ctx, func() error {
			var saveErr error
			saved, saveErr = in.store.SaveBars(ctx, c.Symbol, bars)
			return saveErr
		})
		if err != nil {
			return summary, fmt.Errorf("%s: save: %w", c.Symbol, err)
		}

		summary.Symbols++
		summary.Rows += saved
		log.Printf("%s (%s): %d rows", c.Symbol, c.Name, saved)
	}

	summary.Finished = time.Now()
	return summary, nil
}

func (in *Ingester) retry(ctx context.Context, op func() error) error {
	if in.retries == 0 {
		return op()
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = in.initialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(exp, in.retries), ctx)

	return backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		log.Printf("Retrying in %v: %v", wait, err)
	})
}

package market

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"stocklens/pkg/database"
)

// Company is one row of the companies table
type Company struct {
	Symbol string `db:"symbol"`
	Name   string `db:"name"`
}

// ClosePoint is one (date, close) row of a price range query
type ClosePoint struct {
	Date  database.Date   `db:"date"`
	Close decimal.Decimal `db:"close"`
}

// SymbolSummary describes the stored history of one symbol
type SymbolSummary struct {
	Symbol string        `db:"symbol"`
	Rows   int           `db:"row_count"`
	First  database.Date `db:"first_date"`
	Last   database.Date `db:"last_date"`
}

const insertBar = `
	INSERT INTO stockprices (date, open, high, low, close, adj_close, volume, symbol)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// Store handles price and company persistence
type Store struct {
	db *database.DB
}

// NewStore creates a new price store
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// ListCompanies returns every (symbol, name) pair to ingest
func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var companies []Company
	if err := s.db.SelectContext(ctx, &companies, `SELECT symbol, name FROM companies ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	return companies, nil
}

// AddCompany inserts a company or renames an existing one
func (s *Store) AddCompany(ctx context.Context, c Company) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := s.db.Rebind(`
		INSERT INTO companies (symbol, name) VALUES (?, ?)
		ON CONFLICT (symbol) DO UPDATE SET name = excluded.name
	`)
	if _, err := s.db.ExecContext(ctx, query, c.Symbol, c.Name); err != nil {
		return fmt.Errorf("save company %s: %w", c.Symbol, err)
	}
	return nil
}

// SaveBars appends bars for one symbol inside a single transaction.
// Nothing is written unless every row inserts.
func (s *Store) SaveBars(ctx context.Context, symbol string, bars []Bar) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertBar))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			b.Date,
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.AdjClose,
			b.Volume,
			symbol,
		); err != nil {
			return 0, fmt.Errorf("insert %s %s: %w", symbol, b.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", symbol, err)
	}

	log.Printf("Saved %d bars for %s", len(bars), symbol)
	return len(bars), nil
}

// ListSymbols returns the distinct symbols that have price rows
func (s *Store) ListSymbols(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var symbols []string
	if err := s.db.SelectContext(ctx, &symbols, `SELECT DISTINCT symbol FROM stockprices ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	return symbols, nil
}

// PriceRange returns closes for symbol with start <= date <= end, oldest first
func (s *Store) PriceRange(ctx context.Context, symbol string, start, end database.Date) ([]ClosePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	query := s.db.Rebind(`
		SELECT date, close
		FROM stockprices
		WHERE date BETWEEN ? AND ?
		AND symbol = ?
		ORDER BY date
	`)

	var points []ClosePoint
	if err := s.db.SelectContext(ctx, &points, query, start, end, symbol); err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	return points, nil
}

// Summaries returns row counts and date coverage per symbol
func (s *Store) Summaries(ctx context.Context) ([]SymbolSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var out []SymbolSummary
	err := s.db.SelectContext(ctx, &out, `
		SELECT symbol, COUNT(*) AS row_count, MIN(date) AS first_date, MAX(date) AS last_date
		FROM stockprices
		GROUP BY symbol
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	return out, nil
}

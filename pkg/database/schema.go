package database

import (
	"context"
	"fmt"
	"log"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		symbol TEXT PRIMARY KEY,
		name   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS stockprices (
		id        BIGSERIAL PRIMARY KEY,
		date      DATE NOT NULL,
		open      NUMERIC(20,6),
		high      NUMERIC(20,6),
		low       NUMERIC(20,6),
		close     NUMERIC(20,6),
		adj_close NUMERIC(20,6),
		volume    BIGINT,
		symbol    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stockprices_symbol_date ON stockprices(symbol, date)`,
	`CREATE TABLE IF NOT EXISTS newscrawl (
		id            BIGSERIAL PRIMARY KEY,
		news_date     DATE NOT NULL,
		news_polarity TEXT,
		news_content  TEXT,
		news_link     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_newscrawl_date ON newscrawl(news_date)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		symbol TEXT PRIMARY KEY,
		name   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS stockprices (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		date      DATE NOT NULL,
		open      REAL,
		high      REAL,
		low       REAL,
		close     REAL,
		adj_close REAL,
		volume    INTEGER,
		symbol    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stockprices_symbol_date ON stockprices(symbol, date)`,
	`CREATE TABLE IF NOT EXISTS newscrawl (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		news_date     DATE NOT NULL,
		news_polarity TEXT,
		news_content  TEXT,
		news_link     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_newscrawl_date ON newscrawl(news_date)`,
}

// Migrate creates the companies, stockprices and newscrawl tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	stmts := postgresSchema
	if db.IsSQLite() {
		stmts = sqliteSchema
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	log.Printf("Schema ready (%s)", db.DriverName())
	return nil
}

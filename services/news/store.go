// Package news provides storage for crawled news articles and the symbol
// matching used to relate them to a stock.
package news

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stocklens/pkg/database"
)

// Polarity labels written by the crawler
const (
	Positive = "Positive"
	Negative = "Negative"
)

// Article is one row of the newscrawl table
type Article struct {
	Date     database.Date `db:"news_date"`
	Polarity string        `db:"news_polarity"`
	Content  string        `db:"news_content"`
	Link     string        `db:"news_link"`
}

// Store handles news persistence
type Store struct {
	db *database.DB
}

// NewStore creates a new news store
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// BaseSymbol strips the first matching exchange suffix, e.g. "BBCA.JK" -> "BBCA"
func BaseSymbol(symbol string, suffixes []string) string {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(symbol, suffix) {
			return strings.TrimSuffix(symbol, suffix)
		}
	}
	return symbol
}

// Range returns articles dated start..end (inclusive) whose content contains
// base. The match is case sensitive on both drivers.
func (s *Store) Range(ctx context.Context, base string, start, end database.Date) ([]Article, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// SQLite's LIKE ignores ASCII case, so use the substring position functions instead
	contains := "strpos(news_content, ?) > 0"
	if s.db.IsSQLite() {
		contains = "instr(news_content, ?) > 0"
	}

	query := s.db.Rebind(`
		SELECT news_date, news_polarity, news_content, news_link
		FROM newscrawl
		WHERE news_date BETWEEN ? AND ?
		AND ` + contains + `
		ORDER BY news_date, id
	`)

	var articles []Article
	if err := s.db.SelectContext(ctx, &articles, query, start, end, base); err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	return articles, nil
}

// Add stores one article
func (s *Store) Add(ctx context.Context, a Article) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := s.db.Rebind(`
		INSERT INTO newscrawl (news_date, news_polarity, news_content, news_link)
		VALUES (?, ?, ?, ?)
	`)

	if _, err := s.db.ExecContext(ctx, query, a.Date, a.Polarity, a.Content, a.Link); err != nil {
		log.Printf("Error saving article from %s: %v", a.Date, err)
		return fmt.Errorf("save article: %w", err)
	}
	return nil
}

// AddMultiple stores articles one by one and keeps going past failures
func (s *Store) AddMultiple(ctx context.Context, articles []Article) (int, []error) {
	saved := 0
	var errors []error

	for i, a := range articles {
		if err := s.Add(ctx, a); err != nil {
			errors = append(errors, fmt.Errorf("article %d: %w", i+1, err))
		} else {
			saved++
		}
	}

	return saved, errors
}

// Count returns the number of stored articles
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.db.Count(ctx, "newscrawl")
}

// NormalizePolarity maps free-form labels onto Positive/Negative.
// Unknown labels are returned trimmed and unchanged.
func NormalizePolarity(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos", "+", "bullish":
		return Positive
	case "negative", "neg", "-", "bearish":
		return Negative
	default:
		return strings.TrimSpace(label)
	}
}

package news

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stocklens/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(database.DefaultConfig(database.DriverSQLite, ":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return NewStore(db)
}

func day(t *testing.T, s string) database.Date {
	t.Helper()
	d, err := database.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNewStore(t *testing.T) {
	// NewStore should work with nil db (for testing struct creation)
	store := NewStore(nil)
	if store == nil {
		t.Error("NewStore returned nil")
	}
}

func TestBaseSymbol(t *testing.T) {
	tests := []struct {
		symbol   string
		suffixes []string
		want     string
	}{
		{symbol: "BBCA.JK", suffixes: []string{".JK"}, want: "BBCA"},
		{symbol: "TLKM", suffixes: []string{".JK"}, want: "TLKM"},
		{symbol: "RELIANCE.NS", suffixes: []string{".JK", ".NS"}, want: "RELIANCE"},
		{symbol: "AB.JKX", suffixes: []string{".JK"}, want: "AB.JKX"},
		{symbol: "BBCA.JK", suffixes: nil, want: "BBCA.JK"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := BaseSymbol(tt.symbol, tt.suffixes); got != tt.want {
				t.Errorf("BaseSymbol(%q) = %q, want %q", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestStore_Range(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	saved, errs := store.AddMultiple(ctx, []Article{
		{Date: day(t, "2024-01-02"), Polarity: Positive, Content: "BBCA posts record profit", Link: "https://example.com/1"},
		{Date: day(t, "2024-01-03"), Polarity: Negative, Content: "TLKM outage hits users", Link: "https://example.com/2"},
		{Date: day(t, "2024-01-04"), Polarity: Negative, Content: "Analysts cut bbca target", Link: "https://example.com/3"},
		{Date: day(t, "2024-01-05"), Polarity: Negative, Content: "BBCA and BMRI lead losses", Link: "https://example.com/4"},
		{Date: day(t, "2024-02-01"), Polarity: Positive, Content: "BBCA dividend announced", Link: "https://example.com/5"},
	})
	require.Empty(t, errs)
	require.Equal(t, 5, saved)

	articles, err := store.Range(ctx, BaseSymbol("BBCA.JK", []string{".JK"}), day(t, "2024-01-01"), day(t, "2024-01-05"))
	require.NoError(t, err)

	// Non-matching content, lower-case mentions and out-of-range dates are excluded
	require.Len(t, articles, 2)
	require.Equal(t, "https://example.com/1", articles[0].Link)
	require.Equal(t, "2024-01-02", articles[0].Date.String())
	require.Equal(t, Positive, articles[0].Polarity)
	require.Equal(t, "https://example.com/4", articles[1].Link)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestStore_RangeWithFullSymbolMissesStrippedMentions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Add(ctx, Article{Date: day(t, "2024-01-02"), Polarity: Positive, Content: "BBCA rallies", Link: "l"}))

	articles, err := store.Range(ctx, "BBCA.JK", day(t, "2024-01-01"), day(t, "2024-01-03"))
	require.NoError(t, err)
	require.Empty(t, articles)
}

func TestNormalizePolarity(t *testing.T) {
	tests := map[string]string{
		"positive":  Positive,
		" Positive": Positive,
		"NEG":       Negative,
		"bearish":   Negative,
		"Neutral":   "Neutral",
	}
	for in, want := range tests {
		if got := NormalizePolarity(in); got != want {
			t.Errorf("NormalizePolarity(%q) = %q, want %q", in, got, want)
		}
	}
}

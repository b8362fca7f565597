// Package chart correlates news with a daily price series and rasterizes the
// result onto a character grid for the terminal viewer.
package chart

import "time"

// PricePoint is one trading day
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries is ordered by ascending date, one point per trading day
type PriceSeries []PricePoint

// NewsItem is one article matched to the current symbol
type NewsItem struct {
	Date     time.Time
	Polarity string
	Content  string
	Link     string
}

// NewsSeries is ordered by ascending date
type NewsSeries []NewsItem

// Nearest returns the index of the point closest in time to t. Ties resolve to
// the first (earliest) point. ok is false for an empty series.
func Nearest(s PriceSeries, t time.Time) (idx int, ok bool) {
	if len(s) == 0 {
		return 0, false
	}

	best := absDuration(s[0].Date.Sub(t))
	for i := 1; i < len(s) && best > 0; i++ {
		if d := absDuration(s[i].Date.Sub(t)); d < best {
			idx, best = i, d
		}
	}
	return idx, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

package viewer

import (
	"context"

	"stocklens/pkg/database"
	"stocklens/services/chart"
	"stocklens/services/market"
	"stocklens/services/news"
)

// DBSource reads the viewer's data from the price and news tables
type DBSource struct {
	prices *market.Store
	news   *news.Store
}

// NewDBSource creates a source over one database
func NewDBSource(db *database.DB) *DBSource {
	return &DBSource{
		prices: market.NewStore(db),
		news:   news.NewStore(db),
	}
}

// Symbols returns every symbol with stored prices
func (s *DBSource) Symbols(ctx context.Context) ([]string, error) {
	return s.prices.ListSymbols(ctx)
}

// Prices returns the close series for symbol within start..end
func (s *DBSource) Prices(ctx context.Context, symbol string, start, end database.Date) (chart.PriceSeries, error) {
	points, err := s.prices.PriceRange(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	series := make(chart.PriceSeries, len(points))
	for i, p := range points {
		series[i] = chart.PricePoint{Date: p.Date.Time, Close: p.Close.InexactFloat64()}
	}
	return series, nil
}

// News returns articles mentioning base within start..end
func (s *DBSource) News(ctx context.Context, base string, start, end database.Date) (chart.NewsSeries, error) {
	articles, err := s.news.Range(ctx, base, start, end)
	if err != nil {
		return nil, err
	}

	items := make(chart.NewsSeries, len(articles))
	for i, a := range articles {
		items[i] = chart.NewsItem{
			Date:     a.Date.Time,
			Polarity: a.Polarity,
			Content:  a.Content,
			Link:     a.Link,
		}
	}
	return items, nil
}

package viewer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"stocklens/pkg/database"
	"stocklens/services/chart"
	"stocklens/services/market"
	"stocklens/services/news"
)

type fakeSource struct {
	symbols   []string
	prices    map[string]chart.PriceSeries
	news      chart.NewsSeries
	err       error
	newsBases []string
}

func (f *fakeSource) Symbols(ctx context.Context) ([]string, error) {
	return f.symbols, f.err
}

func (f *fakeSource) Prices(ctx context.Context, symbol string, start, end database.Date) (chart.PriceSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out chart.PriceSeries
	for _, p := range f.prices[symbol] {
		if !p.Date.Before(start.Time) && !p.Date.After(end.Time) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) News(ctx context.Context, base string, start, end database.Date) (chart.NewsSeries, error) {
	f.newsBases = append(f.newsBases, base)
	return f.news, nil
}

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) Open(url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

func day(t *testing.T, s string) database.Date {
	t.Helper()
	d, err := database.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newFakeSource(t *testing.T) *fakeSource {
	return &fakeSource{
		symbols: []string{"BBCA.JK", "TLKM.JK"},
		prices: map[string]chart.PriceSeries{
			"BBCA.JK": {
				{Date: day(t, "2024-01-01").Time, Close: 100},
				{Date: day(t, "2024-01-03").Time, Close: 110},
				{Date: day(t, "2024-01-04").Time, Close: 105},
			},
		},
		news: chart.NewsSeries{
			{Date: day(t, "2024-01-02").Time, Polarity: "Positive", Content: "BBCA beats estimates", Link: "https://example.com/a"},
			{Date: day(t, "2024-01-04").Time, Polarity: "Negative", Content: "BBCA downgraded", Link: ""},
		},
	}
}

func TestController_Reload(t *testing.T) {
	src := newFakeSource(t)
	c := NewController(src, &fakeOpener{}, []string{".JK"})
	require.Equal(t, StateIdle, c.State())
	require.Empty(t, c.Title())

	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-07")}
	require.NoError(t, c.Reload(context.Background(), q))

	require.Equal(t, StateRendered, c.State())
	require.Equal(t, []string{"BBCA"}, src.newsBases)
	require.Equal(t, "BBCA Close Price from 2024-01-01 to 2024-01-07", c.Title())
	require.Len(t, c.Prices(), 3)
	require.Equal(t, 2, c.Markers().Len())

	m, ok := c.Markers().Marker(1)
	require.True(t, ok)
	require.True(t, m.Date.Equal(day(t, "2024-01-01").Time), "tie should anchor to the earlier date")
}

func TestController_ReloadEmpty(t *testing.T) {
	src := newFakeSource(t)
	c := NewController(src, &fakeOpener{}, []string{".JK"})

	q := Query{Symbol: "TLKM.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-07")}
	require.NoError(t, c.Reload(context.Background(), q))

	require.Equal(t, StateEmpty, c.State())
	require.Empty(t, c.Title())
	require.Equal(t, 0, c.Markers().Len())
	require.Empty(t, c.News(), "articles without a price line are not listed")
}

func TestController_InvertedRangeIsEmpty(t *testing.T) {
	c := NewController(newFakeSource(t), nil, []string{".JK"})

	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-07"), End: day(t, "2024-01-01")}
	require.NoError(t, c.Reload(context.Background(), q))
	require.Equal(t, StateEmpty, c.State())
}

func TestController_FailKeepsSeries(t *testing.T) {
	src := newFakeSource(t)
	c := NewController(src, &fakeOpener{}, []string{".JK"})

	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-07")}
	require.NoError(t, c.Reload(context.Background(), q))
	title := c.Title()

	src.err = errors.New("connection refused")
	err := c.Reload(context.Background(), Query{Symbol: "TLKM.JK", Start: q.Start, End: q.End})
	require.Error(t, err)
	require.Contains(t, err.Error(), "load prices for TLKM.JK")

	require.Equal(t, StateFailed, c.State())
	require.ErrorIs(t, c.Err(), src.err)
	require.Len(t, c.Prices(), 3)
	require.Equal(t, title, c.Title())
}

func TestController_FailWithOtherRangeKeepsTitle(t *testing.T) {
	src := newFakeSource(t)
	c := NewController(src, &fakeOpener{}, []string{".JK"})

	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-07")}
	require.NoError(t, c.Reload(context.Background(), q))
	require.Equal(t, "BBCA Close Price from 2024-01-01 to 2024-01-07", c.Title())

	next := Query{Symbol: "TLKM.JK", Start: day(t, "2023-06-01"), End: day(t, "2023-06-30")}
	c.Begin(next)
	require.Equal(t, StateLoading, c.State())
	require.Equal(t, q, c.Query())
	require.Equal(t, next, c.Pending())
	require.Equal(t, "BBCA Close Price from 2024-01-01 to 2024-01-07", c.Title(), "in-flight load must not change the title")

	src.err = errors.New("connection refused")
	require.Error(t, c.Reload(context.Background(), next))

	require.Equal(t, StateFailed, c.State())
	require.Equal(t, q, c.Query())
	require.Equal(t, "BBCA Close Price from 2024-01-01 to 2024-01-07", c.Title())
	require.Len(t, c.Prices(), 3)
	require.True(t, c.Prices()[0].Date.Equal(q.Start.Time))
}

func TestController_Hover(t *testing.T) {
	c := NewController(newFakeSource(t), nil, []string{".JK"})
	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-07")}
	require.NoError(t, c.Reload(context.Background(), q))

	c.Hover(day(t, "2024-01-03").Time.Add(3 * time.Hour))
	require.True(t, c.Annotation().Visible)
	require.Equal(t, "Date: 2024-01-03\nClose: 110.00", c.Annotation().Text)

	// 2024-01-02 is exactly one day from both neighbours
	c.Hover(day(t, "2024-01-02").Time)
	require.False(t, c.Annotation().Visible)

	c.Hover(day(t, "2024-01-04").Time)
	require.True(t, c.Annotation().Visible)
	c.HoverOutside()
	require.False(t, c.Annotation().Visible)
}

func TestController_PickAndOpen(t *testing.T) {
	opener := &fakeOpener{}
	c := NewController(newFakeSource(t), opener, []string{".JK"})
	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-07")}
	require.NoError(t, c.Reload(context.Background(), q))

	require.ErrorIs(t, c.OpenLink(), ErrNoSelection)

	require.True(t, c.Pick(1))
	id, p, ok := c.Selection()
	require.True(t, ok)
	require.Equal(t, chart.MarkerID(1), id)
	require.Equal(t, "BBCA beats estimates", p.Content)

	item, ok := c.Article(id)
	require.True(t, ok)
	require.Equal(t, "Positive", item.Polarity)

	require.NoError(t, c.OpenLink())
	require.Equal(t, []string{"https://example.com/a"}, opener.opened)

	// a marker without a link cannot be opened
	require.True(t, c.Pick(2))
	require.Error(t, c.OpenLink())
	require.Len(t, opener.opened, 1)

	// anything that is not a marker clears the panel
	require.False(t, c.Pick(0))
	_, _, ok = c.Selection()
	require.False(t, ok)

	require.True(t, c.Pick(1))
	require.NoError(t, c.Reload(context.Background(), q))
	_, _, ok = c.Selection()
	require.False(t, ok, "reload should clear the selection")
}

func TestController_OpenLinkError(t *testing.T) {
	opener := &fakeOpener{err: errors.New("no browser")}
	c := NewController(newFakeSource(t), opener, []string{".JK"})
	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-07")}
	require.NoError(t, c.Reload(context.Background(), q))

	require.True(t, c.Pick(1))
	err := c.OpenLink()
	require.ErrorIs(t, err, opener.err)
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:     "idle",
		StateLoading:  "loading",
		StateRendered: "rendered",
		StateEmpty:    "empty",
		StateFailed:   "failed",
		State(42):     "State(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func seedDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(database.DefaultConfig(database.DriverSQLite, ":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	bars := []market.Bar{}
	for i, px := range []float64{100, 110, 105} {
		bars = append(bars, market.Bar{
			Date:     day(t, []string{"2024-01-01", "2024-01-03", "2024-01-04"}[i]),
			Open:     decimal.NewFromFloat(px),
			High:     decimal.NewFromFloat(px),
			Low:      decimal.NewFromFloat(px),
			Close:    decimal.NewFromFloat(px),
			AdjClose: decimal.NewFromFloat(px),
			Volume:   10,
		})
	}
	_, err = market.NewStore(db).SaveBars(ctx, "BBCA.JK", bars)
	require.NoError(t, err)

	_, errs := news.NewStore(db).AddMultiple(ctx, []news.Article{
		{Date: day(t, "2024-01-02"), Polarity: news.Positive, Content: "BBCA beats estimates", Link: "https://example.com/a"},
		{Date: day(t, "2024-01-02"), Polarity: news.Negative, Content: "bbca lower case", Link: "https://example.com/b"},
		{Date: day(t, "2024-01-04"), Polarity: news.Negative, Content: "TLKM only", Link: "https://example.com/c"},
	})
	require.Empty(t, errs)
	return db
}

func TestDBSource_ReloadIsIdempotent(t *testing.T) {
	db := seedDB(t)
	c := NewController(NewDBSource(db), nil, []string{".JK"})
	q := Query{Symbol: "BBCA.JK", Start: day(t, "2024-01-01"), End: day(t, "2024-01-31")}

	require.NoError(t, c.Reload(context.Background(), q))
	prices, items := c.Prices(), c.News()

	require.NoError(t, c.Reload(context.Background(), q))
	if diff := cmp.Diff(prices, c.Prices()); diff != "" {
		t.Errorf("prices changed between reloads (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(items, c.News()); diff != "" {
		t.Errorf("news changed between reloads (-first +second):\n%s", diff)
	}

	require.Len(t, prices, 3)
	require.InDelta(t, 110, prices[1].Close, 1e-9)
	require.Len(t, items, 1)
	require.Equal(t, "BBCA beats estimates", items[0].Content)
}

func TestDBSource_Symbols(t *testing.T) {
	src := NewDBSource(seedDB(t))
	symbols, err := src.Symbols(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"BBCA.JK"}, symbols)
}

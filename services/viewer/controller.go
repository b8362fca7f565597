// Package viewer holds the interactive chart: a controller that owns the
// loaded series and selection, a database-backed data source, and the Bubble
// Tea model that turns keys and mouse events into controller calls.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pkg/browser"

	"stocklens/pkg/database"
	"stocklens/services/chart"
	"stocklens/services/news"
)

// State of the most recent load
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateEmpty
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNoSelection is returned by OpenLink when no marker is picked
var ErrNoSelection = errors.New("no article selected")

// Query identifies one load. Both series always come from the same query.
type Query struct {
	Symbol string
	Start  database.Date
	End    database.Date
}

// Source supplies the viewer's data
type Source interface {
	Symbols(ctx context.Context) ([]string, error)
	Prices(ctx context.Context, symbol string, start, end database.Date) (chart.PriceSeries, error)
	News(ctx context.Context, base string, start, end database.Date) (chart.NewsSeries, error)
}

// Result is the outcome of a completed fetch
type Result struct {
	Query  Query
	Base   string
	Prices chart.PriceSeries
	News   chart.NewsSeries
}

// LinkOpener hands a URL to something outside the viewer
type LinkOpener interface {
	Open(url string) error
}

// BrowserOpener opens links in the system's default browser
type BrowserOpener struct{}

// Open launches the browser
func (BrowserOpener) Open(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// Controller owns everything the viewer displays. It is not safe for
// concurrent use; the Bubble Tea model calls it from Update only.
type Controller struct {
	source   Source
	opener   LinkOpener
	suffixes []string

	state      State
	query      Query
	pending    Query
	base       string
	prices     chart.PriceSeries
	news       chart.NewsSeries
	markers    *chart.MarkerSet
	annotation chart.Annotation
	selected   chart.MarkerID
	err        error
}

// NewController creates a controller. A nil opener falls back to BrowserOpener.
func NewController(source Source, opener LinkOpener, suffixes []string) *Controller {
	if opener == nil {
		opener = BrowserOpener{}
	}
	return &Controller{
		source:   source,
		opener:   opener,
		suffixes: suffixes,
		markers:  chart.Correlate(nil, nil),
	}
}

// Begin marks q as in flight. The current series and their query stay until Apply.
func (c *Controller) Begin(q Query) {
	c.state = StateLoading
	c.err = nil
	c.pending = q
}

// Fetch runs both queries for q. It only reads configuration, so it may run
// off the event loop.
func (c *Controller) Fetch(ctx context.Context, q Query) (*Result, error) {
	prices, err := c.source.Prices(ctx, q.Symbol, q.Start, q.End)
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", q.Symbol, err)
	}

	base := news.BaseSymbol(q.Symbol, c.suffixes)
	items, err := c.source.News(ctx, base, q.Start, q.End)
	if err != nil {
		return nil, fmt.Errorf("load news for %s: %w", base, err)
	}

	return &Result{Query: q, Base: base, Prices: prices, News: items}, nil
}

// Apply replaces the loaded series with r in one step
func (c *Controller) Apply(r *Result) {
	c.query = r.Query
	c.pending = r.Query
	c.base = r.Base
	c.prices = r.Prices
	c.news = r.News
	c.annotation.Hide()
	c.selected = 0
	c.err = nil

	if len(r.Prices) == 0 {
		log.Printf("No price data available for the selected date range and symbol.")
		// nothing to anchor articles to
		c.news = nil
		c.markers = chart.Correlate(nil, nil)
		c.state = StateEmpty
		return
	}
	c.markers = chart.Correlate(r.Prices, r.News)
	c.state = StateRendered
}

// Fail records a failed load. The previous series and query are kept.
func (c *Controller) Fail(err error) {
	c.state = StateFailed
	c.err = err
}

// Reload runs a full load synchronously
func (c *Controller) Reload(ctx context.Context, q Query) error {
	c.Begin(q)
	r, err := c.Fetch(ctx, q)
	if err != nil {
		c.Fail(err)
		return err
	}
	c.Apply(r)
	return nil
}

// Symbols lists the symbols the user can pick from
func (c *Controller) Symbols(ctx context.Context) ([]string, error) {
	symbols, err := c.source.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	return symbols, nil
}

// Hover moves the annotation to the price nearest to t
func (c *Controller) Hover(t time.Time) {
	c.annotation.Update(c.prices, t)
}

// HoverOutside hides the annotation
func (c *Controller) HoverOutside() {
	c.annotation.Hide()
}

// Pick selects the marker's article. Anything that is not a marker clears
// the selection.
func (c *Controller) Pick(id chart.MarkerID) bool {
	if _, ok := c.markers.Payload(id); !ok {
		c.ClearSelection()
		return false
	}
	c.selected = id
	return true
}

// ClearSelection empties the article panel
func (c *Controller) ClearSelection() {
	c.selected = 0
}

// Selection returns the picked article
func (c *Controller) Selection() (chart.MarkerID, chart.Payload, bool) {
	if c.selected == 0 {
		return 0, chart.Payload{}, false
	}
	p, ok := c.markers.Payload(c.selected)
	return c.selected, p, ok
}

// Article returns the news row behind marker id
func (c *Controller) Article(id chart.MarkerID) (chart.NewsItem, bool) {
	if id < 1 || int(id) > len(c.news) || c.markers.Len() == 0 {
		return chart.NewsItem{}, false
	}
	return c.news[id-1], true
}

// OpenLink passes the selected article's link to the opener
func (c *Controller) OpenLink() error {
	_, p, ok := c.Selection()
	if !ok {
		return ErrNoSelection
	}
	if p.Link == "" {
		return errors.New("selected article has no link")
	}
	if err := c.opener.Open(p.Link); err != nil {
		return fmt.Errorf("open link: %w", err)
	}
	return nil
}

// Title is the chart heading. It is empty while there is no price line; a
// failed reload keeps the previous one.
func (c *Controller) Title() string {
	if len(c.prices) == 0 {
		return ""
	}
	return fmt.Sprintf("%s Close Price from %s to %s", c.base, c.query.Start, c.query.End)
}

func (c *Controller) State() State { return c.state }
func (c *Controller) Query() Query { return c.query }
func (c *Controller) Pending() Query { return c.pending }
func (c *Controller) Prices() chart.PriceSeries { return c.prices }
func (c *Controller) News() chart.NewsSeries { return c.news }
func (c *Controller) Markers() *chart.MarkerSet { return c.markers }
func (c *Controller) Annotation() *chart.Annotation { return &c.annotation }
func (c *Controller) Err() error { return c.err }

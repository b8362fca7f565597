package chart

import (
	"fmt"
	"time"
)

// HoverThreshold is the largest distance at which the hover annotation shows
const HoverThreshold = 86400 * time.Second

// Annotation is the hover label. The viewer keeps a single one and updates it in place.
type Annotation struct {
	Visible  bool
	Date     time.Time
	Close    float64
	Distance time.Duration
	Text     string
}

// Update points the annotation at the price nearest to cursor. It is shown
// only when that price is less than HoverThreshold away.
func (a *Annotation) Update(s PriceSeries, cursor time.Time) {
	idx, ok := Nearest(s, cursor)
	if !ok {
		a.Hide()
		return
	}

	p := s[idx]
	a.Distance = absDuration(p.Date.Sub(cursor))
	if a.Distance >= HoverThreshold {
		a.Visible = false
		return
	}

	a.Visible = true
	a.Date = p.Date
	a.Close = p.Close
	a.Text = fmt.Sprintf("Date: %s\nClose: %.2f", p.Date.Format("2006-01-02"), p.Close)
}

// Hide makes the annotation invisible without moving it
func (a *Annotation) Hide() {
	a.Visible = false
}

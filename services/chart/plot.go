package chart

import (
	"math"
	"time"
)

// Plot maps between data space (date, price) and grid cells. Column 0 is the
// first trading day, row 0 is the top of the plot.
type Plot struct {
	Width  int
	Height int

	start time.Time
	span  time.Duration
	min   float64
	max   float64
}

// NewPlot fits a plot to s. It returns nil for an empty series.
func NewPlot(s PriceSeries, width, height int) *Plot {
	if len(s) == 0 {
		return nil
	}
	if width < 2 {
		width = 2
	}
	if height < 2 {
		height = 2
	}

	lo, hi := s[0].Close, s[0].Close
	for _, p := range s[1:] {
		lo = math.Min(lo, p.Close)
		hi = math.Max(hi, p.Close)
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	} else {
		pad := (hi - lo) * 0.05
		lo, hi = lo-pad, hi+pad
	}

	return &Plot{
		Width:  width,
		Height: height,
		start:  s[0].Date,
		span:   s[len(s)-1].Date.Sub(s[0].Date),
		min:    lo,
		max:    hi,
	}
}

// Column returns the grid column for t, clamped to the plot
func (p *Plot) Column(t time.Time) int {
	if p.span <= 0 {
		return p.Width / 2
	}
	frac := float64(t.Sub(p.start)) / float64(p.span)
	return clamp(int(math.Round(frac*float64(p.Width-1))), 0, p.Width-1)
}

// TimeAt converts a grid column back to a point in time
func (p *Plot) TimeAt(col int) time.Time {
	if p.span <= 0 {
		return p.start
	}
	frac := float64(col) / float64(p.Width-1)
	return p.start.Add(time.Duration(frac * float64(p.span)))
}

// Row returns the grid row for price v, clamped to the plot
func (p *Plot) Row(v float64) int {
	frac := (v - p.min) / (p.max - p.min)
	return clamp(p.Height-1-int(math.Round(frac*float64(p.Height-1))), 0, p.Height-1)
}

// ValueAt converts a grid row back to a price
func (p *Plot) ValueAt(row int) float64 {
	frac := float64(p.Height-1-row) / float64(p.Height-1)
	return p.min + frac*(p.max-p.min)
}

// Start and End bound the x axis
func (p *Plot) Start() time.Time { return p.start }
func (p *Plot) End() time.Time   { return p.start.Add(p.span) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

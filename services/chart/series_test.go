package chart

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func series(points ...any) PriceSeries {
	var s PriceSeries
	for i := 0; i < len(points); i += 2 {
		s = append(s, PricePoint{Date: date(points[i].(string)), Close: points[i+1].(float64)})
	}
	return s
}

func TestNearest(t *testing.T) {
	s := series("2024-01-01", 100.0, "2024-01-03", 110.0, "2024-01-08", 120.0)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{name: "exact first", at: date("2024-01-01"), want: 0},
		{name: "exact middle", at: date("2024-01-03"), want: 1},
		{name: "tie resolves to earliest", at: date("2024-01-02"), want: 0},
		{name: "closer to later", at: date("2024-01-06"), want: 2},
		{name: "before range", at: date("2023-12-20"), want: 0},
		{name: "after range", at: date("2024-02-01"), want: 2},
		{name: "intraday", at: date("2024-01-03").Add(20 * time.Hour), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nearest(s, tt.at)
			if !ok {
				t.Fatal("Nearest() ok = false on non-empty series")
			}
			if got != tt.want {
				t.Errorf("Nearest(%s) = %d, want %d", tt.at.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestNearest_Empty(t *testing.T) {
	if _, ok := Nearest(nil, date("2024-01-01")); ok {
		t.Error("Nearest() on empty series should report ok = false")
	}
}

func TestNearest_Tie(t *testing.T) {
	// News on the 2nd is exactly one day from both neighbours
	s := series("2024-01-01", 100.0, "2024-01-03", 110.0)

	idx, ok := Nearest(s, date("2024-01-02"))
	if !ok || !s[idx].Date.Equal(date("2024-01-01")) {
		t.Errorf("tie anchored to %v, want 2024-01-01", s[idx].Date)
	}
}

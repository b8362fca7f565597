package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCorrelate(t *testing.T) {
	prices := series("2024-01-01", 100.0, "2024-01-03", 110.0, "2024-01-04", 105.0)
	news := NewsSeries{
		{Date: date("2024-01-02"), Polarity: "Positive", Content: "BBCA beats estimates", Link: "https://a"},
		{Date: date("2024-01-04"), Polarity: "Negative", Content: "BBCA downgraded", Link: "https://b"},
		{Date: date("2024-01-09"), Polarity: "Neutral", Content: "BBCA holds AGM", Link: "https://c"},
	}

	set := Correlate(prices, news)

	want := []Marker{
		{ID: 1, Date: date("2024-01-01"), Close: 100, Polarity: "Positive"},
		{ID: 2, Date: date("2024-01-04"), Close: 105, Polarity: "Negative"},
		{ID: 3, Date: date("2024-01-04"), Close: 105, Polarity: "Neutral"},
	}
	if diff := cmp.Diff(want, set.Markers()); diff != "" {
		t.Errorf("Correlate() mismatch (-want +got):\n%s", diff)
	}

	dates := make(map[string]bool)
	for _, p := range prices {
		dates[p.Date.Format("2006-01-02")] = true
	}
	for _, m := range set.Markers() {
		require.True(t, dates[m.Date.Format("2006-01-02")], "anchor %v is not a price date", m.Date)
	}

	payload, ok := set.Payload(2)
	require.True(t, ok)
	require.Equal(t, Payload{Content: "BBCA downgraded", Link: "https://b"}, payload)
}

func TestCorrelate_EmptyPrices(t *testing.T) {
	news := NewsSeries{{Date: date("2024-01-02"), Polarity: "Positive", Content: "x"}}

	set := Correlate(nil, news)
	require.Equal(t, 0, set.Len())

	_, ok := set.Payload(1)
	require.False(t, ok)
}

func TestMarker_Positive(t *testing.T) {
	tests := []struct {
		polarity string
		want     bool
	}{
		{"Positive", true},
		{"Negative", false},
		{"positive", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := (Marker{Polarity: tt.polarity}).Positive(); got != tt.want {
			t.Errorf("Positive(%q) = %v, want %v", tt.polarity, got, tt.want)
		}
	}
}

func TestMarkerSet_NilSafe(t *testing.T) {
	var set *MarkerSet
	require.Equal(t, 0, set.Len())
	require.Nil(t, set.Markers())
	_, ok := set.Marker(1)
	require.False(t, ok)
}

func TestMarkerSet_Marker(t *testing.T) {
	set := Correlate(series("2024-01-01", 1.0), NewsSeries{{Date: date("2024-01-01")}})

	m, ok := set.Marker(1)
	require.True(t, ok)
	require.Equal(t, MarkerID(1), m.ID)

	_, ok = set.Marker(0)
	require.False(t, ok)
	_, ok = set.Marker(2)
	require.False(t, ok)
}

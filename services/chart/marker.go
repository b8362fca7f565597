package chart

import "time"

// PositivePolarity is the label drawn with the positive marker color
const PositivePolarity = "Positive"

// MarkerID identifies a marker within one MarkerSet. Zero means no marker.
type MarkerID int

// Marker is a news event anchored to a point of the price line
type Marker struct {
	ID       MarkerID
	Date     time.Time
	Close    float64
	Polarity string
}

// Positive reports whether the marker uses the positive color
func (m Marker) Positive() bool {
	return m.Polarity == PositivePolarity
}

// Payload is the article attached to a marker
type Payload struct {
	Content string
	Link    string
}

// MarkerSet holds markers in draw order and their payloads by id
type MarkerSet struct {
	markers  []Marker
	payloads map[MarkerID]Payload
}

// Correlate anchors each news item to the nearest price date. An empty price
// series yields an empty set.
func Correlate(prices PriceSeries, items NewsSeries) *MarkerSet {
	set := &MarkerSet{payloads: make(map[MarkerID]Payload)}
	if len(prices) == 0 {
		return set
	}

	set.markers = make([]Marker, 0, len(items))
	for i, item := range items {
		idx, _ := Nearest(prices, item.Date)
		id := MarkerID(i + 1)
		set.markers = append(set.markers, Marker{
			ID:       id,
			Date:     prices[idx].Date,
			Close:    prices[idx].Close,
			Polarity: item.Polarity,
		})
		set.payloads[id] = Payload{Content: item.Content, Link: item.Link}
	}
	return set
}

// Markers returns the markers in draw order
func (s *MarkerSet) Markers() []Marker {
	if s == nil {
		return nil
	}
	return s.markers
}

// Len returns the number of markers
func (s *MarkerSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.markers)
}

// Payload looks up the article attached to id
func (s *MarkerSet) Payload(id MarkerID) (Payload, bool) {
	if s == nil {
		return Payload{}, false
	}
	p, ok := s.payloads[id]
	return p, ok
}

// Marker looks up a marker by id
func (s *MarkerSet) Marker(id MarkerID) (Marker, bool) {
	if s == nil || id < 1 || int(id) > len(s.markers) {
		return Marker{}, false
	}
	return s.markers[id-1], true
}

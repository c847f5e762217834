package model

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SeriesSummary is one match of a catalog search
type SeriesSummary struct {
	ID          string
	Title       string
	Frequency   string
	Units       string
	LastUpdated string
	Popularity  int
}

// SeriesMetadata holds the descriptive fields of a series
type SeriesMetadata struct {
	ID               string
	Title            string
	Units            string
	Frequency        string
	LastUpdated      string
	ObservationStart string
	ObservationEnd   string
	Notes            string
}

// Observation is one (date, value) point of a series
type Observation struct {
	Date  string
	Value float64
}

// ObservationSet is the result of an observations fetch. Available is false
// when the response carried no observations field at all, which callers treat
// as "no data available" rather than a transport failure.
type ObservationSet struct {
	SeriesID     string
	Available    bool
	Observations []Observation
}

// HasData reports whether the set can be rendered as a chart
func (s *ObservationSet) HasData() bool {
	return s != nil && s.Available && len(s.Observations) > 0
}

// ParseObservationValue converts a raw observation value to a number. Values
// that do not parse (including the "." used for missing points) or that
// overflow a float64 become zero.
func ParseObservationValue(raw string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// FallbackSeriesTitle is the title used when a series has no metadata
func FallbackSeriesTitle(seriesID string) string {
	return "Series " + seriesID
}

// SeriesPreview is the combined observations and metadata of one series, as
// shown while choosing a replacement series
type SeriesPreview struct {
	SeriesID     string
	Title        string
	Metadata     *SeriesMetadata
	Available    bool
	Observations []Observation
}

// HasData reports whether the previewed series has observations to render
func (p *SeriesPreview) HasData() bool {
	return p != nil && p.Available && len(p.Observations) > 0
}

// Snapshot converts the preview into the replacement state of an edit
func (p *SeriesPreview) Snapshot() *SeriesSnapshot {
	return &SeriesSnapshot{
		SeriesID:     p.SeriesID,
		Title:        p.Title,
		Observations: p.Observations,
	}
}

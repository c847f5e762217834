package model

import "github.com/m-mizutani/goerr/v2"

// Dashboard errors
var (
	// ErrTransport is a network or HTTP failure reaching the remote data source
	ErrTransport = goerr.New("failed to reach series data source")

	// ErrNoDataAvailable is a successful response carrying no observations
	ErrNoDataAvailable = goerr.New("no data available for this series")

	// ErrInvalidSeriesID is a fetch for a series the catalog does not know
	ErrInvalidSeriesID = goerr.New("series not found")

	// ErrMalformedStoredState is a persisted chart list that does not parse
	ErrMalformedStoredState = goerr.New("malformed stored chart list")

	ErrChartNotFound = goerr.New("chart not found")
	ErrNoMatches     = goerr.New("no series found for the given search term")
	ErrNotEditing    = goerr.New("chart is not being edited")
)

// Context keys for error values
const (
	ChartIDKey   = "chart_id"
	SeriesIDKey  = "series_id"
	SessionIDKey = "session_id"
	TermKey      = "term"
)

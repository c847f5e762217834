package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	ErrSessionRequired  = goerr.New("session id is required")
	ErrSeriesIDRequired = goerr.New("series id is required")
)

package interfaces

import (
	"context"

	"github.com/secmon-lab/fredboard/pkg/domain/model"
)

// SeriesGateway is the only component allowed to talk to the remote economic
// data catalog. All operations are independent reads with no retry and no
// caching. Transport failures are reported as model.ErrTransport.
type SeriesGateway interface {
	// Search looks up series by free text. No match is an empty slice.
	Search(ctx context.Context, term string) ([]*model.SeriesSummary, error)

	// FetchObservations returns observations up to today
	FetchObservations(ctx context.Context, seriesID string) (*model.ObservationSet, error)

	// FetchMetadata returns nil without error when the series does not exist
	FetchMetadata(ctx context.Context, seriesID string) (*model.SeriesMetadata, error)
}

package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

// SeriesUseCase serves read-only series lookups on top of the gateway
type SeriesUseCase struct {
	gateway  interfaces.SeriesGateway
	metadata *metadataCache
}

type SeriesOption func(*SeriesUseCase)

// WithMetadataCache keeps fetched metadata for ttl. Observations are always
// fetched live.
func WithMetadataCache(ttl time.Duration, now func() time.Time) SeriesOption {
	return func(uc *SeriesUseCase) {
		if ttl > 0 {
			uc.metadata = newMetadataCache(ttl, now)
		}
	}
}

func NewSeriesUseCase(gateway interfaces.SeriesGateway, opts ...SeriesOption) *SeriesUseCase {
	uc := &SeriesUseCase{gateway: gateway}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *SeriesUseCase) cachedMetadata(seriesID string) (*model.SeriesMetadata, bool) {
	if uc.metadata == nil {
		return nil, false
	}
	return uc.metadata.get(seriesID)
}

// Search returns the catalog matches of term. A blank term matches nothing
// without calling the gateway.
func (uc *SeriesUseCase) Search(ctx context.Context, term string) ([]*model.SeriesSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	matches, err := uc.gateway.Search(ctx, term)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search series", goerr.V(model.TermKey, term))
	}
	return matches, nil
}

// Preview fetches observations and metadata of seriesID concurrently. The
// title falls back to "Series <id>" when the series has no metadata.
func (uc *SeriesUseCase) Preview(ctx context.Context, seriesID string) (*model.SeriesPreview, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return nil, goerr.Wrap(ErrSeriesIDRequired, "cannot preview series")
	}

	var set *model.ObservationSet
	meta, cached := uc.cachedMetadata(seriesID)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		set, err = uc.gateway.FetchObservations(egCtx, seriesID)
		return err
	})
	if !cached {
		eg.Go(func() error {
			var err error
			meta, err = uc.gateway.FetchMetadata(egCtx, seriesID)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to load series", goerr.V(model.SeriesIDKey, seriesID))
	}
	if !cached && uc.metadata != nil {
		uc.metadata.set(seriesID, meta)
	}

	preview := &model.SeriesPreview{
		SeriesID: seriesID,
		Title:    model.FallbackSeriesTitle(seriesID),
		Metadata: meta,
	}
	if meta != nil && meta.Title != "" {
		preview.Title = meta.Title
	}
	if set != nil {
		preview.Available = set.Available
		preview.Observations = set.Observations
	}

	return preview, nil
}

// Snapshot loads seriesID as the replacement source of a chart. The series
// must exist and have at least one observation.
func (uc *SeriesUseCase) Snapshot(ctx context.Context, seriesID string) (*model.SeriesSnapshot, error) {
	preview, err := uc.Preview(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if err := requireData(preview); err != nil {
		return nil, err
	}
	return preview.Snapshot(), nil
}

// requireData maps a preview without observations to the matching error. A
// series with neither metadata nor an observations field is unknown to the
// catalog.
func requireData(preview *model.SeriesPreview) error {
	if preview.HasData() {
		return nil
	}
	if preview.Metadata == nil && !preview.Available {
		return goerr.Wrap(model.ErrInvalidSeriesID, "series does not exist",
			goerr.V(model.SeriesIDKey, preview.SeriesID))
	}
	return goerr.Wrap(model.ErrNoDataAvailable, "series has no observations",
		goerr.V(model.SeriesIDKey, preview.SeriesID))
}

package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/repository/memory"
)

type mockGateway struct {
	searchFn            func(ctx context.Context, term string) ([]*model.SeriesSummary, error)
	fetchObservationsFn func(ctx context.Context, seriesID string) (*model.ObservationSet, error)
	fetchMetadataFn     func(ctx context.Context, seriesID string) (*model.SeriesMetadata, error)

	searchCalls      atomic.Int32
	observationCalls atomic.Int32
	metadataCalls    atomic.Int32
}

var _ interfaces.SeriesGateway = &mockGateway{}

func (m *mockGateway) Search(ctx context.Context, term string) ([]*model.SeriesSummary, error) {
	m.searchCalls.Add(1)
	if m.searchFn != nil {
		return m.searchFn(ctx, term)
	}
	return nil, nil
}

func (m *mockGateway) FetchObservations(ctx context.Context, seriesID string) (*model.ObservationSet, error) {
	m.observationCalls.Add(1)
	if m.fetchObservationsFn != nil {
		return m.fetchObservationsFn(ctx, seriesID)
	}
	return &model.ObservationSet{SeriesID: seriesID}, nil
}

func (m *mockGateway) FetchMetadata(ctx context.Context, seriesID string) (*model.SeriesMetadata, error) {
	m.metadataCalls.Add(1)
	if m.fetchMetadataFn != nil {
		return m.fetchMetadataFn(ctx, seriesID)
	}
	return nil, nil
}

var testSeries = map[string]struct {
	title        string
	observations []model.Observation
}{
	"GDPC1": {
		title: "Real GDP",
		observations: []model.Observation{
			{Date: "2023-10-01", Value: 22960.6},
			{Date: "2024-01-01", Value: 23053.5},
		},
	},
	"UNRATE": {
		title: "Unemployment Rate",
		observations: []model.Observation{
			{Date: "2024-05-01", Value: 4.0},
			{Date: "2024-06-01", Value: 4.1},
		},
	},
	"EMPTY": {
		title:        "Series Without Points",
		observations: []model.Observation{},
	},
}

// newCatalogGateway returns a gateway serving a small fixed catalog.
// Searching "GDP" matches GDPC1 only.
func newCatalogGateway() *mockGateway {
	return &mockGateway{
		searchFn: func(ctx context.Context, term string) ([]*model.SeriesSummary, error) {
			switch term {
			case "GDP":
				return []*model.SeriesSummary{{ID: "GDPC1", Title: "Real GDP"}}, nil
			case "unemployment":
				return []*model.SeriesSummary{
					{ID: "UNRATE", Title: "Unemployment Rate"},
					{ID: "GDPC1", Title: "Real GDP"},
				}, nil
			}
			return []*model.SeriesSummary{}, nil
		},
		fetchObservationsFn: func(ctx context.Context, seriesID string) (*model.ObservationSet, error) {
			s, ok := testSeries[seriesID]
			if !ok {
				return &model.ObservationSet{SeriesID: seriesID}, nil
			}
			obs := make([]model.Observation, len(s.observations))
			copy(obs, s.observations)
			return &model.ObservationSet{SeriesID: seriesID, Available: true, Observations: obs}, nil
		},
		fetchMetadataFn: func(ctx context.Context, seriesID string) (*model.SeriesMetadata, error) {
			s, ok := testSeries[seriesID]
			if !ok {
				return nil, nil
			}
			return &model.SeriesMetadata{ID: seriesID, Title: s.title, Units: "Percent", Frequency: "Monthly"}, nil
		},
	}
}

var errInjected = errors.New("injected failure")

// failingRepository wraps the memory repository and fails writes or reads
// when the corresponding flag is set. beforeDeleteIdle runs ahead of every
// idle sweep of the slots.
type failingRepository struct {
	*memory.Memory
	failPut          atomic.Bool
	failGet          atomic.Bool
	beforeDeleteIdle func()
}

func newFailingRepository(opts ...memory.Option) *failingRepository {
	return &failingRepository{Memory: memory.New(opts...)}
}

func (r *failingRepository) Session() interfaces.SessionRepository {
	return &failingSessionRepository{SessionRepository: r.Memory.Session(), parent: r}
}

type failingSessionRepository struct {
	interfaces.SessionRepository
	parent *failingRepository
}

func (r *failingSessionRepository) Get(ctx context.Context, sessionID string) ([]byte, error) {
	if r.parent.failGet.Load() {
		return nil, goerr.Wrap(errInjected, "get")
	}
	return r.SessionRepository.Get(ctx, sessionID)
}

func (r *failingSessionRepository) Put(ctx context.Context, sessionID string, blob []byte) error {
	if r.parent.failPut.Load() {
		return goerr.Wrap(errInjected, "put")
	}
	return r.SessionRepository.Put(ctx, sessionID, blob)
}

func (r *failingSessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	if r.parent.beforeDeleteIdle != nil {
		r.parent.beforeDeleteIdle()
	}
	return r.SessionRepository.DeleteIdle(ctx, before)
}

// fakeClock is a settable clock
type fakeClock struct {
	now atomic.Int64
}

func newFakeClock(t time.Time) *fakeClock {
	c := &fakeClock{}
	c.now.Store(t.UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time {
	return time.Unix(0, c.now.Load())
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now.Add(int64(d))
}

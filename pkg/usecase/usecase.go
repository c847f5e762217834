package usecase

import (
	"time"

	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
	"github.com/secmon-lab/fredboard/pkg/domain/model/config"
)

type UseCases struct {
	repo            interfaces.Repository
	gateway         interfaces.SeriesGateway
	dashboardConfig *config.DashboardConfig
	metadataTTL     time.Duration
	now             func() time.Time

	Sessions  *SessionStore
	Series    *SeriesUseCase
	Dashboard *DashboardUseCase
}

type Option func(*UseCases)

func WithDashboardConfig(cfg *config.DashboardConfig) Option {
	return func(uc *UseCases) {
		uc.dashboardConfig = cfg
	}
}

// WithMetadataCacheTTL caches series metadata for ttl. Zero disables caching.
func WithMetadataCacheTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		uc.metadataTTL = ttl
	}
}

// WithClock sets the clock used for session idle tracking and cache expiry
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, gateway interfaces.SeriesGateway, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:            repo,
		gateway:         gateway,
		dashboardConfig: config.DefaultDashboardConfig(),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Sessions = NewSessionStore(repo)
	uc.Series = NewSeriesUseCase(gateway, WithMetadataCache(uc.metadataTTL, uc.now))
	uc.Dashboard = NewDashboardUseCase(uc.Sessions, uc.Series, uc.dashboardConfig, uc.now)

	return uc
}

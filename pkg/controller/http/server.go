package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/usecase"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
)

// DashboardUseCase is the dashboard controller driven by the HTTP API
type DashboardUseCase interface {
	Get(ctx context.Context, sessionID string) (*usecase.Dashboard, error)
	Search(ctx context.Context, sessionID, term string) (*model.ChartConfig, error)
	BeginEdit(ctx context.Context, sessionID string, chartID model.ChartID) (*model.ChartConfig, error)
	CancelEdit(ctx context.Context, sessionID string, chartID model.ChartID) error
	SubmitEdit(ctx context.Context, sessionID string, chartID model.ChartID, edit model.ChartEdit) (*model.ChartConfig, error)
	Remove(ctx context.Context, sessionID string, chartID model.ChartID) error
	Reset(ctx context.Context, sessionID string) error
	ChartData(ctx context.Context, sessionID string, chartID model.ChartID) (*usecase.ChartData, error)
}

// SeriesUseCase serves read-only series lookups
type SeriesUseCase interface {
	Preview(ctx context.Context, seriesID string) (*model.SeriesPreview, error)
}

type Server struct {
	router       *chi.Mux
	dashboard    DashboardUseCase
	series       SeriesUseCase
	secureCookie bool
	cookieMaxAge time.Duration
}

type Options func(*Server)

// WithSecureCookie marks the session cookie Secure, for deployments behind TLS
func WithSecureCookie(secure bool) Options {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

// WithCookieMaxAge sets the lifetime of the session cookie. Zero keeps it a
// browser-session cookie.
func WithCookieMaxAge(d time.Duration) Options {
	return func(s *Server) {
		s.cookieMaxAge = d
	}
}

func New(dashboard DashboardUseCase, series SeriesUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		dashboard: dashboard,
		series:    series,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(s.sessionMiddleware)
	r.Use(accessLogger)
	r.Use(panicRecoverer)

	r.Get("/health", healthHandler)

	cfg := huma.DefaultConfig("fredboard API", "1.0.0")
	api := humachi.New(r, cfg)

	registerDashboardHandlers(api, s.dashboard)
	registerChartHandlers(api, s.dashboard)
	registerSeriesHandlers(api, s.series)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

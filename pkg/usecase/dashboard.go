package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/domain/model/config"
	"github.com/secmon-lab/fredboard/pkg/domain/types"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
)

// Dashboard is a read-only view of one session's dashboard
type Dashboard struct {
	Charts  []*model.ChartConfig
	Busy    bool
	Editing model.ChartID
}

// ChartData is the live data of one chart, fetched for rendering
type ChartData struct {
	Chart        *model.ChartConfig
	Metadata     *model.SeriesMetadata
	Observations []model.Observation
}

// dashboardSession is the state owned by the controller for one session.
// charts and editing are guarded by mu; busy serializes the search and
// submit flows so their fetches never interleave. lastSeen holds unix nanos
// and is written while the controller's map lock is held.
type dashboardSession struct {
	id string

	mu       sync.Mutex
	loaded   bool
	charts   []*model.ChartConfig
	editing  model.ChartID
	lastSeen atomic.Int64

	busy     chan struct{}
	busyFlag atomic.Bool
}

func newDashboardSession(id string) *dashboardSession {
	return &dashboardSession{
		id:   id,
		busy: make(chan struct{}, 1),
	}
}

// acquire waits for the busy slot. Overlapping triggers queue here.
func (s *dashboardSession) acquire(ctx context.Context) error {
	select {
	case s.busy <- struct{}{}:
		s.busyFlag.Store(true)
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "canceled while waiting for dashboard", goerr.V(model.SessionIDKey, s.id))
	}
}

func (s *dashboardSession) release() {
	s.busyFlag.Store(false)
	<-s.busy
}

func (s *dashboardSession) indexOf(id model.ChartID) int {
	return slices.IndexFunc(s.charts, func(c *model.ChartConfig) bool { return c.ID == id })
}

// editingChart returns the chart under edit. A chart removed since the edit
// began closes the edit. s must be locked.
func (s *dashboardSession) editingChart(id model.ChartID) (*model.ChartConfig, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		if s.editing == id {
			s.editing = ""
		}
		return nil, goerr.Wrap(model.ErrChartNotFound, "chart was removed", goerr.V(model.ChartIDKey, id))
	}
	if s.editing != id {
		return nil, goerr.Wrap(model.ErrNotEditing, "chart is not open for editing", goerr.V(model.ChartIDKey, id))
	}
	return s.charts[idx], nil
}

func copyCharts(charts []*model.ChartConfig) []*model.ChartConfig {
	copied := make([]*model.ChartConfig, len(charts))
	for i, c := range charts {
		copied[i] = c.Copy()
	}
	return copied
}

// DashboardUseCase is the single writer of every session's chart list. Each
// mutation computes the next list, saves it, and only then makes it the
// in-memory list, so a failed save leaves both sides on the previous list.
type DashboardUseCase struct {
	store  *SessionStore
	series *SeriesUseCase
	config *config.DashboardConfig
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*dashboardSession
}

func NewDashboardUseCase(store *SessionStore, series *SeriesUseCase, cfg *config.DashboardConfig, now func() time.Time) *DashboardUseCase {
	if cfg == nil {
		cfg = config.DefaultDashboardConfig()
	}
	if now == nil {
		now = time.Now
	}
	return &DashboardUseCase{
		store:    store,
		series:   series,
		config:   cfg,
		now:      now,
		sessions: make(map[string]*dashboardSession),
	}
}

// session returns the state of sessionID, loading the stored chart list on
// first use. The returned session is locked; callers must unlock it.
func (uc *DashboardUseCase) session(ctx context.Context, sessionID string) (*dashboardSession, error) {
	if sessionID == "" {
		return nil, goerr.Wrap(ErrSessionRequired, "cannot open dashboard")
	}

	s := uc.lockSession(sessionID)
	if !s.loaded {
		charts, err := uc.store.Load(ctx, sessionID)
		if err != nil {
			s.mu.Unlock()
			return nil, goerr.Wrap(err, "failed to load dashboard", goerr.V(model.SessionIDKey, sessionID))
		}
		s.charts = charts
		s.loaded = true
		logging.From(ctx).Debug("dashboard loaded", "session_id", sessionID, "charts", len(charts))
	}
	return s, nil
}

// lockSession returns the locked session registered for sessionID, creating
// it if needed. A session evicted between lookup and locking is dropped and
// the lookup retried.
func (uc *DashboardUseCase) lockSession(sessionID string) *dashboardSession {
	for {
		uc.mu.Lock()
		s, ok := uc.sessions[sessionID]
		if !ok {
			s = newDashboardSession(sessionID)
			uc.sessions[sessionID] = s
		}
		s.lastSeen.Store(uc.now().UnixNano())
		uc.mu.Unlock()

		s.mu.Lock()
		uc.mu.Lock()
		current := uc.sessions[sessionID]
		uc.mu.Unlock()
		if current == s {
			return s
		}
		s.mu.Unlock()
	}
}

// commit saves next as the chart list of s and then replaces the in-memory
// list. s must be locked.
func (uc *DashboardUseCase) commit(ctx context.Context, s *dashboardSession, next []*model.ChartConfig) error {
	if err := uc.store.Save(ctx, s.id, next); err != nil {
		return goerr.Wrap(err, "failed to persist dashboard", goerr.V(model.SessionIDKey, s.id))
	}
	s.charts = next
	return nil
}

// Get returns the current dashboard of sessionID
func (uc *DashboardUseCase) Get(ctx context.Context, sessionID string) (*Dashboard, error) {
	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return &Dashboard{
		Charts:  copyCharts(s.charts),
		Busy:    s.busyFlag.Load(),
		Editing: s.editing,
	}, nil
}

// Search looks up term, fetches the observations of the first match and
// appends a chart for it. It returns nil without error when the term is
// blank, or when nothing matches and the empty search policy is to ignore.
func (uc *DashboardUseCase) Search(ctx context.Context, sessionID, term string) (*model.ChartConfig, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Unlock()

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	matches, err := uc.series.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if uc.config.EmptySearch == types.EmptySearchSurface {
			return nil, goerr.Wrap(model.ErrNoMatches, "search returned no series", goerr.V(model.TermKey, term))
		}
		logging.From(ctx).Warn("No series found for the given search term", "term", term, "session_id", sessionID)
		return nil, nil
	}

	first := matches[0]
	set, err := uc.series.gateway.FetchObservations(ctx, first.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch series data", goerr.V(model.SeriesIDKey, first.ID))
	}
	if !set.Available {
		return nil, goerr.Wrap(model.ErrNoDataAvailable, "series has no observations",
			goerr.V(model.SeriesIDKey, first.ID))
	}

	chart := model.NewChartFromSearchResult(first, uc.config.Defaults, set.Observations)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(copyCharts(s.charts), chart)
	if err := uc.commit(ctx, s, next); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("chart added",
		"session_id", sessionID,
		"chart_id", chart.ID,
		"series_id", chart.SeriesID,
	)
	return chart.Copy(), nil
}

// BeginEdit opens the edit surface for chartID. Only one chart is edited at
// a time; opening another one replaces it.
func (uc *DashboardUseCase) BeginEdit(ctx context.Context, sessionID string, chartID model.ChartID) (*model.ChartConfig, error) {
	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	idx := s.indexOf(chartID)
	if idx < 0 {
		return nil, goerr.Wrap(model.ErrChartNotFound, "cannot edit chart", goerr.V(model.ChartIDKey, chartID))
	}

	s.editing = chartID
	return s.charts[idx].Copy(), nil
}

// CancelEdit closes the edit surface of chartID without changing anything
func (uc *DashboardUseCase) CancelEdit(ctx context.Context, sessionID string, chartID model.ChartID) error {
	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.editing != chartID {
		return goerr.Wrap(model.ErrNotEditing, "cannot cancel edit", goerr.V(model.ChartIDKey, chartID))
	}
	s.editing = ""
	return nil
}

// SubmitEdit applies edit to the chart being edited. A changed series is
// fetched first; if that fails the chart is left unchanged and the edit
// surface stays open. The chart is looked up again after the fetch, so a
// chart removed or an edit canceled in the meantime discards the result.
func (uc *DashboardUseCase) SubmitEdit(ctx context.Context, sessionID string, chartID model.ChartID, edit model.ChartEdit) (*model.ChartConfig, error) {
	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	editing := s.editing
	s.mu.Unlock()
	if editing != chartID {
		return nil, goerr.Wrap(model.ErrNotEditing, "cannot submit edit", goerr.V(model.ChartIDKey, chartID))
	}

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	s.mu.Lock()
	current, err := s.editingChart(chartID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var snapshot *model.SeriesSnapshot
	if edit.SeriesChanged(current) {
		snapshot, err = uc.series.Snapshot(ctx, edit.NewSeriesID())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load replacement series", goerr.V(model.ChartIDKey, chartID))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err = s.editingChart(chartID)
	if err != nil {
		return nil, err
	}
	updated, err := model.ApplyEdit(current, edit, snapshot)
	if err != nil {
		return nil, err
	}

	next := copyCharts(s.charts)
	next[s.indexOf(chartID)] = updated
	if err := uc.commit(ctx, s, next); err != nil {
		return nil, err
	}
	s.editing = ""

	logging.From(ctx).Info("chart updated",
		"session_id", sessionID,
		"chart_id", chartID,
		"series_id", updated.SeriesID,
		"series_changed", snapshot != nil,
	)
	return updated.Copy(), nil
}

// Remove drops chartID from the dashboard. It does not wait for a running
// search or submit.
func (uc *DashboardUseCase) Remove(ctx context.Context, sessionID string, chartID model.ChartID) error {
	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	idx := s.indexOf(chartID)
	if idx < 0 {
		return goerr.Wrap(model.ErrChartNotFound, "cannot remove chart", goerr.V(model.ChartIDKey, chartID))
	}

	next := copyCharts(slices.Delete(slices.Clone(s.charts), idx, idx+1))
	if err := uc.commit(ctx, s, next); err != nil {
		return err
	}
	if s.editing == chartID {
		s.editing = ""
	}

	logging.From(ctx).Info("chart removed", "session_id", sessionID, "chart_id", chartID)
	return nil
}

// Reset drops every chart of sessionID, in storage and in memory. Like
// Remove it does not wait for a running search or submit.
func (uc *DashboardUseCase) Reset(ctx context.Context, sessionID string) error {
	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := uc.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.charts = []*model.ChartConfig{}
	s.editing = ""

	logging.From(ctx).Info("dashboard reset", "session_id", sessionID)
	return nil
}

// ChartData fetches the live observations and metadata of one chart
func (uc *DashboardUseCase) ChartData(ctx context.Context, sessionID string, chartID model.ChartID) (*ChartData, error) {
	s, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := s.indexOf(chartID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, goerr.Wrap(model.ErrChartNotFound, "cannot load chart data", goerr.V(model.ChartIDKey, chartID))
	}
	chart := s.charts[idx].Copy()
	s.mu.Unlock()

	preview, err := uc.series.Preview(ctx, chart.SeriesID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load chart data", goerr.V(model.ChartIDKey, chartID))
	}
	if err := requireData(preview); err != nil {
		return nil, goerr.Wrap(err, "chart has no data", goerr.V(model.ChartIDKey, chartID))
	}

	chart.Data = preview.Observations
	return &ChartData{
		Chart:        chart,
		Metadata:     preview.Metadata,
		Observations: preview.Observations,
	}, nil
}

// EvictIdle forgets sessions not seen since before and clears stored chart
// lists not written since before. Sessions in the middle of a search or
// submit are kept in memory. Every session still held in memory rewrites its
// chart list around the clear, so a session that is only read, or that was
// reloaded while the sweep ran, keeps its stored copy. It returns the number
// of cleared slots.
func (uc *DashboardUseCase) EvictIdle(ctx context.Context, before time.Time) (int, error) {
	cutoff := before.UnixNano()

	uc.mu.Lock()
	evicted := 0
	kept := make(map[*dashboardSession]struct{}, len(uc.sessions))
	for id, s := range uc.sessions {
		if s.lastSeen.Load() < cutoff && !s.busyFlag.Load() {
			delete(uc.sessions, id)
			evicted++
			continue
		}
		kept[s] = struct{}{}
	}
	uc.mu.Unlock()

	refreshed := 0
	for s := range kept {
		ok, err := uc.refresh(ctx, s)
		if err != nil {
			return 0, err
		}
		if ok {
			refreshed++
		}
	}

	deleted, err := uc.store.ClearIdle(ctx, before)
	if err != nil {
		return 0, err
	}

	// Sessions loaded between eviction and the clear may have read a slot
	// that is now gone.
	for _, s := range uc.registered() {
		if _, ok := kept[s]; ok {
			continue
		}
		ok, err := uc.refresh(ctx, s)
		if err != nil {
			return 0, err
		}
		if ok {
			refreshed++
		}
	}

	logging.From(ctx).Debug("idle sessions evicted",
		"in_memory", evicted,
		"refreshed", refreshed,
		"stored", deleted)
	return deleted, nil
}

// refresh rewrites the chart list of s so its stored slot counts as recently
// written. Sessions with nothing loaded or no charts are skipped.
func (uc *DashboardUseCase) refresh(ctx context.Context, s *dashboardSession) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || len(s.charts) == 0 {
		return false, nil
	}
	if err := uc.store.Save(ctx, s.id, s.charts); err != nil {
		return false, goerr.Wrap(err, "failed to refresh active session", goerr.V(model.SessionIDKey, s.id))
	}
	return true, nil
}

func (uc *DashboardUseCase) registered() []*dashboardSession {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	sessions := make([]*dashboardSession, 0, len(uc.sessions))
	for _, s := range uc.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

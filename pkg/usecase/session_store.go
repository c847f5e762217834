package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/domain/types"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
)

// SessionStore reads and writes the chart list of a session. The list is
// kept as one JSON array per session slot; observation data is never stored.
type SessionStore struct {
	repo interfaces.Repository
}

func NewSessionStore(repo interfaces.Repository) *SessionStore {
	return &SessionStore{repo: repo}
}

// chartDocument is the persisted shape of one chart
type chartDocument struct {
	ID         string `json:"id"`
	SeriesID   string `json:"seriesId"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Color      string `json:"color,omitempty"`
	LineStyle  string `json:"lineStyle,omitempty"`
	YAxisLabel string `json:"yAxisLabel,omitempty"`
}

// Load returns the stored chart list of sessionID in insertion order. An
// empty slot or a payload that does not decode yields an empty list; only
// a failure to read the slot is returned as an error.
func (s *SessionStore) Load(ctx context.Context, sessionID string) ([]*model.ChartConfig, error) {
	blob, err := s.repo.Session().Get(ctx, sessionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read session", goerr.V(model.SessionIDKey, sessionID))
	}
	if len(blob) == 0 {
		return []*model.ChartConfig{}, nil
	}

	charts, err := decodeCharts(blob)
	if err != nil {
		logging.From(ctx).Warn("discarding malformed stored chart list",
			"session_id", sessionID,
			"error", err,
			"size", len(blob),
		)
		return []*model.ChartConfig{}, nil
	}

	return charts, nil
}

// Save replaces the stored chart list of sessionID with charts
func (s *SessionStore) Save(ctx context.Context, sessionID string, charts []*model.ChartConfig) error {
	blob, err := encodeCharts(charts)
	if err != nil {
		return goerr.Wrap(err, "failed to encode chart list", goerr.V(model.SessionIDKey, sessionID))
	}

	if err := s.repo.Session().Put(ctx, sessionID, blob); err != nil {
		return goerr.Wrap(err, "failed to write session",
			goerr.V(model.SessionIDKey, sessionID),
			goerr.V("chart_count", len(charts)))
	}
	return nil
}

// Clear drops everything stored for sessionID
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.repo.Session().Delete(ctx, sessionID); err != nil {
		return goerr.Wrap(err, "failed to clear session", goerr.V(model.SessionIDKey, sessionID))
	}
	return nil
}

// ClearIdle drops every stored chart list not written since before
func (s *SessionStore) ClearIdle(ctx context.Context, before time.Time) (int, error) {
	n, err := s.repo.Session().DeleteIdle(ctx, before)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to clear idle sessions", goerr.V("before", before))
	}
	return n, nil
}

func encodeCharts(charts []*model.ChartConfig) ([]byte, error) {
	docs := make([]chartDocument, 0, len(charts))
	for _, c := range charts {
		docs = append(docs, chartDocument{
			ID:         c.ID.String(),
			SeriesID:   c.SeriesID,
			Title:      c.Title,
			Type:       c.Type.String(),
			Color:      c.Color,
			LineStyle:  c.LineStyle.String(),
			YAxisLabel: c.YAxisLabel,
		})
	}
	return json.Marshal(docs)
}

// decodeCharts parses a stored chart list. Unknown chart types and line
// styles are kept as stored and handled by the rendering fallback. Entries
// without an ID or with a repeated ID make the whole payload malformed.
func decodeCharts(blob []byte) ([]*model.ChartConfig, error) {
	var docs []chartDocument
	if err := json.Unmarshal(blob, &docs); err != nil {
		return nil, goerr.Wrap(model.ErrMalformedStoredState, err.Error())
	}

	charts := make([]*model.ChartConfig, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for idx, doc := range docs {
		if doc.ID == "" {
			return nil, goerr.Wrap(model.ErrMalformedStoredState, "chart without id", goerr.V("index", idx))
		}
		if _, ok := seen[doc.ID]; ok {
			return nil, goerr.Wrap(model.ErrMalformedStoredState, "duplicate chart id",
				goerr.V(model.ChartIDKey, doc.ID))
		}
		seen[doc.ID] = struct{}{}

		charts = append(charts, &model.ChartConfig{
			ID:         model.ChartID(doc.ID),
			SeriesID:   doc.SeriesID,
			Title:      doc.Title,
			Type:       types.ChartType(doc.Type),
			Color:      doc.Color,
			LineStyle:  types.LineStyle(doc.LineStyle),
			YAxisLabel: doc.YAxisLabel,
		})
	}

	return charts, nil
}

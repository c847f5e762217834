package http

import (
	"github.com/secmon-lab/fredboard/pkg/domain/model"
)

type observationBody struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// renderBody is what the rendering adapter should draw, after fallbacks
type renderBody struct {
	Type      string `json:"type"`
	LineStyle string `json:"line_style"`
	Color     string `json:"color"`
}

type chartBody struct {
	ID         string            `json:"id"`
	SeriesID   string            `json:"series_id"`
	Title      string            `json:"title"`
	Type       string            `json:"type"`
	Color      string            `json:"color"`
	LineStyle  string            `json:"line_style"`
	YAxisLabel string            `json:"y_axis_label"`
	Render     renderBody        `json:"render"`
	Data       []observationBody `json:"data,omitempty"`
}

type metadataBody struct {
	Units       string `json:"units"`
	Frequency   string `json:"frequency"`
	LastUpdated string `json:"last_updated"`
	Notes       string `json:"notes,omitempty"`
}

func toObservationBodies(obs []model.Observation) []observationBody {
	if obs == nil {
		return nil
	}
	out := make([]observationBody, len(obs))
	for i, o := range obs {
		out[i] = observationBody{Date: o.Date, Value: o.Value}
	}
	return out
}

func toChartBody(c *model.ChartConfig) chartBody {
	return chartBody{
		ID:         c.ID.String(),
		SeriesID:   c.SeriesID,
		Title:      c.Title,
		Type:       c.Type.String(),
		Color:      c.Color,
		LineStyle:  c.LineStyle.String(),
		YAxisLabel: c.YAxisLabel,
		Render: renderBody{
			Type:      c.RenderType().String(),
			LineStyle: c.RenderLineStyle().String(),
			Color:     c.RenderColor(),
		},
		Data: toObservationBodies(c.Data),
	}
}

func toMetadataBody(m *model.SeriesMetadata) *metadataBody {
	if m == nil {
		return nil
	}
	return &metadataBody{
		Units:       m.Units,
		Frequency:   m.Frequency,
		LastUpdated: m.LastUpdated,
		Notes:       m.Notes,
	}
}

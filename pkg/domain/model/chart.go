package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/types"
)

// DefaultChartColor is the stroke/fill color of a chart that has none
const DefaultChartColor = "#8884d8"

// ChartID is a UUID-based identifier for ChartConfig. It is the only key
// used for lookup, update and removal.
type ChartID string

// NewChartID generates a new UUID v4 ChartID
func NewChartID() ChartID {
	return ChartID(uuid.New().String())
}

// String returns the string representation of the chart ID
func (id ChartID) String() string {
	return string(id)
}

// ChartConfig is the persisted description of one dashboard chart: a series
// reference plus display preferences. Data is the last fetched observation
// projection and never part of the persisted state.
type ChartConfig struct {
	ID         ChartID
	SeriesID   string
	Title      string
	Type       types.ChartType
	Color      string
	LineStyle  types.LineStyle
	YAxisLabel string

	Data []Observation
}

// ChartDefaults holds the display values given to a newly created chart
type ChartDefaults struct {
	Type      types.ChartType
	Color     string
	LineStyle types.LineStyle
}

// DefaultChartDefaults returns the built-in chart defaults
func DefaultChartDefaults() ChartDefaults {
	return ChartDefaults{
		Type:      types.DefaultChartType,
		Color:     DefaultChartColor,
		LineStyle: types.DefaultLineStyle,
	}
}

// Copy returns a deep copy of the chart
func (c *ChartConfig) Copy() *ChartConfig {
	if c == nil {
		return nil
	}
	copied := *c
	if c.Data != nil {
		copied.Data = make([]Observation, len(c.Data))
		copy(copied.Data, c.Data)
	}
	return &copied
}

// RenderType returns the chart type the rendering adapter should use
func (c *ChartConfig) RenderType() types.ChartType {
	return c.Type.Renderable()
}

// RenderLineStyle returns the interpolation the rendering adapter should use
func (c *ChartConfig) RenderLineStyle() types.LineStyle {
	return c.LineStyle.Renderable()
}

// RenderColor returns the color the rendering adapter should use
func (c *ChartConfig) RenderColor() string {
	if c.Color == "" {
		return DefaultChartColor
	}
	return c.Color
}

// NewChartFromSearchResult builds a chart for the given search match. It gets
// a fresh ID, the series identifier and title of the match, and defaults for
// every display preference.
func NewChartFromSearchResult(summary *SeriesSummary, defaults ChartDefaults, data []Observation) *ChartConfig {
	return &ChartConfig{
		ID:        NewChartID(),
		SeriesID:  summary.ID,
		Title:     summary.Title,
		Type:      defaults.Type,
		Color:     defaults.Color,
		LineStyle: defaults.LineStyle,
		Data:      data,
	}
}

// ChartEdit holds the fields submitted from the edit surface. Nil fields are
// left untouched.
type ChartEdit struct {
	SeriesID   *string
	Title      *string
	Type       *types.ChartType
	Color      *string
	LineStyle  *types.LineStyle
	YAxisLabel *string
}

// SeriesChanged reports whether the edit replaces the source series of c.
// An empty series ID means "keep the current series".
func (e *ChartEdit) SeriesChanged(c *ChartConfig) bool {
	if e.SeriesID == nil {
		return false
	}
	id := strings.TrimSpace(*e.SeriesID)
	return id != "" && id != c.SeriesID
}

// NewSeriesID returns the trimmed replacement series ID, or empty when the
// edit keeps the series.
func (e *ChartEdit) NewSeriesID() string {
	if e.SeriesID == nil {
		return ""
	}
	return strings.TrimSpace(*e.SeriesID)
}

// SeriesSnapshot is the freshly fetched state of a replacement series
type SeriesSnapshot struct {
	SeriesID     string
	Title        string
	Observations []Observation
}

// ApplyEdit merges edit into a copy of existing and preserves its ID. When
// the edit replaces the series, snapshot must hold the fetched replacement:
// the result takes its series ID and observations, and its title unless the
// edit sets one explicitly.
func ApplyEdit(existing *ChartConfig, edit ChartEdit, snapshot *SeriesSnapshot) (*ChartConfig, error) {
	updated := existing.Copy()

	if edit.SeriesChanged(existing) {
		if snapshot == nil || snapshot.SeriesID != edit.NewSeriesID() {
			return nil, goerr.New("series snapshot is required to replace the series",
				goerr.V(ChartIDKey, existing.ID),
				goerr.V(SeriesIDKey, edit.NewSeriesID()))
		}
		updated.SeriesID = snapshot.SeriesID
		updated.Title = snapshot.Title
		updated.Data = make([]Observation, len(snapshot.Observations))
		copy(updated.Data, snapshot.Observations)
	}

	if edit.Title != nil {
		updated.Title = *edit.Title
	}
	if edit.Type != nil {
		updated.Type = *edit.Type
	}
	if edit.Color != nil {
		updated.Color = NormalizeColor(*edit.Color)
	}
	if edit.LineStyle != nil {
		updated.LineStyle = *edit.LineStyle
	}
	if edit.YAxisLabel != nil {
		updated.YAxisLabel = *edit.YAxisLabel
	}

	updated.ID = existing.ID
	return updated, nil
}

// NormalizeColor prefixes a bare hex value with '#'. Other values are kept
// as entered.
func NormalizeColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" || strings.HasPrefix(color, "#") {
		return color
	}
	return "#" + color
}

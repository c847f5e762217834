package types

import "fmt"

// ChartType selects the visual rendering of a chart
type ChartType string

const (
	ChartTypeArea ChartType = "area"
	ChartTypeLine ChartType = "line"
	ChartTypeBar  ChartType = "bar"
)

// DefaultChartType is assigned to charts created from a search result and
// used as the rendering fallback for unrecognized values.
const DefaultChartType = ChartTypeArea

// AllChartTypes returns all valid chart types
func AllChartTypes() []ChartType {
	return []ChartType{
		ChartTypeArea,
		ChartTypeLine,
		ChartTypeBar,
	}
}

// IsValid checks if the chart type is valid
func (t ChartType) IsValid() bool {
	switch t {
	case ChartTypeArea,
		ChartTypeLine,
		ChartTypeBar:
		return true
	default:
		return false
	}
}

// Renderable returns the chart type to render. Unrecognized values fall back
// to DefaultChartType instead of failing.
func (t ChartType) Renderable() ChartType {
	if t.IsValid() {
		return t
	}
	return DefaultChartType
}

// String returns the string representation of the chart type
func (t ChartType) String() string {
	return string(t)
}

// ParseChartType parses a string into a ChartType
func ParseChartType(s string) (ChartType, error) {
	t := ChartType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid chart type: %s", s)
	}
	return t, nil
}

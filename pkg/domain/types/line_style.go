package types

import "fmt"

// LineStyle is the curve interpolation used by line and area renderings
type LineStyle string

const (
	LineStyleMonotone LineStyle = "monotone"
	LineStyleLinear   LineStyle = "linear"
	LineStyleStep     LineStyle = "step"
)

// DefaultLineStyle is used when a chart has no line style or an unknown one
const DefaultLineStyle = LineStyleMonotone

// AllLineStyles returns all valid line styles
func AllLineStyles() []LineStyle {
	return []LineStyle{
		LineStyleMonotone,
		LineStyleLinear,
		LineStyleStep,
	}
}

// IsValid checks if the line style is valid
func (s LineStyle) IsValid() bool {
	switch s {
	case LineStyleMonotone,
		LineStyleLinear,
		LineStyleStep:
		return true
	default:
		return false
	}
}

// Renderable returns the line style to render, defaulting absent or
// unrecognized values.
func (s LineStyle) Renderable() LineStyle {
	if s.IsValid() {
		return s
	}
	return DefaultLineStyle
}

// String returns the string representation of the line style
func (s LineStyle) String() string {
	return string(s)
}

// ParseLineStyle parses a string into a LineStyle
func ParseLineStyle(s string) (LineStyle, error) {
	style := LineStyle(s)
	if !style.IsValid() {
		return "", fmt.Errorf("invalid line style: %s", s)
	}
	return style, nil
}

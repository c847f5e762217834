package config

import (
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/domain/types"
)

// DashboardConfig holds the dashboard behavior settings
type DashboardConfig struct {
	// Defaults are the display preferences of a newly added chart
	Defaults model.ChartDefaults

	// EmptySearch decides whether a search with no matches is reported
	EmptySearch types.EmptySearchPolicy
}

// DefaultDashboardConfig returns the built-in dashboard settings
func DefaultDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Defaults:    model.DefaultChartDefaults(),
		EmptySearch: types.DefaultEmptySearchPolicy,
	}
}

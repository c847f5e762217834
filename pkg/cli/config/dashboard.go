package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	domainConfig "github.com/secmon-lab/fredboard/pkg/domain/model/config"
	"github.com/secmon-lab/fredboard/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// dashboardFile is the TOML layout of --dashboard-config
type dashboardFile struct {
	Defaults struct {
		ChartType string `toml:"chart_type"`
		Color     string `toml:"color"`
		LineStyle string `toml:"line_style"`
	} `toml:"defaults"`
	Search struct {
		EmptyResult string `toml:"empty_result"`
	} `toml:"search"`
}

// Dashboard holds CLI flags for dashboard behavior and session lifetime
type Dashboard struct {
	configPath    string
	emptySearch   string
	sessionTTL    time.Duration
	sweepInterval time.Duration
}

// Flags returns CLI flags for dashboard configuration
func (x *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dashboard-config",
			Usage:       "Path to the dashboard TOML file",
			Category:    "Dashboard",
			Sources:     cli.EnvVars("FREDBOARD_DASHBOARD_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "empty-search",
			Usage:       "Behavior of a search without matches (ignore, surface). Overrides the config file",
			Category:    "Dashboard",
			Sources:     cli.EnvVars("FREDBOARD_EMPTY_SEARCH"),
			Destination: &x.emptySearch,
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "Idle time after which a dashboard session is discarded",
			Value:       24 * time.Hour,
			Category:    "Dashboard",
			Sources:     cli.EnvVars("FREDBOARD_SESSION_TTL"),
			Destination: &x.sessionTTL,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval of the idle session sweep",
			Value:       10 * time.Minute,
			Category:    "Dashboard",
			Sources:     cli.EnvVars("FREDBOARD_SWEEP_INTERVAL"),
			Destination: &x.sweepInterval,
		},
	}
}

func (x Dashboard) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
		slog.String("empty-search", x.emptySearch),
		slog.Duration("session-ttl", x.sessionTTL),
		slog.Duration("sweep-interval", x.sweepInterval),
	)
}

// SessionTTL returns the idle lifetime of a session
func (x *Dashboard) SessionTTL() time.Duration {
	return x.sessionTTL
}

// SweepInterval returns the interval of the idle session sweep
func (x *Dashboard) SweepInterval() time.Duration {
	return x.sweepInterval
}

// Configure loads the dashboard settings. Without a config file the built-in
// defaults are used.
func (x *Dashboard) Configure() (*domainConfig.DashboardConfig, error) {
	cfg := domainConfig.DefaultDashboardConfig()

	if x.configPath != "" {
		if err := loadDashboardFile(x.configPath, cfg); err != nil {
			return nil, err
		}
	}

	if x.emptySearch != "" {
		policy, err := types.ParseEmptySearchPolicy(x.emptySearch)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid --empty-search",
				goerr.V(ValueKey, x.emptySearch))
		}
		cfg.EmptySearch = policy
	}

	return cfg, nil
}

func loadDashboardFile(path string, cfg *domainConfig.DashboardConfig) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return goerr.Wrap(ErrConfigNotFound, "dashboard config file does not exist",
				goerr.V(ConfigPathKey, path))
		}
		return goerr.Wrap(err, "failed to open dashboard config", goerr.V(ConfigPathKey, path))
	}
	defer f.Close()

	var file dashboardFile
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "failed to parse dashboard config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if v := strings.TrimSpace(file.Defaults.ChartType); v != "" {
		t, err := types.ParseChartType(v)
		if err != nil {
			return invalidField(path, "defaults.chart_type", v)
		}
		cfg.Defaults.Type = t
	}
	if v := strings.TrimSpace(file.Defaults.LineStyle); v != "" {
		s, err := types.ParseLineStyle(v)
		if err != nil {
			return invalidField(path, "defaults.line_style", v)
		}
		cfg.Defaults.LineStyle = s
	}
	if v := strings.TrimSpace(file.Defaults.Color); v != "" {
		cfg.Defaults.Color = model.NormalizeColor(v)
	}
	if v := strings.TrimSpace(file.Search.EmptyResult); v != "" {
		p, err := types.ParseEmptySearchPolicy(v)
		if err != nil {
			return invalidField(path, "search.empty_result", v)
		}
		cfg.EmptySearch = p
	}

	return nil
}

func invalidField(path, field, value string) error {
	return goerr.Wrap(ErrInvalidConfig, "invalid value in dashboard config",
		goerr.V(ConfigPathKey, path),
		goerr.V(FieldKey, field),
		goerr.V(ValueKey, value))
}

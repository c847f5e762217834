package config

import (
	"log/slog"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/service/fred"
	"github.com/urfave/cli/v3"
)

// FRED holds CLI flags for the FRED API client
type FRED struct {
	apiKey      string
	baseURL     string
	timeout     time.Duration
	metadataTTL time.Duration
}

// Flags returns CLI flags for FRED configuration
func (x *FRED) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "fred-api-key",
			Usage:       "FRED API key",
			Category:    "FRED",
			Sources:     cli.EnvVars("FREDBOARD_FRED_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "fred-base-url",
			Usage:       "FRED API root URL",
			Value:       fred.DefaultBaseURL,
			Category:    "FRED",
			Sources:     cli.EnvVars("FREDBOARD_FRED_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.DurationFlag{
			Name:        "fred-timeout",
			Usage:       "Timeout of a single FRED API request",
			Value:       30 * time.Second,
			Category:    "FRED",
			Sources:     cli.EnvVars("FREDBOARD_FRED_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.DurationFlag{
			Name:        "fred-metadata-ttl",
			Usage:       "How long series metadata is cached (0 disables)",
			Value:       0,
			Category:    "FRED",
			Sources:     cli.EnvVars("FREDBOARD_FRED_METADATA_TTL"),
			Destination: &x.metadataTTL,
		},
	}
}

func (x FRED) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("base-url", x.baseURL),
		slog.Duration("timeout", x.timeout),
		slog.Duration("metadata-ttl", x.metadataTTL),
	)
}

// MetadataTTL returns how long series metadata is cached
func (x *FRED) MetadataTTL() time.Duration {
	return x.metadataTTL
}

// Configure creates the FRED client. The API key stays inside the client.
func (x *FRED) Configure() (*fred.Client, error) {
	if x.apiKey == "" {
		return nil, goerr.Wrap(ErrMissingAPIKey, "set --fred-api-key or FREDBOARD_FRED_API_KEY")
	}

	httpClient := cleanhttp.DefaultPooledClient()
	if x.timeout > 0 {
		httpClient.Timeout = x.timeout
	}

	opts := []fred.Option{fred.WithHTTPClient(httpClient)}
	if x.baseURL != "" {
		opts = append(opts, fred.WithBaseURL(x.baseURL))
	}

	client, err := fred.New(x.apiKey, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create FRED client")
	}
	return client, nil
}

package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
	"github.com/secmon-lab/fredboard/pkg/utils/safe"
)

const (
	// DefaultBaseURL is the FRED API root
	DefaultBaseURL = "https://api.stlouisfed.org/fred"

	dateLayout      = "2006-01-02"
	maxResponseSize = 32 << 20
)

// Client is the series data gateway backed by the FRED API. It is the only
// holder of the API credential.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

var _ interfaces.SeriesGateway = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests and proxies
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client used for every request
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithClock sets the clock used to compute the observation end date
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a new FRED client with the provided API key
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("FRED API key is required")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: cleanhttp.DefaultPooledClient(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Search looks up series matching term
func (c *Client) Search(ctx context.Context, term string) ([]*model.SeriesSummary, error) {
	var resp seriesResponse
	if _, err := c.get(ctx, "/series/search", url.Values{"search_text": {term}}, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to search series", goerr.V(model.TermKey, term))
	}

	matches := make([]*model.SeriesSummary, 0, len(resp.Seriess))
	for _, s := range resp.Seriess {
		matches = append(matches, &model.SeriesSummary{
			ID:          s.ID,
			Title:       s.Title,
			Frequency:   s.Frequency,
			Units:       s.Units,
			LastUpdated: s.LastUpdated,
			Popularity:  s.Popularity,
		})
	}

	return matches, nil
}

// FetchObservations returns the observations of seriesID up to today. A
// series the catalog does not know yields an unavailable set.
func (c *Client) FetchObservations(ctx context.Context, seriesID string) (*model.ObservationSet, error) {
	params := url.Values{
		"series_id":       {seriesID},
		"observation_end": {c.now().Format(dateLayout)},
	}

	var resp observationsResponse
	found, err := c.get(ctx, "/series/observations", params, &resp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch series observations", goerr.V(model.SeriesIDKey, seriesID))
	}

	set := &model.ObservationSet{SeriesID: seriesID}
	if !found || resp.Observations == nil {
		return set, nil
	}

	set.Available = true
	set.Observations = make([]model.Observation, 0, len(*resp.Observations))
	for _, obs := range *resp.Observations {
		set.Observations = append(set.Observations, model.Observation{
			Date:  obs.Date,
			Value: model.ParseObservationValue(obs.Value),
		})
	}

	return set, nil
}

// FetchMetadata returns the descriptive fields of seriesID, or nil when the
// series does not exist
func (c *Client) FetchMetadata(ctx context.Context, seriesID string) (*model.SeriesMetadata, error) {
	var resp seriesResponse
	found, err := c.get(ctx, "/series", url.Values{"series_id": {seriesID}}, &resp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch series metadata", goerr.V(model.SeriesIDKey, seriesID))
	}
	if !found || len(resp.Seriess) == 0 {
		return nil, nil
	}

	s := resp.Seriess[0]
	return &model.SeriesMetadata{
		ID:               s.ID,
		Title:            s.Title,
		Units:            s.Units,
		Frequency:        s.Frequency,
		LastUpdated:      s.LastUpdated,
		ObservationStart: s.ObservationStart,
		ObservationEnd:   s.ObservationEnd,
		Notes:            s.Notes,
	}, nil
}

// get performs a GET on path and decodes the JSON body into out. It returns
// false without error when FRED reports that the requested series does not
// exist. Every other failure wraps model.ErrTransport.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", c.apiKey)
	query.Set("file_type", "json")

	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, goerr.Wrap(model.ErrTransport, "failed to build request", goerr.V("path", path))
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL including the credential
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return false, goerr.Wrap(model.ErrTransport, err.Error(), goerr.V("path", path))
	}
	defer safe.Drain(ctx, resp.Body)

	logging.From(ctx).Debug("FRED request",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, goerr.Wrap(model.ErrTransport, "failed to read response body: "+err.Error(),
			goerr.V("path", path))
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		if resp.StatusCode == http.StatusBadRequest && isSeriesMissing(apiErr.ErrorMessage) {
			return false, nil
		}

		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if apiErr.ErrorMessage != "" {
			msg += ": " + strings.TrimSpace(apiErr.ErrorMessage)
		}
		return false, goerr.Wrap(model.ErrTransport, msg,
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, goerr.Wrap(model.ErrTransport, "failed to decode response: "+err.Error(),
			goerr.V("path", path))
	}

	return true, nil
}

func isSeriesMissing(message string) bool {
	return strings.Contains(strings.ToLower(message), "series does not exist")
}

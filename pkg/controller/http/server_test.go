package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/fredboard/pkg/controller/http"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/repository/memory"
	"github.com/secmon-lab/fredboard/pkg/usecase"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
)

// fakeGateway serves GDPC1 and UNRATE. Setting failing makes every call a
// transport error.
type fakeGateway struct {
	failing atomic.Bool
}

func (g *fakeGateway) Search(ctx context.Context, term string) ([]*model.SeriesSummary, error) {
	if g.failing.Load() {
		return nil, goerr.Wrap(model.ErrTransport, "HTTP 500: Internal Server Error")
	}
	if term == "GDP" {
		return []*model.SeriesSummary{{ID: "GDPC1", Title: "Real GDP"}}, nil
	}
	return nil, nil
}

func (g *fakeGateway) FetchObservations(ctx context.Context, seriesID string) (*model.ObservationSet, error) {
	if g.failing.Load() {
		return nil, goerr.Wrap(model.ErrTransport, "HTTP 503")
	}
	switch seriesID {
	case "GDPC1", "UNRATE":
		return &model.ObservationSet{
			SeriesID:     seriesID,
			Available:    true,
			Observations: []model.Observation{{Date: "2024-01-01", Value: 3.5}, {Date: "2024-04-01", Value: 0}},
		}, nil
	}
	return &model.ObservationSet{SeriesID: seriesID}, nil
}

func (g *fakeGateway) FetchMetadata(ctx context.Context, seriesID string) (*model.SeriesMetadata, error) {
	if g.failing.Load() {
		return nil, goerr.Wrap(model.ErrTransport, "HTTP 503")
	}
	if seriesID == "UNRATE" {
		return &model.SeriesMetadata{ID: "UNRATE", Title: "Unemployment Rate", Units: "Percent", Frequency: "Monthly"}, nil
	}
	return nil, nil
}

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestClient(t *testing.T, gw *fakeGateway) *testClient {
	t.Helper()
	uc := usecase.New(memory.New(), gw)
	return &testClient{
		t:       t,
		handler: httpctrl.New(uc.Dashboard, uc.Series),
	}
}

// do sends a request, keeping the session cookie across calls, and decodes
// the JSON response into out when given
func (c *testClient) do(method, path string, body any, out any) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(c.t, err).Required()
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == httpctrl.SessionCookieName {
			c.cookie = ck
		}
	}

	if out != nil && w.Body.Len() > 0 {
		gt.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out)).Required()
	}
	return w.Code
}

type chartResp struct {
	ID       string `json:"id"`
	SeriesID string `json:"series_id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Color    string `json:"color"`
	Render   struct {
		Type  string `json:"type"`
		Color string `json:"color"`
	} `json:"render"`
	Data []struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	} `json:"data"`
}

type dashboardResp struct {
	Charts         []chartResp `json:"charts"`
	Busy           bool        `json:"busy"`
	EditingChartID string      `json:"editing_chart_id"`
}

type errorResp struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func addChart(t *testing.T, c *testClient) chartResp {
	t.Helper()
	var resp struct {
		Added *chartResp `json:"added"`
	}
	code := c.do(http.MethodPost, "/api/v1/dashboard/search", map[string]string{"term": "GDP"}, &resp)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, resp.Added).NotNil().Required()
	return *resp.Added
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, &fakeGateway{})

	code := c.do(http.MethodGet, "/health", nil, nil)
	gt.Value(t, code).Equal(http.StatusOK)
}

func TestSessionCookie(t *testing.T) {
	c := newTestClient(t, &fakeGateway{})

	var resp dashboardResp
	code := c.do(http.MethodGet, "/api/v1/dashboard", nil, &resp)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, c.cookie).NotNil().Required()
	gt.Value(t, c.cookie.Name).Equal("session_id")
	gt.Bool(t, c.cookie.HttpOnly).True()
	gt.Array(t, resp.Charts).Length(0)

	first := c.cookie.Value
	addChart(t, c)
	gt.Value(t, c.cookie.Value).Equal(first)

	// A different browser does not see the chart
	other := &testClient{t: t, handler: c.handler}
	var otherResp dashboardResp
	gt.Value(t, other.do(http.MethodGet, "/api/v1/dashboard", nil, &otherResp)).Equal(http.StatusOK)
	gt.Array(t, otherResp.Charts).Length(0)
	gt.Value(t, other.cookie.Value).NotEqual(first)
}

func TestSessionCookie_MalformedIsReplaced(t *testing.T) {
	c := newTestClient(t, &fakeGateway{})
	c.cookie = &http.Cookie{Name: httpctrl.SessionCookieName, Value: "not-a-uuid"}

	gt.Value(t, c.do(http.MethodGet, "/api/v1/dashboard", nil, nil)).Equal(http.StatusOK)
	gt.Value(t, c.cookie.Value).NotEqual("not-a-uuid")
}

func TestDashboardFlow(t *testing.T) {
	c := newTestClient(t, &fakeGateway{})

	chart := addChart(t, c)
	gt.Value(t, chart.SeriesID).Equal("GDPC1")
	gt.Value(t, chart.Title).Equal("Real GDP")
	gt.Value(t, chart.Type).Equal("area")
	gt.Value(t, chart.Render.Color).Equal("#8884d8")
	gt.Array(t, chart.Data).Length(2)

	// Edit color only
	var edited chartResp
	gt.Value(t, c.do(http.MethodPost, "/api/v1/charts/"+chart.ID+"/edit", nil, &edited)).Equal(http.StatusOK)
	gt.Value(t, edited.ID).Equal(chart.ID)

	var dashboard dashboardResp
	gt.Value(t, c.do(http.MethodGet, "/api/v1/dashboard", nil, &dashboard)).Equal(http.StatusOK)
	gt.Value(t, dashboard.EditingChartID).Equal(chart.ID)

	code := c.do(http.MethodPut, "/api/v1/charts/"+chart.ID, map[string]string{"color": "ff0000", "type": "radar"}, &edited)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, edited.Color).Equal("#ff0000")
	gt.Value(t, edited.SeriesID).Equal("GDPC1")
	gt.Value(t, edited.Type).Equal("radar")
	gt.Value(t, edited.Render.Type).Equal("area")

	// Replace the series
	gt.Value(t, c.do(http.MethodPost, "/api/v1/charts/"+chart.ID+"/edit", nil, nil)).Equal(http.StatusOK)
	code = c.do(http.MethodPut, "/api/v1/charts/"+chart.ID, map[string]string{"series_id": "UNRATE"}, &edited)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, edited.SeriesID).Equal("UNRATE")
	gt.Value(t, edited.Title).Equal("Unemployment Rate")

	// Live data
	var data struct {
		Chart    chartResp `json:"chart"`
		Metadata *struct {
			Units string `json:"units"`
		} `json:"metadata"`
		Observations []struct {
			Value float64 `json:"value"`
		} `json:"observations"`
	}
	gt.Value(t, c.do(http.MethodGet, "/api/v1/charts/"+chart.ID+"/data", nil, &data)).Equal(http.StatusOK)
	gt.Value(t, data.Metadata).NotNil().Required()
	gt.Value(t, data.Metadata.Units).Equal("Percent")
	gt.Array(t, data.Observations).Length(2)

	// Remove
	gt.Value(t, c.do(http.MethodDelete, "/api/v1/charts/"+chart.ID, nil, nil)).Equal(http.StatusNoContent)
	gt.Value(t, c.do(http.MethodGet, "/api/v1/dashboard", nil, &dashboard)).Equal(http.StatusOK)
	gt.Array(t, dashboard.Charts).Length(0)

	// Reset
	addChart(t, c)
	addChart(t, c)
	gt.Value(t, c.do(http.MethodDelete, "/api/v1/dashboard", nil, nil)).Equal(http.StatusNoContent)
	gt.Value(t, c.do(http.MethodGet, "/api/v1/dashboard", nil, &dashboard)).Equal(http.StatusOK)
	gt.Array(t, dashboard.Charts).Length(0)
}

func TestErrorMapping(t *testing.T) {
	t.Run("unknown chart is 404", func(t *testing.T) {
		c := newTestClient(t, &fakeGateway{})

		var resp errorResp
		gt.Value(t, c.do(http.MethodDelete, "/api/v1/charts/missing", nil, &resp)).Equal(http.StatusNotFound)
		gt.String(t, resp.Detail).Contains("chart not found")
	})

	t.Run("submit without begin is 409", func(t *testing.T) {
		c := newTestClient(t, &fakeGateway{})
		chart := addChart(t, c)

		code := c.do(http.MethodPut, "/api/v1/charts/"+chart.ID, map[string]string{"color": "#000000"}, nil)
		gt.Value(t, code).Equal(http.StatusConflict)
	})

	t.Run("transport failure is 502 with the message", func(t *testing.T) {
		gw := &fakeGateway{}
		c := newTestClient(t, gw)
		gw.failing.Store(true)

		var resp errorResp
		code := c.do(http.MethodPost, "/api/v1/dashboard/search", map[string]string{"term": "GDP"}, &resp)
		gt.Value(t, code).Equal(http.StatusBadGateway)
		gt.String(t, resp.Detail).Contains("Internal Server Error")
	})

	t.Run("failed series replacement is 502 and keeps the chart", func(t *testing.T) {
		gw := &fakeGateway{}
		c := newTestClient(t, gw)
		chart := addChart(t, c)

		gt.Value(t, c.do(http.MethodPost, "/api/v1/charts/"+chart.ID+"/edit", nil, nil)).Equal(http.StatusOK)
		gw.failing.Store(true)
		code := c.do(http.MethodPut, "/api/v1/charts/"+chart.ID, map[string]string{"series_id": "UNRATE"}, nil)
		gt.Value(t, code).Equal(http.StatusBadGateway)

		var dashboard dashboardResp
		gt.Value(t, c.do(http.MethodGet, "/api/v1/dashboard", nil, &dashboard)).Equal(http.StatusOK)
		gt.Array(t, dashboard.Charts).Length(1).Required()
		gt.Value(t, dashboard.Charts[0].SeriesID).Equal("GDPC1")
	})

	t.Run("unknown series is 422", func(t *testing.T) {
		c := newTestClient(t, &fakeGateway{})
		chart := addChart(t, c)

		gt.Value(t, c.do(http.MethodPost, "/api/v1/charts/"+chart.ID+"/edit", nil, nil)).Equal(http.StatusOK)
		code := c.do(http.MethodPut, "/api/v1/charts/"+chart.ID, map[string]string{"series_id": "NOPE"}, nil)
		gt.Value(t, code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("empty search adds nothing", func(t *testing.T) {
		c := newTestClient(t, &fakeGateway{})

		var resp struct {
			Added *chartResp `json:"added"`
		}
		code := c.do(http.MethodPost, "/api/v1/dashboard/search", map[string]string{"term": "zzz"}, &resp)
		gt.Value(t, code).Equal(http.StatusOK)
		gt.Value(t, resp.Added).Nil()
	})
}

func TestPreviewSeries(t *testing.T) {
	c := newTestClient(t, &fakeGateway{})

	var resp struct {
		SeriesID string `json:"series_id"`
		Title    string `json:"title"`
		HasData  bool   `json:"has_data"`
	}
	gt.Value(t, c.do(http.MethodGet, "/api/v1/series/UNRATE/preview", nil, &resp)).Equal(http.StatusOK)
	gt.Value(t, resp.Title).Equal("Unemployment Rate")
	gt.Bool(t, resp.HasData).True()

	gt.Value(t, c.do(http.MethodGet, "/api/v1/series/GDPC1/preview", nil, &resp)).Equal(http.StatusOK)
	gt.Value(t, resp.Title).Equal("Series GDPC1")

	gt.Value(t, c.do(http.MethodGet, "/api/v1/series/NOPE/preview", nil, &resp)).Equal(http.StatusOK)
	gt.Bool(t, resp.HasData).False()
}

func TestAccessLogIncludesSession(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Default()
	logging.SetDefault(logging.NewLogger(&buf, logging.FormatJSON, slog.LevelInfo, false))
	t.Cleanup(func() { logging.SetDefault(prev) })

	c := newTestClient(t, &fakeGateway{})
	gt.Value(t, c.do(http.MethodGet, "/api/v1/dashboard", nil, nil)).Equal(http.StatusOK)

	out := buf.String()
	gt.String(t, out).Contains(`"msg":"access"`)
	gt.String(t, out).Contains(`"session_id":"` + c.cookie.Value + `"`)
	gt.String(t, out).Contains(`"request_id"`)
}

type panicGateway struct {
	fakeGateway
}

func (g *panicGateway) Search(ctx context.Context, term string) ([]*model.SeriesSummary, error) {
	panic("gateway exploded")
}

func TestPanicIsRecovered(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Default()
	logging.SetDefault(logging.NewLogger(&buf, logging.FormatJSON, slog.LevelInfo, false))
	t.Cleanup(func() { logging.SetDefault(prev) })

	uc := usecase.New(memory.New(), &panicGateway{})
	c := &testClient{t: t, handler: httpctrl.New(uc.Dashboard, uc.Series)}

	code := c.do(http.MethodPost, "/api/v1/dashboard/search", map[string]string{"term": "GDP"}, nil)
	gt.Value(t, code).Equal(http.StatusInternalServerError)
	gt.String(t, buf.String()).Contains("gateway exploded")

	// the busy slot taken by the panicking search has been released
	var dash dashboardResp
	gt.Value(t, c.do(http.MethodGet, "/api/v1/dashboard", nil, &dash)).Equal(http.StatusOK)
	gt.Bool(t, dash.Busy).False()
}

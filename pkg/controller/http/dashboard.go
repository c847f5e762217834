package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/domain/types"
)

func registerDashboardHandlers(api huma.API, uc DashboardUseCase) {
	type dashboardOutput struct {
		Body struct {
			Charts         []chartBody `json:"charts"`
			Busy           bool        `json:"busy"`
			EditingChartID string      `json:"editing_chart_id,omitempty"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "get-dashboard", Method: http.MethodGet, Path: "/api/v1/dashboard", Summary: "Get the charts of this session", Tags: []string{"Dashboard"}},
		func(ctx context.Context, input *struct{}) (*dashboardOutput, error) {
			dashboard, err := uc.Get(ctx, sessionIDFromContext(ctx))
			if err != nil {
				return nil, mapErr(ctx, err)
			}
			out := &dashboardOutput{}
			out.Body.Charts = make([]chartBody, len(dashboard.Charts))
			for i, c := range dashboard.Charts {
				out.Body.Charts[i] = toChartBody(c)
			}
			out.Body.Busy = dashboard.Busy
			out.Body.EditingChartID = dashboard.Editing.String()
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "reset-dashboard", Method: http.MethodDelete, Path: "/api/v1/dashboard", Summary: "Remove every chart of this session", Tags: []string{"Dashboard"}, DefaultStatus: http.StatusNoContent},
		func(ctx context.Context, input *struct{}) (*struct{}, error) {
			if err := uc.Reset(ctx, sessionIDFromContext(ctx)); err != nil {
				return nil, mapErr(ctx, err)
			}
			return nil, nil
		})

	type searchOutput struct {
		Body struct {
			Added *chartBody `json:"added,omitempty" doc:"The new chart, absent when the search added nothing"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "search-dashboard", Method: http.MethodPost, Path: "/api/v1/dashboard/search", Summary: "Search series and add a chart for the first match", Tags: []string{"Dashboard"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Term string `json:"term" doc:"Free-text search term (e.g. GDP)"`
			}
		}) (*searchOutput, error) {
			chart, err := uc.Search(ctx, sessionIDFromContext(ctx), input.Body.Term)
			if err != nil {
				return nil, mapErr(ctx, err)
			}
			out := &searchOutput{}
			if chart != nil {
				body := toChartBody(chart)
				out.Body.Added = &body
			}
			return out, nil
		})
}

func registerChartHandlers(api huma.API, uc DashboardUseCase) {
	type chartOutput struct {
		Body chartBody
	}

	type chartIDInput struct {
		ChartID string `path:"chart_id"`
	}

	type chartDataOutput struct {
		Body struct {
			Chart        chartBody         `json:"chart"`
			Metadata     *metadataBody     `json:"metadata,omitempty"`
			Observations []observationBody `json:"observations"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "get-chart-data", Method: http.MethodGet, Path: "/api/v1/charts/{chart_id}/data", Summary: "Fetch live observations of a chart", Tags: []string{"Charts"}},
		func(ctx context.Context, input *chartIDInput) (*chartDataOutput, error) {
			data, err := uc.ChartData(ctx, sessionIDFromContext(ctx), model.ChartID(input.ChartID))
			if err != nil {
				return nil, mapErr(ctx, err)
			}
			out := &chartDataOutput{}
			out.Body.Chart = toChartBody(data.Chart)
			out.Body.Metadata = toMetadataBody(data.Metadata)
			out.Body.Observations = toObservationBodies(data.Observations)
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "begin-edit", Method: http.MethodPost, Path: "/api/v1/charts/{chart_id}/edit", Summary: "Open the edit surface for a chart", Tags: []string{"Charts"}},
		func(ctx context.Context, input *chartIDInput) (*chartOutput, error) {
			chart, err := uc.BeginEdit(ctx, sessionIDFromContext(ctx), model.ChartID(input.ChartID))
			if err != nil {
				return nil, mapErr(ctx, err)
			}
			return &chartOutput{Body: toChartBody(chart)}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "cancel-edit", Method: http.MethodDelete, Path: "/api/v1/charts/{chart_id}/edit", Summary: "Close the edit surface without changes", Tags: []string{"Charts"}, DefaultStatus: http.StatusNoContent},
		func(ctx context.Context, input *chartIDInput) (*struct{}, error) {
			if err := uc.CancelEdit(ctx, sessionIDFromContext(ctx), model.ChartID(input.ChartID)); err != nil {
				return nil, mapErr(ctx, err)
			}
			return nil, nil
		})

	huma.Register(api, huma.Operation{OperationID: "submit-edit", Method: http.MethodPut, Path: "/api/v1/charts/{chart_id}", Summary: "Apply the edit of a chart", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct {
			ChartID string `path:"chart_id"`
			Body    struct {
				SeriesID   *string `json:"series_id,omitempty" doc:"Replacement series; empty keeps the current one"`
				Title      *string `json:"title,omitempty"`
				Type       *string `json:"type,omitempty" doc:"area, line or bar; other values render as area"`
				Color      *string `json:"color,omitempty" doc:"Hex color, with or without #"`
				LineStyle  *string `json:"line_style,omitempty" doc:"monotone, linear or step"`
				YAxisLabel *string `json:"y_axis_label,omitempty"`
			}
		}) (*chartOutput, error) {
			edit := model.ChartEdit{
				SeriesID:   input.Body.SeriesID,
				Title:      input.Body.Title,
				Color:      input.Body.Color,
				YAxisLabel: input.Body.YAxisLabel,
			}
			if input.Body.Type != nil {
				t := types.ChartType(*input.Body.Type)
				edit.Type = &t
			}
			if input.Body.LineStyle != nil {
				ls := types.LineStyle(*input.Body.LineStyle)
				edit.LineStyle = &ls
			}

			chart, err := uc.SubmitEdit(ctx, sessionIDFromContext(ctx), model.ChartID(input.ChartID), edit)
			if err != nil {
				return nil, mapErr(ctx, err)
			}
			return &chartOutput{Body: toChartBody(chart)}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "remove-chart", Method: http.MethodDelete, Path: "/api/v1/charts/{chart_id}", Summary: "Remove a chart", Tags: []string{"Charts"}, DefaultStatus: http.StatusNoContent},
		func(ctx context.Context, input *chartIDInput) (*struct{}, error) {
			if err := uc.Remove(ctx, sessionIDFromContext(ctx), model.ChartID(input.ChartID)); err != nil {
				return nil, mapErr(ctx, err)
			}
			return nil, nil
		})
}

func registerSeriesHandlers(api huma.API, uc SeriesUseCase) {
	type previewOutput struct {
		Body struct {
			SeriesID     string            `json:"series_id"`
			Title        string            `json:"title"`
			HasData      bool              `json:"has_data"`
			Metadata     *metadataBody     `json:"metadata,omitempty"`
			Observations []observationBody `json:"observations"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "preview-series", Method: http.MethodGet, Path: "/api/v1/series/{series_id}/preview", Summary: "Load a series while choosing a replacement", Tags: []string{"Series"}},
		func(ctx context.Context, input *struct {
			SeriesID string `path:"series_id"`
		}) (*previewOutput, error) {
			preview, err := uc.Preview(ctx, input.SeriesID)
			if err != nil {
				return nil, mapErr(ctx, err)
			}
			out := &previewOutput{}
			out.Body.SeriesID = preview.SeriesID
			out.Body.Title = preview.Title
			out.Body.HasData = preview.HasData()
			out.Body.Metadata = toMetadataBody(preview.Metadata)
			out.Body.Observations = toObservationBodies(preview.Observations)
			if out.Body.Observations == nil {
				out.Body.Observations = []observationBody{}
			}
			return out, nil
		})
}

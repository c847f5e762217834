package http

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/usecase"
	"github.com/secmon-lab/fredboard/pkg/utils/errutil"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
)

// mapErr converts a use case error into the API error response. Remote
// failures keep their message so the user can read what went wrong;
// internal failures are logged and reported, and answered generically.
func mapErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrSessionRequired),
		errors.Is(err, usecase.ErrSeriesIDRequired):
		return huma.Error400BadRequest(err.Error())

	case errors.Is(err, model.ErrChartNotFound),
		errors.Is(err, model.ErrNoMatches):
		return huma.Error404NotFound(err.Error())

	case errors.Is(err, model.ErrNotEditing):
		return huma.Error409Conflict(err.Error())

	case errors.Is(err, model.ErrNoDataAvailable),
		errors.Is(err, model.ErrInvalidSeriesID):
		return huma.Error422UnprocessableEntity(err.Error())

	case errors.Is(err, model.ErrTransport):
		logging.From(ctx).Warn("series data source failed", "error", err.Error())
		return huma.Error502BadGateway(err.Error())

	case errors.Is(err, context.Canceled):
		return huma.Error503ServiceUnavailable("request canceled")
	}

	_ = errutil.Handle(ctx, err, "request failed")
	return huma.Error500InternalServerError("internal server error")
}

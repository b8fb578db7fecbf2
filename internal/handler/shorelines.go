package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/shorewatch/internal/analysis"
	"github.com/bbernstein/shorewatch/internal/api"
	"github.com/bbernstein/shorewatch/internal/archive"
	"github.com/bbernstein/shorewatch/internal/config"
	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/bbernstein/shorewatch/internal/tide"
	"github.com/rs/zerolog/log"
)

// Analyzer runs and recalls shoreline analyses
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	Stored(ctx context.Context, siteID, kind string) (*models.CrossDistanceSeries, error)
	Defaults() config.Settings
}

var _ Analyzer = (*analysis.Service)(nil)

type ShorelinesHandler struct {
	analyzer Analyzer
}

func NewShorelinesHandler(analyzer Analyzer) *ShorelinesHandler {
	return &ShorelinesHandler{
		analyzer: analyzer,
	}
}

// HandleRequest analyses a site, or with ?stored=<kind> returns the last
// persisted series without recomputing.
func (h *ShorelinesHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	if kind, ok := params["stored"]; ok {
		site := params["site"]
		series, err := h.analyzer.Stored(ctx, site, kind)
		if err != nil {
			return errorResponse(err, "Error loading stored results")
		}
		if series == nil {
			return api.Error("No stored results", http.StatusNotFound)
		}
		return api.Success(api.NewSeriesResponse(site, kind, series))
	}

	req, err := api.ParseAnalysisParams(params, h.analyzer.Defaults())
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}

	result, err := h.analyzer.Analyze(ctx, req)
	if err != nil {
		return errorResponse(err, "Error analysing site")
	}
	return api.Success(api.NewAnalysisResponse(result))
}

// errorResponse maps input problems to 4xx and tide service failures to 502;
// anything else is logged and reported as a server error with a generic
// message.
func errorResponse(err error, serverMessage string) (events.APIGatewayProxyResponse, error) {
	var (
		validationErr  *analysis.ValidationError
		noTideErr      *models.NoTideDataError
		zeroSlopeErr   *models.ZeroSlopeError
		transectErr    *models.InvalidTransectError
		observationErr *models.InvalidObservationError
		rangeErr       *tide.RangeError
		fetchErr       *tide.FetchError
	)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return api.Error(err.Error(), http.StatusNotFound)
	case errors.As(err, &validationErr),
		errors.As(err, &noTideErr),
		errors.As(err, &zeroSlopeErr),
		errors.As(err, &transectErr),
		errors.As(err, &observationErr),
		errors.As(err, &rangeErr),
		errors.Is(err, tide.ErrStationRequired):
		return api.Error(err.Error(), http.StatusBadRequest)
	case errors.As(err, &fetchErr):
		log.Error().Err(err).Msg(serverMessage)
		return api.Error(err.Error(), http.StatusBadGateway)
	}

	log.Error().Err(err).Msg(serverMessage)
	return api.Error(serverMessage, http.StatusInternalServerError)
}

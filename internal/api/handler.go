package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/shorewatch/internal/analysis"
	"github.com/bbernstein/shorewatch/internal/config"
	"github.com/bbernstein/shorewatch/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type AnalysisResponse struct {
	APIResponse
	Result *analysis.Result `json:"result"`
}

type SeriesResponse struct {
	APIResponse
	Site   string                      `json:"site"`
	Kind   string                      `json:"kind"`
	Series *models.CrossDistanceSeries `json:"series"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewAnalysisResponse(result *analysis.Result) *AnalysisResponse {
	return &AnalysisResponse{
		APIResponse: APIResponse{ResponseType: "analysis"},
		Result:      result,
	}
}

func NewSeriesResponse(site, kind string, series *models.CrossDistanceSeries) *SeriesResponse {
	return &SeriesResponse{
		APIResponse: APIResponse{ResponseType: "series"},
		Site:        site,
		Kind:        kind,
		Series:      series,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}, nil
}

// InvalidParameterError reports a query parameter that could not be parsed
type InvalidParameterError struct {
	Name  string
	Value string
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("Invalid parameter %s: %q", e.Name, e.Value)
}

// ParseAnalysisParams builds an analysis request from query parameters.
// Settings not given fall back to defaults.
func ParseAnalysisParams(params map[string]string, defaults config.Settings) (analysis.Request, error) {
	req := analysis.Request{
		SiteID:      params["site"],
		Settings:    defaults,
		NOAAStation: params["noaaStation"],
	}
	if req.SiteID == "" {
		return req, InvalidParameterError{Name: "site"}
	}

	floats := []struct {
		name   string
		target *float64
	}{
		{"alongDist", &req.Settings.AlongDist},
		{"maxDistRef", &req.Settings.MaxDistRef},
		{"maxOriginDist", &req.Settings.MaxOriginDist},
		{"georefThreshold", &req.Settings.GeorefThreshold},
		{"maxCloudCover", &req.Settings.MaxCloudCover},
		{"slope", &req.Slope},
	}
	for _, f := range floats {
		if err := parseFloatParam(params, f.name, f.target); err != nil {
			return req, err
		}
	}

	if _, ok := params["referenceElevation"]; ok {
		var ref float64
		if err := parseFloatParam(params, "referenceElevation", &ref); err != nil {
			return req, err
		}
		req.ReferenceElevation = &ref
	}

	if s, ok := params["export"]; ok {
		export, err := strconv.ParseBool(s)
		if err != nil {
			return req, InvalidParameterError{Name: "export", Value: s}
		}
		req.Export = export
	}

	return req, nil
}

func parseFloatParam(params map[string]string, name string, target *float64) error {
	s, ok := params[name]
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return InvalidParameterError{Name: name, Value: s}
	}
	*target = v
	return nil
}

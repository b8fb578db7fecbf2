package tide

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/bbernstein/shorewatch/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// maxNoaaRange is the longest span NOAA serves hourly predictions for in one request
const maxNoaaRange = 365 * 24 * time.Hour

// NOAASource fetches hourly predicted water levels (metres, MSL, GMT) for one
// NOAA station.
type NOAASource struct {
	httpClient client.Interface
	stationID  string
}

var _ Source = (*NOAASource)(nil)

func NewNOAASource(httpClient client.Interface, stationID string) (*NOAASource, error) {
	if stationID == "" {
		return nil, ErrStationRequired
	}
	return &NOAASource{
		httpClient: httpClient,
		stationID:  stationID,
	}, nil
}

// Samples fetches the series between start and end, splitting long ranges
// into yearly requests.
func (s *NOAASource) Samples(ctx context.Context, start, end time.Time) ([]models.TideSample, error) {
	if !end.After(start) {
		return nil, &RangeError{Start: start, End: end}
	}

	start = start.UTC().Truncate(24 * time.Hour)
	end = end.UTC()

	var samples []models.TideSample
	for chunkStart := start; chunkStart.Before(end); chunkStart = chunkStart.Add(maxNoaaRange) {
		chunkEnd := chunkStart.Add(maxNoaaRange - 24*time.Hour)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunk, err := s.fetchPredictions(ctx, chunkStart.Format("20060102"), chunkEnd.Format("20060102"))
		if err != nil {
			return nil, err
		}
		samples = append(samples, chunk...)
	}

	if len(samples) == 0 {
		return nil, &models.NoTideDataError{Source: "NOAA station " + s.stationID}
	}
	return SortSamples(samples), nil
}

func (s *NOAASource) fetchPredictions(ctx context.Context, startDate, endDate string) ([]models.TideSample, error) {
	resp, err := s.httpClient.Get(ctx, fmt.Sprintf("/api/prod/datagetter"+
		"?station=%s&begin_date=%s&end_date=%s&product=predictions&datum=MSL"+
		"&units=metric&time_zone=gmt&format=json&interval=h",
		s.stationID, startDate, endDate))
	if err != nil {
		return nil, s.fetchError("request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.fetchError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	log.Debug().Msgf("Fetched predictions from noaa: station=%s begin_date=%s end_date=%s",
		s.stationID, startDate, endDate)

	var noaaResp models.NoaaResponse
	if err := json.Unmarshal(resp.Body, &noaaResp); err != nil {
		return nil, s.fetchError("decoding response", err)
	}
	if noaaResp.Error != nil {
		return nil, s.fetchError(noaaResp.Error.Message, nil)
	}

	samples := make([]models.TideSample, len(noaaResp.Predictions))
	for i, p := range noaaResp.Predictions {
		ts, err := parseNoaaTime(p.Time)
		if err != nil {
			return nil, err
		}

		height, err := strconv.ParseFloat(p.Height, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing height %s: %w", p.Height, err)
		}

		samples[i] = models.TideSample{Time: ts, Elevation: height}
	}

	return samples, nil
}

func (s *NOAASource) fetchError(reason string, err error) *FetchError {
	return &FetchError{Station: s.stationID, Reason: reason, Err: err}
}

func parseNoaaTime(timeStr string) (time.Time, error) {
	// NOAA time format is "2006-01-02 15:04", GMT when requested with time_zone=gmt
	t, err := time.ParseInLocation("2006-01-02 15:04", timeStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %s: %w", timeStr, err)
	}
	return t, nil
}

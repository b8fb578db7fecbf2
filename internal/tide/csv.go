package tide

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseCSV reads a tide level file of (timestamp, elevation) rows. A header
// row is skipped if present; timestamps without a zone are taken as UTC. The
// returned samples are sorted by time.
func ParseCSV(r io.Reader) ([]models.TideSample, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var samples []models.TideSample
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tide csv: %w", err)
		}
		line++

		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected timestamp and elevation, got %d fields", line, len(record))
		}

		ts, timeErr := parseTime(record[0])
		elevation, elevErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if line == 1 && (timeErr != nil || elevErr != nil) {
			// header row
			continue
		}
		if timeErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, timeErr)
		}
		if elevErr != nil {
			return nil, fmt.Errorf("line %d: parsing elevation %q: %w", line, record[1], elevErr)
		}

		sample := models.TideSample{Time: ts, Elevation: elevation}
		if err := sample.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}

	log.Debug().Int("samples", len(samples)).Msg("Parsed tide csv")
	return SortSamples(samples), nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing time %q", s)
}

package models

import (
	"fmt"
	"sort"
	"time"
)

// ResultRecord is one persisted row of a site's analysis: every transect's
// distance for a single observation date.
type ResultRecord struct {
	SiteID      string              `dynamodbav:"siteId"`
	RecordKey   string              `dynamodbav:"recordKey"` // <kind>#<date>[#<seq>]
	Date        string              `dynamodbav:"date"`      // RFC3339, UTC
	Kind        string              `dynamodbav:"kind"`      // raw or corrected
	Seq         int                 `dynamodbav:"seq,omitempty"`
	Values      map[string]*float64 `dynamodbav:"values"`
	LastUpdated int64               `dynamodbav:"lastUpdated"`
	TTL         int64               `dynamodbav:"ttl"`
}

const (
	ResultKindRaw       = "raw"
	ResultKindCorrected = "corrected"
)

// Validate checks if a ResultRecord's fields are valid
func (r *ResultRecord) Validate() error {
	if r.SiteID == "" {
		return fmt.Errorf("site ID is required")
	}

	if r.Date == "" {
		return fmt.Errorf("date is required")
	}

	if _, err := time.Parse(time.RFC3339, r.Date); err != nil {
		return fmt.Errorf("invalid date format: %s", r.Date)
	}

	switch r.Kind {
	case ResultKindRaw, ResultKindCorrected:
	default:
		return fmt.Errorf("invalid result kind: %s", r.Kind)
	}

	if r.Seq < 0 {
		return fmt.Errorf("invalid sequence number: %d", r.Seq)
	}

	if r.RecordKey != RecordKey(r.Kind, r.Date, r.Seq) {
		return fmt.Errorf("record key %q does not match kind and date", r.RecordKey)
	}

	return nil
}

// RecordKey builds the table sort key; a site's raw and corrected rows share
// the partition and are told apart by the kind prefix. seq numbers the
// captures sharing one timestamp; the first has none, so keys still sort by
// date.
func RecordKey(kind, date string, seq int) string {
	if seq == 0 {
		return kind + "#" + date
	}
	return fmt.Sprintf("%s#%s#%d", kind, date, seq)
}

// RecordKeyPrefix is the sort key prefix selecting every row of one kind
func RecordKeyPrefix(kind string) string {
	return kind + "#"
}

// RecordsFromSeries flattens a series into one record per date
func RecordsFromSeries(siteID, kind string, s *CrossDistanceSeries) []ResultRecord {
	records := make([]ResultRecord, len(s.Dates))
	seqs := make(map[string]int, len(s.Dates))
	for i, date := range s.Dates {
		values := make(map[string]*float64, len(s.TransectIDs))
		for _, id := range s.TransectIDs {
			values[id] = s.Get(id, i).Ptr()
		}
		dateStr := date.UTC().Format(time.RFC3339)
		seq := seqs[dateStr]
		seqs[dateStr]++
		records[i] = ResultRecord{
			SiteID:    siteID,
			RecordKey: RecordKey(kind, dateStr, seq),
			Date:      dateStr,
			Kind:      kind,
			Seq:       seq,
			Values:    values,
		}
	}
	return records
}

// SeriesFromRecords rebuilds a series from persisted rows. Records must be in
// date order; transect ids are taken in the given order, or sorted from the
// records when none are given.
func SeriesFromRecords(records []ResultRecord, transectIDs []string) (*CrossDistanceSeries, error) {
	if transectIDs == nil {
		transectIDs = recordTransectIDs(records)
	}
	dates := make([]time.Time, len(records))
	for i, r := range records {
		d, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing record date %s: %w", r.Date, err)
		}
		dates[i] = d.UTC()
	}

	s := NewCrossDistanceSeries(dates, transectIDs)
	for i, r := range records {
		for _, id := range transectIDs {
			s.Values[id][i] = DistanceFromPtr(r.Values[id])
		}
	}
	return s, nil
}

func recordTransectIDs(records []ResultRecord) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range records {
		for id := range r.Values {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

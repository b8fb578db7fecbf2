package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsFromSeries(t *testing.T) {
	records := RecordsFromSeries("narrabeen", ResultKindCorrected, testSeries())
	require.Len(t, records, 2)

	r := records[1]
	assert.Equal(t, "narrabeen", r.SiteID)
	assert.Equal(t, "2020-01-02T06:00:00Z", r.Date)
	assert.Equal(t, "corrected#2020-01-02T06:00:00Z", r.RecordKey)
	require.NoError(t, r.Validate())
	require.NotNil(t, r.Values["T2"])
	assert.Equal(t, -3.0, *r.Values["T2"])
	assert.Nil(t, records[0].Values["T2"])
}

func TestRecordsFromSeriesSameTimestamp(t *testing.T) {
	s := NewCrossDistanceSeries([]time.Time{day1, day1, day2}, []string{"T1"})
	s.Values["T1"] = []Distance{Measured(1), Measured(2), Measured(3)}

	records := RecordsFromSeries("narrabeen", ResultKindRaw, s)
	require.Len(t, records, 3)
	keys := make([]string, len(records))
	for i, r := range records {
		require.NoError(t, r.Validate())
		keys[i] = r.RecordKey
	}
	d1 := day1.UTC().Format(time.RFC3339)
	assert.Equal(t, []string{
		"raw#" + d1,
		"raw#" + d1 + "#1",
		"raw#" + day2.UTC().Format(time.RFC3339),
	}, keys)

	got, err := SeriesFromRecords(records, []string{"T1"})
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSeriesFromRecords(t *testing.T) {
	want := testSeries()
	records := RecordsFromSeries("narrabeen", ResultKindRaw, want)

	got, err := SeriesFromRecords(records, []string{"T1", "T2"})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// ids sorted from the records when not given
	got, err = SeriesFromRecords(records, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, got.TransectIDs)

	records[0].Date = "yesterday"
	_, err = SeriesFromRecords(records, nil)
	assert.Error(t, err)
}

func TestResultRecordValidate(t *testing.T) {
	valid := RecordsFromSeries("s", ResultKindRaw, testSeries())[0]

	tests := []struct {
		name    string
		modify  func(r *ResultRecord)
		wantErr bool
	}{
		{name: "valid", modify: func(_ *ResultRecord) {}},
		{name: "missing site", modify: func(r *ResultRecord) { r.SiteID = "" }, wantErr: true},
		{name: "missing date", modify: func(r *ResultRecord) { r.Date = "" }, wantErr: true},
		{name: "bad date", modify: func(r *ResultRecord) { r.Date = "2020-01-01" }, wantErr: true},
		{name: "bad kind", modify: func(r *ResultRecord) { r.Kind = "smoothed" }, wantErr: true},
		{name: "negative seq", modify: func(r *ResultRecord) { r.Seq = -1 }, wantErr: true},
		{name: "seq without key suffix", modify: func(r *ResultRecord) { r.Seq = 1 }, wantErr: true},
		{name: "stale key", modify: func(r *ResultRecord) { r.RecordKey = "raw#" + day2.Format(time.RFC3339) }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.modify(&r)
			if tt.wantErr {
				assert.Error(t, r.Validate())
			} else {
				assert.NoError(t, r.Validate())
			}
		})
	}
}

func TestTideSampleValidate(t *testing.T) {
	valid := TideSample{Time: day1, Elevation: 0.4}
	assert.NoError(t, valid.Validate())

	missingTime := TideSample{Elevation: 0.4}
	assert.Error(t, missingTime.Validate())
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestExtractRowsShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", `[{"spend": 1}, {"spend": 2}]`, 2},
		{"rows wrapper", `{"rows": [{"spend": 1}]}`, 1},
		{"data wrapper", `{"data": [{"spend": 1}, {"spend": 2}, {"spend": 3}]}`, 3},
		{"results wrapper", `{"results": [{"spend": 1}]}`, 1},
		{"list wrapper", `{"list": [{"spend": 1}]}`, 1},
		{"single object", `{"spend": 1, "clicks": 2}`, 1},
		{"empty array", `[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ExtractRows(decode(t, tt.raw))
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestExtractRowsWrapperPrecedence(t *testing.T) {
	// "rows" wins over "data" when both are present.
	rows := ExtractRows(decode(t, `{"rows": [{"a": 1}], "data": [{"b": 1}, {"b": 2}]}`))
	require.Len(t, rows, 1)
	_, hasA := rows[0]["a"]
	assert.True(t, hasA)
}

func TestExtractRowsNonRowInputs(t *testing.T) {
	assert.Nil(t, ExtractRows(nil))
	assert.Nil(t, ExtractRows("not json object"))
	assert.Nil(t, ExtractRows(42.0))
}

func TestFlatRowReader(t *testing.T) {
	row := ExtractRows(decode(t, `{"spend": "12.5", "clicks": 40, "impressions": null, "date_start": "2026-08-01"}`))[0]
	reader := ReaderFor(row)

	spend, ok := reader.MetricValue("spend")
	require.True(t, ok)
	assert.Equal(t, 12.5, spend)

	clicks, ok := reader.MetricValue("clicks")
	require.True(t, ok)
	assert.Equal(t, 40.0, clicks)

	// Null and missing values are excluded, not zeroed.
	_, ok = reader.MetricValue("impressions")
	assert.False(t, ok)
	_, ok = reader.MetricValue("conversions")
	assert.False(t, ok)

	assert.Equal(t, "2026-08-01", reader.Date())
}

func TestFlatRowDateKeyOrder(t *testing.T) {
	row := Row{"stat_time_day": "2026-08-02", "date_start": "2026-08-01", "date": "2026-07-31"}
	assert.Equal(t, "2026-08-02", ReaderFor(row).Date())

	row = Row{"date": "2026-07-31"}
	assert.Equal(t, "2026-07-31", ReaderFor(row).Date())

	row = Row{"spend": 1.0}
	assert.Empty(t, ReaderFor(row).Date())
}

func TestNestedRowReader(t *testing.T) {
	row := ExtractRows(decode(t, `{
		"dimensions": {"stat_time_day": "2026-08-03"},
		"metrics": {"spend": "99.9", "impressions": "oops"}
	}`))[0]
	reader := ReaderFor(row)

	spend, ok := reader.MetricValue("spend")
	require.True(t, ok)
	assert.Equal(t, 99.9, spend)

	_, ok = reader.MetricValue("impressions")
	assert.False(t, ok)

	assert.Equal(t, "2026-08-03", reader.Date())
}

func TestReaderForRequiresBothNestedKeys(t *testing.T) {
	// A row with only "metrics" is still read flat.
	row := ExtractRows(decode(t, `{"metrics": {"spend": 5}, "spend": 7, "date_start": "2026-08-01"}`))[0]
	reader := ReaderFor(row)

	spend, ok := reader.MetricValue("spend")
	require.True(t, ok)
	assert.Equal(t, 7.0, spend)
}

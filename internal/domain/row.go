package domain

import "strconv"

// Row is one upstream data point. The sample-data endpoint does not fix
// its payload shape across platforms and levels, so rows stay untyped
// and are read through a RowReader.
type Row map[string]any

// ExtractRows normalizes the decoded upstream payload into a flat row
// sequence. Total function: any input yields a (possibly empty) slice.
func ExtractRows(data any) []Row {
	if data == nil {
		return nil
	}
	if rows, ok := toRows(data); ok {
		return rows
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	// Known wrapper keys, first match wins.
	for _, key := range []string{"rows", "data", "results", "list"} {
		if rows, ok := toRows(obj[key]); ok {
			return rows
		}
	}
	// Bare object: treat as a single row.
	return []Row{Row(obj)}
}

func toRows(v any) ([]Row, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	rows := make([]Row, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			rows = append(rows, Row(obj))
		}
	}
	return rows, true
}

// RowReader hides the two upstream row shapes behind a uniform accessor
// so shape sniffing stays out of the analyzer.
type RowReader interface {
	// MetricValue returns the numeric value for a metric, and whether
	// the row carries a parseable number for it.
	MetricValue(name string) (float64, bool)
	// Date returns the row's date string, or "" when absent.
	Date() string
}

// ReaderFor selects the accessor matching the row's shape: rows with
// both "metrics" and "dimensions" objects use the nested TikTok layout,
// everything else is read flat (Meta layout).
func ReaderFor(row Row) RowReader {
	metrics, hasMetrics := row["metrics"].(map[string]any)
	dimensions, hasDimensions := row["dimensions"].(map[string]any)
	if hasMetrics && hasDimensions {
		return nestedRow{metrics: metrics, dimensions: dimensions}
	}
	return flatRow(row)
}

// flatRow reads `{metric: value, date_start: "..."}` records.
type flatRow Row

func (r flatRow) MetricValue(name string) (float64, bool) {
	return toNumber(r[name])
}

func (r flatRow) Date() string {
	for _, key := range []string{"stat_time_day", "date_start", "date"} {
		if s, ok := r[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// nestedRow reads `{dimensions: {stat_time_day: "..."}, metrics: {...}}`
// records.
type nestedRow struct {
	metrics    map[string]any
	dimensions map[string]any
}

func (r nestedRow) MetricValue(name string) (float64, bool) {
	return toNumber(r.metrics[name])
}

func (r nestedRow) Date() string {
	if s, ok := r.dimensions["stat_time_day"].(string); ok {
		return s
	}
	return ""
}

// toNumber coerces upstream values the way JSON consumers usually see
// them: numbers pass through, numeric strings parse, everything else is
// excluded (never treated as zero).
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

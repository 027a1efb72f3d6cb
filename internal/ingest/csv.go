// Package ingest loads metric observation CSVs into engine rows. The
// loader is deliberately forgiving: numeric-looking cells become
// floats, everything else stays a string dimension value, and legacy
// column names are bridged to their canonical forms.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"driftwatch/internal/metric"
)

// Timestamp columns probed, in order, when bucketing rows into days.
var timestampFields = []string{"metric_ts", "date", "event_ts"}

// ReadFile loads a metric CSV from disk. See Read.
func ReadFile(path string) ([]metric.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metric csv: %w", err)
	}
	defer f.Close()
	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Read parses a headered CSV into normalized rows. Cells that parse as
// numbers become float64 fields; the rest stay strings. Legacy column
// names are rewritten to their canonical forms, so downstream code only
// ever sees one vocabulary.
func Read(r io.Reader) ([]metric.Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("metric csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("metric csv header: %w", err)
	}

	var rows []metric.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("metric csv row %d: %w", len(rows)+2, err)
		}
		row := make(metric.Row, len(header))
		for i, col := range header {
			if i >= len(record) {
				break
			}
			cell := record[i]
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				row[col] = f
			} else {
				row[col] = cell
			}
		}
		rows = append(rows, row)
	}
	return metric.NormalizeRows(rows), nil
}

// DailyAverages buckets rows by calendar day and returns the daily
// means of one metric field, ordered chronologically. Days are taken
// from the first known timestamp column; the date part of an ISO
// timestamp sorts correctly as a plain string. Rows without any
// timestamp land in a single "unknown" bucket.
func DailyAverages(rows []metric.Row, metricField string) []float64 {
	buckets := make(map[string][]float64)
	for _, r := range rows {
		day := "unknown"
		for _, field := range timestampFields {
			if ts, ok := r.String(field); ok && ts != "" {
				if len(ts) > 10 {
					ts = ts[:10]
				}
				day = ts
				break
			}
		}
		buckets[day] = append(buckets[day], r.FloatOr(metricField, 0))
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	averages := make([]float64, 0, len(days))
	for _, day := range days {
		var sum float64
		for _, v := range buckets[day] {
			sum += v
		}
		averages = append(averages, sum/float64(len(buckets[day])))
	}
	return averages
}

// Package metric defines the shared vocabulary of the diagnosis engine:
// flat observation rows, metric movement directions, and severity tiers.
package metric

// Period labels for the two comparison windows of a diagnosis run.
const (
	PeriodBaseline = "baseline"
	PeriodCurrent  = "current"
)

// PeriodField is the default column carrying the period label.
const PeriodField = "period"

// Trust field names consumed by the data quality gate.
const (
	FieldCompleteness = "data_completeness"
	FieldFreshnessMin = "data_freshness_min"
)

// Row is one flat observation: a period label, dimension fields as
// strings, and metric/trust fields as numbers. Rows are owned by the
// caller and never mutated by the engine.
type Row map[string]any

// Float returns the named field as a float64. Non-numeric and missing
// values report ok=false.
func (r Row) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// FloatOr returns the named field as a float64, or def when the field
// is missing or non-numeric.
func (r Row) FloatOr(key string, def float64) float64 {
	if v, ok := r.Float(key); ok {
		return v
	}
	return def
}

// String returns the named field as a string. Missing and non-string
// values report ok=false.
func (r Row) String(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// Has reports whether the row carries the named field at all.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Period returns the row's period label, or "" when absent.
func (r Row) Period() string {
	s, _ := r.String(PeriodField)
	return s
}

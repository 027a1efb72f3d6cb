package metric

// The telemetry pipeline predates the metric renames, so exported CSVs
// still carry the old column names. The bridge below maps them to
// canonical names; nothing past the ingestion boundary sees an alias.
var fieldAliases = map[string]string{
	"dlctr":             "click_quality",
	"dlctr_value":       "click_quality_value",
	"qsr":               "search_quality_success",
	"qsr_value":         "search_quality_success_value",
	"sain_trigger":      "ai_trigger",
	"sain_success":      "ai_success",
	"freshness_lag_min": FieldFreshnessMin,
}

// completeness_pct is the one alias that also changes units (0-100
// percentage instead of a 0-1 ratio), so it is handled separately.
const legacyCompletenessField = "completeness_pct"

// CanonicalField maps a possibly-legacy field name to its canonical
// name. Unknown names pass through unchanged.
func CanonicalField(name string) string {
	if canonical, ok := fieldAliases[name]; ok {
		return canonical
	}
	if name == legacyCompletenessField {
		return FieldCompleteness
	}
	return name
}

// NormalizeRow returns a copy of the row with legacy field names
// bridged to canonical ones and the completeness percentage rescaled
// to a ratio. Rows already canonical come back as an identical copy.
func NormalizeRow(r Row) Row {
	out := make(Row, len(r))
	for key, value := range r {
		if key == legacyCompletenessField {
			if pct, ok := r.Float(key); ok {
				out[FieldCompleteness] = pct / 100.0
				continue
			}
		}
		out[CanonicalField(key)] = value
	}
	return out
}

// NormalizeRows applies NormalizeRow to every row.
func NormalizeRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = NormalizeRow(r)
	}
	return out
}

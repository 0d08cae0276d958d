package statement

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Row is one reporting period from a provider payload: a date string plus the
// raw field map exactly as decoded from the wire.
type Row struct {
	Date   string
	Fields map[string]any
}

// AliasMap maps provider-specific field names to canonical line items. Each
// provider adapter owns one alias map per statement type; adding a provider
// means writing alias maps, not touching ratio logic.
type AliasMap map[string]LineItem

// CanonicalAliases returns the identity alias map for a statement type, used
// when a payload already carries canonical field names.
func CanonicalAliases(t Type) AliasMap {
	m := make(AliasMap)
	for _, item := range allowed[t] {
		m[string(item)] = item
	}
	return m
}

// Normalize builds a Statement from raw provider rows. Fields not present in
// aliases are silently dropped; values that cannot be coerced to a finite
// number are treated as missing; rows without a parseable year are skipped.
// An empty or malformed payload yields an empty statement, not an error, so
// callers can distinguish "no data" from a computation failure.
func Normalize(t Type, rows []Row, aliases AliasMap) *Statement {
	s := New(t)
	for _, row := range rows {
		year, ok := fiscalYear(row.Date)
		if !ok {
			continue
		}
		for field, raw := range row.Fields {
			item, ok := aliases[field]
			if !ok {
				continue
			}
			v, ok := Coerce(raw)
			if !ok {
				continue
			}
			s.Set(item, year, v)
		}
	}
	return s
}

// fiscalYear extracts the year from a provider date string. Accepts
// "YYYY-MM-DD", "YYYY-MM", "YYYY", and RFC3339 timestamps.
func fiscalYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1900 || year > 2200 {
		return 0, false
	}
	return year, true
}

// Coerce converts a decoded JSON value to a finite float64. Providers encode
// numbers as raw floats, strings ("123.45", "None"), json.Number, or wrapped
// containers like {"raw": 123.45, "fmt": "123.45M"}; everything else, along
// with NaN and infinities, counts as missing.
func Coerce(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "null") || s == "-" || strings.EqualFold(s, "n/a") {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	case map[string]any:
		// Wrapped value container: prefer the machine-readable field.
		if inner, ok := v["raw"]; ok {
			return Coerce(inner)
		}
		if inner, ok := v["fmt"]; ok {
			return Coerce(inner)
		}
		return 0, false
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

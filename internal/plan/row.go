package plan

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const UnknownTable = "Unknown"

// PlanRow is one step of a MySQL-style tabular EXPLAIN result.
type PlanRow struct {
	ID            int64   `json:"id,omitempty"`
	SelectType    string  `json:"select_type,omitempty"`
	Table         string  `json:"table"`
	AccessType    string  `json:"access_type,omitempty"`
	PossibleKeys  string  `json:"possible_keys,omitempty"`
	Key           string  `json:"key,omitempty"`
	Ref           string  `json:"ref,omitempty"`
	EstimatedRows int64   `json:"estimated_rows"`
	Filtered      float64 `json:"filtered,omitempty"`
	Extra         string  `json:"extra,omitempty"`
}

// Column aliases, first match wins. Keys are compared case-insensitively.
var (
	tableKeys        = []string{"table", "table_name"}
	selectTypeKeys   = []string{"select_type"}
	accessTypeKeys   = []string{"type", "access_type"}
	possibleKeysKeys = []string{"possible_keys"}
	keyKeys          = []string{"key"}
	refKeys          = []string{"ref"}
	rowsKeys         = []string{"rows", "estimated_rows", "rows_examined_per_scan"}
	filteredKeys     = []string{"filtered"}
	extraKeys        = []string{"extra"}
	idKeys           = []string{"id", "select_id"}
)

// NewPlanRow normalizes one raw EXPLAIN record. Missing or unusable values
// fall back to defaults; it never fails.
func NewPlanRow(raw map[string]any) PlanRow {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[strings.ToLower(strings.TrimSpace(k))] = v
	}

	row := PlanRow{
		ID:            toInt(lookup(fields, idKeys)),
		SelectType:    toString(lookup(fields, selectTypeKeys)),
		Table:         toString(lookup(fields, tableKeys)),
		AccessType:    toString(lookup(fields, accessTypeKeys)),
		PossibleKeys:  toString(lookup(fields, possibleKeysKeys)),
		Key:           toString(lookup(fields, keyKeys)),
		Ref:           toString(lookup(fields, refKeys)),
		EstimatedRows: toInt(lookup(fields, rowsKeys)),
		Filtered:      toFloat(lookup(fields, filteredKeys)),
		Extra:         toString(lookup(fields, extraKeys)),
	}

	if row.Table == "" {
		row.Table = UnknownTable
	}
	if row.EstimatedRows < 0 {
		row.EstimatedRows = 0
	}

	return row
}

func lookup(fields map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case json.Number:
		return s.String()
	case []any:
		// MySQL FORMAT=JSON lists possible_keys as an array
		parts := make([]string, 0, len(s))
		for _, p := range s {
			if str := toString(p); str != "" {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(n)
	case float64:
		switch {
		case math.IsNaN(n) || n < 0:
			return 0
		case n >= math.MaxInt64:
			return math.MaxInt64
		}
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return toInt(f)
		}
	case string, []byte:
		s := toString(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return toInt(f)
		}
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string, []byte:
		f, err := strconv.ParseFloat(toString(n), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

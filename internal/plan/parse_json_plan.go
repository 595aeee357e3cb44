package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ParseJSONRows accepts a JSON array of tabular EXPLAIN rows, an object
// wrapping such an array under "rows", or PostgreSQL EXPLAIN (FORMAT JSON)
// output.
func ParseJSONRows(data []byte) ([]PlanRow, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty EXPLAIN output")
	}

	if data[0] == '{' {
		var wrapper struct {
			Rows []map[string]any `json:"rows"`
		}
		if err := unmarshalNumbers(data, &wrapper); err != nil {
			return nil, fmt.Errorf("invalid EXPLAIN JSON: %w", err)
		}
		if wrapper.Rows == nil {
			return nil, errors.New(`invalid EXPLAIN JSON: object input must contain a "rows" array`)
		}
		return rowsFromMaps(wrapper.Rows)
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid EXPLAIN JSON: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("empty EXPLAIN output")
	}

	if _, ok := entries[0]["Plan"]; ok {
		return parsePostgresJSON(data)
	}

	var raw []map[string]any
	if err := unmarshalNumbers(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid EXPLAIN JSON: %w", err)
	}
	return rowsFromMaps(raw)
}

func parsePostgresJSON(data []byte) ([]PlanRow, error) {
	var plans []ExplainOutput
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("invalid EXPLAIN JSON: %w", err)
	}
	if len(plans) == 0 {
		return nil, errors.New("empty EXPLAIN output")
	}
	return FlattenPostgres(&plans[0].Plan), nil
}

func rowsFromMaps(raw []map[string]any) ([]PlanRow, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty EXPLAIN output")
	}
	rows := make([]PlanRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, NewPlanRow(r))
	}
	return rows, nil
}

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

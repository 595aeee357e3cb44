package plan

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNewPlanRow_Aliases(t *testing.T) {
	row := NewPlanRow(map[string]any{
		"Table_Name":             "logs",
		"ACCESS_TYPE":            "range",
		"rows_examined_per_scan": int64(42),
		"select_id":              int64(3),
	})

	if row.Table != "logs" {
		t.Errorf("Table = %q, want logs", row.Table)
	}
	if row.AccessType != "range" {
		t.Errorf("AccessType = %q, want range", row.AccessType)
	}
	if row.EstimatedRows != 42 {
		t.Errorf("EstimatedRows = %d, want 42", row.EstimatedRows)
	}
	if row.ID != 3 {
		t.Errorf("ID = %d, want 3", row.ID)
	}
}

func TestNewPlanRow_PrimaryKeyWins(t *testing.T) {
	row := NewPlanRow(map[string]any{
		"type":           "ALL",
		"access_type":    "ref",
		"rows":           int64(10),
		"estimated_rows": int64(99),
	})

	if row.AccessType != "ALL" {
		t.Errorf("AccessType = %q, want ALL", row.AccessType)
	}
	if row.EstimatedRows != 10 {
		t.Errorf("EstimatedRows = %d, want 10", row.EstimatedRows)
	}
}

func TestNewPlanRow_DriverBytes(t *testing.T) {
	// go-sql-driver/mysql returns text protocol columns as []byte
	row := NewPlanRow(map[string]any{
		"id":            []byte("1"),
		"table":         []byte("orders"),
		"type":          []byte("ALL"),
		"possible_keys": nil,
		"key":           nil,
		"rows":          []byte("50000"),
		"filtered":      []byte("10.00"),
		"Extra":         []byte("Using where"),
	})

	want := PlanRow{
		ID:            1,
		Table:         "orders",
		AccessType:    "ALL",
		EstimatedRows: 50000,
		Filtered:      10,
		Extra:         "Using where",
	}
	if row != want {
		t.Errorf("got %+v, want %+v", row, want)
	}
}

func TestNewPlanRow_JSONNumbers(t *testing.T) {
	row := NewPlanRow(map[string]any{
		"table":    "t",
		"rows":     json.Number("1.5e3"),
		"filtered": json.Number("33.33"),
	})

	if row.EstimatedRows != 1500 {
		t.Errorf("EstimatedRows = %d, want 1500", row.EstimatedRows)
	}
	if row.Filtered != 33.33 {
		t.Errorf("Filtered = %v, want 33.33", row.Filtered)
	}
}

func TestNewPlanRow_Defaults(t *testing.T) {
	row := NewPlanRow(map[string]any{})

	if row.Table != UnknownTable {
		t.Errorf("Table = %q, want %q", row.Table, UnknownTable)
	}
	if row.EstimatedRows != 0 {
		t.Errorf("EstimatedRows = %d, want 0", row.EstimatedRows)
	}
	if row.AccessType != "" || row.PossibleKeys != "" || row.Key != "" || row.Extra != "" {
		t.Errorf("expected empty text fields, got %+v", row)
	}
}

func TestNewPlanRow_NegativeRows(t *testing.T) {
	row := NewPlanRow(map[string]any{"table": "t", "rows": -1.0})
	if row.EstimatedRows != 0 {
		t.Errorf("EstimatedRows = %d, want 0", row.EstimatedRows)
	}
}

func TestNewPlanRow_HugeRowsSaturate(t *testing.T) {
	tests := []struct {
		name string
		rows any
	}{
		{"float", 1e20},
		{"string", "99999999999999999999"},
		{"driver bytes", []byte("99999999999999999999")},
		{"json number", json.Number("1e20")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := NewPlanRow(map[string]any{"table": "events", "rows": tt.rows})
			if row.EstimatedRows != math.MaxInt64 {
				t.Errorf("EstimatedRows = %d, want %d", row.EstimatedRows, int64(math.MaxInt64))
			}
		})
	}
}

func TestNewPlanRow_UnusableValues(t *testing.T) {
	row := NewPlanRow(map[string]any{
		"table": struct{}{},
		"rows":  "many",
		"key":   map[string]any{"a": 1},
	})

	if row.Table != UnknownTable {
		t.Errorf("Table = %q, want %q", row.Table, UnknownTable)
	}
	if row.EstimatedRows != 0 {
		t.Errorf("EstimatedRows = %d, want 0", row.EstimatedRows)
	}
	if row.Key != "" {
		t.Errorf("Key = %q, want empty", row.Key)
	}
}

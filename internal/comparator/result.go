package comparator

import (
	"github.com/jacobarthurs/myplan/internal/analyzer"
)

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ChangeType int

const (
	NoChange    ChangeType = 0
	Modified    ChangeType = 1
	Added       ChangeType = 2
	Removed     ChangeType = 3
	TypeChanged ChangeType = 4
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TypeChanged:
		return "type_changed"
	default:
		return "no_change"
	}
}

func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// RowDelta describes how the plan row at one position changed.
type RowDelta struct {
	Position   int        `json:"position"`
	Table      string     `json:"table"`
	ChangeType ChangeType `json:"change_type"`

	OldTable string `json:"old_table,omitempty"`

	OldAccessType string `json:"old_access_type,omitempty"`
	NewAccessType string `json:"new_access_type,omitempty"`

	OldKey string `json:"old_key,omitempty"`
	NewKey string `json:"new_key,omitempty"`

	OldRows   int64     `json:"old_rows"`
	NewRows   int64     `json:"new_rows"`
	RowsDelta int64     `json:"rows_delta"`
	RowsPct   float64   `json:"rows_pct"`
	RowsDir   Direction `json:"rows_dir"`

	OldExtra string `json:"old_extra,omitempty"`
	NewExtra string `json:"new_extra,omitempty"`
}

type ComparisonResult struct {
	Deltas     []RowDelta         `json:"deltas"`
	Resolved   []analyzer.Finding `json:"resolved"`
	Introduced []analyzer.Finding `json:"introduced"`
	Summary    Summary            `json:"summary"`

	// Set when that side's plan could not be fetched.
	OldPlanError string `json:"old_plan_error,omitempty"`
	NewPlanError string `json:"new_plan_error,omitempty"`
}

func (r ComparisonResult) PlansCompared() bool {
	return r.OldPlanError == "" && r.NewPlanError == ""
}

type Summary struct {
	OldTotalRows int64     `json:"old_total_rows"`
	NewTotalRows int64     `json:"new_total_rows"`
	RowsDelta    int64     `json:"rows_delta"`
	RowsPct      float64   `json:"rows_pct"`
	RowsDir      Direction `json:"rows_dir"`

	OldFindings int       `json:"old_findings"`
	NewFindings int       `json:"new_findings"`
	OldCritical int       `json:"old_critical"`
	NewCritical int       `json:"new_critical"`
	FindingsDir Direction `json:"findings_dir"`

	RowsAdded       int `json:"rows_added"`
	RowsRemoved     int `json:"rows_removed"`
	RowsModified    int `json:"rows_modified"`
	RowsTypeChanged int `json:"rows_type_changed"`

	Verdict string `json:"verdict"`
}

func (s Summary) Changes() int {
	return s.RowsAdded + s.RowsRemoved + s.RowsModified + s.RowsTypeChanged
}

package comparator

import (
	"testing"

	"github.com/jacobarthurs/myplan/internal/analyzer"
	"github.com/jacobarthurs/myplan/internal/plan"
)

func defaultComparator() *Comparator {
	return &Comparator{Threshold: 5.0}
}

func TestDiffRow_SameRow(t *testing.T) {
	c := defaultComparator()
	row := plan.PlanRow{
		Table:         "users",
		AccessType:    "ref",
		Key:           "idx_email",
		EstimatedRows: 100,
	}

	delta := c.diffRow(1, &row, &row)

	if delta.ChangeType != NoChange {
		t.Errorf("ChangeType = %v, want NoChange", delta.ChangeType)
	}
	if delta.RowsDelta != 0 {
		t.Errorf("RowsDelta = %d, want 0", delta.RowsDelta)
	}
}

func TestDiffRow_RowsIncrease(t *testing.T) {
	c := defaultComparator()
	old := plan.PlanRow{Table: "orders", AccessType: "ref", Key: "idx_user", EstimatedRows: 100}
	new := plan.PlanRow{Table: "orders", AccessType: "ref", Key: "idx_user", EstimatedRows: 200}

	delta := c.diffRow(1, &old, &new)

	if delta.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified", delta.ChangeType)
	}
	if delta.RowsDir != Regressed {
		t.Errorf("RowsDir = %v, want Regressed", delta.RowsDir)
	}
	if delta.RowsDelta != 100 {
		t.Errorf("RowsDelta = %d, want 100", delta.RowsDelta)
	}
	if delta.RowsPct != 100.0 {
		t.Errorf("RowsPct = %f, want 100.0", delta.RowsPct)
	}
}

func TestDiffRow_AccessTypeChanged(t *testing.T) {
	c := defaultComparator()
	old := plan.PlanRow{Table: "orders", AccessType: "ALL", EstimatedRows: 50000}
	new := plan.PlanRow{Table: "orders", AccessType: "ref", Key: "idx_status", PossibleKeys: "idx_status", EstimatedRows: 120}

	delta := c.diffRow(1, &old, &new)

	if delta.ChangeType != TypeChanged {
		t.Errorf("ChangeType = %v, want TypeChanged", delta.ChangeType)
	}
	if delta.OldAccessType != "ALL" || delta.NewAccessType != "ref" {
		t.Errorf("access types = %q → %q", delta.OldAccessType, delta.NewAccessType)
	}
	if delta.RowsDir != Improved {
		t.Errorf("RowsDir = %v, want Improved", delta.RowsDir)
	}
}

func TestDiffRow_TableChanged(t *testing.T) {
	c := defaultComparator()
	old := plan.PlanRow{Table: "users", AccessType: "ALL"}
	new := plan.PlanRow{Table: "orders", AccessType: "ALL"}

	delta := c.diffRow(1, &old, &new)

	if delta.ChangeType != TypeChanged {
		t.Errorf("ChangeType = %v, want TypeChanged", delta.ChangeType)
	}
	if delta.OldTable != "users" || delta.Table != "orders" {
		t.Errorf("tables = %q → %q", delta.OldTable, delta.Table)
	}
}

func TestDiffRow_ExtraChangeIsSignificant(t *testing.T) {
	c := defaultComparator()
	old := plan.PlanRow{Table: "logs", AccessType: "ref", Key: "idx_date", Extra: "Using filesort"}
	new := plan.PlanRow{Table: "logs", AccessType: "ref", Key: "idx_date"}

	delta := c.diffRow(1, &old, &new)
	if delta.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified", delta.ChangeType)
	}
}

func TestDiffRows_AddedAndRemoved(t *testing.T) {
	c := defaultComparator()
	oldRows := []plan.PlanRow{
		{Table: "orders", AccessType: "ALL"},
	}
	newRows := []plan.PlanRow{
		{Table: "orders", AccessType: "ALL"},
		{Table: "users", AccessType: "eq_ref", Key: "PRIMARY", EstimatedRows: 1},
	}

	deltas := c.diffRows(oldRows, newRows)
	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas, got %d", len(deltas))
	}
	if deltas[1].ChangeType != Added || deltas[1].Table != "users" || deltas[1].Position != 2 {
		t.Errorf("unexpected added delta: %+v", deltas[1])
	}

	deltas = c.diffRows(newRows, oldRows)
	if deltas[1].ChangeType != Removed || deltas[1].OldKey != "PRIMARY" {
		t.Errorf("unexpected removed delta: %+v", deltas[1])
	}
}

func TestDiffFindings(t *testing.T) {
	fullScan := analyzer.Finding{Severity: analyzer.Critical, Title: "Full Table Scan", Table: "orders"}
	selectStar := analyzer.Finding{Severity: analyzer.High, Title: "Use of SELECT *"}
	filesort := analyzer.Finding{Severity: analyzer.Medium, Title: "Filesort", Table: "orders"}

	resolved, introduced := diffFindings(
		[]analyzer.Finding{selectStar, fullScan},
		[]analyzer.Finding{selectStar, filesort},
	)

	if len(resolved) != 1 || resolved[0] != fullScan {
		t.Errorf("resolved = %+v", resolved)
	}
	if len(introduced) != 1 || introduced[0] != filesort {
		t.Errorf("introduced = %+v", introduced)
	}
}

func TestDiffFindings_Duplicates(t *testing.T) {
	scan := analyzer.Finding{Severity: analyzer.Critical, Title: "Full Table Scan", Table: "t"}

	resolved, introduced := diffFindings(
		[]analyzer.Finding{scan, scan},
		[]analyzer.Finding{scan},
	)
	if len(resolved) != 1 {
		t.Errorf("expected one resolved duplicate, got %d", len(resolved))
	}
	if len(introduced) != 0 {
		t.Errorf("expected nothing introduced, got %d", len(introduced))
	}
}

func TestDiffFindings_SameTitleDifferentTable(t *testing.T) {
	resolved, introduced := diffFindings(
		[]analyzer.Finding{{Severity: analyzer.Critical, Title: "Full Table Scan", Table: "a"}},
		[]analyzer.Finding{{Severity: analyzer.Critical, Title: "Full Table Scan", Table: "b"}},
	)
	if len(resolved) != 1 || len(introduced) != 1 {
		t.Errorf("resolved = %v, introduced = %v", resolved, introduced)
	}
}

func TestFindingsDirection_CriticalOutweighsLower(t *testing.T) {
	old := []analyzer.Finding{{Severity: analyzer.Critical}}
	new := []analyzer.Finding{
		{Severity: analyzer.High}, {Severity: analyzer.High}, {Severity: analyzer.Medium},
		{Severity: analyzer.Medium}, {Severity: analyzer.Info},
	}
	if got := findingsDirection(old, new); got != Improved {
		t.Errorf("direction = %v, want Improved", got)
	}
}

func TestCompare_IdenticalResults(t *testing.T) {
	c := defaultComparator()
	r := analyzer.Run("select * from orders", []plan.PlanRow{
		{Table: "orders", AccessType: "ALL", EstimatedRows: 50000},
	}, analyzer.DefaultConfig())

	result := c.Compare(r, r)

	s := result.Summary
	if s.RowsDelta != 0 {
		t.Errorf("RowsDelta = %d, want 0", s.RowsDelta)
	}
	if s.Changes() != 0 {
		t.Errorf("expected 0 changes, got %d", s.Changes())
	}
	if len(result.Resolved) != 0 || len(result.Introduced) != 0 {
		t.Errorf("expected no finding changes")
	}
	if s.Verdict != "no significant change" {
		t.Errorf("Verdict = %q, want 'no significant change'", s.Verdict)
	}
}

func TestCompare_IndexAdded(t *testing.T) {
	c := defaultComparator()
	cfg := analyzer.DefaultConfig()
	query := "SELECT id FROM orders WHERE status = 'paid'"

	old := analyzer.Run(query, []plan.PlanRow{
		{Table: "orders", AccessType: "ALL", EstimatedRows: 50000, Extra: "Using where"},
	}, cfg)
	new := analyzer.Run(query, []plan.PlanRow{
		{Table: "orders", AccessType: "ref", PossibleKeys: "idx_status", Key: "idx_status", EstimatedRows: 120},
	}, cfg)

	result := c.Compare(old, new)

	s := result.Summary
	if s.RowsTypeChanged != 1 {
		t.Errorf("RowsTypeChanged = %d, want 1", s.RowsTypeChanged)
	}
	if s.OldCritical != 1 || s.NewCritical != 0 {
		t.Errorf("critical = %d → %d", s.OldCritical, s.NewCritical)
	}
	if len(result.Resolved) != 2 {
		t.Errorf("expected full scan and row volume resolved, got %+v", result.Resolved)
	}
	if len(result.Introduced) != 0 {
		t.Errorf("unexpected introduced findings: %+v", result.Introduced)
	}
	if s.Verdict != "fewer issues and fewer rows scanned" {
		t.Errorf("Verdict = %q", s.Verdict)
	}
}

func TestCompare_VerdictMixed(t *testing.T) {
	c := defaultComparator()
	cfg := analyzer.DefaultConfig()

	old := analyzer.Run("SELECT id FROM t", []plan.PlanRow{
		{Table: "t", AccessType: "range", Key: "idx_a", EstimatedRows: 10, Extra: "Using filesort"},
	}, cfg)
	new := analyzer.Run("SELECT id FROM t", []plan.PlanRow{
		{Table: "t", AccessType: "range", Key: "idx_b", EstimatedRows: 500},
	}, cfg)

	result := c.Compare(old, new)
	if result.Summary.Verdict != "fewer issues but more rows scanned" {
		t.Errorf("Verdict = %q", result.Summary.Verdict)
	}
}

func TestCompare_VerdictRegressed(t *testing.T) {
	c := defaultComparator()
	cfg := analyzer.DefaultConfig()

	old := analyzer.Run("SELECT id FROM t", []plan.PlanRow{
		{Table: "t", AccessType: "ref", Key: "idx_a", EstimatedRows: 10},
	}, cfg)
	new := analyzer.Run("SELECT * FROM t", []plan.PlanRow{
		{Table: "t", AccessType: "ALL", EstimatedRows: 20000},
	}, cfg)

	result := c.Compare(old, new)
	if result.Summary.Verdict != "more issues and more rows scanned" {
		t.Errorf("Verdict = %q", result.Summary.Verdict)
	}
	if len(result.Introduced) != 3 {
		t.Errorf("expected 3 introduced findings, got %+v", result.Introduced)
	}
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		old, new, want float64
	}{
		{100, 200, 100.0},
		{100, 50, -50.0},
		{100, 100, 0},
		{0, 100, 100.0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		got := pctChange(tt.old, tt.new)
		if got != tt.want {
			t.Errorf("pctChange(%f, %f) = %f, want %f", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	c := defaultComparator()
	tests := []struct {
		old, new      float64
		lowerIsBetter bool
		want          Direction
	}{
		{100, 50, true, Improved},
		{50, 100, true, Regressed},
		{100, 100, true, Unchanged},
		{100, 99.5, true, Unchanged},
		{50, 100, false, Improved},
		{100, 50, false, Regressed},
	}

	for _, tt := range tests {
		got := c.direction(tt.old, tt.new, tt.lowerIsBetter)
		if got != tt.want {
			t.Errorf("direction(%f, %f, %v) = %v, want %v", tt.old, tt.new, tt.lowerIsBetter, got, tt.want)
		}
	}
}

func TestDirection_ZeroThreshold(t *testing.T) {
	c := &Comparator{}
	if got := c.direction(10, 10, true); got != Unchanged {
		t.Errorf("direction = %v, want Unchanged", got)
	}
}

func TestIsSignificant_TinyChange(t *testing.T) {
	c := defaultComparator()
	d := RowDelta{
		OldRows: 1000,
		NewRows: 1005,
		RowsPct: 0.5,
	}
	if c.isSignificant(d) {
		t.Error("0.5% change should not be significant")
	}
}

func TestIsSignificant_KeyChange(t *testing.T) {
	c := defaultComparator()
	d := RowDelta{OldKey: "idx_a", NewKey: "idx_b"}
	if !c.isSignificant(d) {
		t.Error("key change should be significant")
	}
}

func TestCompare_PlanUnavailableComparesStaticFindingsOnly(t *testing.T) {
	cfg := analyzer.DefaultConfig()
	old := analyzer.Run("SELECT * FROM orders", []plan.PlanRow{
		{Table: "orders", AccessType: "ALL", EstimatedRows: 50000},
	}, cfg)
	new := analyzer.Run("SELECT id FROM orders", nil, cfg)
	new.PlanError = "connecting to database: connection refused"

	result := defaultComparator().Compare(old, new)

	if result.PlansCompared() {
		t.Error("PlansCompared() = true, want false")
	}
	if result.NewPlanError != new.PlanError || result.OldPlanError != "" {
		t.Errorf("plan errors = %q / %q", result.OldPlanError, result.NewPlanError)
	}
	if len(result.Deltas) != 0 {
		t.Errorf("len(Deltas) = %d, want 0", len(result.Deltas))
	}
	if len(result.Resolved) != 1 || result.Resolved[0].Title != "Use of SELECT *" {
		t.Errorf("Resolved = %+v, want only the SELECT * finding", result.Resolved)
	}
	if len(result.Introduced) != 0 {
		t.Errorf("Introduced = %+v, want none", result.Introduced)
	}

	s := result.Summary
	if s.OldFindings != 1 || s.NewFindings != 0 || s.OldCritical != 0 {
		t.Errorf("findings summary = %d → %d (critical %d)", s.OldFindings, s.NewFindings, s.OldCritical)
	}
	if s.OldTotalRows != 0 || s.RowsDir != Unchanged {
		t.Errorf("rows summary = %d, %v; want 0, Unchanged", s.OldTotalRows, s.RowsDir)
	}
	if s.Verdict != "fewer issues" {
		t.Errorf("Verdict = %q, want %q", s.Verdict, "fewer issues")
	}
}

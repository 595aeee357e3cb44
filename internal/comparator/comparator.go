package comparator

import (
	"github.com/jacobarthurs/myplan/internal/analyzer"
)

type Comparator struct {
	Threshold float64
}

// Compare diffs two analyses. When either plan could not be fetched the
// row diff is skipped and only the static findings of both sides are
// compared, since plan findings exist on one side only.
func (c *Comparator) Compare(old, new analyzer.AnalysisResult) ComparisonResult {
	oldFindings, newFindings := old.Findings, new.Findings
	deltas := []RowDelta{}
	var oldTotal, newTotal int64

	if old.PlanError == "" && new.PlanError == "" {
		deltas = c.diffRows(old.PlanRows, new.PlanRows)
		oldTotal = totalRows(old)
		newTotal = totalRows(new)
	} else {
		oldFindings = staticFindings(oldFindings)
		newFindings = staticFindings(newFindings)
	}

	resolved, introduced := diffFindings(oldFindings, newFindings)

	summary := Summary{
		OldTotalRows: oldTotal,
		NewTotalRows: newTotal,
		RowsDelta:    newTotal - oldTotal,
		RowsPct:      pctChange(float64(oldTotal), float64(newTotal)),
		RowsDir:      c.direction(float64(oldTotal), float64(newTotal), true),

		OldFindings: len(oldFindings),
		NewFindings: len(newFindings),
		OldCritical: countSeverity(oldFindings, analyzer.Critical),
		NewCritical: countSeverity(newFindings, analyzer.Critical),
		FindingsDir: findingsDirection(oldFindings, newFindings),
	}

	countChanges(deltas, &summary)
	summary.Verdict = verdict(summary)

	return ComparisonResult{
		Deltas:       deltas,
		Resolved:     resolved,
		Introduced:   introduced,
		Summary:      summary,
		OldPlanError: old.PlanError,
		NewPlanError: new.PlanError,
	}
}

// staticFindings keeps the findings not tied to a plan row.
func staticFindings(findings []analyzer.Finding) []analyzer.Finding {
	out := make([]analyzer.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Table == "" {
			out = append(out, f)
		}
	}
	return out
}

func countSeverity(findings []analyzer.Finding, sev analyzer.Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

func countChanges(deltas []RowDelta, summary *Summary) {
	for _, d := range deltas {
		switch d.ChangeType {
		case Added:
			summary.RowsAdded++
		case Removed:
			summary.RowsRemoved++
		case Modified:
			summary.RowsModified++
		case TypeChanged:
			summary.RowsTypeChanged++
		}
	}
}

func totalRows(r analyzer.AnalysisResult) int64 {
	var total int64
	for _, row := range r.PlanRows {
		total += row.EstimatedRows
	}
	return total
}

func verdict(s Summary) string {
	var issues, rows string
	switch s.FindingsDir {
	case Improved:
		issues = "fewer issues"
	case Regressed:
		issues = "more issues"
	}
	switch s.RowsDir {
	case Improved:
		rows = "fewer rows scanned"
	case Regressed:
		rows = "more rows scanned"
	}

	switch {
	case issues == "" && rows == "":
		return "no significant change"
	case issues == "":
		return rows
	case rows == "":
		return issues
	case s.FindingsDir == s.RowsDir:
		return issues + " and " + rows
	default:
		return issues + " but " + rows
	}
}

package comparator

import (
	"fmt"
	"math"

	"github.com/jacobarthurs/myplan/internal/analyzer"
	"github.com/jacobarthurs/myplan/internal/plan"
)

// Rows are paired by position; engines emit them in join order, so a
// reordered join shows up as type changes rather than moves.
func (c *Comparator) diffRows(oldRows, newRows []plan.PlanRow) []RowDelta {
	var deltas []RowDelta

	for i := range max(len(oldRows), len(newRows)) {
		if i >= len(oldRows) {
			deltas = append(deltas, addedRow(i+1, &newRows[i]))
			continue
		}
		if i >= len(newRows) {
			deltas = append(deltas, removedRow(i+1, &oldRows[i]))
			continue
		}
		deltas = append(deltas, c.diffRow(i+1, &oldRows[i], &newRows[i]))
	}

	return deltas
}

func (c *Comparator) diffRow(pos int, old, new *plan.PlanRow) RowDelta {
	delta := RowDelta{
		Position:      pos,
		Table:         new.Table,
		OldAccessType: old.AccessType,
		NewAccessType: new.AccessType,
		OldKey:        old.Key,
		NewKey:        new.Key,
		OldRows:       old.EstimatedRows,
		NewRows:       new.EstimatedRows,
		RowsDelta:     new.EstimatedRows - old.EstimatedRows,
		RowsPct:       pctChange(float64(old.EstimatedRows), float64(new.EstimatedRows)),
		RowsDir:       c.direction(float64(old.EstimatedRows), float64(new.EstimatedRows), true),
		OldExtra:      old.Extra,
		NewExtra:      new.Extra,
	}

	if old.Table != new.Table {
		delta.OldTable = old.Table
	}

	switch {
	case old.Table != new.Table || old.AccessType != new.AccessType:
		delta.ChangeType = TypeChanged
	case c.isSignificant(delta):
		delta.ChangeType = Modified
	default:
		delta.ChangeType = NoChange
	}

	return delta
}

func addedRow(pos int, row *plan.PlanRow) RowDelta {
	return RowDelta{
		Position:      pos,
		Table:         row.Table,
		ChangeType:    Added,
		NewAccessType: row.AccessType,
		NewKey:        row.Key,
		NewRows:       row.EstimatedRows,
		NewExtra:      row.Extra,
	}
}

func removedRow(pos int, row *plan.PlanRow) RowDelta {
	return RowDelta{
		Position:      pos,
		Table:         row.Table,
		ChangeType:    Removed,
		OldAccessType: row.AccessType,
		OldKey:        row.Key,
		OldRows:       row.EstimatedRows,
		OldExtra:      row.Extra,
	}
}

func (c *Comparator) isSignificant(d RowDelta) bool {
	if math.Abs(d.RowsPct) > c.Threshold {
		return true
	}
	if d.OldKey != d.NewKey {
		return true
	}
	if d.OldExtra != d.NewExtra {
		return true
	}
	return false
}

// diffFindings returns the findings only present in old (resolved) and only
// present in new (introduced). Duplicates are matched one for one.
func diffFindings(oldFindings, newFindings []analyzer.Finding) (resolved, introduced []analyzer.Finding) {
	resolved = []analyzer.Finding{}
	introduced = []analyzer.Finding{}

	remaining := make(map[string]int, len(newFindings))
	for _, f := range newFindings {
		remaining[findingKey(f)]++
	}
	for _, f := range oldFindings {
		key := findingKey(f)
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		resolved = append(resolved, f)
	}

	matched := make(map[string]int, len(oldFindings))
	for _, f := range oldFindings {
		matched[findingKey(f)]++
	}
	for _, f := range newFindings {
		key := findingKey(f)
		if matched[key] > 0 {
			matched[key]--
			continue
		}
		introduced = append(introduced, f)
	}

	return resolved, introduced
}

func findingKey(f analyzer.Finding) string {
	return fmt.Sprintf("%d|%s|%s", f.Severity, f.Title, f.Table)
}

// One critical finding outweighs any number of lower ones.
func findingScore(findings []analyzer.Finding) float64 {
	var score float64
	for _, f := range findings {
		score += math.Pow(100, float64(f.Severity))
	}
	return score
}

func findingsDirection(oldFindings, newFindings []analyzer.Finding) Direction {
	oldScore := findingScore(oldFindings)
	newScore := findingScore(newFindings)
	switch {
	case newScore < oldScore:
		return Improved
	case newScore > oldScore:
		return Regressed
	default:
		return Unchanged
	}
}

func (c *Comparator) direction(old, new float64, lowerPreference bool) Direction {
	if math.Abs(pctChange(old, new)) < c.Threshold {
		return Unchanged
	}
	if old == new {
		return Unchanged
	}
	if lowerPreference {
		if new < old {
			return Improved
		}
		return Regressed
	}
	if new > old {
		return Improved
	}
	return Regressed
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}

package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/jacobarthurs/myplan/internal/analyzer"
	"github.com/jacobarthurs/myplan/internal/comparator"
	"github.com/jacobarthurs/myplan/internal/plan"
)

var (
	headingFmt  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successFmt  = color.New(color.FgGreen, color.Bold).SprintFunc()
	dimFmt      = color.New(color.Faint).SprintFunc()
	greenFmt    = color.New(color.FgGreen).SprintFunc()
	redFmt      = color.New(color.FgRed).SprintFunc()
	yellowFmt   = color.New(color.FgYellow).SprintFunc()
	criticalFmt = color.New(color.FgRed, color.Bold).SprintFunc()
	highFmt     = color.New(color.FgYellow, color.Bold).SprintFunc()
	mediumFmt   = color.New(color.FgCyan).SprintFunc()
	infoFmt     = color.New(color.FgBlue).SprintFunc()
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderAnalysisText(w io.Writer, result analyzer.AnalysisResult) error {
	tw := &textWriter{w: w}

	if result.FormattedQuery != "" {
		tw.printf("%s\n\n", headingFmt("Query"))
		for _, line := range strings.Split(result.FormattedQuery, "\n") {
			tw.printf("  %s\n", line)
		}
		tw.printf("\n")
	}

	if len(result.PlanRows) > 0 {
		tw.printf("%s\n\n", headingFmt("Execution Plan"))
		tw.renderPlanTable(result.PlanRows)
		tw.printf("\n")
	}

	if result.PlanError != "" {
		tw.printf("%s %s\n\n", yellowFmt("Plan unavailable:"), result.PlanError)
	}

	if len(result.Findings) == 0 {
		tw.printf("%s\n", successFmt("No issues found."))
		return tw.err
	}

	if n := result.CountBySeverity(analyzer.Critical); n > 0 {
		tw.printf("%s\n\n", criticalFmt(pluralize(n, "critical issue")))
	}

	tw.printf("%s\n\n", headingFmt(fmt.Sprintf("Findings (%d)", len(result.Findings))))

	for i, f := range result.Findings {
		tw.printf("  %s %s", severityLabel(f.Severity), f.Title)
		if f.Table != "" {
			tw.printf(" %s", dimFmt("on "+f.Table))
		}
		tw.printf("\n")
		tw.printf("  %s\n", dimFmt("→ "+f.Advice))
		if i < len(result.Findings)-1 {
			tw.printf("\n")
		}
	}

	return tw.err
}

func (tw *textWriter) renderPlanTable(rows []plan.PlanRow) {
	if tw.err != nil {
		return
	}

	table := tabwriter.NewWriter(tw.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "  id\tselect_type\ttable\ttype\tpossible_keys\tkey\trows\tExtra")
	for _, r := range rows {
		fmt.Fprintf(table, "  %d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, orNull(r.SelectType), r.Table, orNull(r.AccessType),
			orNull(r.PossibleKeys), orNull(r.Key), r.EstimatedRows, orNull(r.Extra))
	}
	tw.err = table.Flush()
}

// severityLabel pads before coloring so escape codes don't break alignment.
func severityLabel(s analyzer.Severity) string {
	label := fmt.Sprintf("%-8s", strings.ToUpper(s.String()))
	switch s {
	case analyzer.Critical:
		return criticalFmt(label)
	case analyzer.High:
		return highFmt(label)
	case analyzer.Medium:
		return mediumFmt(label)
	default:
		return infoFmt(label)
	}
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s\n\n", headingFmt("Summary"))
	if !result.PlansCompared() {
		if result.OldPlanError != "" {
			tw.printf("  %s %s\n", yellowFmt("Old plan unavailable:"), result.OldPlanError)
		}
		if result.NewPlanError != "" {
			tw.printf("  %s %s\n", yellowFmt("New plan unavailable:"), result.NewPlanError)
		}
		tw.printf("  %s\n\n", dimFmt("Comparing static findings only."))
	} else {
		tw.printf("  Estimated rows: %s\n", formatDelta(s.OldTotalRows, s.NewTotalRows, s.RowsPct, s.RowsDir))
	}
	tw.printf("  Findings:       %d → %d", s.OldFindings, s.NewFindings)
	if s.OldCritical > 0 || s.NewCritical > 0 {
		tw.printf(" (critical %d → %d)", s.OldCritical, s.NewCritical)
	}
	tw.printf("\n\n")

	if s.Changes() == 0 && len(result.Resolved) == 0 && len(result.Introduced) == 0 {
		if result.PlansCompared() {
			tw.printf("%s\n", successFmt("Plans are identical."))
		} else {
			tw.printf("%s\n", successFmt("No differences in static findings."))
		}
		return tw.err
	}

	if s.Changes() > 0 {
		tw.printf("  Changes: %d modified, %d type changed, %d added, %d removed\n\n",
			s.RowsModified, s.RowsTypeChanged, s.RowsAdded, s.RowsRemoved)

		tw.printf("%s\n\n", headingFmt("Row Details"))
		for _, d := range result.Deltas {
			tw.renderDelta(d)
		}
		tw.printf("\n")
	}

	if len(result.Resolved) > 0 || len(result.Introduced) > 0 {
		tw.printf("%s\n\n", headingFmt("Findings"))
		for _, f := range result.Resolved {
			tw.printf("  %s %s %s\n", greenFmt("-"), severityLabel(f.Severity), findingLabel(f))
		}
		for _, f := range result.Introduced {
			tw.printf("  %s %s %s\n", redFmt("+"), severityLabel(f.Severity), findingLabel(f))
		}
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderDelta(d comparator.RowDelta) {
	switch d.ChangeType {
	case comparator.NoChange:
		return
	case comparator.Added:
		tw.printf("  %s (type=%s rows=%d)\n", greenFmt("+ "+rowLabel(d)), orNull(d.NewAccessType), d.NewRows)
	case comparator.Removed:
		tw.printf("  %s (type=%s rows=%d)\n", redFmt("- "+rowLabel(d)), orNull(d.OldAccessType), d.OldRows)
	case comparator.TypeChanged:
		label := rowLabel(d)
		if d.OldTable != "" {
			label = fmt.Sprintf("#%d %s → %s", d.Position, d.OldTable, d.Table)
		}
		tw.printf("  %s\n", yellowFmt("~ "+label))
		tw.printf("    type: %s → %s\n", orNull(d.OldAccessType), orNull(d.NewAccessType))
		tw.renderRowDetails(d)
	case comparator.Modified:
		tw.printf("  %s\n", yellowFmt("~ "+rowLabel(d)))
		tw.renderRowDetails(d)
	}
}

func (tw *textWriter) renderRowDetails(d comparator.RowDelta) {
	if d.OldRows != d.NewRows {
		tw.printf("    rows: %s\n", formatDelta(d.OldRows, d.NewRows, d.RowsPct, d.RowsDir))
	}
	if d.OldKey != d.NewKey {
		switch {
		case d.OldKey == "":
			tw.printf("    %s\n", greenFmt("key added: "+d.NewKey))
		case d.NewKey == "":
			tw.printf("    %s\n", redFmt("key removed: "+d.OldKey))
		default:
			tw.printf("    %s\n", yellowFmt(fmt.Sprintf("key: %s → %s", d.OldKey, d.NewKey)))
		}
	}
	if d.OldExtra != d.NewExtra {
		tw.printf("    extra: %s → %s\n", orNull(d.OldExtra), orNull(d.NewExtra))
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	label := "Verdict: " + s.Verdict
	switch {
	case s.FindingsDir != comparator.Regressed && s.RowsDir != comparator.Regressed &&
		(s.FindingsDir == comparator.Improved || s.RowsDir == comparator.Improved):
		label = greenFmt(label)
	case s.FindingsDir != comparator.Improved && s.RowsDir != comparator.Improved &&
		(s.FindingsDir == comparator.Regressed || s.RowsDir == comparator.Regressed):
		label = redFmt(label)
	case s.FindingsDir != s.RowsDir:
		label = yellowFmt(label)
	}
	tw.printf("\n%s\n", label)
}

func formatDelta(oldVal, newVal int64, pct float64, dir comparator.Direction) string {
	newStr := strconv.FormatInt(newVal, 10)
	switch dir {
	case comparator.Improved:
		newStr = greenFmt(newStr + " ↓")
	case comparator.Regressed:
		newStr = redFmt(newStr + " ↑")
	}
	return fmt.Sprintf("%d → %s (%+.1f%%)", oldVal, newStr, pct)
}

func rowLabel(d comparator.RowDelta) string {
	return fmt.Sprintf("#%d %s", d.Position, d.Table)
}

func findingLabel(f analyzer.Finding) string {
	if f.Table != "" {
		return fmt.Sprintf("%s on %s", f.Title, f.Table)
	}
	return f.Title
}

func orNull(s string) string {
	if s == "" {
		return "NULL"
	}
	return s
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

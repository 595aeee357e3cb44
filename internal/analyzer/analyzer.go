package analyzer

import (
	"github.com/jacobarthurs/myplan/internal/formatter"
	"github.com/jacobarthurs/myplan/internal/plan"
)

// Run formats the query and merges static findings ahead of plan findings.
// Findings keep discovery order; callers group or sort them for display.
func Run(query string, rows []plan.PlanRow, cfg Config) AnalysisResult {
	findings := AnalyzeStatic(query)
	findings = append(findings, AnalyzePlan(rows, cfg)...)

	return AnalysisResult{
		FormattedQuery: formatter.Format(query),
		Findings:       findings,
		PlanRows:       rows,
	}
}

func AnalyzeStatic(query string) []Finding {
	findings := []Finding{}
	for _, rule := range staticRules {
		if rule.Pattern.MatchString(query) {
			findings = append(findings, Finding{
				Severity: rule.Severity,
				Title:    rule.Title,
				Advice:   rule.Advice,
			})
		}
	}
	return findings
}

func AnalyzePlan(rows []plan.PlanRow, cfg Config) []Finding {
	findings := []Finding{}
	for i := range rows {
		for _, rule := range planRules {
			if rule.Match(&rows[i], cfg) {
				findings = append(findings, Finding{
					Severity: rule.Severity,
					Title:    rule.Title,
					Table:    rows[i].Table,
					Advice:   rule.Advice,
				})
			}
		}
	}
	return findings
}

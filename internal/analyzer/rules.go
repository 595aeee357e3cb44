package analyzer

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jacobarthurs/myplan/internal/plan"
)

const (
	DefaultRowScanThreshold int64 = 10000

	AccessTypeFullScan = "ALL"
	ExtraFilesort      = "Using filesort"
	ExtraTemporary     = "Using temporary"
)

// Config holds the heuristic knobs of the plan rules.
type Config struct {
	// Rows estimated above this value raise an Info finding.
	RowScanThreshold int64 `yaml:"row_scan_threshold" json:"row_scan_threshold"`
	// Report rows that list candidate indexes but chose none.
	FlagUnusedCandidates bool `yaml:"flag_unused_candidates" json:"flag_unused_candidates"`
}

func DefaultConfig() Config {
	return Config{
		RowScanThreshold:     DefaultRowScanThreshold,
		FlagUnusedCandidates: true,
	}
}

func (c Config) Validate() error {
	if c.RowScanThreshold < 0 {
		return errors.New("row_scan_threshold must not be negative")
	}
	return nil
}

// StaticRule fires at most once per query when Pattern matches anywhere in
// the raw text.
type StaticRule struct {
	Severity Severity
	Title    string
	Advice   string
	Pattern  *regexp.Regexp
}

// PlanRule fires at most once per plan row.
type PlanRule struct {
	Severity Severity
	Title    string
	Advice   string
	Match    func(row *plan.PlanRow, cfg Config) bool
}

var staticRules = []StaticRule{
	{
		Severity: High,
		Title:    "Use of SELECT *",
		Advice:   "Enumerate only the columns you need to cut I/O and network cost",
		Pattern:  regexp.MustCompile(`(?i)SELECT\s+\*`),
	},
	{
		Severity: High,
		Title:    "Leading-wildcard LIKE",
		Advice:   "A leading % defeats standard index lookups; consider a full-text index or a prefix search",
		Pattern:  regexp.MustCompile(`(?i)LIKE\s+['"]%.*['"]`),
	},
	{
		Severity: Medium,
		Title:    "Possible function applied to filtered column",
		Advice:   "Wrapping a filtered column in a function (e.g. YEAR(created_at)) prevents index use; rewrite it as an equivalent range predicate",
		Pattern:  regexp.MustCompile(`(?i)WHERE\s+\w+\(`),
	},
}

var planRules = []PlanRule{
	{
		Severity: Critical,
		Title:    "Full Table Scan",
		Advice:   "The engine reads the entire table row by row; add an index on the filter or join column",
		Match:    isFullScan,
	},
	{
		Severity: High,
		Title:    "Candidate indexes unused",
		Advice:   "Usable indexes exist but were not chosen; review their selectivity or force the index",
		Match:    hasUnusedCandidates,
	},
	{
		Severity: Medium,
		Title:    "Filesort",
		Advice:   "The engine sorts rows itself; a composite index covering the sort order would avoid this",
		Match:    extraContains(ExtraFilesort),
	},
	{
		Severity: Medium,
		Title:    "Temporary table",
		Advice:   "A temporary structure was materialized to satisfy the query; a covering composite index may eliminate it",
		Match:    extraContains(ExtraTemporary),
	},
	{
		Severity: Info,
		Title:    "High row-scan volume",
		Advice:   "Verify that filtering is effective; acceptable if intentional for a reporting query",
		Match:    exceedsRowScanThreshold,
	},
}

// StaticRules returns a copy of the built-in text rules.
func StaticRules() []StaticRule {
	return append([]StaticRule(nil), staticRules...)
}

// PlanRules returns a copy of the built-in plan rules.
func PlanRules() []PlanRule {
	return append([]PlanRule(nil), planRules...)
}

func isFullScan(row *plan.PlanRow, _ Config) bool {
	return row.AccessType == AccessTypeFullScan
}

func hasUnusedCandidates(row *plan.PlanRow, cfg Config) bool {
	return cfg.FlagUnusedCandidates && row.PossibleKeys != "" && row.Key == ""
}

func extraContains(annotation string) func(*plan.PlanRow, Config) bool {
	return func(row *plan.PlanRow, _ Config) bool {
		return strings.Contains(row.Extra, annotation)
	}
}

func exceedsRowScanThreshold(row *plan.PlanRow, cfg Config) bool {
	return row.EstimatedRows > cfg.RowScanThreshold
}

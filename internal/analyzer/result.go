package analyzer

import (
	"fmt"

	"github.com/jacobarthurs/myplan/internal/plan"
)

type Severity int

const (
	Info     Severity = 0
	Medium   Severity = 1
	High     Severity = 2
	Critical Severity = 3
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < Info || s > Critical {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

func ParseSeverity(name string) (Severity, error) {
	for _, s := range []Severity{Info, Medium, High, Critical} {
		if s.String() == name {
			return s, nil
		}
	}
	return Info, fmt.Errorf("unknown severity %q", name)
}

type Finding struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Table    string   `json:"table,omitempty"`
	Advice   string   `json:"advice"`
}

type AnalysisResult struct {
	FormattedQuery string         `json:"formatted_query"`
	Findings       []Finding      `json:"findings"`
	PlanRows       []plan.PlanRow `json:"plan_rows,omitempty"`
	PlanError      string         `json:"plan_error,omitempty"`
}

func (r AnalysisResult) CountBySeverity(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

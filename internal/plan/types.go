package plan

// PlanNode is one node of PostgreSQL's EXPLAIN (FORMAT JSON) tree. Only the
// fields needed to flatten the tree into PlanRows are decoded.
type PlanNode struct {
	NodeType           string `json:"Node Type"`
	ParentRelationship string `json:"Parent Relationship,omitempty"`
	Strategy           string `json:"Strategy,omitempty"`

	// Estimates
	StartupCost float64 `json:"Startup Cost"`
	TotalCost   float64 `json:"Total Cost"`
	PlanRows    int64   `json:"Plan Rows"`
	PlanWidth   int     `json:"Plan Width"`

	// Relation/index info
	Schema       string `json:"Schema,omitempty"`
	RelationName string `json:"Relation Name,omitempty"`
	Alias        string `json:"Alias,omitempty"`
	IndexName    string `json:"Index Name,omitempty"`

	// Conditions
	IndexCond string `json:"Index Cond,omitempty"`
	Filter    string `json:"Filter,omitempty"`

	// Sort
	SortKey []string `json:"Sort Key,omitempty"`

	// CTE
	CTEName     string `json:"CTE Name,omitempty"`
	SubplanName string `json:"Subplan Name,omitempty"`

	// Children
	Plans []PlanNode `json:"Plans,omitempty"`
}

// ExplainOutput represents the top-level EXPLAIN JSON output from PostgreSQL.
type ExplainOutput struct {
	Plan         PlanNode `json:"Plan"`
	PlanningTime float64  `json:"Planning Time,omitempty"`
}

package plan

import (
	"strings"
)

const (
	extraWhere     = "Using where"
	extraIndex     = "Using index"
	extraFilesort  = "Using filesort"
	extraTemporary = "Using temporary"
)

// FlattenPostgres converts a PostgreSQL plan tree into MySQL-style rows so
// that both engines go through the same plan rules. Every relation scan
// becomes one row; sort and materializing nodes annotate the nearest row
// beneath them.
func FlattenPostgres(root *PlanNode) []PlanRow {
	f := &flattener{}
	f.walk(root, "SIMPLE")
	return f.rows
}

type flattener struct {
	rows []PlanRow
}

// walk returns the index of the first row produced in node's subtree, or -1.
func (f *flattener) walk(node *PlanNode, selectType string) int {
	if st := subplanSelectType(node.SubplanName); st != "" {
		selectType = st
	}

	first := -1
	if node.RelationName != "" {
		first = len(f.rows)
		f.rows = append(f.rows, scanRow(node, selectType, len(f.rows)+1))
	}

	for i := range node.Plans {
		idx := f.walk(&node.Plans[i], selectType)
		if first < 0 {
			first = idx
		}
	}

	annotation := nodeAnnotation(node)
	if annotation == "" {
		return first
	}

	if first < 0 {
		first = len(f.rows)
		f.rows = append(f.rows, PlanRow{
			ID:            int64(len(f.rows) + 1),
			SelectType:    selectType,
			Table:         UnknownTable,
			EstimatedRows: node.PlanRows,
		})
	}
	f.rows[first].Extra = appendExtra(f.rows[first].Extra, annotation)

	return first
}

func scanRow(node *PlanNode, selectType string, id int) PlanRow {
	row := PlanRow{
		ID:            int64(id),
		SelectType:    selectType,
		Table:         node.RelationName,
		AccessType:    accessType(node.NodeType),
		Key:           node.IndexName,
		EstimatedRows: node.PlanRows,
	}

	if node.NodeType == "Bitmap Heap Scan" && row.Key == "" {
		row.Key = findIndexName(node)
	}
	if row.Key != "" {
		row.PossibleKeys = row.Key
	}
	if node.Filter != "" {
		row.Extra = appendExtra(row.Extra, extraWhere)
	}
	if node.NodeType == "Index Only Scan" {
		row.Extra = appendExtra(row.Extra, extraIndex)
	}

	return row
}

func accessType(nodeType string) string {
	switch nodeType {
	case "Seq Scan", "Parallel Seq Scan":
		return "ALL"
	case "Index Scan":
		return "ref"
	case "Index Only Scan":
		return "index"
	case "Bitmap Heap Scan":
		return "range"
	default:
		return strings.ToLower(strings.ReplaceAll(nodeType, " ", "_"))
	}
}

func nodeAnnotation(node *PlanNode) string {
	switch node.NodeType {
	case "Sort", "Incremental Sort":
		return extraFilesort
	case "Materialize", "Hash":
		return extraTemporary
	case "Aggregate":
		if node.Strategy == "Hashed" {
			return extraTemporary
		}
	}
	return ""
}

func subplanSelectType(name string) string {
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "CTE "):
		return "DERIVED"
	default:
		return "SUBQUERY"
	}
}

func findIndexName(node *PlanNode) string {
	if node.IndexName != "" {
		return node.IndexName
	}
	for i := range node.Plans {
		if name := findIndexName(&node.Plans[i]); name != "" {
			return name
		}
	}
	return ""
}

func appendExtra(extra, item string) string {
	if extra == "" {
		return item
	}
	if strings.Contains(extra, item) {
		return extra
	}
	return extra + "; " + item
}

package plan

import (
	"testing"
)

func TestFlattenPostgres_SeqScan(t *testing.T) {
	rows := FlattenPostgres(&PlanNode{
		NodeType:     "Seq Scan",
		RelationName: "orders",
		PlanRows:     50000,
		Filter:       "(status = 'paid')",
	})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := PlanRow{ID: 1, SelectType: "SIMPLE", Table: "orders", AccessType: "ALL", EstimatedRows: 50000, Extra: "Using where"}
	if rows[0] != want {
		t.Errorf("got %+v, want %+v", rows[0], want)
	}
}

func TestFlattenPostgres_BitmapHeapScanTakesChildIndex(t *testing.T) {
	rows := FlattenPostgres(&PlanNode{
		NodeType:     "Bitmap Heap Scan",
		RelationName: "events",
		PlanRows:     300,
		Plans: []PlanNode{
			{NodeType: "Bitmap Index Scan", IndexName: "idx_events_type", PlanRows: 300},
		},
	})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].AccessType != "range" {
		t.Errorf("AccessType = %q, want range", rows[0].AccessType)
	}
	if rows[0].Key != "idx_events_type" || rows[0].PossibleKeys != "idx_events_type" {
		t.Errorf("Key = %q, PossibleKeys = %q", rows[0].Key, rows[0].PossibleKeys)
	}
}

func TestFlattenPostgres_IndexOnlyScan(t *testing.T) {
	rows := FlattenPostgres(&PlanNode{
		NodeType:     "Index Only Scan",
		RelationName: "users",
		IndexName:    "users_email_idx",
		PlanRows:     1,
	})

	if rows[0].AccessType != "index" {
		t.Errorf("AccessType = %q, want index", rows[0].AccessType)
	}
	if rows[0].Extra != "Using index" {
		t.Errorf("Extra = %q, want Using index", rows[0].Extra)
	}
}

func TestFlattenPostgres_SortWithoutRelation(t *testing.T) {
	rows := FlattenPostgres(&PlanNode{
		NodeType: "Sort",
		PlanRows: 3,
		Plans: []PlanNode{
			{NodeType: "Values Scan", PlanRows: 3},
		},
	})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Table != UnknownTable {
		t.Errorf("Table = %q, want %q", rows[0].Table, UnknownTable)
	}
	if rows[0].Extra != "Using filesort" {
		t.Errorf("Extra = %q, want Using filesort", rows[0].Extra)
	}
	if rows[0].EstimatedRows != 3 {
		t.Errorf("EstimatedRows = %d, want 3", rows[0].EstimatedRows)
	}
}

func TestFlattenPostgres_HashedAggregate(t *testing.T) {
	hashed := FlattenPostgres(&PlanNode{
		NodeType: "Aggregate",
		Strategy: "Hashed",
		Plans:    []PlanNode{{NodeType: "Seq Scan", RelationName: "events"}},
	})
	if hashed[0].Extra != "Using temporary" {
		t.Errorf("hashed Extra = %q, want Using temporary", hashed[0].Extra)
	}

	plain := FlattenPostgres(&PlanNode{
		NodeType: "Aggregate",
		Strategy: "Plain",
		Plans:    []PlanNode{{NodeType: "Seq Scan", RelationName: "events"}},
	})
	if plain[0].Extra != "" {
		t.Errorf("plain Extra = %q, want empty", plain[0].Extra)
	}
}

func TestFlattenPostgres_AnnotationsAreNotDuplicated(t *testing.T) {
	rows := FlattenPostgres(&PlanNode{
		NodeType: "Sort",
		Plans: []PlanNode{{
			NodeType: "Incremental Sort",
			Plans:    []PlanNode{{NodeType: "Seq Scan", RelationName: "t"}},
		}},
	})

	if rows[0].Extra != "Using filesort" {
		t.Errorf("Extra = %q, want a single Using filesort", rows[0].Extra)
	}
}

func TestFlattenPostgres_SubplanSelectTypes(t *testing.T) {
	rows := FlattenPostgres(&PlanNode{
		NodeType: "Nested Loop",
		Plans: []PlanNode{
			{NodeType: "Seq Scan", RelationName: "recent", SubplanName: "CTE recent", ParentRelationship: "InitPlan"},
			{NodeType: "Index Scan", RelationName: "users", IndexName: "users_pkey", SubplanName: "SubPlan 1", ParentRelationship: "SubPlan"},
			{NodeType: "Seq Scan", RelationName: "orders"},
		},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []string{"DERIVED", "SUBQUERY", "SIMPLE"}
	for i, st := range want {
		if rows[i].SelectType != st {
			t.Errorf("row %d SelectType = %q, want %q", i, rows[i].SelectType, st)
		}
		if rows[i].ID != int64(i+1) {
			t.Errorf("row %d ID = %d, want %d", i, rows[i].ID, i+1)
		}
	}
}

func TestFlattenPostgres_NoRelations(t *testing.T) {
	rows := FlattenPostgres(&PlanNode{NodeType: "Result", PlanRows: 1})
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %+v", rows)
	}
}

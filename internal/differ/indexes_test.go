package differ

import (
	"strings"
	"testing"

	"github.com/rurban/mysqldiff/internal/model"
)

// fkCoupledTables builds a minimal src/dst table pair where an index name
// collides with an FK constraint name and the constraint's clause text
// differs between the two sides, so indexesPass's fkCoupledChange branch
// fires for that name.
func fkCoupledTables() (src, dst *model.Table) {
	src = model.NewTable("t")
	src.AddField("parent_id", "int NOT NULL")
	src.AddIndex("fk_t_parent", &model.Index{Columns: []string{"parent_id"}})
	src.AddForeignKey("fk_t_parent", &model.ForeignKey{
		Clause:   "FOREIGN KEY (`parent_id`) REFERENCES `parent` (`id`)",
		Columns:  []string{"parent_id"},
		RefTable: "parent",
	})

	dst = model.NewTable("t")
	dst.AddField("parent_id", "int NOT NULL")
	dst.AddIndex("fk_t_parent", &model.Index{Columns: []string{"parent_id"}})
	dst.AddForeignKey("fk_t_parent", &model.ForeignKey{
		Clause:   "FOREIGN KEY (`parent_id`) REFERENCES `parent` (`id`) ON DELETE CASCADE",
		Columns:  []string{"parent_id"},
		RefTable: "parent",
	})
	return src, dst
}

func weightOfCoverSteps(t *testing.T, records []ChangeRecord) int {
	t.Helper()
	for _, r := range records {
		if strings.Contains(r.SQL, "rc_temp_") {
			return r.Priority
		}
	}
	t.Fatalf("expected a cover-index step in records: %v", records)
	return -1
}

func TestIndexesPassFKCoupledChangeUsesFreshlyAddedPKPriority(t *testing.T) {
	src, dst := fkCoupledTables()
	ctx := NewDifferContext(NewIndexWorkaroundFacility())
	ctx.AddedPKCol = "parent_id"

	records := indexesPass(ctx, src, dst, Options{})
	if got := weightOfCoverSteps(t, records); got != PriorityAddFKOrTimestamp {
		t.Fatalf("expected weight %d for freshly-added PK column, got %d", PriorityAddFKOrTimestamp, got)
	}
}

func TestIndexesPassFKCoupledChangeUsesAddedForFKPriority(t *testing.T) {
	src, dst := fkCoupledTables()
	ctx := NewDifferContext(NewIndexWorkaroundFacility())
	ctx.AddedForFK["fk_t_parent"] = PriorityDropFKAddColumn // value is irrelevant; only presence matters

	records := indexesPass(ctx, src, dst, Options{})
	if got := weightOfCoverSteps(t, records); got != PriorityCreateAndChange {
		t.Fatalf("expected weight %d when added_for_fk is set, got %d", PriorityCreateAndChange, got)
	}
}

func TestIndexesPassFKCoupledChangeDefaultPriority(t *testing.T) {
	src, dst := fkCoupledTables()
	ctx := NewDifferContext(NewIndexWorkaroundFacility())

	records := indexesPass(ctx, src, dst, Options{})
	if got := weightOfCoverSteps(t, records); got != PriorityDropFKAddColumn {
		t.Fatalf("expected default weight %d, got %d", PriorityDropFKAddColumn, got)
	}
}

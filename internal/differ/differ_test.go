package differ

import (
	"regexp"
	"strings"
	"testing"

	"github.com/rurban/mysqldiff/internal/model"
)

func newTestSchema(tables ...*model.Table) *model.Schema {
	s := model.NewSchema()
	for _, t := range tables {
		s.AddTable(t)
	}
	return s
}

func simpleTable(name string, def string) *model.Table {
	t := model.NewTable(name)
	t.SetDef(def)
	return t
}

func TestDiffIdenticalSchemaIsEmpty(t *testing.T) {
	mk := func() *model.Table {
		tb := simpleTable("t", "CREATE TABLE `t` (`a` int NOT NULL) ENGINE=InnoDB;")
		tb.AddField("a", "int NOT NULL")
		tb.SetOptions("ENGINE=InnoDB")
		return tb
	}
	src := newTestSchema(mk())
	dst := newTestSchema(mk())

	plan := Diff(src, dst, Options{})
	if !plan.IsEmpty() {
		t.Fatalf("expected empty plan, got %d statements: %v", len(plan.Statements), plan.Statements)
	}
}

func TestDiffColumnTypeChange(t *testing.T) {
	srcT := simpleTable("t", "CREATE TABLE `t` (`a` int) ENGINE=InnoDB;")
	srcT.AddField("a", "int")
	srcT.SetOptions("ENGINE=InnoDB")

	dstT := simpleTable("t", "CREATE TABLE `t` (`a` bigint) ENGINE=InnoDB;")
	dstT.AddField("a", "bigint")
	dstT.SetOptions("ENGINE=InnoDB")

	plan := Diff(newTestSchema(srcT), newTestSchema(dstT), Options{})

	if len(plan.Statements) != 1 {
		t.Fatalf("expected exactly one statement, got %d: %v", len(plan.Statements), plan.Statements)
	}
	sql := plan.Statements[0].SQL
	if !strings.Contains(sql, "CHANGE COLUMN `a` `a` bigint") {
		t.Errorf("expected CHANGE COLUMN clause, got: %s", sql)
	}
	if !strings.Contains(sql, "# was int") {
		t.Errorf("expected old-definition comment, got: %s", sql)
	}
}

func TestDiffNewCompositePrimaryKeyWithAutoIncrement(t *testing.T) {
	srcT := simpleTable("t", "CREATE TABLE `t` (`a` int, `b` int) ENGINE=InnoDB;")
	srcT.AddField("a", "int")
	srcT.AddField("b", "int")
	srcT.SetOptions("ENGINE=InnoDB")

	dstT := simpleTable("t", "CREATE TABLE `t` (`a` int, `b` int AUTO_INCREMENT, PRIMARY KEY (`a`,`b`)) ENGINE=InnoDB;")
	dstT.AddField("a", "int")
	dstT.AddField("b", "int AUTO_INCREMENT")
	dstT.SetOptions("ENGINE=InnoDB")
	dstT.SetPrimaryKey("(`a`,`b`)", []string{"a", "b"})

	plan := Diff(newTestSchema(srcT), newTestSchema(dstT), Options{})

	if len(plan.Statements) != 1 {
		t.Fatalf("expected exactly one fused statement, got %d: %v", len(plan.Statements), plan.Statements)
	}
	sql := plan.Statements[0].SQL
	if !strings.Contains(sql, "CHANGE COLUMN `b` `b` int AUTO_INCREMENT") {
		t.Errorf("expected CHANGE COLUMN on b, got: %s", sql)
	}
	if !strings.Contains(sql, "ADD PRIMARY KEY (`a`,`b`)") {
		t.Errorf("expected fused ADD PRIMARY KEY, got: %s", sql)
	}

	if violations := Validate(plan); len(violations) != 0 {
		t.Errorf("expected no invariant violations, got: %v", violations)
	}
}

func TestDiffDropCompositePrimaryKeyWithAutoIncrementColumn(t *testing.T) {
	srcT := simpleTable("t", "CREATE TABLE `t` (`id` int AUTO_INCREMENT, PRIMARY KEY (`id`)) ENGINE=InnoDB;")
	srcT.AddField("id", "int AUTO_INCREMENT")
	srcT.SetOptions("ENGINE=InnoDB")
	srcT.SetPrimaryKey("(`id`)", []string{"id"})

	dstT := simpleTable("t", "CREATE TABLE `t` (`id` int) ENGINE=InnoDB;")
	dstT.AddField("id", "int")
	dstT.SetOptions("ENGINE=InnoDB")

	plan := Diff(newTestSchema(srcT), newTestSchema(dstT), Options{})

	if len(plan.Statements) != 1 {
		t.Fatalf("expected exactly one fused statement, got %d: %v", len(plan.Statements), plan.Statements)
	}
	sql := plan.Statements[0].SQL
	if !strings.Contains(sql, "DROP PRIMARY KEY") {
		t.Errorf("expected DROP PRIMARY KEY, got: %s", sql)
	}
	if !strings.Contains(sql, "CHANGE COLUMN `id` `id` int") {
		t.Errorf("expected fused CHANGE COLUMN stripping AUTO_INCREMENT, got: %s", sql)
	}

	if violations := Validate(plan); len(violations) != 0 {
		t.Errorf("expected no invariant violations (no unindexed AUTO_INCREMENT gap), got: %v", violations)
	}
}

func TestDiffDropsMissingTable(t *testing.T) {
	srcT := simpleTable("gone", "CREATE TABLE `gone` (`a` int) ENGINE=InnoDB;")
	srcT.AddField("a", "int")

	plan := Diff(newTestSchema(srcT), newTestSchema(), Options{})
	if len(plan.Statements) != 1 || !strings.Contains(plan.Statements[0].SQL, "DROP TABLE `gone`") {
		t.Fatalf("expected a single DROP TABLE statement, got: %v", plan.Statements)
	}
}

func TestDiffKeepOldTablesSuppressesDrop(t *testing.T) {
	srcT := simpleTable("gone", "CREATE TABLE `gone` (`a` int) ENGINE=InnoDB;")
	srcT.AddField("a", "int")

	plan := Diff(newTestSchema(srcT), newTestSchema(), Options{KeepOldTables: true})
	if !plan.IsEmpty() {
		t.Fatalf("expected no statements with KeepOldTables, got: %v", plan.Statements)
	}
}

func TestDiffCreatesNewTableWithForeignKey(t *testing.T) {
	parent := simpleTable("parent", "CREATE TABLE `parent` (`id` int, PRIMARY KEY (`id`)) ENGINE=InnoDB;")
	parent.AddField("id", "int")
	parent.SetPrimaryKey("(`id`)", []string{"id"})

	child := simpleTable("child", "CREATE TABLE `child` (`id` int, `parent_id` int) ENGINE=InnoDB;")
	child.AddField("id", "int")
	child.AddField("parent_id", "int")
	child.AddForeignKey("fk_child_parent", &model.ForeignKey{
		Clause:   "FOREIGN KEY (`parent_id`) REFERENCES `parent` (`id`)",
		Columns:  []string{"parent_id"},
		RefTable: "parent",
	})

	dst := newTestSchema(parent, child)
	plan := Diff(newTestSchema(parent), dst, Options{})

	var sawCreate, sawFK bool
	for _, r := range plan.Statements {
		if strings.Contains(r.SQL, "CREATE TABLE `child`") {
			sawCreate = true
		}
		if strings.Contains(r.SQL, "ADD CONSTRAINT `fk_child_parent`") {
			sawFK = true
		}
	}
	if !sawCreate || !sawFK {
		t.Fatalf("expected CREATE TABLE and FK constraint statements, got: %v", plan.Statements)
	}
}

func TestRefsWalksForeignKeyClosure(t *testing.T) {
	grandparent := simpleTable("gp", "CREATE TABLE `gp` (`id` int, PRIMARY KEY (`id`)) ENGINE=InnoDB;")
	grandparent.AddField("id", "int")
	grandparent.SetPrimaryKey("(`id`)", []string{"id"})

	parent := simpleTable("parent", "CREATE TABLE `parent` (`id` int, `gp_id` int) ENGINE=InnoDB;")
	parent.AddField("id", "int")
	parent.AddField("gp_id", "int")
	parent.AddForeignKey("fk_parent_gp", &model.ForeignKey{
		Clause:   "FOREIGN KEY (`gp_id`) REFERENCES `gp` (`id`)",
		Columns:  []string{"gp_id"},
		RefTable: "gp",
	})

	child := simpleTable("child", "CREATE TABLE `child` (`id` int, `parent_id` int) ENGINE=InnoDB;")
	child.AddField("id", "int")
	child.AddField("parent_id", "int")
	child.AddForeignKey("fk_child_parent", &model.ForeignKey{
		Clause:   "FOREIGN KEY (`parent_id`) REFERENCES `parent` (`id`)",
		Columns:  []string{"parent_id"},
		RefTable: "parent",
	})

	schema := newTestSchema(child, parent, grandparent)
	plan := Refs(schema, Options{TableRE: regexp.MustCompile("^child$")})

	if len(plan.Statements) != 3 {
		t.Fatalf("expected 3 statements (child, parent, gp), got %d: %v", len(plan.Statements), plan.Statements)
	}
	joined := ""
	for _, r := range plan.Statements {
		joined += r.SQL + "\n"
	}
	for _, want := range []string{"`child`", "`parent`", "`gp`"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected closure to include %s, got: %s", want, joined)
		}
	}
}

func TestRefsDeduplicatesDiamond(t *testing.T) {
	base := simpleTable("base", "CREATE TABLE `base` (`id` int, PRIMARY KEY (`id`)) ENGINE=InnoDB;")
	base.AddField("id", "int")
	base.SetPrimaryKey("(`id`)", []string{"id"})

	left := simpleTable("left", "CREATE TABLE `left` (`id` int, `base_id` int) ENGINE=InnoDB;")
	left.AddField("id", "int")
	left.AddField("base_id", "int")
	left.AddForeignKey("fk_left_base", &model.ForeignKey{Clause: "x", Columns: []string{"base_id"}, RefTable: "base"})

	right := simpleTable("right", "CREATE TABLE `right` (`id` int, `base_id` int) ENGINE=InnoDB;")
	right.AddField("id", "int")
	right.AddField("base_id", "int")
	right.AddForeignKey("fk_right_base", &model.ForeignKey{Clause: "x", Columns: []string{"base_id"}, RefTable: "base"})

	top := simpleTable("top", "CREATE TABLE `top` (`id` int, `left_id` int, `right_id` int) ENGINE=InnoDB;")
	top.AddField("id", "int")
	top.AddField("left_id", "int")
	top.AddField("right_id", "int")
	top.AddForeignKey("fk_top_left", &model.ForeignKey{Clause: "x", Columns: []string{"left_id"}, RefTable: "left"})
	top.AddForeignKey("fk_top_right", &model.ForeignKey{Clause: "x", Columns: []string{"right_id"}, RefTable: "right"})

	schema := newTestSchema(top, left, right, base)
	plan := Refs(schema, Options{TableRE: regexp.MustCompile("^top$")})

	if len(plan.Statements) != 4 {
		t.Fatalf("expected base to appear exactly once across the diamond (4 total), got %d: %v",
			len(plan.Statements), plan.Statements)
	}
}

func TestValidateFlagsUnindexedAutoIncrement(t *testing.T) {
	p := &Plan{Statements: []ChangeRecord{
		NewChange("ALTER TABLE `t` CHANGE COLUMN `b` `b` int AUTO_INCREMENT;", PriorityCreateAndChange),
	}}
	violations := Validate(p)
	if len(violations) != 1 || violations[0].Rule != "auto-increment-indexed" {
		t.Fatalf("expected one auto-increment-indexed violation, got: %v", violations)
	}
}

func TestValidatePassesWhenBackingIndexPrecedes(t *testing.T) {
	p := &Plan{Statements: []ChangeRecord{
		NewChange("ALTER TABLE `t` ADD INDEX `idx_b` (`b`);", PriorityAddPKOrIndex),
		NewChange("ALTER TABLE `t` CHANGE COLUMN `b` `b` int AUTO_INCREMENT;", PriorityCreateAndChange),
	}}
	if violations := Validate(p); len(violations) != 0 {
		t.Fatalf("expected no violations, got: %v", violations)
	}
}

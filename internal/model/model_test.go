package model

import "testing"

func TestTableFieldsOrderAndLinks(t *testing.T) {
	tb := NewTable("t")
	tb.AddField("a", "int")
	tb.AddField("b", "int")
	tb.AddField("c", "int")

	if got := tb.FieldsSeq(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected field order: %v", got)
	}

	prev, next := tb.FieldsLinks("b")
	if prev != "a" || next != "c" {
		t.Fatalf("expected a/c neighbors for b, got %q/%q", prev, next)
	}

	prev, next = tb.FieldsLinks("a")
	if prev != "" || next != "b" {
		t.Fatalf("expected no previous neighbor for a, got %q/%q", prev, next)
	}
}

func TestTableAddFieldReplaceKeepsPosition(t *testing.T) {
	tb := NewTable("t")
	tb.AddField("a", "int")
	tb.AddField("b", "int")
	tb.AddField("a", "bigint")

	seq := tb.FieldsSeq()
	if len(seq) != 2 || seq[0] != "a" || seq[1] != "b" {
		t.Fatalf("expected position of 'a' preserved, got %v", seq)
	}
	text, _ := tb.Field("a")
	if text != "bigint" {
		t.Fatalf("expected updated text 'bigint', got %q", text)
	}
}

func TestTablePrimaryKeyAndParts(t *testing.T) {
	tb := NewTable("t")
	tb.SetPrimaryKey("(`a`,`b`)", []string{"a", "b"})

	text, has := tb.PrimaryKey()
	if !has || text != "(`a`,`b`)" {
		t.Fatalf("unexpected primary key: %q %v", text, has)
	}
	if !tb.IsaPrimary("a") || !tb.IsaPrimary("b") {
		t.Fatalf("expected a and b to be primary")
	}
	if tb.IsaPrimary("c") {
		t.Fatalf("expected c not to be primary")
	}
}

func TestTableGetFKByCol(t *testing.T) {
	tb := NewTable("child")
	tb.AddForeignKey("fk1", &ForeignKey{
		Clause:   "FOREIGN KEY (`parent_id`) REFERENCES `parent` (`id`)",
		Columns:  []string{"parent_id"},
		RefTable: "parent",
	})

	fks := tb.GetFKByCol("parent_id")
	if len(fks) != 1 {
		t.Fatalf("expected one FK referencing parent_id, got %d", len(fks))
	}
	if tb.GetFKByCol("other") == nil {
		t.Fatalf("expected a non-nil empty map for unreferenced column")
	}
	tables := tb.FKTables()
	if !tables["parent"] {
		t.Fatalf("expected FKTables to include parent")
	}
}

func TestTablePartitionClause(t *testing.T) {
	tb := NewTable("t")
	tb.SetOptions("ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 PARTITION BY RANGE (`id`) (PARTITION p0 VALUES LESS THAN (100))")

	clause, ok := tb.PartitionClause()
	if !ok {
		t.Fatalf("expected a partition clause")
	}
	if clause[:len("PARTITION BY")] != "PARTITION BY" {
		t.Fatalf("expected clause to start with PARTITION BY, got %q", clause)
	}

	without := tb.OptionsWithoutPartition()
	if without != "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4" {
		t.Fatalf("unexpected options without partition: %q", without)
	}
}

func TestTableNoPartitionClause(t *testing.T) {
	tb := NewTable("t")
	tb.SetOptions("ENGINE=InnoDB")
	if _, ok := tb.PartitionClause(); ok {
		t.Fatalf("expected no partition clause")
	}
	if got := tb.OptionsWithoutPartition(); got != "ENGINE=InnoDB" {
		t.Fatalf("expected options unchanged, got %q", got)
	}
}

func TestSchemaAddTablePreservesOrderOnReplace(t *testing.T) {
	s := NewSchema()
	s.AddTable(NewTable("a"))
	s.AddTable(NewTable("b"))
	replacement := NewTable("a")
	replacement.SetOptions("ENGINE=MyISAM")
	s.AddTable(replacement)

	names := s.TableNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected order [a b] preserved, got %v", names)
	}
	got, _ := s.Table("a")
	if got.Options() != "ENGINE=MyISAM" {
		t.Fatalf("expected replacement table to take effect")
	}
}

func TestSchemaViewTemp(t *testing.T) {
	s := NewSchema()
	v := NewView("v1")
	v.Fields = "(`id`, `name`)"
	s.AddView(v)

	placeholder, ok := s.ViewTemp("v1")
	if !ok {
		t.Fatalf("expected a placeholder for v1")
	}
	if placeholder == "" {
		t.Fatalf("expected non-empty placeholder text")
	}

	if _, ok := s.ViewTemp("nope"); ok {
		t.Fatalf("expected no placeholder for unknown view")
	}
}

func TestRoutineSignature(t *testing.T) {
	r := NewRoutine("proc1", RoutineProcedure)
	r.Options = "DETERMINISTIC"
	r.Body = "BEGIN SELECT 1; END"
	r.Params = "(IN x INT)"

	o, b, p := r.Signature()
	if o != "DETERMINISTIC" || b != "BEGIN SELECT 1; END" || p != "(IN x INT)" {
		t.Fatalf("unexpected signature: %q %q %q", o, b, p)
	}
}

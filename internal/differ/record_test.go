package differ

import "testing"

func TestRecorderAddAssignsSequence(t *testing.T) {
	r := &recorder{}
	r.add("one", PriorityCreateAndChange)
	r.add("two", PriorityCreateAndChange)

	if len(r.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(r.records))
	}
	if r.records[0].seq != 0 || r.records[1].seq != 1 {
		t.Fatalf("expected monotonically increasing seq, got %d, %d", r.records[0].seq, r.records[1].seq)
	}
}

func TestRecorderAddf(t *testing.T) {
	r := &recorder{}
	r.addf(PriorityAddPKOrIndex, "ALTER TABLE `%s` ADD INDEX `%s` (%s);", "t", "idx", "`a`")
	want := "ALTER TABLE `t` ADD INDEX `idx` (`a`);"
	if r.records[0].SQL != want {
		t.Fatalf("unexpected SQL: %q", r.records[0].SQL)
	}
	if r.records[0].Priority != PriorityAddPKOrIndex {
		t.Fatalf("unexpected priority: %d", r.records[0].Priority)
	}
}

func TestRecorderExtendPreservesOrderAndReassignsSeq(t *testing.T) {
	r := &recorder{}
	r.add("first", PriorityCreateAndChange)
	r.extend([]ChangeRecord{
		NewChange("second", PriorityCreateAndChange),
		NewChange("third", PriorityCreateAndChange),
	})
	if len(r.records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(r.records))
	}
	for i, want := range []string{"first", "second", "third"} {
		if r.records[i].SQL != want {
			t.Fatalf("expected %q at position %d, got %q", want, i, r.records[i].SQL)
		}
		if r.records[i].seq != i {
			t.Fatalf("expected seq %d at position %d, got %d", i, i, r.records[i].seq)
		}
	}
}

func TestAssembleSortsByDescendingPriorityStably(t *testing.T) {
	recs := []ChangeRecord{
		NewChange("low-a", PriorityFinal),
		NewChange("high-a", PriorityDropAndOptions),
		NewChange("high-b", PriorityDropAndOptions),
		NewChange("mid", PriorityCreateAndChange),
	}
	plan := assemble(recs, nil, Options{})

	order := make([]string, len(plan.Statements))
	for i, r := range plan.Statements {
		order[i] = r.SQL
	}
	want := []string{"high-a", "high-b", "mid", "low-a"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v", order)
		}
	}
}

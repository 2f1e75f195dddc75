package differ

import (
	"strings"
	"testing"
)

func TestIndexWorkaroundFacilityUnusedUntilCalled(t *testing.T) {
	wa := NewIndexWorkaroundFacility()
	if wa.Used() {
		t.Fatalf("expected a fresh facility to be unused")
	}
	if !strings.HasPrefix(wa.Name(), "workaround_") {
		t.Fatalf("expected procedure name to start with workaround_, got %q", wa.Name())
	}
}

func TestIndexWorkaroundFacilityCallMarksUsed(t *testing.T) {
	wa := NewIndexWorkaroundFacility()
	stmt := wa.Call("t", "idx_a", "ALTER TABLE `t` ADD INDEX `idx_a` (`a`);", "create")

	if !wa.Used() {
		t.Fatalf("expected facility to be marked used after Call")
	}
	if !strings.HasPrefix(stmt, "CALL "+wa.Name()+"(") {
		t.Fatalf("unexpected CALL statement: %q", stmt)
	}
	if !strings.Contains(stmt, "'create'") {
		t.Fatalf("expected action literal in CALL statement: %q", stmt)
	}
}

func TestIndexWorkaroundFacilityNamesAreUnique(t *testing.T) {
	a := NewIndexWorkaroundFacility()
	b := NewIndexWorkaroundFacility()
	if a.Name() == b.Name() {
		t.Fatalf("expected distinct procedure names across runs")
	}
}

func TestIndexWorkaroundFacilityCreateAndDropStmtsReferenceName(t *testing.T) {
	wa := NewIndexWorkaroundFacility()
	if !strings.Contains(wa.CreateStmt(), wa.Name()) {
		t.Fatalf("expected CreateStmt to reference the procedure name")
	}
	if !strings.Contains(wa.DropStmt(), wa.Name()) {
		t.Fatalf("expected DropStmt to reference the procedure name")
	}
}

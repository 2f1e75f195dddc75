package differ

import (
	"errors"
	"testing"
)

func TestFieldsEqualStrict(t *testing.T) {
	if !fieldsEqual("int NOT NULL", "int NOT NULL", false) {
		t.Fatalf("expected identical definitions to be equal")
	}
	if fieldsEqual("int NOT NULL", "int NULL", false) {
		t.Fatalf("expected differing definitions to be unequal in strict mode")
	}
}

func TestFieldsEqualTolerantCollate(t *testing.T) {
	a := "varchar(20) COLLATE utf8mb4_general_ci NOT NULL"
	b := "varchar(20) NOT NULL"
	if fieldsEqual(a, b, false) {
		t.Fatalf("expected strict mode to treat COLLATE difference as unequal")
	}
	if !fieldsEqual(a, b, true) {
		t.Fatalf("expected tolerant mode to ignore COLLATE")
	}
}

func TestFieldsEqualTolerantDefaultEmptyNotNull(t *testing.T) {
	if !fieldsEqual("varchar(10)", "varchar(10) DEFAULT '' NOT NULL", true) {
		t.Fatalf("expected tolerant mode to treat bare type as equal to DEFAULT ''/NOT NULL")
	}
	if !fieldsEqual("varchar(10)", "varchar(10) NOT NULL", true) {
		t.Fatalf("expected tolerant mode to treat bare type as equal to NOT NULL")
	}
}

func TestFieldsEqualTolerantPrecision(t *testing.T) {
	if !fieldsEqual("decimal(10,2)", "decimal(12,4)", true) {
		t.Fatalf("expected tolerant mode to treat differing precision as equal")
	}
	if fieldsEqual("decimal(10,2)", "decimal(12,4)", false) {
		t.Fatalf("expected strict mode to treat differing precision as unequal")
	}
}

func TestCheckAmbiguousFieldFlagsTolerantOnlyMatch(t *testing.T) {
	err := checkAmbiguousField("varchar(20) COLLATE utf8mb4_general_ci NOT NULL", "varchar(20) NOT NULL", true)
	if !errors.Is(err, ErrAmbiguousDiff) {
		t.Fatalf("expected ErrAmbiguousDiff, got %v", err)
	}
}

func TestCheckAmbiguousFieldSilentWhenIdentical(t *testing.T) {
	if err := checkAmbiguousField("int NOT NULL", "int NOT NULL", true); err != nil {
		t.Fatalf("expected no error for identical definitions, got %v", err)
	}
}

func TestCheckAmbiguousFieldSilentInStrictMode(t *testing.T) {
	a := "varchar(20) COLLATE utf8mb4_general_ci NOT NULL"
	b := "varchar(20) NOT NULL"
	if err := checkAmbiguousField(a, b, false); err != nil {
		t.Fatalf("expected no error in strict mode, got %v", err)
	}
}

func TestOptionsEqualTolerantAutoIncrementAndCollate(t *testing.T) {
	a := "ENGINE=InnoDB AUTO_INCREMENT=42 DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci"
	b := "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	if optionsEqual(a, b, false) {
		t.Fatalf("expected strict mode to treat AUTO_INCREMENT/COLLATE difference as unequal")
	}
	if !optionsEqual(a, b, true) {
		t.Fatalf("expected tolerant mode to ignore AUTO_INCREMENT=n and COLLATE=x")
	}
}

func TestIsAutoIncrementAndStrip(t *testing.T) {
	if !isAutoIncrement("int(11) NOT NULL AUTO_INCREMENT") {
		t.Fatalf("expected AUTO_INCREMENT to be detected")
	}
	if isAutoIncrement("int(11) NOT NULL") {
		t.Fatalf("expected no AUTO_INCREMENT detected")
	}
	if got := stripAutoIncrement("int(11) NOT NULL AUTO_INCREMENT"); got != "int(11) NOT NULL" {
		t.Fatalf("unexpected stripped text: %q", got)
	}
}

func TestIsTimestampDefault(t *testing.T) {
	if !isTimestampDefault("timestamp DEFAULT CURRENT_TIMESTAMP") {
		t.Fatalf("expected CURRENT_TIMESTAMP default to be detected")
	}
	if isTimestampDefault("timestamp DEFAULT '2020-01-01 00:00:00'") {
		t.Fatalf("expected literal default not to be detected as timestamp default")
	}
}

func TestCmpBoolOrdering(t *testing.T) {
	if cmpBool(false, true) >= 0 {
		t.Fatalf("expected false to sort before true")
	}
	if cmpBool(true, false) <= 0 {
		t.Fatalf("expected true to sort after false")
	}
	if cmpBool(true, true) != 0 {
		t.Fatalf("expected equal booleans to compare equal")
	}
}

func TestMd5ShortIsStableAndShort(t *testing.T) {
	a := md5Short("table_col")
	b := md5Short("table_col")
	if a != b {
		t.Fatalf("expected md5Short to be deterministic")
	}
	if len(a) != 12 {
		t.Fatalf("expected a 12-character digest, got %d", len(a))
	}
	if md5Short("other") == a {
		t.Fatalf("expected different inputs to produce different digests")
	}
}

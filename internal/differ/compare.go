package differ

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"regexp"
	"strings"
)

var (
	collateRE     = regexp.MustCompile(`(?i)\s*COLLATE\s+\S+`)
	autoIncRE     = regexp.MustCompile(`(?i)\s*AUTO_INCREMENT=\d+`)
	precisionRE   = regexp.MustCompile(`^([A-Za-z]+)\s*\([0-9]+(?:,[0-9]+)?\)(.*)$`)
	timestampDefRE = regexp.MustCompile(`(?i)DEFAULT\s+(CURRENT_TIMESTAMP|NOW|LOCALTIME|LOCALTIMESTAMP)\s*(\(\s*\))?`)
	charZeroRE    = regexp.MustCompile(`(?i)CHAR\(0\)`)
)

// fieldsEqual reports whether two column definitions are the same,
// applying the tolerant normalization documented in the Design Notes when
// tolerant is set: COLLATE is stripped globally, "X" is treated as equal
// to "X DEFAULT '' NOT NULL" and to "X NOT NULL", and any "X(n,m)" is
// treated as equal to the same base type at a different precision.
func fieldsEqual(a, b string, tolerant bool) bool {
	if a == b {
		return true
	}
	if !tolerant {
		return false
	}
	na, nb := normalizeField(a), normalizeField(b)
	return na == nb
}

// checkAmbiguousField reports ErrAmbiguousDiff when a and b are textually
// different but tolerant-equal: fieldsEqual will treat them as unchanged,
// which is the intended behavior, but a caller running in tolerant mode
// may still want to know a cosmetic difference was papered over. The
// error is never returned to SchemaDiffer's caller; it exists purely so
// fieldsPass can log the skip at debug level.
func checkAmbiguousField(a, b string, tolerant bool) error {
	if !tolerant || a == b {
		return nil
	}
	if normalizeField(a) == normalizeField(b) {
		return ErrAmbiguousDiff
	}
	return nil
}

// logIfAmbiguous logs at debug level when checkAmbiguousField finds a
// tolerant-only match, so --tolerant runs stay auditable without failing.
func logIfAmbiguous(table, col, a, b string, tolerant bool) {
	if err := checkAmbiguousField(a, b, tolerant); err != nil {
		slog.Debug(err.Error(), slog.String("table", table), slog.String("column", col))
	}
}

func normalizeField(s string) string {
	s = collateRE.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	// Tolerate DEFAULT '' / NOT NULL tails by stripping them before
	// precision comparison.
	s = strings.TrimSuffix(s, " NOT NULL")
	s = strings.TrimSuffix(s, " DEFAULT ''")
	if m := precisionRE.FindStringSubmatch(s); m != nil {
		s = strings.ToUpper(m[1]) + m[2]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// optionsEqual reports whether two table-options strings are the same,
// applying the tolerant normalization (AUTO_INCREMENT=n and COLLATE=x are
// ignored) when tolerant is set.
func optionsEqual(a, b string, tolerant bool) bool {
	if a == b {
		return true
	}
	if !tolerant {
		return false
	}
	return normalizeOptions(a) == normalizeOptions(b)
}

func normalizeOptions(s string) string {
	s = autoIncRE.ReplaceAllString(s, "")
	s = regexp.MustCompile(`(?i)\s*COLLATE=\S+`).ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// isTimestampDefault reports whether a column definition carries a
// CURRENT_TIMESTAMP-family default.
func isTimestampDefault(def string) bool {
	return timestampDefRE.MatchString(def)
}

// isCharZero reports whether a column definition declares CHAR(0).
func isCharZero(def string) bool {
	return charZeroRE.MatchString(def)
}

// isAutoIncrement reports whether a column definition carries
// AUTO_INCREMENT.
func isAutoIncrement(def string) bool {
	return strings.Contains(strings.ToUpper(def), "AUTO_INCREMENT")
}

// stripAutoIncrement removes the AUTO_INCREMENT clause from a column
// definition, used when a new AUTO_INCREMENT column's ADD COLUMN must be
// emitted without it (the backing index is added first, then a follow-up
// CHANGE COLUMN restores it).
func stripAutoIncrement(def string) string {
	re := regexp.MustCompile(`(?i)\s*AUTO_INCREMENT`)
	return strings.TrimSpace(re.ReplaceAllString(def, ""))
}

// md5Short returns a short hex digest of s, used to name deterministic
// cover/temporary indexes (rc_temp_md5(col)_..., temp_md5(col)).
func md5Short(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// cmpBool orders two regex-match booleans the way the original ordered
// them as strings: false ("") sorts before true ("1"). Preserved
// verbatim per the spec's Open Questions.
func cmpBool(a, b bool) int {
	as, bs := boolStr(a), boolStr(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return ""
}

package differ

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IndexWorkaroundFacility lazily materializes a single MySQL stored
// procedure that conditionally executes ADD/DROP INDEX statements. It
// exists because several passes may independently decide to create or
// drop the same-named index (auto-column cover, FK-collision cover,
// explicit diff): wrapping every index operation in a conditional call
// makes the plan's index steps idempotent without a global per-index
// registry, working around the lack of "CREATE INDEX IF NOT EXISTS" in
// MySQL.
type IndexWorkaroundFacility struct {
	name string
	used bool
}

// NewIndexWorkaroundFacility picks a unique procedure name for one plan
// run. The name is derived from a UUID rather than an unspecified RNG,
// truncated so "workaround_" plus the suffix stays under MySQL's 64-byte
// identifier limit.
func NewIndexWorkaroundFacility() *IndexWorkaroundFacility {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &IndexWorkaroundFacility{name: "workaround_" + suffix[:16]}
}

// Name returns the procedure name this facility installs.
func (f *IndexWorkaroundFacility) Name() string { return f.name }

// Used reports whether any caller has routed an index statement through
// Call yet; PlanAssembler only emits the CREATE/DROP PROCEDURE bracket
// when this is true.
func (f *IndexWorkaroundFacility) Used() bool { return f.used }

// Call wraps one index statement (ADD or DROP INDEX) in a conditional
// CALL to the workaround procedure, marking the facility as used.
func (f *IndexWorkaroundFacility) Call(table, index, stmt, action string) string {
	f.used = true
	return fmt.Sprintf("CALL %s(%s,%s,%s,%s);",
		f.name, quoteLit(table), quoteLit(index), quoteLit(stmt), quoteLit(action))
}

func quoteLit(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// CreateStmt returns the CREATE PROCEDURE text for this plan's workaround
// procedure. The body consults INFORMATION_SCHEMA.STATISTICS and
// conditionally PREPAREs/EXECUTEs/DEALLOCATEs the passed-in statement,
// so the same call is safe whether or not the index already exists
// (create) or has already been removed (drop).
func (f *IndexWorkaroundFacility) CreateStmt() string {
	return fmt.Sprintf(`DELIMITER ;;
CREATE PROCEDURE %s(given_table VARCHAR(64), given_index VARCHAR(64), index_stmt TEXT, index_action VARCHAR(10))
BEGIN
  DECLARE idx_count INT DEFAULT 0;
  SELECT COUNT(*) INTO idx_count
    FROM INFORMATION_SCHEMA.STATISTICS
    WHERE TABLE_SCHEMA = DATABASE()
      AND TABLE_NAME = given_table
      AND INDEX_NAME = given_index;
  IF (index_action = 'create' AND idx_count = 0) OR (index_action = 'drop' AND idx_count > 0) THEN
    SET @wa_stmt = index_stmt;
    PREPARE wa_prepared FROM @wa_stmt;
    EXECUTE wa_prepared;
    DEALLOCATE PREPARE wa_prepared;
  END IF;
END;;
DELIMITER ;`, f.name)
}

// DropStmt returns the DROP PROCEDURE text that tears down the
// workaround procedure after the plan has run.
func (f *IndexWorkaroundFacility) DropStmt() string {
	return fmt.Sprintf("DROP PROCEDURE %s;", f.name)
}

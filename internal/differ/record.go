// Package differ implements the schema-differencing and migration-planning
// engine: given two parsed schema models it produces a correctly ordered
// list of DDL operations that transform the source schema into the target.
package differ

import "fmt"

// Priority buckets control final ordering: PlanAssembler stable-sorts
// ChangeRecords by descending priority, so a higher bucket always lands
// earlier in the emitted plan. The numbers below are load-bearing — they
// encode MySQL's constraints on the order schema objects may be altered
// (e.g. the backing index an AUTO_INCREMENT column needs is emitted in a
// higher bucket than the CHANGE COLUMN that makes it auto-increment).
const (
	PriorityViewPlaceholder  = 9
	PriorityDropAndOptions   = 8 // DROP TABLE, REMOVE PARTITIONING, options change, PK drop+add (column already added)
	PriorityDropFKAddColumn  = 6 // DROP FOREIGN KEY first, plain ADD COLUMN, add_table in refs mode
	PriorityCreateAndChange  = 5 // routine/view creation & change, plain CHANGE COLUMN, changed FK
	PriorityDropPK           = 4 // standalone DROP PRIMARY KEY
	PriorityAddPKOrIndex     = 3 // standalone ADD PRIMARY KEY, plain ADD/DROP INDEX
	PriorityDropColumn       = 2 // columns drop late
	PriorityAddFKOrTimestamp = 1 // ADD FOREIGN KEY (last), inline ADD PK with column, timestamp-bearing changes
	PriorityFinal            = 0 // options reinstallment carrying PARTITION BY, temporary-index cleanup
)

// ChangeRecord is one emitted DDL fragment tagged with the priority
// bucket used solely for final ordering.
type ChangeRecord struct {
	SQL      string
	Priority int

	// seq preserves emission order within a priority bucket so that the
	// final stable sort never reorders records the passes emitted
	// together (see PlanAssembler).
	seq int
}

// NewChange builds a ChangeRecord. seq is assigned by the recorder that
// accumulates records, not by the caller.
func NewChange(sql string, priority int) ChangeRecord {
	return ChangeRecord{SQL: sql, Priority: priority}
}

// recorder accumulates ChangeRecords for one diffing pass, assigning each
// one a monotonically increasing sequence number so the final sort can
// stay stable within a priority bucket.
type recorder struct {
	records []ChangeRecord
	next    int
}

func (r *recorder) add(sql string, priority int) {
	r.records = append(r.records, ChangeRecord{SQL: sql, Priority: priority, seq: r.next})
	r.next++
}

func (r *recorder) addf(priority int, format string, args ...any) {
	r.add(fmt.Sprintf(format, args...), priority)
}

func (r *recorder) extend(recs []ChangeRecord) {
	for _, rec := range recs {
		rec.seq = r.next
		r.next++
		r.records = append(r.records, rec)
	}
}

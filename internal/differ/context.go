package differ

// addedIndexState tracks a column whose AUTO_INCREMENT backing index has
// not been created yet: the indexes pass must add it before the CHANGE
// COLUMN that (re)introduces AUTO_INCREMENT runs.
type addedIndexState struct {
	Field string
	IsNew bool // the column itself is new (ADD COLUMN), not changed
	Desc  string
}

// emptyCharState tracks a column converted to CHAR(0), which nudges the
// weight of index rebuilds that cover it.
type emptyCharState struct {
	Field  string
	Weight int
}

// DifferContext is per-table-pair scratch state threaded through the five
// TableDiffer passes (fields, indexes, primary key, foreign keys,
// options) so later passes can observe decisions earlier ones made. It is
// reset at the start of every table pair; nothing here survives across
// pairs.
type DifferContext struct {
	// ChangedPKAutoCol holds a deferred "CHANGE COLUMN ... <def>" tail to
	// fuse onto the DROP PRIMARY KEY statement when the PK's auto
	// increment column is dropped, so AUTO_INCREMENT is stripped in the
	// same statement that removes the index backing it. Empty when unset.
	ChangedPKAutoCol string

	// AddedPK records that a new PK was already added as part of the
	// fields pass (ADD COLUMN ... PRIMARY KEY / CHANGE COLUMN ...
	// PRIMARY KEY), so the primary-key pass must not add it again.
	AddedPK bool
	// AddedPKCol is the column the fields pass attached the new PK to.
	AddedPKCol string

	// DroppedColumns is the set of columns the fields pass has decided
	// to DROP; later passes skip operations on indexes/PKs/FKs whose
	// columns are entirely made up of dropped columns.
	DroppedColumns map[string]bool

	// ChangedToEmptyCharCol is non-nil when a field is being converted
	// to CHAR(0), which nudges index-rebuild weights.
	ChangedToEmptyCharCol *emptyCharState

	// AddedIndex is non-nil when an AUTO_INCREMENT column needs a
	// backing index created before its CHANGE/ADD COLUMN can run.
	AddedIndex *addedIndexState

	// AddedForFK maps a new FK's constraint name to the priority weight
	// of the ADD COLUMN that introduced one of its columns, so the FK's
	// recreate step inherits that weight instead of a default.
	AddedForFK map[string]int

	// TemporaryIndexes maps every scaffolding index name created during
	// the pass to the column it covers; all of them are dropped at the
	// end of the options pass unless their column was itself dropped.
	TemporaryIndexes map[string]string

	// AddedCols is the set of columns ADD COLUMN has introduced this
	// pass.
	AddedCols map[string]bool

	// Timestamps is the set of columns whose new/changed definition
	// carries a CURRENT_TIMESTAMP-family default.
	Timestamps map[string]bool

	// IndexWA is the shared workaround-procedure state for the whole
	// plan (not reset per table); the passes route their DROP INDEX,
	// cover-index and auto-column-index steps through it (see indexesPass
	// for the ADD INDEX statements that are emitted unwrapped).
	IndexWA *IndexWorkaroundFacility
}

// NewDifferContext resets all per-pair state. wa is shared across every
// table pair in one SchemaDiffer run.
func NewDifferContext(wa *IndexWorkaroundFacility) *DifferContext {
	return &DifferContext{
		DroppedColumns:   make(map[string]bool),
		AddedForFK:       make(map[string]int),
		TemporaryIndexes: make(map[string]string),
		AddedCols:        make(map[string]bool),
		Timestamps:       make(map[string]bool),
		IndexWA:          wa,
	}
}

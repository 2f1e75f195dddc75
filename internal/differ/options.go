package differ

import "regexp"

// Options controls how SchemaDiffer and TableDiffer behave, corresponding
// to the recognized CLI options that affect the core (table-re, refs,
// only-both, keep-old-tables, list-tables, no-old-defs, tolerant,
// save-quotes).
type Options struct {
	// TableRE, if set, restricts diffing/refs listing to tables whose
	// name matches the expression.
	TableRE *regexp.Regexp

	// Refs switches SchemaDiffer into dependency-closure listing mode
	// instead of producing a diff.
	Refs bool

	// OnlyBoth suppresses drops and creates, emitting only changes to
	// objects present in both schemas.
	OnlyBoth bool

	// KeepOldTables suppresses DROP of tables/views/routines absent from
	// the target.
	KeepOldTables bool

	// ListTables prefixes each change with a structured JSON-ish header
	// comment describing the affected object.
	ListTables bool

	// NoOldDefs suppresses trailing "# was ..." comments on CHANGE
	// COLUMN statements.
	NoOldDefs bool

	// Tolerant relaxes field and option comparison: COLLATE is ignored,
	// DEFAULT ''/NOT NULL tails and same-base-type precision widenings
	// are treated as equal, and AUTO_INCREMENT=n/COLLATE=x are ignored
	// in table options.
	Tolerant bool

	// SaveQuotes preserves backticks through the schema loader; it has
	// no effect on the differ itself, which backtick-quotes the
	// identifiers in the statements it builds and emits CREATE TABLE,
	// view and routine text as the loader stored it.
	SaveQuotes bool
}

// matchesFilter reports whether name should be considered, given the
// configured TableRE.
func (o Options) matchesFilter(name string) bool {
	if o.TableRE == nil {
		return true
	}
	return o.TableRE.MatchString(name)
}

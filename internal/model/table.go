package model

import "strings"

// Index describes one secondary or unique index declared on a table.
type Index struct {
	Columns  []string
	Opts     string // trailing clause, e.g. "USING BTREE"
	Unique   bool
	Fulltext bool
}

// ForeignKey describes one FOREIGN KEY constraint.
type ForeignKey struct {
	Clause   string // full "FOREIGN KEY (...) REFERENCES ..." text
	Columns  []string
	RefTable string
}

// Table is the read-only view of one table's structure the differ needs.
// Fields, indexes, PK membership and foreign keys are all keyed by name
// and the declaration order of columns is preserved so that ADD COLUMN
// positioning (FIRST/AFTER) can be computed.
type Table struct {
	Name string

	fields      map[string]string
	fieldsOrder map[string]int
	fieldsSeq   []string

	primaryKeyText string
	hasPrimaryKey  bool
	primaryParts   map[string]bool

	indexNames []string
	indices    map[string]*Index

	fkNames     []string
	foreignKeys map[string]*ForeignKey

	options string
	def     string
}

// NewTable returns an empty table ready to be populated by a loader.
func NewTable(name string) *Table {
	return &Table{
		Name:        name,
		fields:      make(map[string]string),
		fieldsOrder: make(map[string]int),
		indices:     make(map[string]*Index),
		foreignKeys: make(map[string]*ForeignKey),
		primaryParts: make(map[string]bool),
	}
}

// AddField appends a column in declaration order. text is the canonical
// type-and-clauses text as MySQL would echo it, e.g. "int(11) NOT NULL
// DEFAULT '0'".
func (t *Table) AddField(name, text string) {
	if _, exists := t.fields[name]; !exists {
		t.fieldsOrder[name] = len(t.fieldsSeq)
		t.fieldsSeq = append(t.fieldsSeq, name)
	}
	t.fields[name] = text
}

// Fields returns the column-name -> type-and-clauses text.
func (t *Table) Fields() map[string]string { return t.fields }

// Field returns one column's type-and-clauses text.
func (t *Table) Field(col string) (string, bool) {
	v, ok := t.fields[col]
	return v, ok
}

// FieldsOrder returns a column's zero-based declaration ordinal.
func (t *Table) FieldsOrder(col string) (int, bool) {
	v, ok := t.fieldsOrder[col]
	return v, ok
}

// FieldsSeq returns all columns in declaration order.
func (t *Table) FieldsSeq() []string { return append([]string(nil), t.fieldsSeq...) }

// FieldsLinks returns the previous and next column names (declaration
// order) around col. An empty string means "no such neighbor" (col is
// first/last, or unknown).
func (t *Table) FieldsLinks(col string) (prev, next string) {
	idx, ok := t.fieldsOrder[col]
	if !ok {
		return "", ""
	}
	if idx > 0 {
		prev = t.fieldsSeq[idx-1]
	}
	if idx+1 < len(t.fieldsSeq) {
		next = t.fieldsSeq[idx+1]
	}
	return prev, next
}

// SetPrimaryKey records the PK's parenthesized column-list text and its
// constituent columns.
func (t *Table) SetPrimaryKey(text string, cols []string) {
	t.primaryKeyText = text
	t.hasPrimaryKey = true
	t.primaryParts = make(map[string]bool, len(cols))
	for _, c := range cols {
		t.primaryParts[c] = true
	}
}

// PrimaryKey returns the PK's textual column list and whether a PK exists.
func (t *Table) PrimaryKey() (string, bool) { return t.primaryKeyText, t.hasPrimaryKey }

// PrimaryParts returns the set of columns participating in the PK.
func (t *Table) PrimaryParts() map[string]bool { return t.primaryParts }

// IsaPrimary reports whether col is part of the primary key.
func (t *Table) IsaPrimary(col string) bool { return t.primaryParts[col] }

// AddIndex registers an index in declaration order.
func (t *Table) AddIndex(name string, idx *Index) {
	if _, exists := t.indices[name]; !exists {
		t.indexNames = append(t.indexNames, name)
	}
	t.indices[name] = idx
}

// IndexNames returns index names in declaration order.
func (t *Table) IndexNames() []string { return append([]string(nil), t.indexNames...) }

// Index returns one index by name.
func (t *Table) Index(name string) (*Index, bool) {
	idx, ok := t.indices[name]
	return idx, ok
}

// IndicesOpts returns an index's trailing option clause, if any.
func (t *Table) IndicesOpts(name string) string {
	if idx, ok := t.indices[name]; ok {
		return idx.Opts
	}
	return ""
}

// IndicesParts returns the set of columns participating in an index.
func (t *Table) IndicesParts(name string) map[string]bool {
	idx, ok := t.indices[name]
	if !ok {
		return nil
	}
	set := make(map[string]bool, len(idx.Columns))
	for _, c := range idx.Columns {
		set[c] = true
	}
	return set
}

// IsUnique reports whether the named index is a UNIQUE index.
func (t *Table) IsUnique(name string) bool {
	idx, ok := t.indices[name]
	return ok && idx.Unique
}

// IsFulltext reports whether the named index is a FULLTEXT index.
func (t *Table) IsFulltext(name string) bool {
	idx, ok := t.indices[name]
	return ok && idx.Fulltext
}

// AddForeignKey registers a foreign key constraint in declaration order.
func (t *Table) AddForeignKey(name string, fk *ForeignKey) {
	if _, exists := t.foreignKeys[name]; !exists {
		t.fkNames = append(t.fkNames, name)
	}
	t.foreignKeys[name] = fk
}

// ForeignKeyNames returns FK constraint names in declaration order.
func (t *Table) ForeignKeyNames() []string { return append([]string(nil), t.fkNames...) }

// ForeignKey returns one FK constraint's clause text and columns.
func (t *Table) ForeignKey(name string) (*ForeignKey, bool) {
	fk, ok := t.foreignKeys[name]
	return fk, ok
}

// IsaFK reports whether name is a declared FK constraint.
func (t *Table) IsaFK(name string) bool {
	_, ok := t.foreignKeys[name]
	return ok
}

// GetFKByCol returns the FK constraints (name -> clause text) that
// reference or use col as one of their referencing columns.
func (t *Table) GetFKByCol(col string) map[string]string {
	out := make(map[string]string)
	for name, fk := range t.foreignKeys {
		for _, c := range fk.Columns {
			if c == col {
				out[name] = fk.Clause
				break
			}
		}
	}
	return out
}

// FKTables returns the set of tables this table depends on via FK.
func (t *Table) FKTables() map[string]bool {
	out := make(map[string]bool)
	for _, fk := range t.foreignKeys {
		if fk.RefTable != "" {
			out[fk.RefTable] = true
		}
	}
	return out
}

// SetOptions sets the trailing table-level options string (ENGINE,
// DEFAULT CHARSET, COMMENT, PARTITION BY, ...).
func (t *Table) SetOptions(opts string) { t.options = opts }

// Options returns the trailing table-level options string.
func (t *Table) Options() string { return t.options }

// SetDef sets the full CREATE TABLE text used to recreate the table.
func (t *Table) SetDef(def string) { t.def = def }

// Def returns the full CREATE TABLE text.
func (t *Table) Def() string { return t.def }

// PartitionClause extracts the "PARTITION BY ..." suffix of Options, if
// present.
func (t *Table) PartitionClause() (string, bool) {
	idx := strings.Index(strings.ToUpper(t.options), "PARTITION BY")
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(t.options[idx:]), true
}

// OptionsWithoutPartition returns Options with any PARTITION BY clause
// stripped.
func (t *Table) OptionsWithoutPartition() string {
	idx := strings.Index(strings.ToUpper(t.options), "PARTITION BY")
	if idx < 0 {
		return t.options
	}
	return strings.TrimSpace(t.options[:idx])
}

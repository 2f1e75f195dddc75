// Package model holds the read-only schema representation the differ
// consumes: tables, views and routines together with the declaration
// order the original source used, so that generated plans stay
// deterministic across runs.
package model

// Schema is a parsed MySQL schema: an ordered collection of tables,
// views and routines, each addressable by name.
type Schema struct {
	tables       map[string]*Table
	tableOrder   []string
	views        map[string]*View
	viewOrder    []string
	routines     map[string]*Routine
	routineOrder []string
}

// NewSchema returns an empty schema ready to be populated by a loader.
func NewSchema() *Schema {
	return &Schema{
		tables:   make(map[string]*Table),
		views:    make(map[string]*View),
		routines: make(map[string]*Routine),
	}
}

// AddTable appends a table, preserving declaration order. A table added
// twice under the same name replaces the earlier entry but keeps its
// original position.
func (s *Schema) AddTable(t *Table) {
	if _, exists := s.tables[t.Name]; !exists {
		s.tableOrder = append(s.tableOrder, t.Name)
	}
	s.tables[t.Name] = t
}

// AddView appends a view, preserving declaration order.
func (s *Schema) AddView(v *View) {
	if _, exists := s.views[v.Name]; !exists {
		s.viewOrder = append(s.viewOrder, v.Name)
	}
	s.views[v.Name] = v
}

// AddRoutine appends a stored routine, preserving declaration order.
func (s *Schema) AddRoutine(r *Routine) {
	if _, exists := s.routines[r.Name]; !exists {
		s.routineOrder = append(s.routineOrder, r.Name)
	}
	s.routines[r.Name] = r
}

// Table looks up a table by name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// View looks up a view by name.
func (s *Schema) View(name string) (*View, bool) {
	v, ok := s.views[name]
	return v, ok
}

// Routine looks up a routine by name.
func (s *Schema) Routine(name string) (*Routine, bool) {
	r, ok := s.routines[name]
	return r, ok
}

// TableNames returns table names in declaration order.
func (s *Schema) TableNames() []string { return append([]string(nil), s.tableOrder...) }

// ViewNames returns view names in declaration order.
func (s *Schema) ViewNames() []string { return append([]string(nil), s.viewOrder...) }

// RoutineNames returns routine names in declaration order.
func (s *Schema) RoutineNames() []string { return append([]string(nil), s.routineOrder...) }

// ViewTemp builds a placeholder CREATE TABLE matching the named view's
// column shape, used to break forward-reference cycles when a view is
// created before a table it (or another view) depends on exists yet.
// It returns ("", false) if no such view is declared.
func (s *Schema) ViewTemp(name string) (string, bool) {
	v, ok := s.views[name]
	if !ok {
		return "", false
	}
	return v.placeholderCreateTable(), true
}

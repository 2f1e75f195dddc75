package model

import (
	"fmt"
	"strings"
)

// ViewOptions holds the view-level clauses compared when diffing views.
type ViewOptions struct {
	Security  string // DEFINER or INVOKER
	Algorithm string // UNDEFINED, MERGE or TEMPTABLE
	Trail     string // trailing WITH ... CHECK OPTION, if any
}

// View is the read-only view of one VIEW's definition.
type View struct {
	Name    string
	Fields  string // parenthesized column list, e.g. "(`id`, `name`)"
	Select  string // the view body
	Options ViewOptions

	def string
}

// NewView returns an empty view ready to be populated by a loader.
func NewView(name string) *View { return &View{Name: name} }

// SetDef sets the full CREATE VIEW text.
func (v *View) SetDef(def string) { v.def = def }

// Def returns the full CREATE VIEW text.
func (v *View) Def() string { return v.def }

// placeholderCreateTable builds a CREATE TABLE statement whose columns
// match this view's projected column list, so that other objects
// referencing the view-to-be can be created before the real view exists.
func (v *View) placeholderCreateTable() string {
	cols := splitParenList(v.Fields)
	if len(cols) == 0 {
		cols = []string{"placeholder"}
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("  `%s` int", strings.Trim(c, "` \t"))
	}
	return fmt.Sprintf("CREATE TABLE `%s` (\n%s\n);", v.Name, strings.Join(defs, ",\n"))
}

// splitParenList splits a parenthesized, comma-separated column list such
// as "(`a`, `b`)" into its component names. Missing parens are tolerated.
func splitParenList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

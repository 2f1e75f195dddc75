package differ

import "github.com/rurban/mysqldiff/internal/model"

// Refs produces the transitive FK dependency closure of the tables that
// match opts.TableRE, each listed exactly once, instead of a diff. It is
// a distinct driver from Diff that walks each table's FKTables itself,
// per the Design Note against overloading one function with a mode
// flag. Unlike Diff, Refs tracks a used-tables set to deduplicate;
// Diff does not need to, since it only ever visits each schema's objects
// once by walking their declaration order directly. This asymmetry
// mirrors the source and is intentional (see spec Open Question (c)).
func Refs(schema *model.Schema, opts Options) *Plan {
	used := make(map[string]bool)
	var recs []ChangeRecord

	var walk func(name string)
	walk = func(name string) {
		if used[name] {
			return
		}
		t, ok := schema.Table(name)
		if !ok {
			return
		}
		used[name] = true
		recs = append(recs, NewChange(t.Def(), PriorityDropFKAddColumn))

		refTables := sortedSet(t.FKTables())
		for _, ref := range refTables {
			walk(ref)
		}
	}

	for _, name := range schema.TableNames() {
		if !opts.matchesFilter(name) {
			continue
		}
		walk(name)
	}

	return assemble(recs, nil, opts)
}

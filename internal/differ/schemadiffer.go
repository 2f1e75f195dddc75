package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rurban/mysqldiff/internal/model"
)

// Diff walks src and dst in their respective declaration orders and
// produces the ordered plan that transforms src into dst. It is the
// "normal" driver; refs-mode dependency-closure listing is a distinct
// driver, Refs, with its own FK traversal (see the Design Note on not
// overloading one function with a mode flag).
func Diff(src, dst *model.Schema, opts Options) *Plan {
	wa := NewIndexWorkaroundFacility()
	var recs []ChangeRecord

	recs = append(recs, diffTables(wa, src, dst, opts)...)
	recs = append(recs, diffRoutines(src, dst, opts, false)...)
	recs = append(recs, diffViews(src, dst, opts, false)...)

	recs = append(recs, createTables(wa, src, dst, opts)...)
	recs = append(recs, diffRoutines(src, dst, opts, true)...)
	recs = append(recs, createViews(src, dst, opts)...)

	return assemble(recs, wa, opts)
}

func diffTables(wa *IndexWorkaroundFacility, src, dst *model.Schema, opts Options) []ChangeRecord {
	var recs []ChangeRecord
	for _, name := range src.TableNames() {
		if !opts.matchesFilter(name) {
			continue
		}
		srcTable, _ := src.Table(name)

		if dstTable, ok := dst.Table(name); ok {
			tblRecs := DiffTable(wa, srcTable, dstTable, opts)
			recs = append(recs, attachListHeader(opts, name, "alter_table", sortedSet(dstTable.FKTables()), tblRecs)...)
			continue
		}

		if _, isView := dst.View(name); isView {
			continue // the view-creation pass below handles this name
		}
		if opts.OnlyBoth || opts.KeepOldTables {
			continue
		}
		stmt := fmt.Sprintf("DROP TABLE `%s`;", name)
		recs = append(recs, attachListHeader(opts, name, "drop_table", nil,
			[]ChangeRecord{NewChange(stmt, PriorityDropAndOptions)})...)
	}
	return recs
}

func createTables(wa *IndexWorkaroundFacility, src, dst *model.Schema, opts Options) []ChangeRecord {
	var recs []ChangeRecord
	if opts.OnlyBoth {
		return recs
	}
	for _, name := range dst.TableNames() {
		if _, ok := src.Table(name); ok {
			continue
		}
		dstTable, _ := dst.Table(name)

		create := []ChangeRecord{NewChange(dstTable.Def(), PriorityDropFKAddColumn)}
		for _, fkName := range dstTable.ForeignKeyNames() {
			fk, _ := dstTable.ForeignKey(fkName)
			create = append(create, NewChange(
				fmt.Sprintf("ALTER TABLE `%s` ADD CONSTRAINT `%s` %s;", name, fkName, fk.Clause),
				PriorityAddFKOrTimestamp))
		}
		recs = append(recs, attachListHeader(opts, name, "create_table", sortedSet(dstTable.FKTables()), create)...)
	}
	return recs
}

func diffRoutines(src, dst *model.Schema, opts Options, creations bool) []ChangeRecord {
	var recs []ChangeRecord
	if creations {
		if opts.OnlyBoth {
			return recs
		}
		for _, name := range dst.RoutineNames() {
			if _, ok := src.Routine(name); ok {
				continue
			}
			r, _ := dst.Routine(name)
			recs = append(recs, routineCreateDDL(r))
		}
		return recs
	}

	for _, name := range src.RoutineNames() {
		srcR, _ := src.Routine(name)
		if dstR, ok := dst.Routine(name); ok {
			o1, b1, p1 := srcR.Signature()
			o2, b2, p2 := dstR.Signature()
			if o1 != o2 || b1 != b2 || p1 != p2 {
				recs = append(recs, dropRoutineDDL(dstR))
				recs = append(recs, routineCreateDDL(dstR))
			}
			continue
		}
		if opts.OnlyBoth || opts.KeepOldTables {
			continue
		}
		recs = append(recs, NewChange(
			fmt.Sprintf("DROP %s IF EXISTS `%s`;", srcR.Type, srcR.Name), PriorityDropAndOptions))
	}
	return recs
}

func dropRoutineDDL(r *model.Routine) ChangeRecord {
	return NewChange(fmt.Sprintf("DROP %s IF EXISTS `%s`;", r.Type, r.Name), PriorityCreateAndChange)
}

func routineCreateDDL(r *model.Routine) ChangeRecord {
	body := strings.TrimRight(r.Def(), ";\n \t")
	return NewChange(fmt.Sprintf("DELIMITER ;;\n%s;;\nDELIMITER ;", body), PriorityCreateAndChange)
}

func diffViews(src, dst *model.Schema, opts Options, creations bool) []ChangeRecord {
	var recs []ChangeRecord
	if creations {
		return recs // handled by createViews, which also needs the placeholder
	}

	for _, name := range src.ViewNames() {
		srcV, _ := src.View(name)
		dstV, ok := dst.View(name)
		if !ok {
			if opts.OnlyBoth || opts.KeepOldTables {
				continue
			}
			recs = append(recs, NewChange(fmt.Sprintf("DROP VIEW `%s`;", name), PriorityDropAndOptions))
			continue
		}
		if viewUnchanged(srcV, dstV) {
			continue
		}
		recs = append(recs, viewAlterDDL(name, dstV))
	}
	return recs
}

func viewUnchanged(a, b *model.View) bool {
	return a.Fields == b.Fields && a.Select == b.Select &&
		a.Options.Algorithm == b.Options.Algorithm &&
		a.Options.Security == b.Options.Security &&
		a.Options.Trail == b.Options.Trail
}

func viewAlterDDL(name string, v *model.View) ChangeRecord {
	return NewChange(fmt.Sprintf(
		"ALTER ALGORITHM=%s DEFINER=CURRENT_USER SQL SECURITY %s VIEW `%s` %s AS %s%s;",
		orDefault(v.Options.Algorithm, "UNDEFINED"), orDefault(v.Options.Security, "DEFINER"),
		name, v.Fields, v.Select, v.Options.Trail), PriorityCreateAndChange)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func createViews(src, dst *model.Schema, opts Options) []ChangeRecord {
	var recs []ChangeRecord
	if opts.OnlyBoth {
		return recs
	}
	for _, name := range dst.ViewNames() {
		if _, ok := src.View(name); ok {
			continue
		}
		placeholder, _ := dst.ViewTemp(name)
		v, _ := dst.View(name)
		recs = append(recs, NewChange(placeholder, PriorityViewPlaceholder))
		recs = append(recs, NewChange(fmt.Sprintf("DROP TABLE IF EXISTS `%s`;", name), PriorityCreateAndChange))
		recs = append(recs, NewChange(v.Def(), PriorityCreateAndChange))
	}
	return recs
}

// listTablesHeader renders the per-change structured comment the
// list-tables option prefixes onto emitted statements.
func listTablesHeader(name, actionType string, refTables []string) string {
	quoted := make([]string, len(refTables))
	for i, r := range refTables {
		quoted[i] = fmt.Sprintf("%q", r)
	}
	return fmt.Sprintf(`-- { "name": %q, "action_type": %q, "referenced_tables": [%s] }`,
		name, actionType, strings.Join(quoted, ", "))
}

func attachListHeader(opts Options, name, actionType string, refTables []string, recs []ChangeRecord) []ChangeRecord {
	if !opts.ListTables || len(recs) == 0 {
		return recs
	}
	out := make([]ChangeRecord, len(recs))
	copy(out, recs)
	header := listTablesHeader(name, actionType, refTables)
	out[0].SQL = header + "\n" + out[0].SQL
	return out
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

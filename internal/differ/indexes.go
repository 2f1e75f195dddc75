package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rurban/mysqldiff/internal/model"
)

func indexColumnsText(idx *model.Index) string {
	quoted := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		quoted[i] = "`" + c + "`"
	}
	return "(" + strings.Join(quoted, ",") + ")"
}

func indexKindKeyword(idx *model.Index) string {
	switch {
	case idx.Unique:
		return "UNIQUE INDEX"
	case idx.Fulltext:
		return "FULLTEXT INDEX"
	default:
		return "INDEX"
	}
}

func indexKindChanged(a, b *model.Index) bool {
	if a.Unique != b.Unique || a.Fulltext != b.Fulltext {
		return true
	}
	if a.Opts != b.Opts {
		return true
	}
	return indexColumnsText(a) != indexColumnsText(b)
}

func addIndexDDL(table, name string, idx *model.Index) string {
	return fmt.Sprintf("ALTER TABLE `%s` ADD %s `%s` %s%s;",
		table, indexKindKeyword(idx), name, indexColumnsText(idx), suffixIfSet(idx.Opts))
}

func suffixIfSet(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

func dropIndexDDL(table, name string) string {
	return fmt.Sprintf("ALTER TABLE `%s` DROP INDEX `%s`;", table, name)
}

// autoColIndexName names the scaffolding index mysqldiff installs so an
// AUTO_INCREMENT column always has a backing index at every intermediate
// state, even while its "real" index is being dropped and recreated.
func autoColIndexName(table, col string) string {
	return fmt.Sprintf("mysqldiff_%s", md5Short(table+"_"+col))
}

// coverTempIndexName names a short-lived index created solely to keep a
// column indexed while its normal index is dropped and recreated,
// disambiguated by the kind of operation in flight.
func coverTempIndexName(col, kind string) string {
	return fmt.Sprintf("rc_temp_%s_%s", md5Short(col), kind)
}

func genericTempIndexName(col string) string {
	return fmt.Sprintf("temp_%s", md5Short(col))
}

// fkCoupled reports whether name collides with an FK constraint name in
// either table and, if so, whether the FK's clause text actually differs
// across the two tables (an "FK-coupled index": MySQL manages this
// index's lifecycle implicitly alongside the constraint).
func fkCoupled(src, dst *model.Table, name string) (coupled bool, textDiffers bool) {
	srcFK, srcHas := src.ForeignKey(name)
	dstFK, dstHas := dst.ForeignKey(name)
	if !srcHas && !dstHas {
		return false, false
	}
	if srcHas && dstHas {
		return true, srcFK.Clause != dstFK.Clause
	}
	return true, true
}

func allColumnsDropped(ctx *DifferContext, cols map[string]bool) bool {
	if len(cols) == 0 {
		return false
	}
	for c := range cols {
		if !ctx.DroppedColumns[c] {
			return false
		}
	}
	return true
}

func anyPartHasFK(src, dst *model.Table, cols map[string]bool) bool {
	for c := range cols {
		if len(src.GetFKByCol(c)) > 0 || len(dst.GetFKByCol(c)) > 0 {
			return true
		}
	}
	return false
}

func anyPartIsTimestamp(ctx *DifferContext, cols map[string]bool) bool {
	for c := range cols {
		if ctx.Timestamps[c] {
			return true
		}
	}
	return false
}

func anyPartIsAutoIncrement(dst *model.Table, cols map[string]bool) (string, bool) {
	for c := range cols {
		if text, ok := dst.Field(c); ok && isAutoIncrement(text) {
			return c, true
		}
	}
	return "", false
}

// indexesPass diffs index declarations between src and dst, keeping
// AUTO_INCREMENT columns and FK-referencing columns indexed at every
// intermediate plan state via auto-column and short-lived cover indexes.
// Every DROP INDEX, every cover index and the rebuilt index of a changed
// definition go through the IndexWorkaroundFacility; the auto-column
// indexes added here and the ADD INDEX for an index new in dst are
// emitted as plain ALTER TABLE statements, not wrapped in a CALL.
func indexesPass(ctx *DifferContext, src, dst *model.Table, opts Options) []ChangeRecord {
	rec := &recorder{}

	for _, name := range sortedIndexNames(src) {
		srcIdx, _ := src.Index(name)
		srcParts := src.IndicesParts(name)

		coupled, textDiffers := fkCoupled(src, dst, name)
		fkCoupledChange := coupled && textDiffers

		if fkCoupledChange {
			kind := "change"
			weight := PriorityCreateAndChange
			if ctx.AddedPKCol != "" && srcParts[ctx.AddedPKCol] {
				kind = "change"
				weight = PriorityAddFKOrTimestamp
			} else if _, ok := ctx.AddedForFK[name]; ok {
				weight = PriorityCreateAndChange
			} else {
				weight = PriorityDropFKAddColumn
			}
			temp := coverTempIndexName(joinedCols(srcParts), kind)
			rec.add(ctx.IndexWA.Call(src.Name, temp, addIndexDDL(src.Name, temp, srcIdx), "create"), weight)
			ctx.TemporaryIndexes[temp] = firstCol(srcParts)
			rec.add(ctx.IndexWA.Call(src.Name, name, dropIndexDDL(src.Name, name), "drop"), weight)
			continue
		}

		if anyPartHasFK(src, dst, srcParts) {
			for _, c := range sortedSet(srcParts) {
				if len(src.GetFKByCol(c)) > 0 || len(dst.GetFKByCol(c)) > 0 {
					temp := genericTempIndexName(c)
					if _, exists := ctx.TemporaryIndexes[temp]; !exists {
						cover := &model.Index{Columns: []string{c}}
						rec.add(ctx.IndexWA.Call(src.Name, temp, addIndexDDL(src.Name, temp, cover), "create"), PriorityAddPKOrIndex)
						ctx.TemporaryIndexes[temp] = c
					}
				}
			}
		}

		weight := PriorityAddPKOrIndex
		if anyPartIsTimestamp(ctx, srcParts) {
			weight = PriorityAddFKOrTimestamp
		}

		dstIdx, existsInDst := dst.Index(name)

		switch {
		case !existsInDst:
			if allColumnsDropped(ctx, srcParts) {
				continue
			}
			if col, ok := anyPartIsAutoIncrement(dst, srcParts); ok {
				rec.add(addIndexDDL(src.Name, autoColIndexName(src.Name, col), &model.Index{Columns: []string{col}}), weight)
			}
			rec.add(ctx.IndexWA.Call(src.Name, name, dropIndexDDL(src.Name, name), "drop"), weight)

		case indexKindChanged(srcIdx, dstIdx):
			addWeight := weight
			if col, ok := anyPartIsAutoIncrement(dst, dst.IndicesParts(name)); ok {
				rec.add(addIndexDDL(src.Name, autoColIndexName(src.Name, col), &model.Index{Columns: []string{col}}), addWeight)
			}
			if !allColumnsDropped(ctx, srcParts) {
				rec.add(ctx.IndexWA.Call(src.Name, name, dropIndexDDL(src.Name, name), "drop"), weight)
			}
			rec.add(ctx.IndexWA.Call(src.Name, name, addIndexDDL(src.Name, name, dstIdx), "create"), addWeight)
		}
	}

	if ctx.AddedIndex != nil {
		finishAddedIndex(ctx, rec, src, dst, opts)
	}

	for _, name := range sortedIndexNames(dst) {
		if _, existsInSrc := src.Index(name); existsInSrc {
			continue
		}
		dstIdx, _ := dst.Index(name)
		dstParts := dst.IndicesParts(name)

		coupled, textDiffers := fkCoupled(src, dst, name)
		if coupled && !textDiffers {
			continue // MySQL's implicit FK index management already covers this
		}

		weight := PriorityAddPKOrIndex
		if dstParts[ctx.AddedPKCol] || anyPartIsTimestamp(ctx, dstParts) {
			weight = PriorityAddFKOrTimestamp
		}

		if coupled {
			for _, c := range sortedSet(dstParts) {
				temp := genericTempIndexName(c)
				if _, exists := ctx.TemporaryIndexes[temp]; !exists {
					cover := &model.Index{Columns: []string{c}}
					rec.add(ctx.IndexWA.Call(src.Name, temp, addIndexDDL(src.Name, temp, cover), "create"), weight)
					ctx.TemporaryIndexes[temp] = c
				}
			}
		}

		rec.add(addIndexDDL(src.Name, name, dstIdx), weight)
	}

	return rec.records
}

// finishAddedIndex emits the backing index an AUTO_INCREMENT column
// needed (recorded by the fields pass) and, for a brand-new column,
// restores the AUTO_INCREMENT clause that was stripped from its ADD
// COLUMN so the column is never left unindexed-but-auto-incrementing.
func finishAddedIndex(ctx *DifferContext, rec *recorder, src, dst *model.Table, opts Options) {
	ai := ctx.AddedIndex
	idx := &model.Index{Columns: []string{ai.Field}}
	name := autoColIndexName(src.Name, ai.Field)
	// Weight 6 places the index after the column's ADD COLUMN (same
	// bucket, emitted earlier) and ahead of the weight-5 CHANGE COLUMN that
	// makes it AUTO_INCREMENT.
	rec.add(ctx.IndexWA.Call(src.Name, name, addIndexDDL(src.Name, name, idx), "create"), PriorityDropFKAddColumn)

	if ai.IsNew {
		rec.addf(PriorityCreateAndChange, "ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s;",
			src.Name, ai.Field, ai.Field, ai.Desc)
	}
	ctx.AddedIndex = nil
}

func sortedIndexNames(t *model.Table) []string {
	names := t.IndexNames()
	sort.Strings(names)
	return names
}

func joinedCols(cols map[string]bool) string {
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	sort.Strings(names)
	return strings.Join(names, "_")
}

func firstCol(cols map[string]bool) string {
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

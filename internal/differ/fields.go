package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rurban/mysqldiff/internal/model"
)

// pkAttachColumn decides which single column's ALTER statement the fields
// pass should fuse the new PRIMARY KEY clause onto, when the target
// introduces or redefines the primary key. Per the "composite PK last
// part" rule, every column that is newly part of the PK (whether it is an
// existing column being changed or a brand-new ADD COLUMN) is ordered by
// "target has AUTO_INCREMENT" ascending, then by declaration order; the
// last column in that order receives the fused clause so MySQL only ever
// sees a fully-specified PK in one statement.
func pkAttachColumn(src, dst *model.Table) (string, bool) {
	dstPK, dstHasPK := dst.PrimaryKey()
	if !dstHasPK {
		return "", false
	}
	srcPK, srcHasPK := src.PrimaryKey()
	if srcHasPK && srcPK == dstPK {
		return "", false // PK unchanged, nothing to fuse here
	}

	type candidate struct {
		col     string
		autoInc bool
		order   int
	}
	var candidates []candidate
	for col := range dst.PrimaryParts() {
		if src.IsaPrimary(col) {
			continue // already part of the PK, no fused clause needed
		}
		text, _ := dst.Field(col)
		order, _ := dst.FieldsOrder(col)
		candidates = append(candidates, candidate{col: col, autoInc: isAutoIncrement(text), order: order})
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if c := cmpBool(candidates[i].autoInc, candidates[j].autoInc); c != 0 {
			return c < 0
		}
		return candidates[i].order < candidates[j].order
	})
	last := candidates[len(candidates)-1]
	return last.col, true
}

// sortColumnsForChangePass orders src's columns the same way: target
// AUTO_INCREMENT ascending, then source declaration order. This pushes
// AUTO_INCREMENT columns to the end so a single-column composite-PK-last
// insertion lands its ADD PRIMARY KEY in the same ALTER as the backing
// index is established.
func sortColumnsForChangePass(src, dst *model.Table) []string {
	cols := src.FieldsSeq()
	sort.SliceStable(cols, func(i, j int) bool {
		ti, _ := dst.Field(cols[i])
		tj, _ := dst.Field(cols[j])
		if c := cmpBool(isAutoIncrement(ti), isAutoIncrement(tj)); c != 0 {
			return c < 0
		}
		oi, _ := src.FieldsOrder(cols[i])
		oj, _ := src.FieldsOrder(cols[j])
		return oi < oj
	})
	return cols
}

func oldDefComment(opts Options, oldText string) string {
	if opts.NoOldDefs {
		return ""
	}
	return fmt.Sprintf(" # was %s", oldText)
}

func isDefaultNull(def string) bool {
	return strings.Contains(strings.ToUpper(def), "DEFAULT NULL")
}

// fieldsPass diffs column definitions between src and dst, emitting
// CHANGE/ADD/DROP COLUMN statements and recording the cross-cutting
// decisions (new PK membership, AUTO_INCREMENT backing-index needs,
// timestamp defaults, FK-target columns) that later passes depend on.
func fieldsPass(ctx *DifferContext, src, dst *model.Table, opts Options) []ChangeRecord {
	rec := &recorder{}

	attachCol, pkNew := pkAttachColumn(src, dst)

	for _, col := range sortColumnsForChangePass(src, dst) {
		srcText, _ := src.Field(col)
		dstText, stillPresent := dst.Field(col)

		if !stillPresent {
			rec.add(fmt.Sprintf("ALTER TABLE `%s` DROP COLUMN `%s`;", src.Name, col), PriorityDropColumn)
			ctx.DroppedColumns[col] = true
			continue
		}

		if fieldsEqual(srcText, dstText, opts.Tolerant) {
			logIfAmbiguous(src.Name, col, srcText, dstText, opts.Tolerant)
			continue
		}

		becomingPK := dst.IsaPrimary(col) && !src.IsaPrimary(col)

		switch {
		case becomingPK && pkNew && attachCol == col:
			if len(dst.PrimaryParts()) <= 1 {
				rec.addf(PriorityAddFKOrTimestamp, "ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s PRIMARY KEY;%s",
					src.Name, col, col, dstText, oldDefComment(opts, srcText))
			} else {
				pkList, _ := dst.PrimaryKey()
				rec.addf(PriorityAddFKOrTimestamp, "ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s, ADD PRIMARY KEY %s;%s",
					src.Name, col, col, dstText, pkList, oldDefComment(opts, srcText))
			}
			ctx.AddedPK = true
			ctx.AddedPKCol = col

		case src.IsaPrimary(col) && isDefaultNull(dstText):
			rec.addf(PriorityAddPKOrIndex, "ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s;%s",
				src.Name, col, col, dstText, oldDefComment(opts, srcText))

		case src.IsaPrimary(col) && isAutoIncrement(srcText):
			ctx.ChangedPKAutoCol = fmt.Sprintf("CHANGE COLUMN `%s` `%s` %s", col, col, dstText)

		case !src.IsaPrimary(col) && isAutoIncrement(dstText) && !isAutoIncrement(srcText):
			ctx.AddedIndex = &addedIndexState{Field: col, IsNew: false, Desc: dstText}
			rec.addf(PriorityCreateAndChange, "ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s;%s",
				src.Name, col, col, dstText, oldDefComment(opts, srcText))

		default:
			if isCharZero(dstText) {
				ctx.ChangedToEmptyCharCol = &emptyCharState{Field: col, Weight: PriorityAddFKOrTimestamp}
			}
			weight := PriorityCreateAndChange
			if isTimestampDefault(dstText) {
				weight = PriorityAddFKOrTimestamp
			}
			rec.addf(weight, "ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s;%s",
				src.Name, col, col, dstText, oldDefComment(opts, srcText))
		}
	}

	rec.extend(addedColumnsPass(ctx, src, dst, attachCol, pkNew))

	return rec.records
}

// addedColumnsPass handles target columns absent from the source: ADD
// COLUMN, positioned with FIRST/AFTER where the neighbor is already
// known, folding in PRIMARY KEY/ADD PRIMARY KEY, AUTO_INCREMENT backing
// index deferral and timestamp-default bookkeeping.
func addedColumnsPass(ctx *DifferContext, src, dst *model.Table, attachCol string, pkNew bool) []ChangeRecord {
	rec := &recorder{}

	added := addedColumnsInOrder(src, dst)
	placed := make(map[string]bool)

	for _, col := range added {
		dstText, _ := dst.Field(col)
		prev, next := dst.FieldsLinks(col)

		position := ""
		switch {
		case prev == "":
			position = " FIRST"
		case placed[prev]:
			position = fmt.Sprintf(" AFTER `%s`", prev)
		default:
			if _, ok := src.Field(prev); ok {
				position = fmt.Sprintf(" AFTER `%s`", prev)
			}
			// else: neighbor doesn't exist yet; emitted without AFTER,
			// corrected by a follow-up CHANGE COLUMN once it does (see
			// routineAlters below).
		}

		text := dstText
		header := ""
		isPK := dst.IsaPrimary(col)
		weight := PriorityDropFKAddColumn

		if isPK && pkNew && attachCol == col {
			if len(dst.PrimaryParts()) <= 1 {
				header = " PRIMARY KEY"
			} else {
				pkList, _ := dst.PrimaryKey()
				header = fmt.Sprintf(", ADD PRIMARY KEY %s", pkList)
			}
			ctx.AddedPK = true
			ctx.AddedPKCol = col
			weight = PriorityAddFKOrTimestamp
		}

		autoIncNotYetPK := isAutoIncrement(text) && !isPK
		if autoIncNotYetPK {
			text = stripAutoIncrement(text)
			ctx.AddedIndex = &addedIndexState{Field: col, IsNew: true, Desc: dstText}
		}

		if isTimestampDefault(dstText) {
			weight = PriorityAddFKOrTimestamp
			ctx.Timestamps[col] = true
		}

		rec.addf(weight, "ALTER TABLE `%s` ADD COLUMN `%s` %s%s%s;", src.Name, col, text, header, position)
		ctx.AddedCols[col] = true
		placed[col] = true

		for fkName, fk := range dst.GetFKByCol(col) {
			_ = fk
			ctx.AddedForFK[fkName] = weight
		}
	}

	rec.extend(routineAlters(src, dst, added))

	return rec.records
}

// addedColumnsInOrder returns dst's columns absent from src, sorted the
// same way existing changed columns are (target AUTO_INCREMENT ascending,
// then target declaration order), so the composite-PK-last heuristic
// applies uniformly across changed and added columns.
func addedColumnsInOrder(src, dst *model.Table) []string {
	var added []string
	for _, col := range dst.FieldsSeq() {
		if _, ok := src.Field(col); !ok {
			added = append(added, col)
		}
	}
	sort.SliceStable(added, func(i, j int) bool {
		ti, _ := dst.Field(added[i])
		tj, _ := dst.Field(added[j])
		if c := cmpBool(isAutoIncrement(ti), isAutoIncrement(tj)); c != 0 {
			return c < 0
		}
		oi, _ := dst.FieldsOrder(added[i])
		oj, _ := dst.FieldsOrder(added[j])
		return oi < oj
	})
	return added
}

// routineAlters walks the forward links of every just-added column and
// re-issues a CHANGE COLUMN ... AFTER for any column whose ADD COLUMN had
// to be emitted without a position (because its predecessor did not exist
// yet at emission time), so the final declaration order matches the
// target once every column has landed.
func routineAlters(src, dst *model.Table, added []string) []ChangeRecord {
	rec := &recorder{}
	placed := make(map[string]bool, len(added))

	for _, col := range added {
		prev, _ := dst.FieldsLinks(col)
		_, prevInSrc := src.Field(prev)
		positioned := prev == "" || prevInSrc || placed[prev]
		placed[col] = true
		if positioned {
			continue // position was already correct at emission time
		}
		text, _ := dst.Field(col)
		rec.addf(PriorityCreateAndChange, "ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s AFTER `%s`;",
			src.Name, col, col, text, prev)
	}
	return rec.records
}

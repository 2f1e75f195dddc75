package differ

import (
	"fmt"

	"github.com/rurban/mysqldiff/internal/model"
)

// primaryKeyPass reconciles the primary key once the fields pass has run.
// When the source has no PK and the fields pass already fused the new PK
// into a CHANGE/ADD COLUMN statement (ctx.AddedPK), it emits nothing;
// when an existing PK is replaced that way (ctx.AddedPKCol), it still
// emits the DROP PRIMARY KEY.
func primaryKeyPass(ctx *DifferContext, src, dst *model.Table) []ChangeRecord {
	rec := &recorder{}

	srcPK, srcHas := src.PrimaryKey()
	dstPK, dstHas := dst.PrimaryKey()

	if !srcHas && dstHas {
		if !ctx.AddedPK {
			rec.addf(PriorityAddPKOrIndex, "ALTER TABLE `%s` ADD PRIMARY KEY %s;", src.Name, dstPK)
		}
		return rec.records
	}

	if !srcHas || srcPK == dstPK {
		return rec.records // nothing to do: no PK on either side, or PK unchanged
	}

	// PK differs: drop (possibly fused with a pending AUTO_INCREMENT
	// strip) and, if the target still has a PK, re-add it.
	for _, col := range sortedSet(src.PrimaryParts()) {
		text, _ := src.Field(col)
		if isAutoIncrement(text) {
			// Only needs a real backing index if it is still AUTO_INCREMENT
			// on the target side; when the fields pass already fused
			// stripping AUTO_INCREMENT into the same DROP PRIMARY KEY
			// statement (ctx.ChangedPKAutoCol), there's no intermediate
			// unindexed state to cover.
			dstText, stillExists := dst.Field(col)
			if !stillExists || !isAutoIncrement(dstText) {
				continue
			}
			idx := &model.Index{Columns: []string{col}}
			name := autoColIndexName(src.Name, col)
			rec.add(ctx.IndexWA.Call(src.Name, name, addIndexDDL(src.Name, name, idx), "create"), PriorityAddPKOrIndex)
		}
		if len(src.GetFKByCol(col)) > 0 || len(dst.GetFKByCol(col)) > 0 {
			temp := genericTempIndexName(col)
			if _, exists := ctx.TemporaryIndexes[temp]; !exists {
				cover := &model.Index{Columns: []string{col}}
				rec.add(ctx.IndexWA.Call(src.Name, temp, addIndexDDL(src.Name, temp, cover), "create"), PriorityAddPKOrIndex)
				ctx.TemporaryIndexes[temp] = col
			}
		}
	}

	suppress := allColumnsDropped(ctx, src.PrimaryParts())

	dropClause := "DROP PRIMARY KEY"
	if ctx.ChangedPKAutoCol != "" {
		dropClause = fmt.Sprintf("%s, %s", dropClause, ctx.ChangedPKAutoCol)
	}

	switch {
	case !dstHas:
		if !suppress {
			rec.addf(PriorityDropPK, "ALTER TABLE `%s` %s;", src.Name, dropClause)
		}

	case ctx.AddedPKCol != "":
		// The new PK's column was already added/changed in the fields
		// pass; do the drop last so the new shape is fully established
		// first.
		if !suppress {
			rec.addf(PriorityDropAndOptions, "ALTER TABLE `%s` %s;", src.Name, dropClause)
		}

	case suppress:
		// every old PK column is gone; nothing left to drop, add the new
		// PK dead last.
		rec.addf(PriorityFinal, "ALTER TABLE `%s` ADD PRIMARY KEY %s;", src.Name, dstPK)

	default:
		rec.addf(PriorityAddPKOrIndex, "ALTER TABLE `%s` %s, ADD PRIMARY KEY %s;", src.Name, dropClause, dstPK)
	}

	return rec.records
}

package differ

import (
	"log/slog"

	"github.com/rurban/mysqldiff/internal/model"
)

// checkUnresolvedFK reports ErrInvalidSchemaReference when a new foreign
// key's referenced table couldn't be resolved by the loader. The
// constraint is still emitted as parsed; this exists purely so
// foreignKeysPass can log the condition for the operator to investigate.
func checkUnresolvedFK(fk *model.ForeignKey) error {
	if fk.RefTable == "" {
		return ErrInvalidSchemaReference
	}
	return nil
}

func intersectsDropped(ctx *DifferContext, cols []string) bool {
	for _, c := range cols {
		if ctx.DroppedColumns[c] {
			return true
		}
	}
	return false
}

// foreignKeysPass reconciles FK constraints. A constraint only in src is
// dropped at weight 6 and a constraint only in dst is added at weight 1,
// after every column and index it depends on exists. A changed constraint
// is re-created by one DROP+ADD statement at weight 5 (or the weight of
// the ADD COLUMN recorded in ctx.AddedForFK); when its columns include a
// dropped column it is split into a DROP at weight 6 and an ADD at
// weight 5.
func foreignKeysPass(ctx *DifferContext, src, dst *model.Table) []ChangeRecord {
	rec := &recorder{}

	for _, name := range src.ForeignKeyNames() {
		srcFK, _ := src.ForeignKey(name)
		dstFK, existsInDst := dst.ForeignKey(name)

		if !existsInDst {
			rec.addf(PriorityDropFKAddColumn, "ALTER TABLE `%s` DROP FOREIGN KEY `%s`;", src.Name, name)
			continue
		}

		if srcFK.Clause == dstFK.Clause {
			continue
		}

		weight := PriorityCreateAndChange
		if w, ok := ctx.AddedForFK[name]; ok {
			weight = w
		}

		if intersectsDropped(ctx, srcFK.Columns) {
			rec.addf(PriorityDropFKAddColumn, "ALTER TABLE `%s` DROP FOREIGN KEY `%s`;", src.Name, name)
			rec.addf(PriorityCreateAndChange, "ALTER TABLE `%s` ADD CONSTRAINT `%s` %s;", src.Name, name, dstFK.Clause)
			continue
		}

		rec.addf(weight, "ALTER TABLE `%s` DROP FOREIGN KEY `%s`; ALTER TABLE `%s` ADD CONSTRAINT `%s` %s;",
			src.Name, name, src.Name, name, dstFK.Clause)
	}

	for _, name := range dst.ForeignKeyNames() {
		if src.IsaFK(name) {
			continue
		}
		dstFK, _ := dst.ForeignKey(name)
		if err := checkUnresolvedFK(dstFK); err != nil {
			slog.Debug(err.Error(), slog.String("table", src.Name), slog.String("constraint", name))
		}
		rec.addf(PriorityAddFKOrTimestamp, "ALTER TABLE `%s` ADD CONSTRAINT `%s` %s;", src.Name, name, dstFK.Clause)
	}

	return rec.records
}

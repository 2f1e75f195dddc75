package differ

import (
	"strings"

	"github.com/rurban/mysqldiff/internal/model"
)

// DiffTable runs the five sub-passes — fields, indexes, primary key,
// foreign keys, options — against one pair of same-named tables, in that
// order, sharing a single DifferContext so later passes can observe
// earlier ones' decisions (e.g. the indexes pass sees the fields pass's
// AUTO_INCREMENT backing-index request).
func DiffTable(wa *IndexWorkaroundFacility, src, dst *model.Table, opts Options) []ChangeRecord {
	ctx := NewDifferContext(wa)

	var all []ChangeRecord
	all = append(all, fieldsPass(ctx, src, dst, opts)...)
	all = append(all, indexesPass(ctx, src, dst, opts)...)
	all = append(all, primaryKeyPass(ctx, src, dst)...)
	all = append(all, foreignKeysPass(ctx, src, dst)...)
	all = append(all, optionsPass(ctx, src, dst, opts)...)

	if len(all) > 0 {
		last := all[len(all)-1]
		if !strings.HasSuffix(last.SQL, "\n") {
			last.SQL += "\n"
		}
		all[len(all)-1] = last
	}

	return all
}

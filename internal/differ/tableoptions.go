package differ

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rurban/mysqldiff/internal/model"
)

var commentRE = regexp.MustCompile(`(?i)COMMENT=`)

// ensureComment prepends COMMENT='' to opts when it carries none, so that
// applying the ALTER clears a stale COMMENT left over from the source
// table — MySQL does not reset unspecified options to their default.
func ensureComment(opts string) string {
	if commentRE.MatchString(opts) {
		return opts
	}
	if opts == "" {
		return "COMMENT=''"
	}
	return "COMMENT='' " + opts
}

// optionsPass reconciles table-level options (ENGINE, DEFAULT CHARSET,
// COMMENT, PARTITION BY, ...) and, last, sweeps up every temporary index
// the earlier passes installed as scaffolding.
func optionsPass(ctx *DifferContext, src, dst *model.Table, opts Options) []ChangeRecord {
	rec := &recorder{}

	if !optionsEqual(src.Options(), dst.Options(), opts.Tolerant) {
		target := ensureComment(dst.Options())

		srcPart, srcHasPart := src.PartitionClause()
		dstPart, dstHasPart := dst.PartitionClause()
		partitionChanged := srcHasPart && (!dstHasPart || srcPart != dstPart)

		if partitionChanged {
			rec.addf(PriorityDropAndOptions, "ALTER TABLE `%s` REMOVE PARTITIONING;", src.Name)
		}

		withoutPartition := target
		if dstHasPart {
			withoutPartition = strings.TrimSpace(strings.Replace(target, dstPart, "", 1))
		}
		rec.addf(PriorityDropAndOptions, "ALTER TABLE `%s` %s;", src.Name, withoutPartition)

		if dstHasPart {
			rec.addf(PriorityFinal, "ALTER TABLE `%s` %s;", src.Name, target)
		}
	}

	tempNames := make([]string, 0, len(ctx.TemporaryIndexes))
	for name := range ctx.TemporaryIndexes {
		tempNames = append(tempNames, name)
	}
	sort.Strings(tempNames)
	for _, name := range tempNames {
		col := ctx.TemporaryIndexes[name]
		if ctx.DroppedColumns[col] {
			continue
		}
		rec.add(ctx.IndexWA.Call(src.Name, name, dropIndexDDL(src.Name, name), "drop"), PriorityFinal)
	}

	return rec.records
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/rurban/mysqldiff/internal/config"
	"github.com/rurban/mysqldiff/internal/differ"
	"github.com/rurban/mysqldiff/internal/loader"
	"github.com/rurban/mysqldiff/internal/model"
)

// diffFlags holds the differ.Options-mapped flags shared by diff, refs
// and watch, bound the way cmd/schema-registry-admin/main.go binds its
// own subcommand flags.
type diffFlags struct {
	tableRE       string
	onlyBoth      bool
	keepOldTables bool
	listTables    bool
	noOldDefs     bool
	tolerant      bool
	saveQuotes    bool
	live          bool
}

func bindDiffFlags(cmd *cobra.Command, f *diffFlags) {
	cmd.Flags().StringVar(&f.tableRE, "table-re", "", "Restrict to tables matching this regular expression")
	cmd.Flags().BoolVar(&f.onlyBoth, "only-both", false, "Only emit changes to objects present in both schemas")
	cmd.Flags().BoolVar(&f.keepOldTables, "keep-old-tables", false, "Don't DROP tables/views/routines missing from the target")
	cmd.Flags().BoolVar(&f.listTables, "list-tables", false, "Prefix each change with a header describing the affected object")
	cmd.Flags().BoolVar(&f.noOldDefs, "no-old-defs", false, "Suppress \"# was ...\" comments on CHANGE COLUMN statements")
	cmd.Flags().BoolVar(&f.tolerant, "tolerant", false, "Ignore cosmetic differences (COLLATE, DEFAULT '' vs NOT NULL, precision)")
	cmd.Flags().BoolVar(&f.saveQuotes, "save-quotes", false, "Preserve backtick quoting from the source dump")
	cmd.Flags().BoolVar(&f.live, "live", false, "Treat positional arguments as DSNs and introspect a running server instead of reading dump files")
}

func (f diffFlags) toOptions(refs bool) (differ.Options, error) {
	opts := differ.Options{
		Refs:          refs,
		OnlyBoth:      f.onlyBoth,
		KeepOldTables: f.keepOldTables,
		ListTables:    f.listTables,
		NoOldDefs:     f.noOldDefs,
		Tolerant:      f.tolerant,
		SaveQuotes:    f.saveQuotes,
	}
	if f.tableRE != "" {
		re, err := regexp.Compile(f.tableRE)
		if err != nil {
			return differ.Options{}, fmt.Errorf("invalid --table-re: %w", err)
		}
		opts.TableRE = re
	}
	return opts, nil
}

// loadSchemaArg loads a schema from either a dump file path or, when live
// is set, a MySQL DSN.
func loadSchemaArg(ctx context.Context, arg string, live, saveQuotes bool) (*model.Schema, error) {
	if live {
		return loader.FromMySQL(ctx, arg)
	}
	return loader.ParseDump(arg, saveQuotes)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	logger := config.NewLogger(cfg.Logging)
	slog.SetDefault(logger)
	return logger
}

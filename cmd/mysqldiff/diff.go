package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/rurban/mysqldiff/internal/differ"
	"github.com/rurban/mysqldiff/internal/version"
)

func newDiffCmd() *cobra.Command {
	var flags diffFlags

	cmd := &cobra.Command{
		Use:   "diff <source> <target>",
		Short: "Print the DDL plan that migrates source into target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			opts, err := flags.toOptions(false)
			if err != nil {
				return err
			}

			source, err := loadSchemaArg(cmd.Context(), args[0], flags.live, opts.SaveQuotes)
			if err != nil {
				return fmt.Errorf("loading source: %w", err)
			}
			target, err := loadSchemaArg(cmd.Context(), args[1], flags.live, opts.SaveQuotes)
			if err != nil {
				return fmt.Errorf("loading target: %w", err)
			}

			logger.Info("diffing schemas",
				slog.Int("source_tables", len(source.TableNames())),
				slog.Int("target_tables", len(target.TableNames())),
			)

			plan := differ.Diff(source, target, opts)
			plan = plan.WithBanner(version.Version, time.Now().UTC().Format(time.RFC3339), opts, args[0], args[1])

			for _, v := range differ.Validate(plan) {
				logger.Warn("plan invariant violation", slog.String("message", v.Message))
			}

			fmt.Fprint(cmd.OutOrStdout(), plan.String())
			return nil
		},
	}

	bindDiffFlags(cmd, &flags)
	return cmd
}

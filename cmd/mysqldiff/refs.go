package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rurban/mysqldiff/internal/differ"
)

func newRefsCmd() *cobra.Command {
	var flags diffFlags

	cmd := &cobra.Command{
		Use:   "refs <schema>",
		Short: "List a schema's foreign-key dependency closure instead of diffing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			opts, err := flags.toOptions(true)
			if err != nil {
				return err
			}

			schema, err := loadSchemaArg(cmd.Context(), args[0], flags.live, opts.SaveQuotes)
			if err != nil {
				return fmt.Errorf("loading schema: %w", err)
			}

			logger.Info("computing refs", "tables", len(schema.TableNames()))
			plan := differ.Refs(schema, opts)
			fmt.Fprint(cmd.OutOrStdout(), plan.String())
			return nil
		},
	}

	bindDiffFlags(cmd, &flags)
	return cmd
}

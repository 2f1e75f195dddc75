// Command mysqldiff compares two MySQL schemas and emits the DDL plan
// that migrates one into the other.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rurban/mysqldiff/internal/config"
	"github.com/rurban/mysqldiff/internal/version"
)

var (
	configPath string
	debug      bool
	debugFile  string
	logsFolder string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mysqldiff",
		Short:   "Compare MySQL schemas and emit a migration plan",
		Long:    `mysqldiff compares two MySQL schema dumps (or live servers) and prints the ALTER/CREATE/DROP statements that migrate the source into the target.`,
		Version: version.Version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&debugFile, "debug-file", "", "Write debug logs to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&logsFolder, "logs-folder", "", "Write rotating logs to mysqldiff.log in this folder")

	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newRefsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads internal/config.Config and folds the root command's
// persistent logging flags into it, so a flag on the command line always
// wins over the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Logging.Debug = true
	}
	if debugFile != "" {
		cfg.Logging.DebugFile = debugFile
	}
	if logsFolder != "" {
		cfg.Logging.LogsFolder = logsFolder
	}
	return cfg, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rurban/mysqldiff/internal/differ"
)

func newWatchCmd() *cobra.Command {
	var flags diffFlags

	cmd := &cobra.Command{
		Use:   "watch <source> <target>",
		Short: "Re-run diff whenever source or target changes on disk",
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

			run := func() {
				source, err := loadSchemaArg(cmd.Context(), args[0], flags.live, opts.SaveQuotes)
				if err != nil {
					logger.Error("loading source", slog.String("error", err.Error()))
					return
				}
				target, err := loadSchemaArg(cmd.Context(), args[1], flags.live, opts.SaveQuotes)
				if err != nil {
					logger.Error("loading target", slog.String("error", err.Error()))
					return
				}
				plan := differ.Diff(source, target, opts)
				fmt.Fprint(cmd.OutOrStdout(), plan.String())
			}

			run()
			if flags.live {
				logger.Warn("--live sources can't be file-watched; run diff again manually after server changes")
				return nil
			}

			return watchFiles(cmd.Context(), logger, []string{args[0], args[1]}, run)
		},
	}

	bindDiffFlags(cmd, &flags)
	return cmd
}

// watchFiles re-runs onChanged whenever any of paths is modified,
// falling back to polling if fsnotify can't be established, grounded on
// daemon_watcher.go's FileWatcher fallback strategy.
func watchFiles(ctx context.Context, logger *slog.Logger, paths []string, onChanged func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, falling back to polling", slog.String("error", err.Error()))
		return pollFiles(ctx, paths, onChanged)
	}
	defer w.Close()

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			logger.Warn("failed to watch file, falling back to polling", slog.String("path", p), slog.String("error", err.Error()))
			return pollFiles(ctx, paths, onChanged)
		}
	}

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce.Reset(300 * time.Millisecond)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.String("error", err.Error()))
		case <-debounce.C:
			onChanged()
		}
	}
}

// pollFiles re-runs onChanged whenever any path's mtime advances, for
// filesystems where fsnotify can't establish a watch (network mounts,
// some container overlays).
func pollFiles(ctx context.Context, paths []string, onChanged func()) error {
	last := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if stat, err := os.Stat(p); err == nil {
			last[p] = stat.ModTime()
		}
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed := false
			for _, p := range paths {
				stat, err := os.Stat(p)
				if err != nil {
					continue
				}
				if mt, ok := last[p]; !ok || stat.ModTime().After(mt) {
					last[p] = stat.ModTime()
					changed = true
				}
			}
			if changed {
				onChanged()
			}
		}
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/go-jsonschema/normalize/internal/corpus"
	"github.com/go-jsonschema/normalize/internal/driver"
	"github.com/go-jsonschema/normalize/internal/fetchcache"
)

func normalizeCmd() *cobra.Command {
	var (
		repoName    string
		allowRemote bool
		watch       bool
		pattern     string
		configPath  string
		corpusIndex string
	)

	cmd := &cobra.Command{
		Use:   "normalize <dir>",
		Short: "Normalize every schema in a directory into <dir>_Normalized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			repoKind, err := fetchcache.ParseRepositoryKind(repoName)
			if err != nil {
				return err
			}

			cfg, err := driver.LoadConfig(configPath)
			if err != nil {
				return err
			}

			removed, err := driver.CleanDirectory(dir, cfg.Cleanup, slog.Default())
			if err != nil {
				return fmt.Errorf("clean %s: %w", dir, err)
			}
			if removed > 0 {
				slog.Info("dropped schemas before normalization", "dir", dir, "removed", removed)
			}

			cache := fetchcache.New(cfg.CacheDir, cfg.CacheIndexPath)
			loader := fetchcache.NewLoader(cache, fetchcache.NewHTTPFetcher(), nil)
			metrics := driver.NewMetrics(prometheus.DefaultRegisterer)

			// repo corpus with an index file drives per-entry normalization
			// from the repos_fullpath bookkeeping (internal/corpus) instead
			// of a plain directory walk, since a corpus directory's file
			// names (js_N.json) aren't the schema's original identity —
			// that lives in the index alongside each entry's source URL.
			if repoKind == fetchcache.Corpus && corpusIndex != "" {
				run := func() error {
					index, err := corpus.LoadIndex(corpusIndex)
					if err != nil {
						return fmt.Errorf("load corpus index %s: %w", corpusIndex, err)
					}
					sum, err := corpus.Normalize(cmd.Context(), dir, index, loader, allowRemote, slog.Default())
					if err != nil {
						return err
					}
					slog.Info("corpus normalize run complete",
						"total", sum.Total, "recursive", sum.Recursive,
						"unguarded_recursive", sum.UnguardedRecursive,
						"invalid_reference", sum.InvalidReference, "illegal_draft", sum.IllegalDraft)
					return nil
				}
				if err := run(); err != nil {
					return err
				}
				if !watch {
					return nil
				}
				return watchAndRerun(cmd.Context(), dir, run)
			}

			opts := driver.Options{
				AllowRemote:    allowRemote,
				RepositoryKind: repoKind,
				Loader:         loader,
				Pattern:        pattern,
			}
			normalizedDir := dir + "_Normalized"

			run := func() error {
				sum, err := driver.Analyse(cmd.Context(), dir, normalizedDir, opts, metrics, slog.Default())
				if err != nil {
					return err
				}
				slog.Info("normalize run complete",
					"total", sum.Total, "recursive", sum.Recursive,
					"unguarded_recursive", sum.UnguardedRecursive,
					"invalid_reference", sum.InvalidReference, "illegal_draft", sum.IllegalDraft)
				return nil
			}

			if err := run(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchAndRerun(cmd.Context(), dir, run)
		},
	}

	cmd.Flags().StringVar(&repoName, "repo", "normal", "repository kind: normal, corpus, or testsuite")
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false, "permit network fetches for external $ref targets")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run whenever dir changes")
	cmd.Flags().StringVar(&pattern, "pattern", "*.json", "doublestar glob selecting which files to normalize")
	cmd.Flags().StringVar(&configPath, "config", "jsonschemanorm.toml", "path to the driver's TOML config file")
	cmd.Flags().StringVar(&corpusIndex, "corpus-index", "", "repos_fullpath index file (only with --repo corpus)")

	return cmd
}

// watchAndRerun re-invokes run every time dir's contents change, matching
// DirNormalizer.normalize's batch shape extended to a live corpus directory.
func watchAndRerun(ctx context.Context, dir string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	slog.Info("watching for changes", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("change detected", "event", event)
			if err := run(); err != nil {
				slog.Error("re-run failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

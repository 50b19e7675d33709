package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subseg/internal/llmcache"
)

func newCacheCommand(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the LLM response cache",
	}
	cmd.AddCommand(newCacheStatsCommand(sess), newCacheClearCommand(sess))
	return cmd
}

func newCacheStatsCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts, hits and disk usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, sess, func(store *llmcache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Path:    %s\n", stats.Path)
				fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
				fmt.Fprintf(out, "Hits:    %d\n", stats.Hits)
				fmt.Fprintf(out, "Size:    %s\n", humanize.IBytes(uint64(max(stats.SizeBytes, 0))))
				writeModelTable(out, stats.Models)
				return nil
			})
		},
	}
}

func newCacheClearCommand(sess *session) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached responses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, sess, func(store *llmcache.Store) error {
				removed, err := store.Clear(cmd.Context(), model)
				if err != nil {
					return err
				}
				if removed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cache entries removed")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cache entries\n", humanize.Comma(removed))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Only remove entries recorded for this model")
	return cmd
}

// withCache opens the configured cache for fn. A disabled cache is reported
// and fn is not called.
func withCache(cmd *cobra.Command, sess *session, fn func(*llmcache.Store) error) error {
	cfg, err := sess.load()
	if err != nil {
		return err
	}
	if !cfg.LLM.CacheEnabled || strings.TrimSpace(cfg.Paths.CachePath) == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "LLM cache is disabled (set llm.cache_enabled and paths.cache_path)")
		return nil
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	store, err := llmcache.Open(cfg.Paths.CachePath)
	if err != nil {
		return fmt.Errorf("open llm cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func writeModelTable(out io.Writer, models map[string]int) {
	if len(models) == 0 {
		fmt.Fprintln(out, "Models: none")
		return
	}
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	slices.Sort(names)
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(models[name])}
	}
	fmt.Fprintln(out, renderTable([]string{"Model", "Entries"}, rows, []columnAlignment{alignLeft, alignRight}))
}

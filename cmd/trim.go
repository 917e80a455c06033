package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gcusage/internal/cli"
	"github.com/theirongolddev/gcusage/internal/pipeline"
	"github.com/theirongolddev/gcusage/internal/source"
	"github.com/theirongolddev/gcusage/internal/store"
)

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Compact telemetry.log to token usage data only",
	Long: "Rewrite telemetry.log keeping only the latest token usage data point\n" +
		"per session, model and type. A .bak copy exists while the rewrite runs.",
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)
}

func runTrim(cmd *cobra.Command, _ []string) error {
	path := source.LogPath(geminiDir())

	res, err := pipeline.TrimLog(path)
	if err != nil {
		return err
	}
	log.Debug("compacted telemetry log", "path", path, "kept", res.Kept, "dropped", res.Dropped, "skipped", res.Skipped)

	// Drop the stale parse; the next report repopulates it.
	if cacheEnabled() {
		if cache, err := store.Open(pipeline.CachePath()); err == nil {
			if err := cache.DeleteFile(path); err != nil {
				log.Debug("cache invalidation failed", "path", path, "err", err)
			}
			_ = cache.Close()
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  Trim complete: %s now holds token usage data only (%s kept, %s dropped)\n",
		path,
		cli.FormatNumber(int64(res.Kept)),
		cli.FormatNumber(int64(res.Dropped+res.Skipped)),
	)
	return nil
}

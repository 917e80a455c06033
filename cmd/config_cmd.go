// Package cmd implements the gcusage CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gcusage/internal/cli"
	"github.com/theirongolddev/gcusage/internal/config"
	"github.com/theirongolddev/gcusage/internal/pipeline"
	"github.com/theirongolddev/gcusage/internal/source"
	"github.com/theirongolddev/gcusage/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Config file: %s\n", config.ConfigPath())
	switch {
	case cfgErr != nil:
		fmt.Fprintf(out, "  Status: unreadable, using defaults (%v)\n", cfgErr)
	case config.Exists():
		fmt.Fprintln(out, "  Status: loaded")
	default:
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [General]")
	fmt.Fprintf(out, "    Gemini directory: %s\n", geminiDir())
	fmt.Fprintf(out, "    Telemetry log:    %s\n", source.LogPath(geminiDir()))
	fmt.Fprintf(out, "    Default period:   %s\n", cfg.General.DefaultPeriod)
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "local"
	}
	fmt.Fprintf(out, "    Timezone:         %s\n", tz)
	level := cfg.General.LogLevel
	if level == "" {
		level = "warn"
	}
	fmt.Fprintf(out, "    Log level:        %s\n", level)
	fmt.Fprintf(out, "    Use cache:        %v\n", cfg.General.UseCache)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Display]")
	fmt.Fprintf(out, "    Compact totals:   %v\n", cfg.Display.CompactTotals)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Cache]")
	fmt.Fprintf(out, "    Path:   %s\n", pipeline.CachePath())
	if cache, err := store.Open(pipeline.CachePath()); err == nil {
		if n, err := cache.PointCount(); err == nil {
			fmt.Fprintf(out, "    Points: %s\n", cli.FormatNumber(int64(n)))
		}
		_ = cache.Close()
	} else {
		fmt.Fprintf(out, "    Status: unavailable (%v)\n", err)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `gcusage setup` to reconfigure.")
	return nil
}

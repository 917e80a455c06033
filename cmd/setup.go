package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gcusage/internal/config"
	"github.com/theirongolddev/gcusage/internal/model"
	"github.com/theirongolddev/gcusage/internal/source"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	// Start from the file on disk so flag overrides are not persisted.
	saved, err := config.Load()
	if err != nil {
		// Saving replaces the broken file.
		saved = config.DefaultConfig()
	}

	dir := saved.General.GeminiDir
	period := saved.General.DefaultPeriod
	tz := saved.General.Timezone
	useCache := saved.General.UseCache
	compact := saved.Display.CompactTotals

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Welcome to gcusage!")
	if paths, _ := source.FindLogFiles(geminiDir()); len(paths) > 0 {
		fmt.Fprintf(out, "  Found telemetry log at %s\n", paths[0])
	}
	fmt.Fprintln(out)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini CLI directory").
				Description("Holds telemetry.log. Leave blank for ~/.gemini.").
				Placeholder(source.DefaultGeminiDir()).
				Value(&dir),
			huh.NewSelect[string]().
				Title("Default period").
				Options(huh.NewOptions(
					string(model.PeriodDay),
					string(model.PeriodWeek),
					string(model.PeriodMonth),
					string(model.PeriodSession),
				)...).
				Value(&period),
			huh.NewInput().
				Title("Timezone").
				Description("IANA name such as Asia/Shanghai. Leave blank for local time.").
				Validate(validateTimezone).
				Value(&tz),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Cache parsed points?").
				Description("Stores parsed data points in SQLite so repeat runs skip parsing.").
				Value(&useCache),
			huh.NewConfirm().
				Title("Abbreviate totals?").
				Description("Show the totals row as 1.23k / 4.56M.").
				Value(&compact),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(out, "  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("running setup: %w", err)
	}

	saved.General.GeminiDir = strings.TrimSpace(dir)
	saved.General.DefaultPeriod = period
	saved.General.Timezone = strings.TrimSpace(tz)
	saved.General.UseCache = useCache
	saved.Display.CompactTotals = compact

	if err := config.Save(saved); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Saved to %s\n", config.ConfigPath())
	fmt.Fprintln(out, "  Run `gcusage setup` anytime to reconfigure.")
	fmt.Fprintln(out)

	return nil
}

func validateTimezone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown timezone %q", s)
	}
	return nil
}

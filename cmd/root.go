package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gcusage/internal/cli"
	"github.com/theirongolddev/gcusage/internal/config"
	"github.com/theirongolddev/gcusage/internal/model"
	"github.com/theirongolddev/gcusage/internal/pipeline"
	"github.com/theirongolddev/gcusage/internal/source"
	"github.com/theirongolddev/gcusage/internal/store"
)

// ErrUsage marks invalid command-line input.
var ErrUsage = errors.New("invalid usage")

var (
	flagSince     string
	flagUntil     string
	flagPeriod    string
	flagModel     string
	flagType      string
	flagJSON      bool
	flagGeminiDir string
	flagTZ        string
	flagNoCache   bool
	flagQuiet     bool
	flagLogLevel  string
)

// cfg is loaded once per invocation before any command runs. cfgErr holds
// the load failure when a command fell back to defaults.
var (
	cfg    = config.DefaultConfig()
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "gcusage",
	Short: "Gemini CLI token usage report",
	Long: "Summarize Gemini CLI token usage from its local telemetry log.\n\n" +
		"Sessions are deduplicated to the latest cumulative value per model and\n" +
		"type, then reported per day, week, month or session.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	RunE:              runRoot,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSince, "since", "", "Start time: today, yesterday, 7d, 12h, YYYY-MM-DD or an ISO timestamp")
	rootCmd.PersistentFlags().StringVar(&flagUntil, "until", "", "End time, same forms as --since")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Filter to model (exact match)")
	rootCmd.PersistentFlags().StringVarP(&flagType, "type", "t", "", "Filter to token type (input|output|thought|cache|tool)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print rows as JSON")
	rootCmd.PersistentFlags().StringVarP(&flagGeminiDir, "gemini-dir", "d", "", "Gemini CLI directory (default ~/.gemini)")
	rootCmd.PersistentFlags().StringVar(&flagTZ, "tz", "", "IANA timezone for day boundaries (default local)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse the log")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Diagnostic log level (debug|info|warn|error)")

	rootCmd.Flags().StringVarP(&flagPeriod, "period", "p", string(model.PeriodDay), "Aggregation period: day|week|month|session")
}

// prepare loads the config file and configures diagnostics. A broken
// config file fails every command except setup and config, which exist to
// repair and inspect it and so run on defaults.
func prepare(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	cfgErr = nil
	if err != nil {
		if cmd != setupCmd && cmd != configCmd {
			return err
		}
		cfgErr = err
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	levelRaw := flagLogLevel
	if !cmd.Flags().Changed("log-level") {
		levelRaw = cfg.General.LogLevel
	}
	if strings.TrimSpace(levelRaw) == "" {
		levelRaw = "warn"
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(levelRaw)))
	if err != nil {
		return fmt.Errorf("%w: log level %q", ErrUsage, levelRaw)
	}
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(level)

	if cfgErr != nil {
		log.Warn("config file unreadable, using defaults", "path", config.ConfigPath(), "err", cfgErr)
	}
	return nil
}

func runRoot(cmd *cobra.Command, _ []string) error {
	raw := flagPeriod
	provided := cmd.Flags().Changed("period")
	if !provided {
		raw = cfg.General.DefaultPeriod
	}
	period, err := model.ParsePeriod(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if period != model.PeriodDay {
		provided = true
	}
	return runReport(cmd, period, provided)
}

// runReport is the shared report path of the root, daily and sessions commands.
func runReport(cmd *cobra.Command, period model.Period, periodProvided bool) error {
	loc, err := location()
	if err != nil {
		return err
	}
	opts, err := reportOptions(period, periodProvided, time.Now().In(loc))
	if err != nil {
		return err
	}

	result, err := loadData(geminiDir())
	if err != nil {
		return err
	}

	rep := pipeline.BuildReport(result.Points, opts)
	log.Debug("report built",
		"period", rep.Period,
		"since", rep.Range.Since,
		"until", rep.Range.Until,
		"daily", len(rep.Daily),
		"sessions", len(rep.Sessions),
	)

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep.JSONRows())
	}

	fmt.Fprint(out, cli.RenderReport(rep, loc, cfg.Display.CompactTotals))
	return nil
}

// reportOptions validates the time flags against now.
func reportOptions(period model.Period, periodProvided bool, now time.Time) (pipeline.ReportOptions, error) {
	since, err := pipeline.ParseTimeSpec(flagSince, pipeline.BoundSince, now)
	if err != nil {
		return pipeline.ReportOptions{}, fmt.Errorf("%w: --since: %v", ErrUsage, err)
	}
	until, err := pipeline.ParseTimeSpec(flagUntil, pipeline.BoundUntil, now)
	if err != nil {
		return pipeline.ReportOptions{}, fmt.Errorf("%w: --until: %v", ErrUsage, err)
	}
	if !since.IsZero() && !until.IsZero() && since.After(until) {
		return pipeline.ReportOptions{}, fmt.Errorf("%w: --since must not be after --until", ErrUsage)
	}

	return pipeline.ReportOptions{
		Period:         period,
		PeriodProvided: periodProvided,
		Since:          since,
		Until:          until,
		Model:          flagModel,
		Type:           flagType,
		Now:            now,
		Location:       now.Location(),
	}, nil
}

// location resolves --tz, then the configured timezone, then local time.
func location() (*time.Location, error) {
	name := flagTZ
	if name == "" {
		name = cfg.General.Timezone
	}
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrUsage, name, err)
	}
	return loc, nil
}

// geminiDir resolves --gemini-dir, then GCUSAGE_GEMINI_DIR and the config
// file, then ~/.gemini.
func geminiDir() string {
	if flagGeminiDir != "" {
		return flagGeminiDir
	}
	if dir := config.GeminiDir(cfg); dir != "" {
		return dir
	}
	return source.DefaultGeminiDir()
}

func cacheEnabled() bool {
	return !flagNoCache && cfg.General.UseCache
}

// loadData is the shared data loading path used by all report commands.
// Uses the SQLite cache when enabled for fast subsequent runs.
func loadData(dir string) (*pipeline.LoadResult, error) {
	paths, err := source.FindLogFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("locating telemetry log: %w", err)
	}
	if len(paths) == 0 {
		// Shown even with --quiet: an empty report otherwise looks like no usage.
		log.Warn("no telemetry log found", "path", source.LogPath(dir))
		return &pipeline.LoadResult{}, nil
	}
	log.Debug("using telemetry log", "path", paths[0])

	if cacheEnabled() {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.Debug("cache open failed", "err", err)
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer cache.Close()

			cr, err := pipeline.LoadWithCache(paths, cache)
			if err != nil {
				log.Debug("cached load failed", "err", err)
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "  Cache error, falling back to full parse\n")
				}
			} else {
				if !flagQuiet {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "  Loaded %s points from cache\n", cli.FormatNumber(int64(len(cr.Points))))
					} else {
						printParseSummary(&cr.LoadResult)
					}
				}
				return &cr.LoadResult, nil
			}
		}
	}

	// Uncached path
	result, err := pipeline.Load(paths)
	if err != nil {
		return nil, err
	}
	if !flagQuiet {
		printParseSummary(result)
	}
	return result, nil
}

func printParseSummary(r *pipeline.LoadResult) {
	fmt.Fprintf(os.Stderr, "  Parsed %s points from %s segments",
		cli.FormatNumber(int64(len(r.Points))),
		cli.FormatNumber(int64(r.Segments)),
	)
	if r.MalformedSegments > 0 {
		fmt.Fprintf(os.Stderr, " (%d malformed skipped)", r.MalformedSegments)
	}
	fmt.Fprintln(os.Stderr)
}

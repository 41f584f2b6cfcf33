package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/skiron-cli/internal/config"
	"github.com/KaramelBytes/skiron-cli/internal/observability"
	"github.com/KaramelBytes/skiron-cli/internal/runner"
	"github.com/KaramelBytes/skiron-cli/internal/utils"
)

var (
	// Global flags
	cfgFile     string
	verbose     bool
	dryRun      bool
	timing      bool
	metricsFile string
	logLevel    string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "skiron <task.conf> [task2.conf ...]",
	Short: "SKIRON data statistics and visualisation",
	Long: `skiron reads one or more task files. Each task names a comma-delimited
SKIRON data file, the scalar and vector columns to process and the outputs
wanted: histograms, scatter plots, wind roses, heatmaps, time series and a
statistics report. Tasks run one after another; a task that fails is skipped.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runTasks,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.skiron/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print task, data and statistics summaries")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate task files without loading data or writing outputs")
	rootCmd.Flags().BoolVar(&timing, "timing", false, "print per-stage timings for each task")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in Prometheus textfile format to this path")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// ensureConfig loads configuration for callers that bypass Execute.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func newLogger(c *cfgpkg.Global, w io.Writer) (*slog.Logger, error) {
	level := c.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return observability.NewLogger(level, c.LogFormat, w)
}

func runTasks(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, "No task files given, see usage below.")
		_ = cmd.Help()
		fmt.Fprintln(out, "No action taken.")
		return nil
	}
	c, err := ensureConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(c, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	banner(out)
	metrics := observability.NewMetrics()
	r := runner.New(runner.Config{
		Settings:   c.TaskSettings(),
		Charts:     c.ChartOptions(),
		ReportName: c.ReportName,
		DryRun:     dryRun,
		Verbose:    verbose,
		Timing:     timing,
		Metrics:    metrics,
		Logger:     logger,
		Out:        out,
	})
	sum := r.Run(cmd.Context(), utils.ExpandPaths(args))

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to write metrics: %v\n", err)
		}
	}
	if sum.Completed > 0 {
		fmt.Fprintf(out, "%d task(s) were performed.\n", sum.Completed)
	} else {
		fmt.Fprintln(out, "No action taken.")
	}
	if sum.Failed > 0 {
		color.New(color.FgYellow).Fprintf(out, "⚠ %d task(s) skipped, inspect previous messages for errors.\n", sum.Failed)
	}
	return nil
}

func banner(w io.Writer) {
	c := color.New(color.FgCyan, color.Bold)
	c.Fprintln(w, "*************************************************")
	c.Fprintln(w, "            SKIRON data statistics               ")
	c.Fprintln(w, "              and visualisation.                 ")
	c.Fprintln(w, "*************************************************")
}

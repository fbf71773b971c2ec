// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mtoohey31/uncommitted/internal/config"
	"github.com/mtoohey31/uncommitted/internal/errors"
	"github.com/mtoohey31/uncommitted/internal/log"
	"github.com/mtoohey31/uncommitted/internal/report"
	"github.com/mtoohey31/uncommitted/internal/scanner"
	"github.com/mtoohey31/uncommitted/internal/status"
)

var version = "dev"

type rootOptions struct {
	cfgFile        string
	count          bool
	jobs           int
	followSymlinks bool
	timeout        time.Duration
	logLevel       string
	verbose        bool

	cfg   *config.Config
	level zerolog.Level
}

var (
	rootOpts = &rootOptions{level: zerolog.ErrorLevel}
	rootCmd  = newRootCmd(rootOpts)
)

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uncommitted [path...]",
		Short: "Find repositories with uncommitted changes",
		Long: `Recursively scans the given directories (default: the current one) for
git, mercurial and subversion working copies and prints the status of
every one that has pending changes.

Directories are checked for .git, .hg and .svn in that order. A working
copy is never descended into, so nested repositories are not reported
separately.

"init" as the first argument runs the settings wizard. To scan a
directory with that name, write it as a path such as ./init.`,
		Version:           version,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.load,
		RunE:              opts.run,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/uncommitted/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "diagnostic log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log scan progress to stderr (same as --log-level debug)")

	cmd.Flags().BoolVarP(&opts.count, "count", "n", false, "display the number of modified repositories instead of their status")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "number of concurrent workers (default: CPUs minus one)")
	cmd.Flags().BoolVar(&opts.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort if a status command runs longer than this (0 disables)")

	return cmd
}

// load reads the config file and applies flag overrides.
func (o *rootOptions) load(cmd *cobra.Command, args []string) error {
	if o.cfgFile == "" {
		o.cfgFile = config.DefaultConfigPath()
	}

	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "load config")
	}

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if flags.Changed("follow-symlinks") {
		cfg.FollowSymlinks = o.followSymlinks
	}
	if flags.Changed("timeout") {
		cfg.CommandTimeout = o.timeout
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.level = log.ParseLevel(cfg.LogLevel)
	return nil
}

func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	logger := log.New(log.Options{Level: o.cfg.LogLevel, Writer: cmd.ErrOrStderr()})
	ctx := log.WithLogger(cmd.Context(), logger)

	mode := report.Output
	if o.count {
		mode = report.Count
	}
	agg := report.New(mode, cmd.OutOrStdout())

	logger.Debug().
		Str("config", o.cfgFile).
		Stringer("mode", mode).
		Int("workers", o.cfg.Workers()).
		Bool("follow_symlinks", o.cfg.FollowSymlinks).
		Msg("starting scan")

	walker := scanner.NewWalker(o.cfg, status.NewRunner(o.cfg.CommandTimeout), agg)
	if _, err := walker.Scan(ctx, config.ExpandPaths(args)); err != nil {
		return err
	}

	return agg.Finish()
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(lipgloss.NewRenderer(os.Stderr), err, rootOpts.level))
		os.Exit(1)
	}
}

// renderError formats a fatal error for the terminal. At debug level and
// below the stack trace is appended under a rule as wide as the message.
func renderError(r *lipgloss.Renderer, err error, level zerolog.Level) string {
	styleLabel := r.NewStyle().Bold(true).Foreground(lipgloss.Color("167"))
	styleDim := r.NewStyle().Foreground(lipgloss.Color("242"))

	header := styleLabel.Render("uncommitted:") + " " + err.Error()
	if level > zerolog.DebugLevel {
		return header
	}

	rule := strings.Repeat("─", min(ansi.StringWidth(header), 80))
	return header + "\n" + styleDim.Render(rule) + "\n" + styleDim.Render(errors.PrintErrorWithStackTrace(err))
}

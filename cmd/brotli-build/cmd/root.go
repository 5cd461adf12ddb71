package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eugo-inc/brotli/internal/config"
	"github.com/eugo-inc/brotli/internal/ctxlog"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	verbose    bool
)

// project is loaded once per invocation by the root pre-run hook.
var project *config.Project

var rootCmd = &cobra.Command{
	Use:   "brotli-build",
	Short: "Build the brotli native extension against system libraries",
	Long: `brotli-build compiles and links the brotli extension module against the
brotli C libraries already installed on the system. Library locations and
versions come from pkg-config; nothing is built from vendored sources.

Without --config, brotli-build.yaml, brotli-build.yml or brotli-build.hcl in
the working directory is used, falling back to the built-in brotli project.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to project file (.yaml or .hcl)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load toolchain variables from this file (default .env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output (same as --log-level=debug)")
}

// setup loads the environment and the project, then installs the logger
// into the command context.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(envFile); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}

	p, err := loadProject()
	if err != nil {
		return err
	}
	project = p

	level, format := p.Log.Level, p.Log.Format
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := config.NewLogger(level, format, cmd.ErrOrStderr())
	cmd.SetContext(ctxlog.WithLogger(ctx, logger))
	return nil
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	extbuild "github.com/eugo-inc/brotli"
	"github.com/eugo-inc/brotli/internal/ctxlog"
)

var (
	buildForce     bool
	buildInplace   bool
	buildDebug     bool
	buildSkipCheck bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Resolve the brotli libraries and build the extension modules",
	Long: `Checks that every required library is installed with a matching version,
then compiles and links each extension module. Modules whose artifact is
newer than all of their sources and dependencies are skipped unless --force
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := ctxlog.FromContext(ctx)

		if buildForce {
			project.Build.Force = true
		}
		if buildInplace {
			project.Build.Inplace = true
		}
		if buildDebug {
			project.Build.Debug = true
		}

		coord, err := newCoordinator(project)
		if err != nil {
			return err
		}

		if !buildSkipCheck {
			if err := coord.Preflight(); err != nil {
				return err
			}
		}

		target := project.ToExtbuild()
		if project.VersionHeader != nil {
			v, err := coord.Version(target)
			if err != nil {
				return fmt.Errorf("reading package version: %w", err)
			}
			if v == "" {
				v = "unknown"
			}
			logger.Info("Building package.", "name", target.Name, "version", v)
		}

		results, err := coord.Build(ctx, target, nil)
		for _, r := range results {
			switch {
			case r.State == extbuild.StateUpToDate:
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s up to date\n", r.Target)
			case r.Success():
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s built %s\n", r.Target, r.Artifact)
			default:
				for _, line := range r.Output {
					fmt.Fprintln(cmd.ErrOrStderr(), line)
				}
			}
		}
		return err
	},
}

func init() {
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "rebuild even when the artifact is up to date")
	buildCmd.Flags().BoolVarP(&buildInplace, "inplace", "i", false, "copy the built modules into the package directory")
	buildCmd.Flags().BoolVarP(&buildDebug, "debug", "g", false, "compile with debug information")
	buildCmd.Flags().BoolVar(&buildSkipCheck, "skip-check", false, "do not check for pkg-config and the compiler first")

	rootCmd.AddCommand(buildCmd)
}

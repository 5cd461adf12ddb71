package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	extbuild "github.com/eugo-inc/brotli"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the package version read from the version header",
	Long: `Prints the package version assembled from the major, minor and patch macros
of the project's version header. Prints an empty line when the header does
not define all three. With --verbose the tool's own build information
follows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if project.VersionHeader != nil {
			h := project.VersionHeader
			v, err := extbuild.ExtractVersion(h.Path, h.Major, h.Minor, h.Patch)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, v)
		} else {
			fmt.Fprintln(out)
		}

		if verbose {
			fmt.Fprintf(out, "brotli-build %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

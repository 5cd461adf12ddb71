package cmd

import (
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Check the required libraries and print their merged flags",
	Long: `Queries pkg-config for every required library, in order, and prints the
include directories, library directories, libraries and macros the
extension modules would be built with. Fails on the first library that is
missing or whose installed version does not satisfy its constraint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := newCoordinator(project)
		if err != nil {
			return err
		}

		flags, err := coord.Configure(cmd.Context(), project.ToExtbuild())
		if err != nil {
			return err
		}

		printFlags(cmd.OutOrStdout(), flags)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

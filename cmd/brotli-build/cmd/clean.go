package cmd

import (
	"github.com/spf13/cobra"

	extbuild "github.com/eugo-inc/brotli"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove object files of the extension modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		buildConfig := project.BuildConfig()
		compiler, err := extbuild.NewCompiler(buildConfig.Platform.CompilerType)
		if err != nil {
			return err
		}

		builder := extbuild.NewExtensionBuilder(buildConfig, compiler)
		target := project.ToExtbuild()
		for i := range target.Extensions {
			if err := builder.Clean(cmd.Context(), &target.Extensions[i], cleanAll); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanAll, "all", "a", false, "also remove the built modules")

	rootCmd.AddCommand(cleanCmd)
}

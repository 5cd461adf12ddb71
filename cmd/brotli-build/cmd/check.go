package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	extbuild "github.com/eugo-inc/brotli"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that pkg-config and the compiler toolchain are installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := newCoordinator(project)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, component := range []any{coord.Registry, coord.Compiler} {
			checker, ok := component.(extbuild.ToolChecker)
			if !ok {
				continue
			}
			for _, req := range checker.RequiredTools() {
				status := "ok"
				if extbuild.CheckRequiredTools([]extbuild.ToolRequirement{req}) != nil {
					status = "missing"
					if req.Optional {
						status = "missing (optional)"
					}
				}
				fmt.Fprintf(out, "  %-12s %-20s %s\n", req.Name, status, req.Purpose)
			}
		}

		return coord.Preflight()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

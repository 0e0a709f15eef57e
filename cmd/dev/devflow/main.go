// Command devflow holds developer helpers: mint session tokens, seed the resource catalog
// and drive a submit → review flow against a running API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "devflow",
		Short:         "Developer helpers for the campus reservation API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(
		newTokenCmd(),
		newSeedCmd(),
		newFlowCmd(),
	)
	return cmd
}

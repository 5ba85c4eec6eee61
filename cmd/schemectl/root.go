package main

import (
	"github.com/spf13/cobra"
)

const app = "schemectl"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           app,
		Short:         "schemectl manages the welfare scheme dataset and previews matches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newImportCmd(),
		newMatchCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

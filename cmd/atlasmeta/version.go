// Version command for the atlasmeta CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is the CLI version string, overridable at link time.
var version = "v0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("atlasmeta", version)
		},
	}
}

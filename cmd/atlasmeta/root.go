// Root command and global flags for the atlasmeta CLI.
package main

import (
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	apiKey    string
	jsonMode  bool
}

var flags rootFlags

// NewRootCmd creates the top-level "atlasmeta" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "atlasmeta",
		Short: "Versioned metadata store for geographic datasets",
		Long: "Atlasmeta tracks named, versioned layers, geosets, columns, and views\n" +
			"inside isolated namespaces with namespace-scoped access control.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: .atlasmeta)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .atlasmeta-db)")
	root.PersistentFlags().StringVar(&flags.apiKey, "key", "", "API key (default: $ATLASMETA_API_KEY)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newNamespaceCmd())
	root.AddCommand(newKeyCmd())
	root.AddCommand(newGrantCmd())
	root.AddCommand(newRevokeCmd())
	root.AddCommand(newExportCmd())

	return root
}

// Init command: creates the config directory, the database, and the
// schema, and bootstraps a root principal on a fresh store.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the atlasmeta configuration and database",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			principals, err := backend.Principals()
			if err != nil {
				return err
			}
			n, err := principals.Count(cmd.Context())
			if err != nil {
				return err
			}
			if n > 0 {
				fmt.Println("atlasmeta already initialized")
				return nil
			}

			root, rawKey, err := principals.Create(cmd.Context(), "root")
			if err != nil {
				return err
			}
			return printResult(map[string]string{
				"principal_id": root.PrincipalID,
				"name":         root.Name,
				"api_key":      rawKey,
			}, func() {
				fmt.Println("atlasmeta initialized")
				fmt.Println("root principal:", root.PrincipalID)
				fmt.Println("root api key (shown once):", rawKey)
			})
		},
	}
}

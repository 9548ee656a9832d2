// Key command: issues and deactivates API keys. These are operator
// actions run with direct database access, not through the
// access-controlled façade.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newKeyCmd() *cobra.Command {
	key := &cobra.Command{
		Use:   "key",
		Short: "Manage principals and their API keys",
	}
	key.AddCommand(newKeyCreateCmd())
	key.AddCommand(newKeyDeactivateCmd())
	return key
}

func newKeyCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a principal and print its API key once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("key create: --name is required")
			}

			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			principals, err := backend.Principals()
			if err != nil {
				return err
			}
			p, rawKey, err := principals.Create(cmd.Context(), name)
			if err != nil {
				return err
			}

			return printResult(map[string]string{
				"principal_id": p.PrincipalID,
				"name":         p.Name,
				"api_key":      rawKey,
			}, func() {
				fmt.Println("principal:", p.PrincipalID)
				fmt.Println("api key (shown once):", rawKey)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "principal name")
	return cmd
}

func newKeyDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <principal-id>",
		Short: "Deactivate a principal; its key stops authenticating",
		Args:  cobra.ExactArgs(1),
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
			if err := principals.Deactivate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deactivated", args[0])
			return nil
		},
	}
}

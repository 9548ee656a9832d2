// Grant and revoke commands, routed through the access-controlled façade.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartolab/atlasmeta/pkg/types"
)

func newGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <namespace> <principal-id> <level>",
		Short: "Grant a permission level (read, write, admin) in a namespace",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := types.ParseLevel(args[2])
			if err != nil {
				return fmt.Errorf("level %q: %w", args[2], err)
			}

			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			svc, err := newService(backend)
			if err != nil {
				return err
			}
			caller, err := authenticate(cmd.Context(), svc)
			if err != nil {
				return err
			}

			if err := svc.Grant(cmd.Context(), caller, args[1], args[0], level); err != nil {
				return err
			}
			fmt.Printf("granted %s on %s to %s\n", level, args[0], args[1])
			return nil
		},
	}
}

func newRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <namespace> <principal-id>",
		Short: "Revoke a principal's grant in a namespace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			svc, err := newService(backend)
			if err != nil {
				return err
			}
			caller, err := authenticate(cmd.Context(), svc)
			if err != nil {
				return err
			}

			if err := svc.Revoke(cmd.Context(), caller, args[1], args[0]); err != nil {
				return err
			}
			fmt.Printf("revoked grant on %s from %s\n", args[0], args[1])
			return nil
		},
	}
}

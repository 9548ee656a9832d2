// Namespace commands, routed through the access-controlled façade so the
// CLI sees exactly what the transport layer would.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartolab/atlasmeta/pkg/types"
)

func newNamespaceCmd() *cobra.Command {
	ns := &cobra.Command{
		Use:     "namespace",
		Aliases: []string{"ns"},
		Short:   "Manage namespaces",
	}
	ns.AddCommand(newNamespaceCreateCmd())
	ns.AddCommand(newNamespaceListCmd())
	ns.AddCommand(newNamespaceShowCmd())
	return ns
}

func newNamespaceCreateCmd() *cobra.Command {
	var (
		description string
		public      bool
	)

	cmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Create a namespace owned by the calling principal",
		Args:  cobra.ExactArgs(1),
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

			n, err := svc.CreateNamespace(cmd.Context(), caller, args[0], description, public)
			if err != nil {
				return err
			}
			return printResult(n, func() {
				fmt.Printf("created namespace %s (public=%v)\n", n.Path, n.Public)
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "display description")
	cmd.Flags().BoolVar(&public, "public", false, "make the namespace readable by any principal")
	return cmd
}

func newNamespaceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List namespaces visible to the calling principal",
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

			all, err := svc.ListNamespaces(cmd.Context(), caller)
			if err != nil {
				return err
			}
			return printResult(all, func() {
				for _, n := range all {
					visibility := "private"
					if n.Public {
						visibility = "public"
					}
					fmt.Printf("%s\t%s\t%s\n", n.Path, visibility, n.Description)
				}
			})
		},
	}
}

func newNamespaceShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show one namespace",
		Args:  cobra.ExactArgs(1),
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

			n, err := svc.GetNamespace(cmd.Context(), caller, args[0])
			if err != nil {
				return err
			}

			// Grants are listed only for admins; other callers see just
			// the namespace record.
			grants, err := svc.ListGrants(cmd.Context(), caller, args[0])
			if err != nil && !errors.Is(err, types.ErrForbidden) {
				return err
			}

			return printResult(struct {
				Namespace types.Namespace `json:"namespace"`
				Grants    []types.Grant   `json:"grants,omitempty"`
			}{n, grants}, func() {
				fmt.Printf("path: %s\npublic: %v\nowner: %s\ncreated: %s\ndescription: %s\n",
					n.Path, n.Public, n.OwnerID, n.CreatedAt.Format("2006-01-02 15:04:05"), n.Description)
				for _, g := range grants {
					fmt.Printf("grant: %s\t%s\n", g.PrincipalID, g.Level)
				}
			})
		},
	}
}

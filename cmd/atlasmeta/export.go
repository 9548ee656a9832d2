// Export command: dumps a resource's revision history to a JSONL file,
// one revision per line, written atomically.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartolab/atlasmeta/internal/sqlite"
	"github.com/cartolab/atlasmeta/pkg/types"
)

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <namespace> <kind> <name>",
		Short: "Export a resource's revision history as JSONL",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = fmt.Sprintf("%s_%s_%s.jsonl", args[0], args[1], args[2])
			}
			key := types.ResourceKey{
				Namespace: args[0],
				Kind:      types.Kind(args[1]),
				Name:      args[2],
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

			history, err := svc.ResourceHistory(cmd.Context(), caller, key, 1, types.Head)
			if err != nil {
				return err
			}

			var records []json.RawMessage
			for rev, err := range history {
				if err != nil {
					return err
				}
				raw, err := json.Marshal(rev)
				if err != nil {
					return fmt.Errorf("encode revision %d: %w", rev.Version, err)
				}
				records = append(records, raw)
			}
			if len(records) == 0 {
				return types.ErrNotFound
			}

			if err := sqlite.WriteJSONL(out, records); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("exported %d revisions to %s\n", len(records), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default: <namespace>_<kind>_<name>.jsonl)")
	return cmd
}

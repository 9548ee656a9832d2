// Package catalog provides typed façades over the revision ledger, one per
// resource kind. Each façade validates kind-specific invariants before any
// ledger write; the ledger itself stays payload-opaque. Cross-resource
// references always pin exact version numbers, so the reference graph is
// acyclic by construction.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/cartolab/atlasmeta/internal/sqlite"
	"github.com/cartolab/atlasmeta/pkg/types"
)

// Catalog bundles the per-kind façades over one ledger.
type Catalog struct {
	ledger *sqlite.Ledger
}

// New creates a catalog over the given ledger.
func New(ledger *sqlite.Ledger) *Catalog {
	return &Catalog{ledger: ledger}
}

// Layers returns the layer façade.
func (c *Catalog) Layers() Layers { return Layers{c} }

// GeoSets returns the geoset façade.
func (c *Catalog) GeoSets() GeoSets { return GeoSets{c} }

// Columns returns the column façade.
func (c *Catalog) Columns() Columns { return Columns{c} }

// Views returns the view façade.
func (c *Catalog) Views() Views { return Views{c} }

// Read returns the raw revision of any kind at version (types.Head for
// HEAD). Used by the service layer for kind-agnostic reads.
func (c *Catalog) Read(ctx context.Context, key types.ResourceKey, version int64) (types.Revision, error) {
	return c.ledger.Read(ctx, key, version)
}

// History returns revisions of any kind in [from, to].
func (c *Catalog) History(ctx context.Context, key types.ResourceKey, from, to int64) iter.Seq2[types.Revision, error] {
	return c.ledger.History(ctx, key, from, to)
}

// Tombstone appends a deletion marker for any kind.
func (c *Catalog) Tombstone(ctx context.Context, key types.ResourceKey, authorID string, conflictToken int64) (types.Revision, error) {
	return c.ledger.Tombstone(ctx, key, authorID, conflictToken)
}

func key(namespace string, kind types.Kind, name string) types.ResourceKey {
	return types.ResourceKey{Namespace: namespace, Kind: kind, Name: name}
}

func marshalPayload(p any) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return raw, nil
}

func unmarshalPayload(rev types.Revision, into any) error {
	if rev.Tombstone || len(rev.Payload) == 0 {
		return fmt.Errorf("revision %s@%d has no payload: %w", rev.Key, rev.Version, types.ErrNotFound)
	}
	if err := json.Unmarshal(rev.Payload, into); err != nil {
		return fmt.Errorf("decoding payload of %s@%d: %w", rev.Key, rev.Version, err)
	}
	return nil
}

// readPinned loads a pinned revision and rejects pins that land on a
// tombstone marker. Any miss surfaces as ErrDanglingReference.
func (c *Catalog) readPinned(ctx context.Context, key types.ResourceKey, version int64) (types.Revision, error) {
	rev, err := c.ledger.Read(ctx, key, version)
	if err != nil {
		return types.Revision{}, fmt.Errorf("pin %s@%d: %v: %w", key, version, err, types.ErrDanglingReference)
	}
	if rev.Tombstone {
		return types.Revision{}, fmt.Errorf("pin %s@%d is a tombstone: %w", key, version, types.ErrDanglingReference)
	}
	return rev, nil
}

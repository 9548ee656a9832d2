package catalog

import (
	"context"
	"fmt"
	"iter"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// Layers is the typed façade for geographic layers. A layer's coordinate
// reference system is fixed by its first revision: GeoSets copy the CRS by
// value, so a later change would silently corrupt them.
type Layers struct {
	cat *Catalog
}

// Create writes revision 1 of a new layer.
func (l Layers) Create(ctx context.Context, namespace, name, authorID string, p types.LayerPayload) (types.Revision, error) {
	if err := p.Validate(); err != nil {
		return types.Revision{}, err
	}
	raw, err := marshalPayload(p)
	if err != nil {
		return types.Revision{}, err
	}
	return l.cat.ledger.Create(ctx, key(namespace, types.KindLayer, name), authorID, raw)
}

// Append adds a revision on top of HEAD.
// Returns ErrIncompatibleSchema if the payload changes the CRS declared by
// revision 1.
func (l Layers) Append(ctx context.Context, namespace, name, authorID string, p types.LayerPayload, conflictToken int64) (types.Revision, error) {
	if err := p.Validate(); err != nil {
		return types.Revision{}, err
	}

	// Revision 1 declared the CRS for the whole history.
	first, err := l.cat.ledger.Read(ctx, key(namespace, types.KindLayer, name), 1)
	if err != nil {
		return types.Revision{}, err
	}
	var original types.LayerPayload
	if err := unmarshalPayload(first, &original); err != nil {
		return types.Revision{}, err
	}
	if p.CRS != original.CRS {
		return types.Revision{}, fmt.Errorf("crs %q differs from %q: %w", p.CRS, original.CRS, types.ErrIncompatibleSchema)
	}

	raw, err := marshalPayload(p)
	if err != nil {
		return types.Revision{}, err
	}
	return l.cat.ledger.Append(ctx, key(namespace, types.KindLayer, name), authorID, raw, conflictToken)
}

// Get returns the revision at version (types.Head for HEAD) and its
// decoded payload. A tombstoned HEAD is returned with a zero payload.
func (l Layers) Get(ctx context.Context, namespace, name string, version int64) (types.Revision, types.LayerPayload, error) {
	rev, err := l.cat.ledger.Read(ctx, key(namespace, types.KindLayer, name), version)
	if err != nil {
		return types.Revision{}, types.LayerPayload{}, err
	}
	if rev.Tombstone {
		return rev, types.LayerPayload{}, nil
	}
	var p types.LayerPayload
	if err := unmarshalPayload(rev, &p); err != nil {
		return types.Revision{}, types.LayerPayload{}, err
	}
	return rev, p, nil
}

// History returns layer revisions in [from, to].
func (l Layers) History(ctx context.Context, namespace, name string, from, to int64) iter.Seq2[types.Revision, error] {
	return l.cat.ledger.History(ctx, key(namespace, types.KindLayer, name), from, to)
}

// Tombstone logically deletes the layer.
func (l Layers) Tombstone(ctx context.Context, namespace, name, authorID string, conflictToken int64) (types.Revision, error) {
	return l.cat.ledger.Tombstone(ctx, key(namespace, types.KindLayer, name), authorID, conflictToken)
}

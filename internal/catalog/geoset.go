package catalog

import (
	"context"
	"iter"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// GeoSets is the typed façade for sets of geometries. Members pin exact
// layer revisions in the same namespace, never "latest", so historical
// reads are fully reproducible.
type GeoSets struct {
	cat *Catalog
}

// Create writes revision 1 of a new geoset.
// Returns ErrDanglingReference if any member pin misses a committed layer
// revision.
func (g GeoSets) Create(ctx context.Context, namespace, name, authorID string, p types.GeoSetPayload) (types.Revision, error) {
	raw, err := g.validate(ctx, namespace, p)
	if err != nil {
		return types.Revision{}, err
	}
	return g.cat.ledger.Create(ctx, key(namespace, types.KindGeoSet, name), authorID, raw)
}

// Append adds a revision on top of HEAD with the same pin checks as Create.
func (g GeoSets) Append(ctx context.Context, namespace, name, authorID string, p types.GeoSetPayload, conflictToken int64) (types.Revision, error) {
	raw, err := g.validate(ctx, namespace, p)
	if err != nil {
		return types.Revision{}, err
	}
	return g.cat.ledger.Append(ctx, key(namespace, types.KindGeoSet, name), authorID, raw, conflictToken)
}

func (g GeoSets) validate(ctx context.Context, namespace string, p types.GeoSetPayload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, m := range p.Members {
		if _, err := g.cat.readPinned(ctx, key(namespace, types.KindLayer, m.Layer), m.Version); err != nil {
			return nil, err
		}
	}
	return marshalPayload(p)
}

// Get returns the revision at version (types.Head for HEAD) and its
// decoded payload. A tombstoned HEAD is returned with a zero payload.
func (g GeoSets) Get(ctx context.Context, namespace, name string, version int64) (types.Revision, types.GeoSetPayload, error) {
	rev, err := g.cat.ledger.Read(ctx, key(namespace, types.KindGeoSet, name), version)
	if err != nil {
		return types.Revision{}, types.GeoSetPayload{}, err
	}
	if rev.Tombstone {
		return rev, types.GeoSetPayload{}, nil
	}
	var p types.GeoSetPayload
	if err := unmarshalPayload(rev, &p); err != nil {
		return types.Revision{}, types.GeoSetPayload{}, err
	}
	return rev, p, nil
}

// History returns geoset revisions in [from, to].
func (g GeoSets) History(ctx context.Context, namespace, name string, from, to int64) iter.Seq2[types.Revision, error] {
	return g.cat.ledger.History(ctx, key(namespace, types.KindGeoSet, name), from, to)
}

// Tombstone logically deletes the geoset.
func (g GeoSets) Tombstone(ctx context.Context, namespace, name, authorID string, conflictToken int64) (types.Revision, error) {
	return g.cat.ledger.Tombstone(ctx, key(namespace, types.KindGeoSet, name), authorID, conflictToken)
}

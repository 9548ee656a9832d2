package catalog

import (
	"context"
	"fmt"
	"iter"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// Columns is the typed façade for attribute columns. A column revision's
// value map must cover exactly the membership of the GeoSet revision it
// pins, and every value must match the declared column type.
type Columns struct {
	cat *Catalog
}

// Create writes revision 1 of a new column.
func (c Columns) Create(ctx context.Context, namespace, name, authorID string, p types.ColumnPayload) (types.Revision, error) {
	raw, err := c.validate(ctx, namespace, p)
	if err != nil {
		return types.Revision{}, err
	}
	return c.cat.ledger.Create(ctx, key(namespace, types.KindColumn, name), authorID, raw)
}

// Append adds a revision on top of HEAD. The declared value type is fixed
// by revision 1; changing it fails with ErrIncompatibleSchema.
func (c Columns) Append(ctx context.Context, namespace, name, authorID string, p types.ColumnPayload, conflictToken int64) (types.Revision, error) {
	raw, err := c.validate(ctx, namespace, p)
	if err != nil {
		return types.Revision{}, err
	}

	first, err := c.cat.ledger.Read(ctx, key(namespace, types.KindColumn, name), 1)
	if err != nil {
		return types.Revision{}, err
	}
	var original types.ColumnPayload
	if err := unmarshalPayload(first, &original); err != nil {
		return types.Revision{}, err
	}
	if p.Type != original.Type {
		return types.Revision{}, fmt.Errorf("column type %q differs from %q: %w", p.Type, original.Type, types.ErrIncompatibleSchema)
	}

	return c.cat.ledger.Append(ctx, key(namespace, types.KindColumn, name), authorID, raw, conflictToken)
}

// validate checks the payload shape and then the value map against the
// pinned GeoSet revision: same cardinality, same key set.
func (c Columns) validate(ctx context.Context, namespace string, p types.ColumnPayload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	setRev, err := c.cat.readPinned(ctx, key(namespace, types.KindGeoSet, p.GeoSet.Name), p.GeoSet.Version)
	if err != nil {
		return nil, err
	}
	var set types.GeoSetPayload
	if err := unmarshalPayload(setRev, &set); err != nil {
		return nil, err
	}

	if len(p.Values) != len(set.Members) {
		return nil, fmt.Errorf("%d values against %d members of %s@%d: %w",
			len(p.Values), len(set.Members), p.GeoSet.Name, p.GeoSet.Version, types.ErrCardinalityMismatch)
	}
	for _, m := range set.Members {
		if _, ok := p.Values[m.Layer]; !ok {
			return nil, fmt.Errorf("missing value for member %q: %w", m.Layer, types.ErrCardinalityMismatch)
		}
	}
	return marshalPayload(p)
}

// Get returns the revision at version (types.Head for HEAD) and its
// decoded payload. A tombstoned HEAD is returned with a zero payload.
func (c Columns) Get(ctx context.Context, namespace, name string, version int64) (types.Revision, types.ColumnPayload, error) {
	rev, err := c.cat.ledger.Read(ctx, key(namespace, types.KindColumn, name), version)
	if err != nil {
		return types.Revision{}, types.ColumnPayload{}, err
	}
	if rev.Tombstone {
		return rev, types.ColumnPayload{}, nil
	}
	var p types.ColumnPayload
	if err := unmarshalPayload(rev, &p); err != nil {
		return types.Revision{}, types.ColumnPayload{}, err
	}
	return rev, p, nil
}

// History returns column revisions in [from, to].
func (c Columns) History(ctx context.Context, namespace, name string, from, to int64) iter.Seq2[types.Revision, error] {
	return c.cat.ledger.History(ctx, key(namespace, types.KindColumn, name), from, to)
}

// Tombstone logically deletes the column.
func (c Columns) Tombstone(ctx context.Context, namespace, name, authorID string, conflictToken int64) (types.Revision, error) {
	return c.cat.ledger.Tombstone(ctx, key(namespace, types.KindColumn, name), authorID, conflictToken)
}

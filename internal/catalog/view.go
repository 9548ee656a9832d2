package catalog

import (
	"context"
	"iter"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// Views is the typed façade for derived views: declarative references to
// one GeoSet revision and a list of column revisions. Every pin must name
// a committed, non-tombstone revision.
type Views struct {
	cat *Catalog
}

// Create writes revision 1 of a new view.
// Returns ErrDanglingReference if any pinned GeoSet or column revision
// does not exist.
func (v Views) Create(ctx context.Context, namespace, name, authorID string, p types.ViewPayload) (types.Revision, error) {
	raw, err := v.validate(ctx, namespace, p)
	if err != nil {
		return types.Revision{}, err
	}
	return v.cat.ledger.Create(ctx, key(namespace, types.KindView, name), authorID, raw)
}

// Append adds a revision on top of HEAD with the same pin checks as Create.
func (v Views) Append(ctx context.Context, namespace, name, authorID string, p types.ViewPayload, conflictToken int64) (types.Revision, error) {
	raw, err := v.validate(ctx, namespace, p)
	if err != nil {
		return types.Revision{}, err
	}
	return v.cat.ledger.Append(ctx, key(namespace, types.KindView, name), authorID, raw, conflictToken)
}

func (v Views) validate(ctx context.Context, namespace string, p types.ViewPayload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := v.cat.readPinned(ctx, key(namespace, types.KindGeoSet, p.GeoSet.Name), p.GeoSet.Version); err != nil {
		return nil, err
	}
	for _, col := range p.Columns {
		if _, err := v.cat.readPinned(ctx, key(namespace, types.KindColumn, col.Name), col.Version); err != nil {
			return nil, err
		}
	}
	return marshalPayload(p)
}

// Get returns the revision at version (types.Head for HEAD) and its
// decoded payload. A tombstoned HEAD is returned with a zero payload.
func (v Views) Get(ctx context.Context, namespace, name string, version int64) (types.Revision, types.ViewPayload, error) {
	rev, err := v.cat.ledger.Read(ctx, key(namespace, types.KindView, name), version)
	if err != nil {
		return types.Revision{}, types.ViewPayload{}, err
	}
	if rev.Tombstone {
		return rev, types.ViewPayload{}, nil
	}
	var p types.ViewPayload
	if err := unmarshalPayload(rev, &p); err != nil {
		return types.Revision{}, types.ViewPayload{}, err
	}
	return rev, p, nil
}

// History returns view revisions in [from, to].
func (v Views) History(ctx context.Context, namespace, name string, from, to int64) iter.Seq2[types.Revision, error] {
	return v.cat.ledger.History(ctx, key(namespace, types.KindView, name), from, to)
}

// Tombstone logically deletes the view.
func (v Views) Tombstone(ctx context.Context, namespace, name, authorID string, conflictToken int64) (types.Revision, error) {
	return v.cat.ledger.Tombstone(ctx, key(namespace, types.KindView, name), authorID, conflictToken)
}

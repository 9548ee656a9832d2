// Resource operations through the access-controlled façade. Creates and
// appends are typed per kind so that catalog invariants run with decoded
// payloads; reads, history, and tombstones are kind-generic.
package service

import (
	"context"
	"iter"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// CreateLayer writes revision 1 of a new layer. Requires write.
func (s *Service) CreateLayer(ctx context.Context, caller types.Principal, namespace, name string, p types.LayerPayload) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Layers().Create(ctx, namespace, name, caller.PrincipalID, p)
	return rev, s.mask(err)
}

// AppendLayer adds a layer revision on top of conflictToken. Requires write.
func (s *Service) AppendLayer(ctx context.Context, caller types.Principal, namespace, name string, p types.LayerPayload, conflictToken int64) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Layers().Append(ctx, namespace, name, caller.PrincipalID, p, conflictToken)
	return rev, s.mask(err)
}

// GetLayer returns a layer revision and payload. Requires read.
func (s *Service) GetLayer(ctx context.Context, caller types.Principal, namespace, name string, version int64) (types.Revision, types.LayerPayload, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelRead); err != nil {
		return types.Revision{}, types.LayerPayload{}, err
	}
	rev, p, err := s.catalog.Layers().Get(ctx, namespace, name, version)
	return rev, p, s.mask(err)
}

// CreateGeoSet writes revision 1 of a new geoset. Requires write.
func (s *Service) CreateGeoSet(ctx context.Context, caller types.Principal, namespace, name string, p types.GeoSetPayload) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.GeoSets().Create(ctx, namespace, name, caller.PrincipalID, p)
	return rev, s.mask(err)
}

// AppendGeoSet adds a geoset revision on top of conflictToken. Requires write.
func (s *Service) AppendGeoSet(ctx context.Context, caller types.Principal, namespace, name string, p types.GeoSetPayload, conflictToken int64) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.GeoSets().Append(ctx, namespace, name, caller.PrincipalID, p, conflictToken)
	return rev, s.mask(err)
}

// GetGeoSet returns a geoset revision and payload. Requires read.
func (s *Service) GetGeoSet(ctx context.Context, caller types.Principal, namespace, name string, version int64) (types.Revision, types.GeoSetPayload, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelRead); err != nil {
		return types.Revision{}, types.GeoSetPayload{}, err
	}
	rev, p, err := s.catalog.GeoSets().Get(ctx, namespace, name, version)
	return rev, p, s.mask(err)
}

// CreateColumn writes revision 1 of a new column. Requires write.
func (s *Service) CreateColumn(ctx context.Context, caller types.Principal, namespace, name string, p types.ColumnPayload) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Columns().Create(ctx, namespace, name, caller.PrincipalID, p)
	return rev, s.mask(err)
}

// AppendColumn adds a column revision on top of conflictToken. Requires write.
func (s *Service) AppendColumn(ctx context.Context, caller types.Principal, namespace, name string, p types.ColumnPayload, conflictToken int64) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Columns().Append(ctx, namespace, name, caller.PrincipalID, p, conflictToken)
	return rev, s.mask(err)
}

// GetColumn returns a column revision and payload. Requires read.
func (s *Service) GetColumn(ctx context.Context, caller types.Principal, namespace, name string, version int64) (types.Revision, types.ColumnPayload, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelRead); err != nil {
		return types.Revision{}, types.ColumnPayload{}, err
	}
	rev, p, err := s.catalog.Columns().Get(ctx, namespace, name, version)
	return rev, p, s.mask(err)
}

// CreateView writes revision 1 of a new view. Requires write.
func (s *Service) CreateView(ctx context.Context, caller types.Principal, namespace, name string, p types.ViewPayload) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Views().Create(ctx, namespace, name, caller.PrincipalID, p)
	return rev, s.mask(err)
}

// AppendView adds a view revision on top of conflictToken. Requires write.
func (s *Service) AppendView(ctx context.Context, caller types.Principal, namespace, name string, p types.ViewPayload, conflictToken int64) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Views().Append(ctx, namespace, name, caller.PrincipalID, p, conflictToken)
	return rev, s.mask(err)
}

// GetView returns a view revision and payload. Requires read.
func (s *Service) GetView(ctx context.Context, caller types.Principal, namespace, name string, version int64) (types.Revision, types.ViewPayload, error) {
	if _, err := s.authorize(ctx, caller, namespace, types.LevelRead); err != nil {
		return types.Revision{}, types.ViewPayload{}, err
	}
	rev, p, err := s.catalog.Views().Get(ctx, namespace, name, version)
	return rev, p, s.mask(err)
}

// GetResource returns the raw revision of any kind at version (types.Head
// for HEAD). Requires read.
func (s *Service) GetResource(ctx context.Context, caller types.Principal, key types.ResourceKey, version int64) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, key.Namespace, types.LevelRead); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Read(ctx, key, version)
	return rev, s.mask(err)
}

// TombstoneResource logically deletes a resource of any kind. Requires
// write; same conflict semantics as appends.
func (s *Service) TombstoneResource(ctx context.Context, caller types.Principal, key types.ResourceKey, conflictToken int64) (types.Revision, error) {
	if _, err := s.authorize(ctx, caller, key.Namespace, types.LevelWrite); err != nil {
		return types.Revision{}, err
	}
	rev, err := s.catalog.Tombstone(ctx, key, caller.PrincipalID, conflictToken)
	return rev, s.mask(err)
}

// ResourceHistory returns the revisions of a resource with versions in
// [from, to], in strictly increasing order. Requires read. The sequence
// is lazy and restartable; errors inside iteration are masked the same
// way as direct results.
func (s *Service) ResourceHistory(ctx context.Context, caller types.Principal, key types.ResourceKey, from, to int64) (iter.Seq2[types.Revision, error], error) {
	if _, err := s.authorize(ctx, caller, key.Namespace, types.LevelRead); err != nil {
		return nil, err
	}
	inner := s.catalog.History(ctx, key, from, to)
	return func(yield func(types.Revision, error) bool) {
		for rev, err := range inner {
			if !yield(rev, s.mask(err)) {
				return
			}
		}
	}, nil
}

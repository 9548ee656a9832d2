// Namespace and grant administration through the access-controlled façade.
package service

import (
	"context"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// CreateNamespace registers a new namespace owned by caller. The store
// grants the owner admin in the same transaction as the insert, so the
// namespace is never without an administrator. Any authenticated
// principal may create namespaces.
// Returns ErrDuplicateNamespace if the path is taken.
func (s *Service) CreateNamespace(ctx context.Context, caller types.Principal, path, description string, public bool) (types.Namespace, error) {
	namespaces, err := s.backend.Namespaces()
	if err != nil {
		return types.Namespace{}, s.mask(err)
	}

	n, err := namespaces.Create(ctx, types.Namespace{
		Path:        path,
		Description: description,
		Public:      public,
		OwnerID:     caller.PrincipalID,
	})
	if err != nil {
		return types.Namespace{}, s.mask(err)
	}

	s.log.Info().
		Str("namespace", path).
		Str("owner", caller.PrincipalID).
		Bool("public", public).
		Msg("namespace created")
	return n, nil
}

// GetNamespace returns the namespace at path if it is visible to caller.
func (s *Service) GetNamespace(ctx context.Context, caller types.Principal, path string) (types.Namespace, error) {
	return s.authorize(ctx, caller, path, types.LevelRead)
}

// ListNamespaces returns the namespaces visible to caller: public ones
// plus any the caller holds a grant on.
func (s *Service) ListNamespaces(ctx context.Context, caller types.Principal) ([]types.Namespace, error) {
	namespaces, err := s.backend.Namespaces()
	if err != nil {
		return nil, s.mask(err)
	}
	all, err := namespaces.List(ctx)
	if err != nil {
		return nil, s.mask(err)
	}

	var visible []types.Namespace
	for _, n := range all {
		level, err := s.effectiveLevel(ctx, caller, n)
		if err != nil {
			return nil, err
		}
		if level.Covers(types.LevelRead) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// SetVisibility flips the public flag of a namespace. Requires admin.
// Idempotent.
func (s *Service) SetVisibility(ctx context.Context, caller types.Principal, path string, public bool) error {
	if _, err := s.authorize(ctx, caller, path, types.LevelAdmin); err != nil {
		return err
	}
	namespaces, err := s.backend.Namespaces()
	if err != nil {
		return s.mask(err)
	}
	if err := namespaces.SetVisibility(ctx, path, public); err != nil {
		return s.mask(err)
	}
	s.log.Info().
		Str("namespace", path).
		Bool("public", public).
		Str("actor", caller.PrincipalID).
		Msg("namespace visibility changed")
	return nil
}

// DeleteNamespace removes a namespace with no resource history. Requires
// admin. Returns ErrNamespaceNotEmpty while any revision exists in it.
func (s *Service) DeleteNamespace(ctx context.Context, caller types.Principal, path string) error {
	if _, err := s.authorize(ctx, caller, path, types.LevelAdmin); err != nil {
		return err
	}
	namespaces, err := s.backend.Namespaces()
	if err != nil {
		return s.mask(err)
	}
	if err := namespaces.Delete(ctx, path); err != nil {
		return s.mask(err)
	}
	s.log.Info().
		Str("namespace", path).
		Str("actor", caller.PrincipalID).
		Msg("namespace deleted")
	return nil
}

// Grant authorizes principalID at level within the namespace. Requires
// admin there. Idempotent; a repeated grant never lowers the level.
func (s *Service) Grant(ctx context.Context, caller types.Principal, principalID, path string, level types.Level) error {
	if _, err := s.authorize(ctx, caller, path, types.LevelAdmin); err != nil {
		return err
	}
	principals, err := s.backend.Principals()
	if err != nil {
		return s.mask(err)
	}
	if _, err := principals.Get(ctx, principalID); err != nil {
		return s.mask(err)
	}
	grants, err := s.backend.Grants()
	if err != nil {
		return s.mask(err)
	}
	if err := grants.Upsert(ctx, principalID, path, level); err != nil {
		return s.mask(err)
	}
	s.log.Info().
		Str("namespace", path).
		Str("principal", principalID).
		Str("level", level.String()).
		Str("actor", caller.PrincipalID).
		Msg("grant added")
	return nil
}

// Revoke removes principalID's grant within the namespace. Requires
// admin. Revoking a non-existent grant is a no-op.
func (s *Service) Revoke(ctx context.Context, caller types.Principal, principalID, path string) error {
	if _, err := s.authorize(ctx, caller, path, types.LevelAdmin); err != nil {
		return err
	}
	grants, err := s.backend.Grants()
	if err != nil {
		return s.mask(err)
	}
	if err := grants.Revoke(ctx, principalID, path); err != nil {
		return s.mask(err)
	}
	s.log.Info().
		Str("namespace", path).
		Str("principal", principalID).
		Str("actor", caller.PrincipalID).
		Msg("grant revoked")
	return nil
}

// ListGrants returns every grant in the namespace. Requires admin: who
// holds access to a namespace is as sensitive as the namespace itself.
func (s *Service) ListGrants(ctx context.Context, caller types.Principal, path string) ([]types.Grant, error) {
	if _, err := s.authorize(ctx, caller, path, types.LevelAdmin); err != nil {
		return nil, err
	}
	grants, err := s.backend.Grants()
	if err != nil {
		return nil, s.mask(err)
	}
	all, err := grants.ListForNamespace(ctx, path)
	if err != nil {
		return nil, s.mask(err)
	}
	return all, nil
}

// PermissionLevel returns the caller's own effective level in the
// namespace. Unlike other operations it never masks: a caller may always
// ask what they hold, and receives LevelNone for unknown or inaccessible
// namespaces.
func (s *Service) PermissionLevel(ctx context.Context, caller types.Principal, path string) (types.Level, error) {
	namespaces, err := s.backend.Namespaces()
	if err != nil {
		return types.LevelNone, s.mask(err)
	}
	n, err := namespaces.Get(ctx, path)
	if err != nil {
		return types.LevelNone, nil
	}
	return s.effectiveLevel(ctx, caller, n)
}

// Package service implements the access-controlled façade over the
// catalog, registry, and grant stores. It is the only entry point the
// transport layer sees. Every operation resolves the caller, applies
// namespace visibility rules, checks the required permission level, and
// only then delegates. For private namespaces, lack of any grant is
// reported as not-found, never as forbidden: the existence of a private
// namespace is itself a secret.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartolab/atlasmeta/internal/catalog"
	"github.com/cartolab/atlasmeta/internal/sqlite"
	"github.com/cartolab/atlasmeta/pkg/types"
)

// defaultIdentityTTL bounds how long a resolved credential may be reused
// without hitting storage. Grants are never cached: a revoked permission
// must take effect on the next request.
const defaultIdentityTTL = 30 * time.Second

// Service wires the stores together behind authorization checks.
type Service struct {
	backend    *sqlite.Backend
	catalog    *catalog.Catalog
	log        zerolog.Logger
	identities *identityCache
}

// New creates a Service over an attached backend.
func New(backend *sqlite.Backend, log zerolog.Logger) (*Service, error) {
	ledger, err := backend.Ledger()
	if err != nil {
		return nil, err
	}
	return &Service{
		backend:    backend,
		catalog:    catalog.New(ledger),
		log:        log,
		identities: newIdentityCache(defaultIdentityTTL),
	}, nil
}

// Authenticate resolves a raw API key to a principal. Results are cached
// for a short TTL; a miss falls through to the principal store.
// Returns ErrInvalidCredential for unknown keys and inactive principals.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (types.Principal, error) {
	if p, ok := s.identities.get(rawKey); ok {
		return p, nil
	}
	principals, err := s.backend.Principals()
	if err != nil {
		return types.Principal{}, s.mask(err)
	}
	p, err := principals.Resolve(ctx, rawKey)
	if err != nil {
		return types.Principal{}, s.mask(err)
	}
	s.identities.put(rawKey, p)
	return p, nil
}

// authorize loads the namespace and checks that caller holds the required
// level there. The ordering is the security invariant of the whole
// service: a caller with no grant on a private namespace learns only
// "not found", identical to the namespace not existing. ErrForbidden is
// possible only once the namespace is known-visible to the caller.
func (s *Service) authorize(ctx context.Context, caller types.Principal, namespace string, required types.Level) (types.Namespace, error) {
	namespaces, err := s.backend.Namespaces()
	if err != nil {
		return types.Namespace{}, s.mask(err)
	}
	n, err := namespaces.Get(ctx, namespace)
	if err != nil {
		return types.Namespace{}, s.mask(err)
	}

	level, err := s.effectiveLevel(ctx, caller, n)
	if err != nil {
		return types.Namespace{}, err
	}
	if level == types.LevelNone {
		// Private namespace, no grant: masked as absent.
		return types.Namespace{}, types.ErrNotFound
	}
	if !level.Covers(required) {
		return types.Namespace{}, types.ErrForbidden
	}
	return n, nil
}

// effectiveLevel returns the caller's level in n. Public namespaces imply
// read for every authenticated principal; an explicit grant can only
// raise that.
func (s *Service) effectiveLevel(ctx context.Context, caller types.Principal, n types.Namespace) (types.Level, error) {
	grants, err := s.backend.Grants()
	if err != nil {
		return types.LevelNone, s.mask(err)
	}
	level, err := grants.Level(ctx, caller.PrincipalID, n.Path)
	if err != nil {
		return types.LevelNone, s.mask(err)
	}
	if n.Public && level < types.LevelRead {
		level = types.LevelRead
	}
	return level, nil
}

// domainErrors are the error values allowed to cross the service
// boundary. Anything else is logged and masked as ErrUnavailable.
var domainErrors = []error{
	types.ErrNotFound,
	types.ErrForbidden,
	types.ErrDuplicateNamespace,
	types.ErrNamespaceNotEmpty,
	types.ErrAlreadyExists,
	types.ErrVersionConflict,
	types.ErrIncompatibleSchema,
	types.ErrCardinalityMismatch,
	types.ErrDanglingReference,
	types.ErrInvalidCredential,
	types.ErrInvalidPath,
	types.ErrInvalidKind,
	types.ErrInvalidLevel,
}

// mask maps an internal error to its domain sentinel, or to
// ErrUnavailable after logging. No storage detail ever reaches a caller.
func (s *Service) mask(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range domainErrors {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	s.log.Error().Err(err).Msg("internal storage error")
	return types.ErrUnavailable
}

// This file implements the grant store. Grants are additive and scoped to
// one namespace; the effective level is the highest held.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// GrantStore maps (principal, namespace) pairs to permission levels.
type GrantStore struct {
	backend *Backend
}

// Upsert records a grant. A repeated grant never lowers the stored level.
// Idempotent.
func (gs *GrantStore) Upsert(ctx context.Context, principalID, namespace string, level types.Level) error {
	if level <= types.LevelNone || level > types.LevelAdmin {
		return types.ErrInvalidLevel
	}
	_, err := gs.backend.db.ExecContext(ctx,
		`INSERT INTO grants (principal_id, namespace, level, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(principal_id, namespace) DO UPDATE SET level = MAX(level, excluded.level)`,
		principalID, namespace, int(level), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("granting %s on %q to %q: %w", level, namespace, principalID, err)
	}
	return nil
}

// Revoke removes the grant for (principalID, namespace). Revoking a
// non-existent grant is a no-op, not an error.
func (gs *GrantStore) Revoke(ctx context.Context, principalID, namespace string) error {
	_, err := gs.backend.db.ExecContext(ctx,
		"DELETE FROM grants WHERE principal_id = ? AND namespace = ?",
		principalID, namespace,
	)
	if err != nil {
		return fmt.Errorf("revoking grant on %q from %q: %w", namespace, principalID, err)
	}
	return nil
}

// Level returns the level held by principalID in namespace, or LevelNone.
// LevelNone is not an error; the service layer decides whether absence of
// permission on a private namespace masks as not-found.
func (gs *GrantStore) Level(ctx context.Context, principalID, namespace string) (types.Level, error) {
	var level int
	err := gs.backend.db.QueryRowContext(ctx,
		"SELECT level FROM grants WHERE principal_id = ? AND namespace = ?",
		principalID, namespace,
	).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return types.LevelNone, nil
	}
	if err != nil {
		return types.LevelNone, fmt.Errorf("loading grant on %q for %q: %w", namespace, principalID, err)
	}
	return types.Level(level), nil
}

// ListForNamespace returns all grants in a namespace ordered by principal.
func (gs *GrantStore) ListForNamespace(ctx context.Context, namespace string) ([]types.Grant, error) {
	rows, err := gs.backend.db.QueryContext(ctx,
		"SELECT principal_id, namespace, level, created_at FROM grants WHERE namespace = ? ORDER BY principal_id",
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("listing grants on %q: %w", namespace, err)
	}
	defer rows.Close()

	var all []types.Grant
	for rows.Next() {
		var (
			g         types.Grant
			level     int
			createdAt string
		)
		if err := rows.Scan(&g.PrincipalID, &g.Namespace, &level, &createdAt); err != nil {
			return nil, fmt.Errorf("listing grants on %q: %w", namespace, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		g.Level = types.Level(level)
		g.CreatedAt = ts
		all = append(all, g)
	}
	return all, rows.Err()
}

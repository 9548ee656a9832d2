// This file implements the namespace registry. Lookups here perform no
// authorization; the service layer applies visibility rules before any
// result leaves the process.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// NamespaceStore owns the set of namespaces and their visibility.
type NamespaceStore struct {
	backend *Backend
}

// Create inserts a new namespace together with the owner's admin grant.
// The two rows commit in one transaction: a namespace can never exist
// without an admin able to manage it.
// Returns ErrDuplicateNamespace if the path is already taken.
func (ns *NamespaceStore) Create(ctx context.Context, n types.Namespace) (types.Namespace, error) {
	if err := types.ValidatePath(n.Path); err != nil {
		return types.Namespace{}, err
	}
	n.CreatedAt = time.Now().UTC()

	tx, err := ns.backend.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Namespace{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO namespaces (path, description, public, owner_id, created_at) VALUES (?, ?, ?, ?, ?)",
		n.Path, n.Description, boolToInt(n.Public), n.OwnerID, n.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return types.Namespace{}, types.ErrDuplicateNamespace
		}
		return types.Namespace{}, fmt.Errorf("inserting namespace %q: %w", n.Path, err)
	}

	if n.OwnerID != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO grants (principal_id, namespace, level, created_at) VALUES (?, ?, ?, ?)
             ON CONFLICT(principal_id, namespace) DO UPDATE SET level = MAX(level, excluded.level)`,
			n.OwnerID, n.Path, int(types.LevelAdmin), n.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return types.Namespace{}, fmt.Errorf("granting owner admin on %q: %w", n.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Namespace{}, fmt.Errorf("committing create of %q: %w", n.Path, err)
	}
	return n, nil
}

// Get returns the namespace at path or ErrNotFound.
func (ns *NamespaceStore) Get(ctx context.Context, path string) (types.Namespace, error) {
	row := ns.backend.db.QueryRowContext(ctx,
		"SELECT path, description, public, owner_id, created_at FROM namespaces WHERE path = ?",
		path,
	)
	n, err := hydrateNamespace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Namespace{}, types.ErrNotFound
	}
	if err != nil {
		return types.Namespace{}, fmt.Errorf("getting namespace %q: %w", path, err)
	}
	return n, nil
}

// List returns all namespaces ordered by path. The service layer filters
// the result to namespaces visible to the caller.
func (ns *NamespaceStore) List(ctx context.Context) ([]types.Namespace, error) {
	rows, err := ns.backend.db.QueryContext(ctx,
		"SELECT path, description, public, owner_id, created_at FROM namespaces ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	var all []types.Namespace
	for rows.Next() {
		n, err := hydrateNamespace(rows)
		if err != nil {
			return nil, fmt.Errorf("listing namespaces: %w", err)
		}
		all = append(all, n)
	}
	return all, rows.Err()
}

// SetVisibility flips the public flag. Idempotent.
// Returns ErrNotFound if the namespace does not exist.
func (ns *NamespaceStore) SetVisibility(ctx context.Context, path string, public bool) error {
	res, err := ns.backend.db.ExecContext(ctx,
		"UPDATE namespaces SET public = ? WHERE path = ?",
		boolToInt(public), path,
	)
	if err != nil {
		return fmt.Errorf("updating visibility of %q: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating visibility of %q: %w", path, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Delete removes a namespace and its grants.
// Returns ErrNamespaceNotEmpty while any resource in the namespace has
// revision history, and ErrNotFound for an unknown path.
func (ns *NamespaceStore) Delete(ctx context.Context, path string) error {
	tx, err := ns.backend.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var hasHistory int
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM revisions WHERE namespace = ?)", path,
	).Scan(&hasHistory)
	if err != nil {
		return fmt.Errorf("checking history of %q: %w", path, err)
	}
	if hasHistory != 0 {
		return types.ErrNamespaceNotEmpty
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM grants WHERE namespace = ?", path); err != nil {
		return fmt.Errorf("deleting grants of %q: %w", path, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM namespaces WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting namespace %q: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting namespace %q: %w", path, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return tx.Commit()
}

func hydrateNamespace(row rowScanner) (types.Namespace, error) {
	var (
		n         types.Namespace
		public    int
		createdAt string
	)
	if err := row.Scan(&n.Path, &n.Description, &public, &n.OwnerID, &createdAt); err != nil {
		return types.Namespace{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.Namespace{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	n.Public = public != 0
	n.CreatedAt = ts
	return n, nil
}

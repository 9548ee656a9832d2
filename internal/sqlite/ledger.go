// This file implements the versioned resource ledger: a generic append-only
// history engine over opaque payloads. The ledger is namespace-agnostic;
// visibility and permission rules are layered above it in the service.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// Ledger stores resources as streams of immutable revisions. Appends use
// optimistic concurrency: the caller supplies the HEAD version it last
// observed, and the check-and-append runs as one transaction, so two
// concurrent appenders holding the same token produce exactly one winner.
type Ledger struct {
	backend *Backend
}

// Create writes revision 1 of a new resource.
// Returns ErrAlreadyExists if the key has any revision, tombstoned included.
func (l *Ledger) Create(ctx context.Context, key types.ResourceKey, authorID string, payload []byte) (types.Revision, error) {
	if err := key.Validate(); err != nil {
		return types.Revision{}, err
	}

	rev := types.Revision{
		Key:       key,
		Version:   1,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}

	tx, err := l.backend.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Revision{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO resources (namespace, kind, name, head_version) VALUES (?, ?, ?, 1)",
		key.Namespace, key.Kind, key.Name,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return types.Revision{}, types.ErrAlreadyExists
		}
		return types.Revision{}, fmt.Errorf("inserting resource %s: %w", key, err)
	}

	if err := insertRevision(ctx, tx, rev); err != nil {
		return types.Revision{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Revision{}, fmt.Errorf("committing create of %s: %w", key, err)
	}
	return rev, nil
}

// Append adds a new revision on top of HEAD. conflictToken must equal the
// current HEAD version; otherwise the append fails with ErrVersionConflict
// and the caller must re-read and retry. The ledger never retries itself.
func (l *Ledger) Append(ctx context.Context, key types.ResourceKey, authorID string, payload []byte, conflictToken int64) (types.Revision, error) {
	return l.append(ctx, key, authorID, payload, conflictToken, false)
}

// Tombstone appends a deletion-marker revision with the same conflict
// semantics as Append. History stays readable; only HEAD reflects the
// logical delete.
func (l *Ledger) Tombstone(ctx context.Context, key types.ResourceKey, authorID string, conflictToken int64) (types.Revision, error) {
	return l.append(ctx, key, authorID, nil, conflictToken, true)
}

func (l *Ledger) append(ctx context.Context, key types.ResourceKey, authorID string, payload []byte, conflictToken int64, tombstone bool) (types.Revision, error) {
	if err := key.Validate(); err != nil {
		return types.Revision{}, err
	}

	// Fast-path token check outside the transaction. The authoritative
	// check is the guarded update below; this read only distinguishes an
	// absent resource from a stale token for better errors.
	var head int64
	err := l.backend.db.QueryRowContext(ctx,
		"SELECT head_version FROM resources WHERE namespace = ? AND kind = ? AND name = ?",
		key.Namespace, key.Kind, key.Name,
	).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Revision{}, types.ErrNotFound
	}
	if err != nil {
		return types.Revision{}, fmt.Errorf("loading head of %s: %w", key, err)
	}
	if head != conflictToken {
		return types.Revision{}, types.ErrVersionConflict
	}

	// The transaction starts with a write so it queues on the database
	// write lock instead of upgrading from a read snapshot.
	tx, err := l.backend.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Revision{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Guarded head advance: the WHERE clause re-checks the token so that a
	// concurrent append committing first leaves this one with zero rows.
	res, err := tx.ExecContext(ctx,
		"UPDATE resources SET head_version = ? WHERE namespace = ? AND kind = ? AND name = ? AND head_version = ?",
		conflictToken+1, key.Namespace, key.Kind, key.Name, conflictToken,
	)
	if err != nil {
		return types.Revision{}, fmt.Errorf("advancing head of %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return types.Revision{}, fmt.Errorf("advancing head of %s: %w", key, err)
	} else if n == 0 {
		return types.Revision{}, types.ErrVersionConflict
	}

	rev := types.Revision{
		Key:       key,
		Version:   conflictToken + 1,
		Parent:    conflictToken,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
		Tombstone: tombstone,
		Payload:   payload,
	}
	if err := insertRevision(ctx, tx, rev); err != nil {
		if errors.Is(err, types.ErrAlreadyExists) {
			// The (key, version) primary key caught a racing append that
			// slipped past the guarded update under a weaker isolation
			// level. Exactly one appender wins either way.
			return types.Revision{}, types.ErrVersionConflict
		}
		return types.Revision{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Revision{}, fmt.Errorf("committing append to %s: %w", key, err)
	}
	return rev, nil
}

// Read returns the revision of key at the given version, or the HEAD
// revision when version is types.Head. HEAD may be a tombstone; callers
// inspect Revision.Tombstone.
// Returns ErrNotFound if the resource or the specific version is absent.
func (l *Ledger) Read(ctx context.Context, key types.ResourceKey, version int64) (types.Revision, error) {
	if err := key.Validate(); err != nil {
		return types.Revision{}, err
	}

	var row *sql.Row
	if version == types.Head {
		row = l.backend.db.QueryRowContext(ctx,
			`SELECT rev.version, rev.parent, rev.author_id, rev.created_at, rev.tombstone, rev.payload
             FROM revisions rev
             JOIN resources res ON res.namespace = rev.namespace AND res.kind = rev.kind AND res.name = rev.name
             WHERE rev.namespace = ? AND rev.kind = ? AND rev.name = ? AND rev.version = res.head_version`,
			key.Namespace, key.Kind, key.Name,
		)
	} else {
		row = l.backend.db.QueryRowContext(ctx,
			`SELECT version, parent, author_id, created_at, tombstone, payload
             FROM revisions
             WHERE namespace = ? AND kind = ? AND name = ? AND version = ?`,
			key.Namespace, key.Kind, key.Name, version,
		)
	}

	rev, err := hydrateRevision(row, key)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Revision{}, types.ErrNotFound
	}
	if err != nil {
		return types.Revision{}, fmt.Errorf("reading %s@%d: %w", key, version, err)
	}
	return rev, nil
}

// History returns the revisions of key with versions in [from, to] in
// strictly increasing order. from below 1 is clamped to 1; to set to
// types.Head means no upper bound. The sequence is lazy (rows are scanned
// during iteration) and restartable: each range-over runs a fresh query.
func (l *Ledger) History(ctx context.Context, key types.ResourceKey, from, to int64) iter.Seq2[types.Revision, error] {
	return func(yield func(types.Revision, error) bool) {
		if err := key.Validate(); err != nil {
			yield(types.Revision{}, err)
			return
		}
		if from < 1 {
			from = 1
		}

		query := `SELECT version, parent, author_id, created_at, tombstone, payload
            FROM revisions
            WHERE namespace = ? AND kind = ? AND name = ? AND version >= ?`
		args := []any{key.Namespace, key.Kind, key.Name, from}
		if to != types.Head {
			query += " AND version <= ?"
			args = append(args, to)
		}
		query += " ORDER BY version"

		rows, err := l.backend.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(types.Revision{}, fmt.Errorf("scanning history of %s: %w", key, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rev, err := hydrateRevision(rows, key)
			if err != nil {
				yield(types.Revision{}, fmt.Errorf("scanning history of %s: %w", key, err))
				return
			}
			if !yield(rev, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(types.Revision{}, fmt.Errorf("scanning history of %s: %w", key, err))
		}
	}
}

// NamespaceEmpty reports whether no resource in the namespace has any
// revision history. The registry consults this before deleting a
// namespace.
func (l *Ledger) NamespaceEmpty(ctx context.Context, namespace string) (bool, error) {
	var exists int
	err := l.backend.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM revisions WHERE namespace = ?)", namespace,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking namespace %q emptiness: %w", namespace, err)
	}
	return exists == 0, nil
}

// insertRevision writes one revision row inside tx.
// Returns types.ErrAlreadyExists on a (key, version) primary-key clash.
func insertRevision(ctx context.Context, tx *sql.Tx, rev types.Revision) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO revisions (namespace, kind, name, version, parent, author_id, created_at, tombstone, payload)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rev.Key.Namespace, rev.Key.Kind, rev.Key.Name, rev.Version, rev.Parent,
		rev.AuthorID, rev.CreatedAt.Format(time.RFC3339Nano), boolToInt(rev.Tombstone), []byte(rev.Payload),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return types.ErrAlreadyExists
		}
		return fmt.Errorf("inserting revision %s@%d: %w", rev.Key, rev.Version, err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// hydrateRevision scans one revision row into a types.Revision.
func hydrateRevision(row rowScanner, key types.ResourceKey) (types.Revision, error) {
	var (
		rev       types.Revision
		createdAt string
		tombstone int
		payload   []byte
	)
	if err := row.Scan(&rev.Version, &rev.Parent, &rev.AuthorID, &createdAt, &tombstone, &payload); err != nil {
		return types.Revision{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.Revision{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	rev.Key = key
	rev.CreatedAt = ts
	rev.Tombstone = tombstone != 0
	if len(payload) > 0 {
		rev.Payload = payload
	}
	return rev, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

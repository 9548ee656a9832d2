// This file implements the principal store. Raw API keys exist only in
// transit: the store keeps a SHA-512 digest, and Resolve compares digests
// in constant time.
package sqlite

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// rawKeyBytes is the entropy of a generated API key before hex encoding.
const rawKeyBytes = 32

// PrincipalStore maps API credentials to principals.
type PrincipalStore struct {
	backend *Backend
}

// Create registers a new principal and returns it together with the raw
// API key. The raw key is shown exactly once; only its digest is stored.
func (ps *PrincipalStore) Create(ctx context.Context, name string) (types.Principal, string, error) {
	if name == "" {
		return types.Principal{}, "", fmt.Errorf("principal name: %w", types.ErrInvalidPath)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return types.Principal{}, "", fmt.Errorf("generating principal id: %w", err)
	}
	keyBytes := make([]byte, rawKeyBytes)
	if _, err := rand.Read(keyBytes); err != nil {
		return types.Principal{}, "", fmt.Errorf("generating api key: %w", err)
	}
	rawKey := hex.EncodeToString(keyBytes)
	digest := sha512.Sum512([]byte(rawKey))

	p := types.Principal{
		PrincipalID: id.String(),
		Name:        name,
		KeyDigest:   digest[:],
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = ps.backend.db.ExecContext(ctx,
		"INSERT INTO principals (principal_id, name, key_digest, active, created_at) VALUES (?, ?, ?, 1, ?)",
		p.PrincipalID, p.Name, p.KeyDigest, p.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.Principal{}, "", fmt.Errorf("inserting principal %q: %w", name, err)
	}
	return p, rawKey, nil
}

// Resolve authenticates a raw API key.
// Returns ErrInvalidCredential for unknown keys and for deactivated
// principals; the two cases are indistinguishable to the caller.
func (ps *PrincipalStore) Resolve(ctx context.Context, rawKey string) (types.Principal, error) {
	digest := sha512.Sum512([]byte(rawKey))

	row := ps.backend.db.QueryRowContext(ctx,
		"SELECT principal_id, name, key_digest, active, created_at FROM principals WHERE key_digest = ?",
		digest[:],
	)
	p, err := hydratePrincipal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Principal{}, types.ErrInvalidCredential
	}
	if err != nil {
		return types.Principal{}, fmt.Errorf("resolving credential: %w", err)
	}

	// The index lookup already matched the digest; the constant-time
	// compare keeps the comparison itself timing-neutral.
	if subtle.ConstantTimeCompare(digest[:], p.KeyDigest) != 1 || !p.Active {
		return types.Principal{}, types.ErrInvalidCredential
	}
	return p, nil
}

// Get returns the principal by ID or ErrNotFound.
func (ps *PrincipalStore) Get(ctx context.Context, principalID string) (types.Principal, error) {
	row := ps.backend.db.QueryRowContext(ctx,
		"SELECT principal_id, name, key_digest, active, created_at FROM principals WHERE principal_id = ?",
		principalID,
	)
	p, err := hydratePrincipal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Principal{}, types.ErrNotFound
	}
	if err != nil {
		return types.Principal{}, fmt.Errorf("getting principal %q: %w", principalID, err)
	}
	return p, nil
}

// Count returns the number of registered principals, active or not.
func (ps *PrincipalStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := ps.backend.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM principals").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting principals: %w", err)
	}
	return n, nil
}

// Deactivate marks a principal inactive. Past revision authorship is
// untouched; new operations fail at authentication. Idempotent.
func (ps *PrincipalStore) Deactivate(ctx context.Context, principalID string) error {
	res, err := ps.backend.db.ExecContext(ctx,
		"UPDATE principals SET active = 0 WHERE principal_id = ?", principalID,
	)
	if err != nil {
		return fmt.Errorf("deactivating principal %q: %w", principalID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating principal %q: %w", principalID, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

func hydratePrincipal(row rowScanner) (types.Principal, error) {
	var (
		p         types.Principal
		active    int
		createdAt string
	)
	if err := row.Scan(&p.PrincipalID, &p.Name, &p.KeyDigest, &active, &createdAt); err != nil {
		return types.Principal{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.Principal{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	p.Active = active != 0
	p.CreatedAt = ts
	return p, nil
}

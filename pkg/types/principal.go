package types

import "time"

// Principal is an authenticated actor. The raw API key is never stored;
// only its SHA-512 digest is kept for lookup and comparison.
type Principal struct {
	PrincipalID string    // UUID v7, generated on creation.
	Name        string    // Human-readable name (required, non-empty).
	KeyDigest   []byte    // SHA-512 digest of the API key.
	Active      bool      // Deactivated principals can perform no operations.
	CreatedAt   time.Time // Timestamp of creation.
}

// Grant authorizes a principal at a permission level within one namespace.
// Grants are additive; the effective level is the highest held.
type Grant struct {
	PrincipalID string
	Namespace   string
	Level       Level
	CreatedAt   time.Time
}

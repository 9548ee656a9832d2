package types

import "time"

// Namespace is the isolation boundary for resources and permissions.
// Its path is globally unique and immutable after creation.
type Namespace struct {
	Path        string    // Unique identifier, validated by ValidatePath.
	Description string    // Human-readable display text.
	Public      bool      // Public namespaces are readable by any principal.
	OwnerID     string    // Principal that created the namespace.
	CreatedAt   time.Time // Timestamp of creation.
}

// Level is a per-namespace permission level. Levels are ordered: a higher
// level covers every lower one within the same namespace. Levels are never
// inherited across namespaces.
type Level int

const (
	LevelNone Level = iota
	LevelRead
	LevelWrite
	LevelAdmin
)

var levelNames = map[Level]string{
	LevelNone:  "none",
	LevelRead:  "read",
	LevelWrite: "write",
	LevelAdmin: "admin",
}

// String returns the canonical name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "none"
}

// Covers reports whether a grant at level l satisfies a requirement of
// level required.
func (l Level) Covers(required Level) bool {
	return l >= required
}

// ParseLevel converts a level name to a Level.
// Returns ErrInvalidLevel for unrecognized names; "none" is not grantable
// and is likewise rejected.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "read":
		return LevelRead, nil
	case "write":
		return LevelWrite, nil
	case "admin":
		return LevelAdmin, nil
	}
	return LevelNone, ErrInvalidLevel
}

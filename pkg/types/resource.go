package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind distinguishes the resource types tracked by the store. The set is
// closed: dispatch on kind happens through static catalog façades, never
// through runtime type inspection.
type Kind string

const (
	KindLayer  Kind = "layer"
	KindGeoSet Kind = "geoset"
	KindColumn Kind = "column"
	KindView   Kind = "view"
)

// validKinds is the set of recognized resource kinds.
var validKinds = map[Kind]bool{
	KindLayer:  true,
	KindGeoSet: true,
	KindColumn: true,
	KindView:   true,
}

// Head selects the latest revision in read operations that take a version.
const Head int64 = 0

// ResourceKey identifies a versioned resource. The key is stable across the
// resource's whole history; only revisions change.
type ResourceKey struct {
	Namespace string
	Kind      Kind
	Name      string
}

// Validate checks that all key components are well-formed.
func (k ResourceKey) Validate() error {
	if err := ValidatePath(k.Namespace); err != nil {
		return fmt.Errorf("namespace %q: %w", k.Namespace, err)
	}
	if !validKinds[k.Kind] {
		return fmt.Errorf("kind %q: %w", k.Kind, ErrInvalidKind)
	}
	if err := ValidatePath(k.Name); err != nil {
		return fmt.Errorf("name %q: %w", k.Name, err)
	}
	return nil
}

// String renders the key as namespace/kind/name.
func (k ResourceKey) String() string {
	return k.Namespace + "/" + string(k.Kind) + "/" + k.Name
}

// Revision is one immutable, version-numbered snapshot of a resource's
// payload. Versions start at 1 and increase by exactly 1; revisions are
// never mutated or deleted. A tombstone revision marks logical deletion
// while preserving history.
type Revision struct {
	Key       ResourceKey     `json:"key"`
	Version   int64           `json:"version"`
	Parent    int64           `json:"parent,omitempty"` // 0 for the first revision.
	AuthorID  string          `json:"author_id"`
	CreatedAt time.Time       `json:"created_at"`
	Tombstone bool            `json:"tombstone,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ValidatePath checks a namespace path or resource name: lowercase ASCII
// letters, digits, underscores, hyphens, and interior dots, at most 128
// bytes. Keys must stay safe to embed in URLs and file names.
func ValidatePath(s string) error {
	if s == "" || len(s) > 128 {
		return ErrInvalidPath
	}
	if s[0] == '.' || s[len(s)-1] == '.' {
		return ErrInvalidPath
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-' || c == '.':
		default:
			return ErrInvalidPath
		}
	}
	return nil
}

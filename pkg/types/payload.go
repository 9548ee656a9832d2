package types

import (
	"encoding/json"
	"fmt"
)

// Column value types.
const (
	ColumnFloat = "float"
	ColumnInt   = "int"
	ColumnBool  = "bool"
	ColumnStr   = "str"
	ColumnJSON  = "json"
)

// validColumnTypes is the set of recognized column value types.
var validColumnTypes = map[string]bool{
	ColumnFloat: true,
	ColumnInt:   true,
	ColumnBool:  true,
	ColumnStr:   true,
	ColumnJSON:  true,
}

// Column kinds describe the meaning of a column's values.
const (
	ColumnKindCount       = "count"
	ColumnKindPercent     = "percent"
	ColumnKindCategorical = "categorical"
	ColumnKindIdentifier  = "identifier"
	ColumnKindArea        = "area"
	ColumnKindOther       = "other"
)

var validColumnKinds = map[string]bool{
	ColumnKindCount:       true,
	ColumnKindPercent:     true,
	ColumnKindCategorical: true,
	ColumnKindIdentifier:  true,
	ColumnKindArea:        true,
	ColumnKindOther:       true,
}

// BlobRef is an opaque object-storage reference. The store keeps it
// verbatim inside payloads and never reads the referenced bytes.
type BlobRef struct {
	Locator     string `json:"locator"`
	ContentHash string `json:"content_hash"`
}

// LayerPayload is the revision payload for a geographic layer. The
// coordinate reference system is declared once and is immutable across the
// layer's history: downstream GeoSets copy it by value, so a CRS change
// would silently corrupt them.
type LayerPayload struct {
	CRS         string    `json:"crs"`
	Description string    `json:"description,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	Blobs       []BlobRef `json:"blobs,omitempty"`
}

// Validate checks structural invariants of the payload.
func (p LayerPayload) Validate() error {
	if p.CRS == "" {
		return fmt.Errorf("layer payload missing crs: %w", ErrIncompatibleSchema)
	}
	return nil
}

// LayerPin references an exact revision of a layer in the same namespace.
// Pins name committed, lower-numbered revisions only, which keeps the
// reference graph acyclic.
type LayerPin struct {
	Layer   string `json:"layer"`
	Version int64  `json:"version"`
}

// GeoSetPayload is the revision payload for a set of geometries: an
// ordered list of layer pins. Historical reads are fully reproducible
// because members pin exact versions, never "latest".
type GeoSetPayload struct {
	Members []LayerPin `json:"members"`
}

// Validate checks member pins for duplicates and version sanity.
func (p GeoSetPayload) Validate() error {
	seen := make(map[string]bool, len(p.Members))
	for _, m := range p.Members {
		if err := ValidatePath(m.Layer); err != nil {
			return fmt.Errorf("member %q: %w", m.Layer, err)
		}
		if m.Version < 1 {
			return fmt.Errorf("member %q pins version %d: %w", m.Layer, m.Version, ErrDanglingReference)
		}
		if seen[m.Layer] {
			return fmt.Errorf("member %q appears twice: %w", m.Layer, ErrCardinalityMismatch)
		}
		seen[m.Layer] = true
	}
	return nil
}

// Pin references an exact revision of a named resource whose kind is
// implied by context (the GeoSet pin of a column, the column pins of a
// view).
type Pin struct {
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

// ColumnPayload is the revision payload for an attribute column: typed
// values keyed by the member names of one pinned GeoSet revision.
type ColumnPayload struct {
	Kind   string                     `json:"kind"`
	Type   string                     `json:"type"`
	GeoSet Pin                        `json:"geoset"`
	Values map[string]json.RawMessage `json:"values"`
}

// Validate checks the declared kind and type and the GeoSet pin. Membership
// against the pinned GeoSet revision is checked by the catalog, which can
// read it.
func (p ColumnPayload) Validate() error {
	if !validColumnKinds[p.Kind] {
		return fmt.Errorf("column kind %q: %w", p.Kind, ErrIncompatibleSchema)
	}
	if !validColumnTypes[p.Type] {
		return fmt.Errorf("column type %q: %w", p.Type, ErrIncompatibleSchema)
	}
	if err := ValidatePath(p.GeoSet.Name); err != nil {
		return fmt.Errorf("geoset pin %q: %w", p.GeoSet.Name, err)
	}
	if p.GeoSet.Version < 1 {
		return fmt.Errorf("geoset pin %q version %d: %w", p.GeoSet.Name, p.GeoSet.Version, ErrDanglingReference)
	}
	for key, raw := range p.Values {
		if err := CheckColumnValue(p.Type, raw); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
	}
	return nil
}

// CheckColumnValue verifies that a raw JSON value matches the declared
// column type. JSON integers are silently accepted for float columns.
func CheckColumnValue(columnType string, raw json.RawMessage) error {
	switch columnType {
	case ColumnJSON:
		if !json.Valid(raw) {
			return fmt.Errorf("malformed json value: %w", ErrIncompatibleSchema)
		}
		return nil
	case ColumnFloat:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("expected number: %w", ErrIncompatibleSchema)
		}
		return nil
	case ColumnInt:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("expected integer: %w", ErrIncompatibleSchema)
		}
		return nil
	case ColumnBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("expected boolean: %w", ErrIncompatibleSchema)
		}
		return nil
	case ColumnStr:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("expected string: %w", ErrIncompatibleSchema)
		}
		return nil
	}
	return fmt.Errorf("column type %q: %w", columnType, ErrIncompatibleSchema)
}

// ViewPayload is the revision payload for a derived view: a declarative
// reference to one GeoSet revision plus the column revisions rendered over
// it. Every pin must name a committed revision.
type ViewPayload struct {
	GeoSet   Pin    `json:"geoset"`
	Columns  []Pin  `json:"columns"`
	Template string `json:"template,omitempty"`
}

// Validate checks pin shape; existence of the pinned revisions is checked
// by the catalog.
func (p ViewPayload) Validate() error {
	if err := ValidatePath(p.GeoSet.Name); err != nil {
		return fmt.Errorf("geoset pin %q: %w", p.GeoSet.Name, err)
	}
	if p.GeoSet.Version < 1 {
		return fmt.Errorf("geoset pin %q version %d: %w", p.GeoSet.Name, p.GeoSet.Version, ErrDanglingReference)
	}
	seen := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		if err := ValidatePath(c.Name); err != nil {
			return fmt.Errorf("column pin %q: %w", c.Name, err)
		}
		if c.Version < 1 {
			return fmt.Errorf("column pin %q version %d: %w", c.Name, c.Version, ErrDanglingReference)
		}
		if seen[c.Name] {
			return fmt.Errorf("column pin %q appears twice: %w", c.Name, ErrCardinalityMismatch)
		}
		seen[c.Name] = true
	}
	return nil
}

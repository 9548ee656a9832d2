// Package types defines the domain model for the atlasmeta metadata store:
// namespaces, principals, grants, versioned resources and their revisions,
// the kind-specific payload types, and the standard error values shared by
// the storage, catalog, and service layers.
package types

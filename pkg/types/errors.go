package types

import "errors"

// Domain errors. The service layer guarantees that every externally visible
// failure is one of these values (possibly wrapped); callers compare with
// errors.Is.
var (
	// ErrNotFound covers an absent namespace, resource, or version. It is
	// also returned for any operation against a private namespace the
	// caller has no grant on, so that the existence of such a namespace
	// cannot be probed.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned only when the namespace is known to be
	// visible to the caller but the held permission level is insufficient.
	ErrForbidden = errors.New("forbidden")

	ErrDuplicateNamespace = errors.New("namespace already exists")
	ErrNamespaceNotEmpty  = errors.New("namespace still owns resource history")

	ErrAlreadyExists = errors.New("resource already exists")

	// ErrVersionConflict means the resource's HEAD moved past the supplied
	// conflict token. Recoverable: re-read and retry with a fresh token.
	ErrVersionConflict = errors.New("version conflict")

	ErrIncompatibleSchema  = errors.New("incompatible schema")
	ErrCardinalityMismatch = errors.New("cardinality mismatch")
	ErrDanglingReference   = errors.New("dangling reference")

	ErrInvalidCredential = errors.New("invalid credential")

	// ErrUnavailable masks internal storage failures at the service
	// boundary; the underlying error is logged, never surfaced.
	ErrUnavailable = errors.New("storage unavailable")
)

// Validation and lifecycle errors.
var (
	ErrInvalidPath  = errors.New("invalid path")
	ErrInvalidKind  = errors.New("invalid resource kind")
	ErrInvalidLevel = errors.New("invalid permission level")

	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

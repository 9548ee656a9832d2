// Package sqlite implements the SQLite storage backend for atlasmeta: the
// namespace registry, the principal and grant stores, and the append-only
// revision ledger. Every operation is a transaction against the database;
// no component keeps shared mutable state across requests.
package sqlite

// Schema DDL. The schema is idempotent so that Attach can reopen an
// existing database.
const (
	createNamespaces = `CREATE TABLE IF NOT EXISTS namespaces (
    path TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    public INTEGER NOT NULL DEFAULT 0,
    owner_id TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createPrincipals = `CREATE TABLE IF NOT EXISTS principals (
    principal_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    key_digest BLOB NOT NULL UNIQUE,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);`

	// grants carries no foreign keys: principal existence is checked by
	// the service on grant, and namespace deletion clears grants in the
	// same transaction.
	createGrants = `CREATE TABLE IF NOT EXISTS grants (
    principal_id TEXT NOT NULL,
    namespace TEXT NOT NULL,
    level INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (principal_id, namespace)
);`

	// resources carries the HEAD pointer per resource so HEAD reads never
	// scan history. head_version advances only through the guarded update
	// in Ledger.append.
	createResources = `CREATE TABLE IF NOT EXISTS resources (
    namespace TEXT NOT NULL,
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    head_version INTEGER NOT NULL,
    PRIMARY KEY (namespace, kind, name)
);`

	// revisions is append-only. The primary key doubles as the uniqueness
	// guarantee that makes concurrent same-token appends lose cleanly.
	createRevisions = `CREATE TABLE IF NOT EXISTS revisions (
    namespace TEXT NOT NULL,
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    version INTEGER NOT NULL,
    parent INTEGER NOT NULL DEFAULT 0,
    author_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    tombstone INTEGER NOT NULL DEFAULT 0,
    payload BLOB,
    PRIMARY KEY (namespace, kind, name, version)
);`

	createRevisionsNamespaceIndex = `CREATE INDEX IF NOT EXISTS revisions_namespace
    ON revisions(namespace);`
)

// schemaStatements lists all DDL applied on Attach, in dependency order.
var schemaStatements = []string{
	createNamespaces,
	createPrincipals,
	createGrants,
	createResources,
	createRevisions,
	createRevisionsNamespaceIndex,
}

package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// databaseFile is the SQLite database file name inside Config.DataDir.
const databaseFile = "atlasmeta.db"

// Backend owns the SQLite database and hands out the store accessors.
// It is safe for concurrent use; all request state lives in the database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	namespaces *NamespaceStore
	principals *PrincipalStore
	grants     *GrantStore
	ledger     *Ledger
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (or creates) the database under config.DataDir, applies the
// schema, and initializes the store accessors.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dsn := "file:" + filepath.Join(dataDir, databaseFile) +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	b.namespaces = &NamespaceStore{backend: b}
	b.principals = &PrincipalStore{backend: b}
	b.grants = &GrantStore{backend: b}
	b.ledger = &Ledger{backend: b}
	return nil
}

// Detach closes the database. Subsequent store access returns ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	err := b.db.Close()
	b.db = nil
	b.attached = false
	return err
}

// Namespaces returns the namespace registry.
func (b *Backend) Namespaces() (*NamespaceStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.namespaces, nil
}

// Principals returns the principal store.
func (b *Backend) Principals() (*PrincipalStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.principals, nil
}

// Grants returns the grant store.
func (b *Backend) Grants() (*GrantStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.grants, nil
}

// Ledger returns the versioned resource ledger.
func (b *Backend) Ledger() (*Ledger, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.ledger, nil
}

// isConstraintViolation reports whether err is a SQLite uniqueness or
// primary-key constraint failure. The driver does not export a typed
// error for this, so the message is matched.
func isConstraintViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// setupBackend creates an attached Backend over a temp directory and
// registers a cleanup-deferred detach.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackendLifecycle(t *testing.T) {
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	_, err := b.Ledger()
	assert.ErrorIs(t, err, types.ErrDetached)

	require.NoError(t, b.Attach(config))
	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)

	_, err = b.Namespaces()
	assert.NoError(t, err)
	_, err = b.Principals()
	assert.NoError(t, err)
	_, err = b.Grants()
	assert.NoError(t, err)

	require.NoError(t, b.Detach())
	assert.ErrorIs(t, b.Detach(), types.ErrDetached)
	_, err = b.Grants()
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestBackendRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Backend: "postgres"})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestBackendPersistsAcrossReattach(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	namespaces, err := b.Namespaces()
	require.NoError(t, err)
	_, err = namespaces.Create(ctx, types.Namespace{Path: "census", OwnerID: "p1"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	t.Cleanup(func() { b2.Detach() })
	namespaces, err = b2.Namespaces()
	require.NoError(t, err)
	n, err := namespaces.Get(ctx, "census")
	require.NoError(t, err)
	assert.Equal(t, "p1", n.OwnerID)
}

package sqlite

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartolab/atlasmeta/pkg/types"
)

func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	b := setupBackend(t)
	ledger, err := b.Ledger()
	require.NoError(t, err)
	return ledger
}

func layerKey(name string) types.ResourceKey {
	return types.ResourceKey{Namespace: "census", Kind: types.KindLayer, Name: name}
}

func TestLedgerCreateRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	payload := []byte(`{"crs":"epsg:4326"}`)
	rev, err := ledger.Create(ctx, layerKey("blocks"), "author-1", payload)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev.Version)
	assert.Equal(t, int64(0), rev.Parent)

	got, err := ledger.Read(ctx, layerKey("blocks"), types.Head)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "author-1", got.AuthorID)
	assert.JSONEq(t, string(payload), string(got.Payload))
	assert.False(t, got.Tombstone)
}

func TestLedgerCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	_, err := ledger.Create(ctx, layerKey("blocks"), "author-1", []byte(`{}`))
	require.NoError(t, err)
	_, err = ledger.Create(ctx, layerKey("blocks"), "author-2", []byte(`{}`))
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
}

func TestLedgerCreateAfterTombstoneStillExists(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	_, err := ledger.Create(ctx, layerKey("blocks"), "author-1", []byte(`{}`))
	require.NoError(t, err)
	_, err = ledger.Tombstone(ctx, layerKey("blocks"), "author-1", 1)
	require.NoError(t, err)

	_, err = ledger.Create(ctx, layerKey("blocks"), "author-1", []byte(`{}`))
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
}

func TestLedgerAppendConflictSemantics(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	_, err := ledger.Create(ctx, layerKey("blocks"), "author-1", []byte(`{"v":1}`))
	require.NoError(t, err)

	rev, err := ledger.Append(ctx, layerKey("blocks"), "author-2", []byte(`{"v":2}`), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev.Version)
	assert.Equal(t, int64(1), rev.Parent)

	// Stale token: HEAD is 2 now.
	_, err = ledger.Append(ctx, layerKey("blocks"), "author-2", []byte(`{"v":3}`), 1)
	assert.ErrorIs(t, err, types.ErrVersionConflict)

	// Unknown resource.
	_, err = ledger.Append(ctx, layerKey("missing"), "author-2", []byte(`{}`), 1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLedgerConcurrentAppendsOneWinner(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	_, err := ledger.Create(ctx, layerKey("blocks"), "author-1", []byte(`{"v":1}`))
	require.NoError(t, err)
	for token := int64(1); token < 3; token++ {
		_, err = ledger.Append(ctx, layerKey("blocks"), "author-1", []byte(`{}`), token)
		require.NoError(t, err)
	}

	// Both writers observed HEAD version 3.
	const writers = 2
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = ledger.Append(ctx, layerKey("blocks"), "author-2", []byte(`{}`), 3)
		}()
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, types.ErrVersionConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	head, err := ledger.Read(ctx, layerKey("blocks"), types.Head)
	require.NoError(t, err)
	assert.Equal(t, int64(4), head.Version)
}

func TestLedgerReadVersions(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	_, err := ledger.Create(ctx, layerKey("blocks"), "a", []byte(`{"v":1}`))
	require.NoError(t, err)
	_, err = ledger.Append(ctx, layerKey("blocks"), "a", []byte(`{"v":2}`), 1)
	require.NoError(t, err)

	rev, err := ledger.Read(ctx, layerKey("blocks"), 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(rev.Payload))

	_, err = ledger.Read(ctx, layerKey("blocks"), 3)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = ledger.Read(ctx, layerKey("missing"), types.Head)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLedgerTombstoneVisibleAtHead(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	_, err := ledger.Create(ctx, layerKey("blocks"), "a", []byte(`{"v":1}`))
	require.NoError(t, err)
	dead, err := ledger.Tombstone(ctx, layerKey("blocks"), "b", 1)
	require.NoError(t, err)
	assert.True(t, dead.Tombstone)
	assert.Equal(t, int64(2), dead.Version)

	head, err := ledger.Read(ctx, layerKey("blocks"), types.Head)
	require.NoError(t, err)
	assert.True(t, head.Tombstone)
	assert.Empty(t, head.Payload)

	// History before the tombstone stays readable.
	rev, err := ledger.Read(ctx, layerKey("blocks"), 1)
	require.NoError(t, err)
	assert.False(t, rev.Tombstone)
}

func TestLedgerHistoryOrderAndBounds(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	_, err := ledger.Create(ctx, layerKey("blocks"), "a", []byte(`{"v":1}`))
	require.NoError(t, err)
	for token := int64(1); token < 5; token++ {
		_, err = ledger.Append(ctx, layerKey("blocks"), "a", []byte(`{}`), token)
		require.NoError(t, err)
	}

	collect := func(from, to int64) []int64 {
		var versions []int64
		for rev, err := range ledger.History(ctx, layerKey("blocks"), from, to) {
			require.NoError(t, err)
			versions = append(versions, rev.Version)
		}
		return versions
	}

	// Strictly increasing from 1 with no gaps.
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, collect(0, types.Head))
	assert.Equal(t, []int64{2, 3}, collect(2, 3))
	assert.Empty(t, collect(6, types.Head))

	// Restartable: a second range over the same sequence re-runs the scan.
	seq := ledger.History(ctx, layerKey("blocks"), 1, 2)
	first := 0
	for _, err := range seq {
		require.NoError(t, err)
		first++
	}
	second := 0
	for _, err := range seq {
		require.NoError(t, err)
		second++
	}
	assert.Equal(t, first, second)
}

func TestLedgerNamespaceEmpty(t *testing.T) {
	ctx := context.Background()
	ledger := setupLedger(t)

	empty, err := ledger.NamespaceEmpty(ctx, "census")
	require.NoError(t, err)
	assert.True(t, empty)

	_, err = ledger.Create(ctx, layerKey("blocks"), "a", []byte(`{}`))
	require.NoError(t, err)

	empty, err = ledger.NamespaceEmpty(ctx, "census")
	require.NoError(t, err)
	assert.False(t, empty)
}

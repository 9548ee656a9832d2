package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartolab/atlasmeta/pkg/types"
)

func TestLayerCreateAndGet(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)

	payload := types.LayerPayload{
		CRS:       "epsg:26918",
		SourceURL: "https://example.org/blocks.zip",
		Blobs:     []types.BlobRef{{Locator: "s3://geo/blocks", ContentHash: "abc123"}},
	}
	rev, err := cat.Layers().Create(ctx, testNS, "blocks", "author-1", payload)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev.Version)

	got, decoded, err := cat.Layers().Get(ctx, testNS, "blocks", types.Head)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, payload, decoded)
}

func TestLayerCreateRequiresCRS(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)

	_, err := cat.Layers().Create(ctx, testNS, "blocks", "author-1", types.LayerPayload{})
	assert.ErrorIs(t, err, types.ErrIncompatibleSchema)
}

func TestLayerCRSImmutable(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)

	_, err := cat.Layers().Create(ctx, testNS, "blocks", "author-1", types.LayerPayload{CRS: "epsg:4326"})
	require.NoError(t, err)

	// Same CRS: appends fine.
	rev, err := cat.Layers().Append(ctx, testNS, "blocks", "author-1",
		types.LayerPayload{CRS: "epsg:4326", Description: "updated"}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev.Version)

	// Changed CRS: rejected regardless of conflict token.
	_, err = cat.Layers().Append(ctx, testNS, "blocks", "author-1",
		types.LayerPayload{CRS: "epsg:3857"}, 2)
	assert.ErrorIs(t, err, types.ErrIncompatibleSchema)
}

func TestLayerTombstoneAndHistory(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)

	_, err := cat.Layers().Create(ctx, testNS, "blocks", "author-1", types.LayerPayload{CRS: "epsg:4326"})
	require.NoError(t, err)
	_, err = cat.Layers().Tombstone(ctx, testNS, "blocks", "author-2", 1)
	require.NoError(t, err)

	head, decoded, err := cat.Layers().Get(ctx, testNS, "blocks", types.Head)
	require.NoError(t, err)
	assert.True(t, head.Tombstone)
	assert.Zero(t, decoded)

	var versions []int64
	for rev, err := range cat.Layers().History(ctx, testNS, "blocks", 1, types.Head) {
		require.NoError(t, err)
		versions = append(versions, rev.Version)
	}
	assert.Equal(t, []int64{1, 2}, versions)
}

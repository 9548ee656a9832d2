package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartolab/atlasmeta/pkg/types"
)

func TestGeoSetCreateWithValidPins(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)
	seedGeoSet(t, ctx, cat, "precincts", "blocks", "tracts")

	rev, members, err := cat.GeoSets().Get(ctx, testNS, "precincts", types.Head)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev.Version)
	require.Len(t, members.Members, 2)
	assert.Equal(t, "blocks", members.Members[0].Layer)
}

func TestGeoSetRejectsDanglingPins(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)

	_, err := cat.Layers().Create(ctx, testNS, "blocks", "author-1", types.LayerPayload{CRS: "epsg:4326"})
	require.NoError(t, err)

	// Unknown layer.
	_, err = cat.GeoSets().Create(ctx, testNS, "precincts", "author-1", types.GeoSetPayload{
		Members: []types.LayerPin{{Layer: "missing", Version: 1}},
	})
	assert.ErrorIs(t, err, types.ErrDanglingReference)

	// Known layer, uncommitted version.
	_, err = cat.GeoSets().Create(ctx, testNS, "precincts", "author-1", types.GeoSetPayload{
		Members: []types.LayerPin{{Layer: "blocks", Version: 9}},
	})
	assert.ErrorIs(t, err, types.ErrDanglingReference)
}

func TestGeoSetRejectsTombstonePins(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)

	_, err := cat.Layers().Create(ctx, testNS, "blocks", "author-1", types.LayerPayload{CRS: "epsg:4326"})
	require.NoError(t, err)
	dead, err := cat.Layers().Tombstone(ctx, testNS, "blocks", "author-1", 1)
	require.NoError(t, err)

	_, err = cat.GeoSets().Create(ctx, testNS, "precincts", "author-1", types.GeoSetPayload{
		Members: []types.LayerPin{{Layer: "blocks", Version: dead.Version}},
	})
	assert.ErrorIs(t, err, types.ErrDanglingReference)

	// The pre-tombstone revision remains pinnable: pins are by version,
	// and committed history never disappears.
	_, err = cat.GeoSets().Create(ctx, testNS, "precincts", "author-1", types.GeoSetPayload{
		Members: []types.LayerPin{{Layer: "blocks", Version: 1}},
	})
	assert.NoError(t, err)
}

func TestGeoSetAppendRevalidatesPins(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)
	seedGeoSet(t, ctx, cat, "precincts", "blocks")

	_, err := cat.GeoSets().Append(ctx, testNS, "precincts", "author-2", types.GeoSetPayload{
		Members: []types.LayerPin{{Layer: "gone", Version: 1}},
	}, 1)
	assert.ErrorIs(t, err, types.ErrDanglingReference)
}

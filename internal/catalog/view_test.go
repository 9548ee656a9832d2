package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// seedColumn creates an int column over the given geoset revision 1.
func seedColumn(t *testing.T, ctx context.Context, cat *Catalog, colName, setName string, members ...string) {
	t.Helper()
	_, err := cat.Columns().Create(ctx, testNS, colName, "author-1", types.ColumnPayload{
		Kind:   types.ColumnKindCount,
		Type:   types.ColumnInt,
		GeoSet: types.Pin{Name: setName, Version: 1},
		Values: intValues(members...),
	})
	require.NoError(t, err)
}

func TestViewCreateWithValidPins(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)
	seedGeoSet(t, ctx, cat, "precincts", "blocks")
	seedColumn(t, ctx, cat, "population", "precincts", "blocks")

	rev, err := cat.Views().Create(ctx, testNS, "turnout-map", "author-1", types.ViewPayload{
		GeoSet:   types.Pin{Name: "precincts", Version: 1},
		Columns:  []types.Pin{{Name: "population", Version: 1}},
		Template: "choropleth",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev.Version)

	_, decoded, err := cat.Views().Get(ctx, testNS, "turnout-map", types.Head)
	require.NoError(t, err)
	assert.Equal(t, "choropleth", decoded.Template)
	require.Len(t, decoded.Columns, 1)
}

func TestViewRejectsDanglingPins(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)
	seedGeoSet(t, ctx, cat, "precincts", "blocks")
	seedColumn(t, ctx, cat, "population", "precincts", "blocks")

	// Unknown geoset.
	_, err := cat.Views().Create(ctx, testNS, "v", "author-1", types.ViewPayload{
		GeoSet:  types.Pin{Name: "missing", Version: 1},
		Columns: []types.Pin{{Name: "population", Version: 1}},
	})
	assert.ErrorIs(t, err, types.ErrDanglingReference)

	// Unknown column version.
	_, err = cat.Views().Create(ctx, testNS, "v", "author-1", types.ViewPayload{
		GeoSet:  types.Pin{Name: "precincts", Version: 1},
		Columns: []types.Pin{{Name: "population", Version: 7}},
	})
	assert.ErrorIs(t, err, types.ErrDanglingReference)
}

func TestViewPinsSurviveLaterTombstones(t *testing.T) {
	ctx := context.Background()
	cat := setupCatalog(t)
	seedGeoSet(t, ctx, cat, "precincts", "blocks")
	seedColumn(t, ctx, cat, "population", "precincts", "blocks")

	_, err := cat.Views().Create(ctx, testNS, "turnout-map", "author-1", types.ViewPayload{
		GeoSet:  types.Pin{Name: "precincts", Version: 1},
		Columns: []types.Pin{{Name: "population", Version: 1}},
	})
	require.NoError(t, err)

	// Tombstoning the column afterwards does not invalidate the committed
	// view revision; pins are by version and history is immutable.
	_, err = cat.Columns().Tombstone(ctx, testNS, "population", "author-1", 1)
	require.NoError(t, err)

	_, decoded, err := cat.Views().Get(ctx, testNS, "turnout-map", types.Head)
	require.NoError(t, err)
	assert.Equal(t, int64(1), decoded.Columns[0].Version)
}

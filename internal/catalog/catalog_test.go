package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cartolab/atlasmeta/internal/sqlite"
	"github.com/cartolab/atlasmeta/pkg/types"
)

const testNS = "census"

// setupCatalog creates a catalog over a fresh backend.
func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	b := sqlite.NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	ledger, err := b.Ledger()
	require.NoError(t, err)
	return New(ledger)
}

// seedGeoSet creates n layers and a geoset pinning revision 1 of each,
// returning the member names.
func seedGeoSet(t *testing.T, ctx context.Context, cat *Catalog, setName string, members ...string) {
	t.Helper()
	pins := make([]types.LayerPin, 0, len(members))
	for _, m := range members {
		_, err := cat.Layers().Create(ctx, testNS, m, "author-1", types.LayerPayload{CRS: "epsg:4326"})
		require.NoError(t, err)
		pins = append(pins, types.LayerPin{Layer: m, Version: 1})
	}
	_, err := cat.GeoSets().Create(ctx, testNS, setName, "author-1", types.GeoSetPayload{Members: pins})
	require.NoError(t, err)
}

// intValues builds a column value map with one integer per key.
func intValues(keys ...string) map[string]json.RawMessage {
	values := make(map[string]json.RawMessage, len(keys))
	for i, k := range keys {
		values[k] = json.RawMessage([]byte{byte('1' + i%9)})
	}
	return values
}

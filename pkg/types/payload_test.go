package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerPayloadValidate(t *testing.T) {
	assert.NoError(t, LayerPayload{CRS: "epsg:4326"}.Validate())
	assert.ErrorIs(t, LayerPayload{}.Validate(), ErrIncompatibleSchema)
}

func TestGeoSetPayloadValidate(t *testing.T) {
	ok := GeoSetPayload{Members: []LayerPin{
		{Layer: "blocks", Version: 1},
		{Layer: "tracts", Version: 3},
	}}
	assert.NoError(t, ok.Validate())

	dup := GeoSetPayload{Members: []LayerPin{
		{Layer: "blocks", Version: 1},
		{Layer: "blocks", Version: 2},
	}}
	assert.ErrorIs(t, dup.Validate(), ErrCardinalityMismatch)

	unpinned := GeoSetPayload{Members: []LayerPin{{Layer: "blocks", Version: 0}}}
	assert.ErrorIs(t, unpinned.Validate(), ErrDanglingReference)

	badName := GeoSetPayload{Members: []LayerPin{{Layer: "Blocks", Version: 1}}}
	assert.ErrorIs(t, badName.Validate(), ErrInvalidPath)
}

func TestCheckColumnValue(t *testing.T) {
	tests := []struct {
		name    string
		colType string
		raw     string
		wantErr bool
	}{
		{name: "float accepts float", colType: ColumnFloat, raw: "1.5"},
		{name: "float promotes int", colType: ColumnFloat, raw: "7"},
		{name: "float rejects string", colType: ColumnFloat, raw: `"7"`, wantErr: true},
		{name: "int accepts int", colType: ColumnInt, raw: "42"},
		{name: "int rejects float", colType: ColumnInt, raw: "1.5", wantErr: true},
		{name: "bool accepts bool", colType: ColumnBool, raw: "true"},
		{name: "bool rejects int", colType: ColumnBool, raw: "1", wantErr: true},
		{name: "str accepts string", colType: ColumnStr, raw: `"richmond"`},
		{name: "str rejects object", colType: ColumnStr, raw: `{}`, wantErr: true},
		{name: "json accepts object", colType: ColumnJSON, raw: `{"a":1}`},
		{name: "unknown type", colType: "decimal", raw: "1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckColumnValue(tt.colType, json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatibleSchema)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestColumnPayloadValidate(t *testing.T) {
	ok := ColumnPayload{
		Kind:   ColumnKindCount,
		Type:   ColumnInt,
		GeoSet: Pin{Name: "precincts", Version: 2},
		Values: map[string]json.RawMessage{"blocks": json.RawMessage("10")},
	}
	assert.NoError(t, ok.Validate())

	badKind := ok
	badKind.Kind = "tally"
	assert.ErrorIs(t, badKind.Validate(), ErrIncompatibleSchema)

	badPin := ok
	badPin.GeoSet = Pin{Name: "precincts", Version: 0}
	assert.ErrorIs(t, badPin.Validate(), ErrDanglingReference)

	badValue := ok
	badValue.Values = map[string]json.RawMessage{"blocks": json.RawMessage(`"ten"`)}
	assert.ErrorIs(t, badValue.Validate(), ErrIncompatibleSchema)
}

func TestViewPayloadValidate(t *testing.T) {
	ok := ViewPayload{
		GeoSet:  Pin{Name: "precincts", Version: 1},
		Columns: []Pin{{Name: "pop", Version: 1}, {Name: "area", Version: 4}},
	}
	assert.NoError(t, ok.Validate())

	dup := ok
	dup.Columns = []Pin{{Name: "pop", Version: 1}, {Name: "pop", Version: 2}}
	assert.ErrorIs(t, dup.Validate(), ErrCardinalityMismatch)

	unpinned := ok
	unpinned.GeoSet = Pin{Name: "precincts", Version: 0}
	assert.ErrorIs(t, unpinned.Validate(), ErrDanglingReference)
}

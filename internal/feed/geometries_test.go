package feed

import (
	"errors"
	"testing"

	"github.com/woozymasta/sheetmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGeometries(t *testing.T) {
	rows := mustParse(t, `name,description,include,geometry
Park,Green area,y,"[[[26.5,41.5],[26.6,41.5],[26.6,41.6],[26.5,41.5]]]"
Hidden,,n,"[1,2]"
Route,,Y,"{""type"":""LineString"",""coordinates"":[[1,2],[3,4]]}"
Set,,y,"{""type"":""FeatureCollection"",""features"":[{""type"":""Feature"",""properties"":{""x"":1},""geometry"":{""type"":""Point"",""coordinates"":[1,2]}},{""type"":""Feature"",""properties"":null,""geometry"":null}]}"
Bad,,y,[]
Empty,,y,
`)

	fc, errs := BuildGeometries(rows)
	require.Len(t, fc.Features, 4)

	types := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			types = append(types, "")
			continue
		}
		types = append(types, f.Geometry.Type)
	}
	assert.Equal(t, []string{geo.TypePolygon, geo.TypeLineString, geo.TypePoint, ""}, types)

	assert.Equal(t, map[string]any{"name": "Park", "description": "Green area"}, fc.Features[0].Properties)
	assert.Equal(t, map[string]any{"name": "Set", "description": ""}, fc.Features[2].Properties)
	assert.Equal(t, map[string]any{"name": "Set", "description": ""}, fc.Features[3].Properties)

	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], geo.ErrUnrecognizedShape)
	assert.ErrorIs(t, errs[1], errMissingGeometry)

	var rowErr *RowError
	require.True(t, errors.As(errs[0], &rowErr))
	assert.Equal(t, 6, rowErr.Line)
}

func TestBuildGeometries_NothingIncluded(t *testing.T) {
	rows := mustParse(t, "name,include,geometry\nA,,\"[1,2]\"\nB,no,\"[1,2]\"\n")

	fc, errs := BuildGeometries(rows)
	assert.Empty(t, errs)
	assert.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)
}

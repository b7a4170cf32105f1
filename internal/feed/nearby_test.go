package feed

import (
	"testing"

	"github.com/woozymasta/sheetmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearby(t *testing.T) {
	origin := geo.Coordinate{Lat: 41.5032, Lon: 26.5297}

	polygon, err := geo.Normalize([]byte(`[[[26.52,41.50],[26.53,41.50],[26.53,41.51],[26.52,41.50]]]`))
	require.NoError(t, err)

	features := []geo.Feature{
		geo.NewPoint(geo.Coordinate{Lat: 41.5100, Lon: 26.5300}, map[string]any{"name": "close"}),
		geo.NewPoint(geo.Coordinate{Lat: 40.8457, Lon: 25.8744}, map[string]any{"name": "far"}),
		polygon[0],
		geo.NewPoint(origin, map[string]any{"name": "here"}),
		geo.NewPoint(geo.Coordinate{Lat: 41.5033, Lon: 26.5298}, nil),
	}

	got := Nearby(features, origin, 1)
	require.Len(t, got, 3)

	assert.Equal(t, "here", got[0].Properties["name"])
	assert.Equal(t, 0.0, got[0].Properties[DistanceProperty])
	assert.Equal(t, 0.0, got[1].Properties[DistanceProperty])
	assert.Equal(t, "close", got[2].Properties["name"])
	assert.Equal(t, 0.8, got[2].Properties[DistanceProperty])

	assert.NotContains(t, features[0].Properties, DistanceProperty, "input must not be modified")
	assert.Nil(t, features[4].Properties)
}

func TestNearby_RadiusIsExclusive(t *testing.T) {
	origin := geo.Coordinate{Lat: 0, Lon: 0}
	target := geo.Coordinate{Lat: 0, Lon: 1}
	d := origin.DistanceKm(target)

	features := []geo.Feature{geo.NewPoint(target, nil)}

	assert.Empty(t, Nearby(features, origin, d))
	assert.Len(t, Nearby(features, origin, d+0.001), 1)
}

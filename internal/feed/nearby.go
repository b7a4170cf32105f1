package feed

import (
	"cmp"
	"maps"
	"math"
	"slices"

	"github.com/woozymasta/sheetmap/internal/geo"
)

// DistanceProperty is the property Nearby adds to every returned feature.
const DistanceProperty = "distance_km"

// Nearby returns copies of the point features strictly closer than radiusKm to origin,
// nearest first, each carrying its distance rounded to 0.1 km.
func Nearby(features []geo.Feature, origin geo.Coordinate, radiusKm float64) []geo.Feature {
	type hit struct {
		feature  geo.Feature
		distance float64
	}

	hits := make([]hit, 0)
	for _, f := range features {
		c, ok := f.PointCoordinate()
		if !ok {
			continue
		}

		d := origin.DistanceKm(c)
		if !(d < radiusKm) {
			continue
		}

		props := maps.Clone(f.Properties)
		if props == nil {
			props = make(map[string]any, 1)
		}
		props[DistanceProperty] = math.Round(d*10) / 10
		f.Properties = props

		hits = append(hits, hit{feature: f, distance: d})
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Compare(a.distance, b.distance)
	})

	out := make([]geo.Feature, len(hits))
	for i, h := range hits {
		out[i] = h.feature
	}

	return out
}

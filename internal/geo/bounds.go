package geo

import "github.com/paulmach/orb"

// Bounds returns the bounding box of every position found in the features.
// The second value is false when no position was found.
func Bounds(features []Feature) (orb.Bound, bool) {
	var (
		bound orb.Bound
		found bool
	)

	extend := func(p orb.Point) {
		if !found {
			bound = p.Bound()
			found = true
			return
		}
		bound = bound.Extend(p)
	}

	for _, f := range features {
		if f.Geometry != nil {
			walkGeometry(*f.Geometry, extend)
		}
	}

	return bound, found
}

func walkGeometry(g Geometry, fn func(orb.Point)) {
	walkPositions(g.Coordinates, fn)
	for _, child := range g.Geometries {
		walkGeometry(child, fn)
	}
}

// walkPositions calls fn for every [lon, lat, ...] leaf in an arbitrarily nested array.
func walkPositions(v any, fn func(orb.Point)) {
	switch node := v.(type) {
	case []float64:
		if len(node) >= 2 {
			fn(orb.Point{node[0], node[1]})
		}
	case []any:
		if len(node) >= 2 {
			lon, okLon := node[0].(float64)
			lat, okLat := node[1].(float64)
			if okLon && okLat {
				fn(orb.Point{lon, lat})
				return
			}
		}
		for _, child := range node {
			walkPositions(child, fn)
		}
	}
}

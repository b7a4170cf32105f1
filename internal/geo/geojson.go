// Package geo handles geographic data structures, distances and GeoJSON shape normalization.
package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GeoJSON type tags.
const (
	TypeFeatureCollection  = "FeatureCollection"
	TypeFeature            = "Feature"
	TypePoint              = "Point"
	TypeLineString         = "LineString"
	TypePolygon            = "Polygon"
	TypeMultiPolygon       = "MultiPolygon"
	TypeGeometryCollection = "GeometryCollection"
)

// FeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// NewFeatureCollection returns an empty collection that marshals as `"features": []`.
func NewFeatureCollection(capacity int) FeatureCollection {
	return FeatureCollection{Type: TypeFeatureCollection, Features: make([]Feature, 0, capacity)}
}

// Feature represents a single geographic feature with geometry and properties.
// Numeric ids decode as json.Number so they survive a round trip unchanged.
// Members outside the standard set are kept in Foreign and written back as is.
type Feature struct {
	ID         any                        `json:"id,omitempty" yaml:"id,omitempty"`
	Properties map[string]any             `json:"properties" yaml:"properties"`
	Geometry   *Geometry                  `json:"geometry" yaml:"geometry"`
	Foreign    map[string]json.RawMessage `json:"-" yaml:"-"`
	Type       string                     `json:"type" yaml:"type"`
	BBox       []float64                  `json:"bbox,omitempty" yaml:"bbox,omitempty"`
}

// Geometry represents the geometry of a feature (Point, Polygon, etc.).
// Coordinates keep whatever nesting the source had, positions are [Lon, Lat].
type Geometry struct {
	Coordinates any                        `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Foreign     map[string]json.RawMessage `json:"-" yaml:"-"`
	Type        string                     `json:"type" yaml:"type"`
	Geometries  []Geometry                 `json:"geometries,omitempty" yaml:"geometries,omitempty"`
	BBox        []float64                  `json:"bbox,omitempty" yaml:"bbox,omitempty"`
}

var (
	featureMembers  = []string{"type", "id", "properties", "geometry", "bbox"}
	geometryMembers = []string{"type", "coordinates", "geometries", "bbox"}
)

type featureAlias Feature

type geometryAlias Geometry

// UnmarshalJSON decodes a feature keeping its id literal and foreign members.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var wire struct {
		featureAlias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	id, err := decodeID(wire.ID)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	foreign, err := foreignMembers(data, featureMembers)
	if err != nil {
		return err
	}

	*f = Feature(wire.featureAlias)
	f.ID = id
	f.Foreign = foreign

	return nil
}

// MarshalJSON encodes the feature with its foreign members.
func (f Feature) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(featureAlias(f))
	if err != nil {
		return nil, err
	}

	return withForeign(data, f.Foreign)
}

// UnmarshalJSON decodes a geometry keeping its foreign members.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var wire geometryAlias
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	foreign, err := foreignMembers(data, geometryMembers)
	if err != nil {
		return err
	}

	*g = Geometry(wire)
	g.Foreign = foreign

	return nil
}

// MarshalJSON encodes the geometry with its foreign members.
func (g Geometry) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(geometryAlias(g))
	if err != nil {
		return nil, err
	}

	return withForeign(data, g.Foreign)
}

// decodeID keeps numbers as their literal text, ids above 2^53 included.
func decodeID(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var id any
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return n, nil
	}

	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, err
	}

	return id, nil
}

func foreignMembers(data []byte, known []string) (map[string]json.RawMessage, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}

	for _, name := range known {
		delete(members, name)
	}
	if len(members) == 0 {
		return nil, nil
	}

	return members, nil
}

// withForeign adds foreign members to an encoded object, standard members win on conflict.
func withForeign(data []byte, foreign map[string]json.RawMessage) ([]byte, error) {
	if len(foreign) == 0 {
		return data, nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}

	for name, value := range foreign {
		if _, ok := members[name]; !ok {
			members[name] = value
		}
	}

	return json.Marshal(members)
}

// NewPoint builds a Point feature at the given coordinate.
func NewPoint(c Coordinate, props map[string]any) Feature {
	return Feature{
		Type: TypeFeature,
		Geometry: &Geometry{
			Type:        TypePoint,
			Coordinates: []float64{c.Lon, c.Lat},
		},
		Properties: props,
	}
}

// PointCoordinate extracts the position of a Point feature.
// It returns false for any other geometry or malformed coordinates.
func (f Feature) PointCoordinate() (Coordinate, bool) {
	if f.Geometry == nil || f.Geometry.Type != TypePoint {
		return Coordinate{}, false
	}

	switch pos := f.Geometry.Coordinates.(type) {
	case []float64:
		if len(pos) >= 2 {
			return Coordinate{Lat: pos[1], Lon: pos[0]}, true
		}
	case []any:
		if len(pos) >= 2 {
			lon, okLon := pos[0].(float64)
			lat, okLat := pos[1].(float64)
			if okLon && okLat {
				return Coordinate{Lat: lat, Lon: lon}, true
			}
		}
	}

	return Coordinate{}, false
}

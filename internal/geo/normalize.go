package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrecognizedShape is returned when input is neither typed GeoJSON nor a coordinate array.
var ErrUnrecognizedShape = errors.New("unrecognized shape")

// Shape is one of the recognized inputs of Normalize:
// FeatureCollectionShape, FeatureShape, GeometryShape or CoordinatesShape.
type Shape interface {
	Features() []Feature
}

// FeatureCollectionShape is an input tagged "FeatureCollection".
type FeatureCollectionShape struct {
	Collection FeatureCollection
}

// Features returns the collection features unchanged.
func (s FeatureCollectionShape) Features() []Feature {
	return s.Collection.Features
}

// FeatureShape is an input tagged "Feature".
type FeatureShape struct {
	Feature Feature
}

// Features returns the feature as a single element sequence.
func (s FeatureShape) Features() []Feature {
	return []Feature{s.Feature}
}

// GeometryShape is any other tagged object, treated as a bare geometry.
type GeometryShape struct {
	Geometry Geometry
}

// Features wraps the geometry into a feature without properties.
func (s GeometryShape) Features() []Feature {
	g := s.Geometry
	return []Feature{{Type: TypeFeature, Geometry: &g}}
}

// CoordinatesShape is an untagged coordinate array with its measured nesting depth.
type CoordinatesShape struct {
	Coordinates []any
	Depth       int
}

// GeometryType infers the geometry type from nesting depth.
// Depth 1 is a Point, 2 a LineString, 3 a Polygon and anything deeper a MultiPolygon.
// MultiLineString nesting is indistinguishable from a Polygon and is reported as one.
func (s CoordinatesShape) GeometryType() string {
	switch {
	case s.Depth <= 1:
		return TypePoint
	case s.Depth == 2:
		return TypeLineString
	case s.Depth == 3:
		return TypePolygon
	default:
		return TypeMultiPolygon
	}
}

// Features wraps the coordinates into a feature with the inferred geometry type.
func (s CoordinatesShape) Features() []Feature {
	return []Feature{{
		Type: TypeFeature,
		Geometry: &Geometry{
			Type:        s.GeometryType(),
			Coordinates: s.Coordinates,
		},
	}}
}

// Normalize accepts any GeoJSON-ish document (FeatureCollection, Feature, bare geometry
// or raw coordinate array) and returns a uniform sequence of features.
func Normalize(data []byte) ([]Feature, error) {
	shape, err := ParseShape(data)
	if err != nil {
		return nil, err
	}

	return shape.Features(), nil
}

// ParseShape classifies data into one of the recognized shapes.
// Coordinate ranges and ring consistency are not validated.
func ParseShape(data []byte) (Shape, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnrecognizedShape)
	}

	switch data[0] {
	case '{':
		return parseTagged(data)
	case '[':
		return parseCoordinates(data)
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrUnrecognizedShape)
	}
}

func parseTagged(data []byte) (Shape, error) {
	var probe struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	// a type tag is a non-empty string, null and other values count as missing
	var tag string
	if err := json.Unmarshal(probe.Type, &tag); err != nil || tag == "" {
		return nil, fmt.Errorf("%w: object without type", ErrUnrecognizedShape)
	}

	switch tag {
	case TypeFeatureCollection:
		var fc FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: feature collection: %v", ErrUnrecognizedShape, err)
		}
		return FeatureCollectionShape{Collection: fc}, nil

	case TypeFeature:
		var f Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: feature: %v", ErrUnrecognizedShape, err)
		}
		return FeatureShape{Feature: f}, nil

	default:
		var g Geometry
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("%w: geometry: %v", ErrUnrecognizedShape, err)
		}
		return GeometryShape{Geometry: g}, nil
	}
}

func parseCoordinates(data []byte) (Shape, error) {
	var coords []any
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	depth, err := nestingDepth(coords)
	if err != nil {
		return nil, err
	}

	return CoordinatesShape{Coordinates: coords, Depth: depth}, nil
}

// nestingDepth follows the first element chain down to a number.
func nestingDepth(coords []any) (int, error) {
	var v any = coords
	depth := 0

	for {
		switch node := v.(type) {
		case float64:
			return depth, nil
		case []any:
			if len(node) == 0 {
				return 0, fmt.Errorf("%w: empty array at depth %d", ErrUnrecognizedShape, depth+1)
			}
			depth++
			v = node[0]
		default:
			return 0, fmt.Errorf("%w: unexpected %T at depth %d", ErrUnrecognizedShape, node, depth)
		}
	}
}

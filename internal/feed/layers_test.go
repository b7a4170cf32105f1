package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/sheetmap/internal/config"
	"github.com/woozymasta/sheetmap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPointsCSV = "name,lat,lon,description\nTown Hall,41.5032,26.5297,Main square\nBroken,x,y,\n"
	testGeomsCSV  = "name,description,include,geometry\nPark,Green,y,\"[[26.4,41.4],[26.6,41.6]]\"\n"
)

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/points.csv":
			_, _ = w.Write([]byte(testPointsCSV))
		case "/geoms.csv":
			_, _ = w.Write([]byte(testGeomsCSV))
		default:
			http.Error(w, "gone", http.StatusGone)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestLoad(t *testing.T) {
	srv := feedServer(t)

	layers, err := Load(context.Background(), srv.Client(), config.Feeds{
		Geometries: srv.URL + "/geoms.csv",
		Points:     srv.URL + "/points.csv",
	}, "blue")
	require.NoError(t, err)

	require.Len(t, layers.Points.Features, 1)
	require.Len(t, layers.Geometries.Features, 1)
	assert.Equal(t, geo.TypeLineString, layers.Geometries.Features[0].Geometry.Type)
	assert.False(t, layers.LoadedAt.IsZero())

	require.NotNil(t, layers.Bounds)
	assert.Equal(t, orb.Bound{Min: orb.Point{26.4, 41.4}, Max: orb.Point{26.6, 41.6}}, *layers.Bounds)
}

func TestLoad_MissingSource(t *testing.T) {
	srv := feedServer(t)

	layers, err := Load(context.Background(), srv.Client(), config.Feeds{
		Points: srv.URL + "/points.csv",
	}, "blue")
	require.NoError(t, err)

	assert.Empty(t, layers.Geometries.Features)
	assert.Equal(t, geo.TypeFeatureCollection, layers.Geometries.Type)
	assert.Len(t, layers.Points.Features, 1)
}

func TestLoad_FeedError(t *testing.T) {
	srv := feedServer(t)

	_, err := Load(context.Background(), srv.Client(), config.Feeds{
		Geometries: srv.URL + "/missing.csv",
		Points:     srv.URL + "/points.csv",
	}, "blue")
	assert.EqualError(t, err, "geometries feed: status 410")
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	layers := &Layers{
		Geometries: geo.NewFeatureCollection(0),
		Points: geo.FeatureCollection{
			Type:     geo.TypeFeatureCollection,
			Features: []geo.Feature{geo.NewPoint(geo.Coordinate{Lat: 1, Lon: 2}, map[string]any{"name": "A"})},
		},
	}

	require.NoError(t, Save(dir, layers, false))

	var fc geo.FeatureCollection
	data, err := os.ReadFile(filepath.Join(dir, PointsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, []any{2.0, 1.0}, fc.Features[0].Geometry.Coordinates)

	data, err = os.ReadFile(filepath.Join(dir, GeometriesFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))

	// existing files are kept without force
	layers.Points.Features = nil
	require.NoError(t, Save(dir, layers, false))
	data, err = os.ReadFile(filepath.Join(dir, PointsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"A"`)

	require.NoError(t, Save(dir, layers, true))
	data, err = os.ReadFile(filepath.Join(dir, PointsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":null}`, string(data))
}

type closeFailer struct {
	bytes.Buffer
	err error
}

func (c *closeFailer) Close() error {
	return c.err
}

func TestWriteGeoJSON_CloseError(t *testing.T) {
	errClose := errors.New("disk full")

	w := &closeFailer{err: errClose}
	err := writeGeoJSON(w, geo.NewFeatureCollection(0))
	assert.ErrorIs(t, err, errClose)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, w.String())

	w = &closeFailer{}
	assert.NoError(t, writeGeoJSON(w, geo.NewFeatureCollection(0)))
}

func TestSave_CreateError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, PointsFile), 0o755))

	err := Save(dir, &Layers{
		Geometries: geo.NewFeatureCollection(0),
		Points:     geo.NewFeatureCollection(0),
	}, true)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/woozymasta/sheetmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`feeds: {points: points.csv}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultCenter, *cfg.Center)
	assert.Equal(t, DefaultZoom, cfg.Zoom)
	assert.Equal(t, DefaultLocateMaxZoom, cfg.Locate.MaxZoom)
	assert.False(t, cfg.Locate.Disabled)
	assert.Equal(t, DefaultBasemapURL, cfg.Basemap.URL)
	assert.Equal(t, "abcd", cfg.Basemap.Subdomains)
	assert.Equal(t, 19, cfg.Basemap.MaxZoom)
	assert.Equal(t, Markers{Type: MarkerPin, Color: "blue", Radius: 100}, cfg.Markers)
	assert.Equal(t, Style{Color: "#2ca25f", FillColor: "#99d8c9", Weight: 2}, cfg.Style)
	assert.Equal(t, Style{Color: "green", FillColor: "#2ca25f", Weight: 3}, cfg.HoverStyle)
	assert.Equal(t, 1.0, cfg.Nearby.RadiusKm)
	assert.Equal(t, DefaultRefresh, cfg.Refresh)
	assert.Equal(t, "points.csv", cfg.Feeds.Points)
	assert.Empty(t, cfg.Feeds.Geometries)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
title: Thessaloniki
center: {lat: 40.6401, lon: 22.9444}
zoom: 12
locate: {disabled: true}
basemap:
  url: https://tile.openstreetmap.org/{z}/{x}/{y}.png
markers: {type: circle, radius: 250, color: red}
style: {color: "#000"}
nearby: {radius_km: 50}
refresh: 30s
`))
	require.NoError(t, err)

	assert.Equal(t, "Thessaloniki", cfg.Title)
	assert.Equal(t, geo.Coordinate{Lat: 40.6401, Lon: 22.9444}, *cfg.Center)
	assert.Equal(t, 12, cfg.Zoom)
	assert.True(t, cfg.Locate.Disabled)
	assert.Empty(t, cfg.Basemap.Subdomains)
	assert.Equal(t, Markers{Type: MarkerCircle, Color: "red", Radius: 250}, cfg.Markers)
	assert.Equal(t, Style{Color: "#000", FillColor: "#99d8c9", Weight: 2}, cfg.Style)
	assert.Equal(t, 50.0, cfg.Nearby.RadiusKm)
	assert.Equal(t, 30*time.Second, cfg.Refresh)
}

func TestParse_UnknownMarkerFallsBack(t *testing.T) {
	cfg, err := Parse([]byte(`markers: {type: star}`))
	require.NoError(t, err)
	assert.Equal(t, MarkerPin, cfg.Markers.Type)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"center out of range", `center: {lat: 95, lon: 0}`},
		{"zoom above basemap", `{zoom: 20, basemap: {max_zoom: 18}}`},
		{"malformed", `zoom: [1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zoom: 8\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Zoom)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Example(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	assert.False(t, cfg.Locate.Disabled)
	assert.Equal(t, 14, cfg.Locate.MaxZoom)
	assert.Equal(t, MarkerPin, cfg.Markers.Type)
	assert.NotEmpty(t, cfg.Feeds.Points)
}

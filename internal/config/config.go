// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/woozymasta/sheetmap/internal/geo"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Marker types understood by the page.
const (
	MarkerPin    = "marker"
	MarkerCircle = "circle"
	MarkerDot    = "circleMarker"
)

// Defaults: Orestiada centered, Carto Positron basemap.
const (
	DefaultZoom           = 10
	DefaultLocateMaxZoom  = 14
	DefaultBasemapURL     = "https://cartodb-basemaps-{s}.global.ssl.fastly.net/light_all/{z}/{x}/{y}{r}.png"
	DefaultBasemapDomains = "abcd"
	DefaultBasemapMaxZoom = 19
	DefaultBasemapCredit  = "&copy; <a href='http://www.openstreetmap.org/copyright'>OpenStreetMap</a> &copy; <a href='http://cartodb.com/attributions'>CartoDB</a>"
	DefaultMarkerRadius   = 100
	DefaultMarkerColor    = "blue"
	DefaultNearbyRadiusKm = 1.0
	DefaultRefresh        = 5 * time.Minute
)

// DefaultCenter is used when the configuration does not set one.
var DefaultCenter = geo.Coordinate{Lat: 41.5032, Lon: 26.5297}

// Config represents the root configuration file structure.
type Config struct {
	Center      *geo.Coordinate `yaml:"center,omitempty" json:"center"`
	Title       string          `yaml:"title,omitempty" json:"title,omitempty"`
	Attribution string          `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Feeds       Feeds           `yaml:"feeds" json:"-"`
	Basemap     Basemap         `yaml:"basemap" json:"basemap"`
	Markers     Markers         `yaml:"markers" json:"markers"`
	Style       Style           `yaml:"style" json:"style"`
	HoverStyle  Style           `yaml:"hover_style" json:"hover_style"`
	Locate      Locate          `yaml:"locate" json:"locate"`
	Nearby      Nearby          `yaml:"nearby" json:"nearby"`
	Zoom        int             `yaml:"zoom,omitempty" json:"zoom"`
	Refresh     time.Duration   `yaml:"refresh,omitempty" json:"-"` // negative disables periodic reload
}

// Feeds holds the CSV sources, each an http(s) URL or a local file path.
type Feeds struct {
	Geometries string `yaml:"geometries,omitempty"`
	Points     string `yaml:"points,omitempty"`
}

// Basemap describes the raster tile layer drawn under the data.
type Basemap struct {
	URL         string `yaml:"url,omitempty" json:"url"`
	Subdomains  string `yaml:"subdomains,omitempty" json:"subdomains,omitempty"`
	Attribution string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	MaxZoom     int    `yaml:"max_zoom,omitempty" json:"max_zoom"`
}

// Markers controls how point rows are drawn.
// Radius is in pixels for circleMarker and meters for circle, ignored for marker.
type Markers struct {
	Type   string  `yaml:"type,omitempty" json:"type"`
	Color  string  `yaml:"color,omitempty" json:"color"`
	Radius float64 `yaml:"radius,omitempty" json:"radius"`
}

// Style is a Leaflet path style for the geometry layer.
type Style struct {
	Color     string  `yaml:"color,omitempty" json:"color"`
	FillColor string  `yaml:"fill_color,omitempty" json:"fillColor"`
	Weight    float64 `yaml:"weight,omitempty" json:"weight"`
}

// Locate controls browser geolocation on page load.
type Locate struct {
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	MaxZoom  int  `yaml:"max_zoom,omitempty" json:"max_zoom"`
}

// Nearby controls the points-around-user query.
type Nearby struct {
	RadiusKm float64 `yaml:"radius_km,omitempty" json:"radius_km"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML configuration, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Center == nil {
		center := DefaultCenter
		c.Center = &center
	}
	if c.Zoom <= 0 {
		c.Zoom = DefaultZoom
	}
	if c.Locate.MaxZoom <= 0 {
		c.Locate.MaxZoom = DefaultLocateMaxZoom
	}

	if c.Basemap.URL == "" {
		c.Basemap.URL = DefaultBasemapURL
		if c.Basemap.Subdomains == "" {
			c.Basemap.Subdomains = DefaultBasemapDomains
		}
	}
	if c.Basemap.Attribution == "" {
		c.Basemap.Attribution = DefaultBasemapCredit
	}
	if c.Basemap.MaxZoom <= 0 {
		c.Basemap.MaxZoom = DefaultBasemapMaxZoom
	}

	switch c.Markers.Type {
	case MarkerPin, MarkerCircle, MarkerDot:
	case "":
		c.Markers.Type = MarkerPin
	default:
		log.Warn().
			Str("type", c.Markers.Type).
			Msg("Unknown marker type, falling back to marker")
		c.Markers.Type = MarkerPin
	}
	if c.Markers.Radius <= 0 {
		c.Markers.Radius = DefaultMarkerRadius
	}
	if c.Markers.Color == "" {
		c.Markers.Color = DefaultMarkerColor
	}

	c.Style = c.Style.withDefaults(Style{Color: "#2ca25f", FillColor: "#99d8c9", Weight: 2})
	c.HoverStyle = c.HoverStyle.withDefaults(Style{Color: "green", FillColor: "#2ca25f", Weight: 3})

	if c.Nearby.RadiusKm <= 0 {
		c.Nearby.RadiusKm = DefaultNearbyRadiusKm
	}
	if c.Refresh == 0 {
		c.Refresh = DefaultRefresh
	}
}

// Validate reports settings that cannot be repaired by defaults.
func (c *Config) Validate() error {
	if c.Center != nil && !c.Center.Valid() {
		return fmt.Errorf("center %v,%v out of range", c.Center.Lat, c.Center.Lon)
	}
	if c.Zoom > c.Basemap.MaxZoom {
		return fmt.Errorf("zoom %d exceeds basemap max_zoom %d", c.Zoom, c.Basemap.MaxZoom)
	}
	return nil
}

func (s Style) withDefaults(d Style) Style {
	if s.Color == "" {
		s.Color = d.Color
	}
	if s.FillColor == "" {
		s.FillColor = d.FillColor
	}
	if s.Weight <= 0 {
		s.Weight = d.Weight
	}

	return s
}

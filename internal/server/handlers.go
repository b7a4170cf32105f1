// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/sheetmap/internal/config"
	"github.com/woozymasta/sheetmap/internal/feed"
	"github.com/woozymasta/sheetmap/internal/geo"
)

const geoJSONType = "application/geo+json"

type settingsResponse struct {
	*config.Config
	LoadedAt *time.Time     `json:"loaded_at,omitempty"`
	Bounds   *[2][2]float64 `json:"bounds,omitempty"` // [[south, west], [north, east]]
}

type distanceResponse struct {
	DistanceKm float64 `json:"distance_km"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleSettings serves the client map settings.
func (s *ServerContext) HandleSettings(w http.ResponseWriter, r *http.Request) {
	resp := settingsResponse{Config: s.Config}

	if layers, _ := s.Layers(); layers != nil {
		resp.LoadedAt = &layers.LoadedAt
		if b := layers.Bounds; b != nil {
			resp.Bounds = &[2][2]float64{{b.Min.Lat(), b.Min.Lon()}, {b.Max.Lat(), b.Max.Lon()}}
		}
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, "application/json", resp)
}

// HandleGeometries serves the geometries layer.
func (s *ServerContext) HandleGeometries(w http.ResponseWriter, r *http.Request) {
	s.serveLayer(w, r, "g", func(l *feed.Layers) geo.FeatureCollection { return l.Geometries })
}

// HandlePoints serves the points layer.
func (s *ServerContext) HandlePoints(w http.ResponseWriter, r *http.Request) {
	s.serveLayer(w, r, "p", func(l *feed.Layers) geo.FeatureCollection { return l.Points })
}

func (s *ServerContext) serveLayer(
	w http.ResponseWriter,
	r *http.Request,
	suffix string,
	pick func(*feed.Layers) geo.FeatureCollection,
) {
	layers, etag := s.Layers()
	if layers == nil {
		writeError(w, http.StatusServiceUnavailable, "layers not loaded yet")
		return
	}

	// one snapshot serves both layers, keep their tags distinct
	etag = strings.TrimSuffix(etag, `"`) + "-" + suffix + `"`
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	writeJSON(w, http.StatusOK, geoJSONType, pick(layers))
}

// HandleNearby serves points closer than the radius to ?lat=&lon=, nearest first.
// The radius defaults to the configured one and can be overridden with ?radius= in km.
func (s *ServerContext) HandleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	origin, err := parseCoordinate(q.Get("lat"), q.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	radius := s.Config.Nearby.RadiusKm
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
			writeError(w, http.StatusBadRequest, "radius must be a positive number of kilometers")
			return
		}
	}

	layers, _ := s.Layers()
	if layers == nil {
		writeError(w, http.StatusServiceUnavailable, "layers not loaded yet")
		return
	}

	fc := geo.NewFeatureCollection(0)
	fc.Features = append(fc.Features, feed.Nearby(layers.Points.Features, origin, radius)...)

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, geoJSONType, fc)
}

// HandleDistance serves the great-circle distance between ?from=lat,lon and ?to=lat,lon.
func (s *ServerContext) HandleDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parsePair(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := parsePair(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, "application/json", distanceResponse{DistanceKm: from.DistanceKm(to)})
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	if match := r.Header.Get("If-None-Match"); match == s.indexETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", s.indexETag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

func parsePair(s string) (geo.Coordinate, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, errBadPair
	}

	return parseCoordinate(lat, lon)
}

func parseCoordinate(latRaw, lonRaw string) (geo.Coordinate, error) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if errLat != nil || errLon != nil {
		return geo.Coordinate{}, errBadCoordinate
	}

	c := geo.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return geo.Coordinate{}, errOutOfRange
	}

	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, "application/json", errorResponse{Error: msg})
}

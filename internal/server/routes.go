package server

import "net/http"

// Routes registers every handler and wraps the mux with request logging.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/settings", s.HandleSettings)
	mux.HandleFunc("GET /api/geometries.geojson", s.HandleGeometries)
	mux.HandleFunc("GET /api/points.geojson", s.HandlePoints)
	mux.HandleFunc("GET /api/nearby", s.HandleNearby)
	mux.HandleFunc("GET /api/distance", s.HandleDistance)
	mux.HandleFunc("GET /favicon.ico", s.HandleFavicon)
	mux.HandleFunc("GET /", s.HandleIndex)

	return RequestLogger(mux)
}

package server

import (
	"context"
	"fmt"
	"hash/crc32"
	"net/http"
	"sync"
	"time"

	"github.com/woozymasta/sheetmap/assets"
	"github.com/woozymasta/sheetmap/internal/config"
	"github.com/woozymasta/sheetmap/internal/feed"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Client    *http.Client
	IndexHTML []byte
	Favicon   []byte
	indexETag string

	layers *feed.Layers
	etag   string
	mu     sync.RWMutex
}

// NewServerContext initializes the context. Layers stay empty until Refresh succeeds.
func NewServerContext(cfg *config.Config, client *http.Client) *ServerContext {
	log.Info().
		Bool("points_feed", cfg.Feeds.Points != "").
		Bool("geometries_feed", cfg.Feeds.Geometries != "").
		Msg("Initializing server context")

	return &ServerContext{
		Config:    cfg,
		Client:    client,
		IndexHTML: assets.Index,
		Favicon:   assets.Favicon,
		indexETag: fmt.Sprintf(`"%08x"`, crc32.ChecksumIEEE(assets.Index)),
	}
}

// Layers returns the current snapshot and its ETag, nil before the first successful load.
func (s *ServerContext) Layers() (*feed.Layers, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.layers, s.etag
}

// SetLayers replaces the current snapshot.
func (s *ServerContext) SetLayers(layers *feed.Layers) {
	etag := fmt.Sprintf(`"%x"`, layers.LoadedAt.UnixNano())

	s.mu.Lock()
	s.layers = layers
	s.etag = etag
	s.mu.Unlock()
}

// Refresh fetches both feeds and swaps the snapshot. On failure the previous one is kept.
func (s *ServerContext) Refresh(ctx context.Context) error {
	layers, err := feed.Load(ctx, s.Client, s.Config.Feeds, s.Config.Markers.Color)
	if err != nil {
		return err
	}

	s.SetLayers(layers)
	return nil
}

// Run refreshes the layers on the configured interval until ctx is done.
func (s *ServerContext) Run(ctx context.Context) {
	if s.Config.Refresh <= 0 {
		log.Debug().Msg("Periodic refresh disabled")
		return
	}

	ticker := time.NewTicker(s.Config.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to refresh layers, keeping previous data")
			}
		}
	}
}

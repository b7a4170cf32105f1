package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/sheetmap/internal/config"
	"github.com/woozymasta/sheetmap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// File names written by Save.
const (
	GeometriesFile = "geometries.geojson"
	PointsFile     = "points.geojson"
)

// Layers is one consistent snapshot of both feeds.
type Layers struct {
	LoadedAt   time.Time
	Bounds     *orb.Bound
	Geometries geo.FeatureCollection
	Points     geo.FeatureCollection
}

// Load fetches and converts both feeds concurrently.
// A feed without a source yields an empty collection. Rejected rows are logged, not fatal.
func Load(ctx context.Context, client *http.Client, feeds config.Feeds, markerColor string) (*Layers, error) {
	layers := &Layers{
		Geometries: geo.NewFeatureCollection(0),
		Points:     geo.NewFeatureCollection(0),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := fetchFeed(gctx, client, "geometries", feeds.Geometries)
		if err != nil || rows == nil {
			return err
		}

		fc, errs := BuildGeometries(rows)
		logRowErrors("geometries", errs)
		layers.Geometries = fc
		return nil
	})

	g.Go(func() error {
		rows, err := fetchFeed(gctx, client, "points", feeds.Points)
		if err != nil || rows == nil {
			return err
		}

		fc, errs := BuildPoints(rows, markerColor)
		logRowErrors("points", errs)
		layers.Points = fc
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]geo.Feature, 0, len(layers.Geometries.Features)+len(layers.Points.Features))
	all = append(all, layers.Geometries.Features...)
	all = append(all, layers.Points.Features...)
	if bound, ok := geo.Bounds(all); ok {
		layers.Bounds = &bound
	}
	layers.LoadedAt = time.Now()

	log.Info().
		Int("geometries", len(layers.Geometries.Features)).
		Int("points", len(layers.Points.Features)).
		Msg("Layers loaded")

	return layers, nil
}

func fetchFeed(ctx context.Context, client *http.Client, name, source string) ([]Row, error) {
	if source == "" {
		log.Debug().Str("feed", name).Msg("Feed skipped: no source in config")
		return nil, nil
	}

	log.Debug().
		Str("feed", name).
		Str("source", source).
		Msg("Fetching feed")

	rows, err := Fetch(ctx, client, source)
	if err != nil {
		return nil, fmt.Errorf("%s feed: %w", name, err)
	}

	return rows, nil
}

func logRowErrors(name string, errs []error) {
	for _, err := range errs {
		log.Warn().Err(err).Str("feed", name).Msg("Row skipped")
	}
}

// Save writes both collections into dir. Existing files are kept unless force is set.
func Save(dir string, layers *Layers, force bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	files := []struct {
		name string
		fc   geo.FeatureCollection
	}{
		{GeometriesFile, layers.Geometries},
		{PointsFile, layers.Points},
	}

	for _, file := range files {
		path := filepath.Join(dir, file.name)

		if _, err := os.Stat(path); err == nil && !force {
			log.Debug().Str("path", path).Msg("GeoJSON file exists, skipping")
			continue
		}

		if err := saveGeoJSON(path, file.fc); err != nil {
			return err
		}
		log.Info().
			Str("path", path).
			Int("features", len(file.fc.Features)).
			Msg("GeoJSON written")
	}

	return nil
}

// saveGeoJSON marshals the feature collection and writes it to disk.
func saveGeoJSON(path string, fc geo.FeatureCollection) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := writeGeoJSON(f, fc); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// writeGeoJSON encodes fc into w and closes it.
// A close error is returned when encoding succeeded.
func writeGeoJSON(w io.WriteCloser, fc geo.FeatureCollection) (err error) {
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return json.NewEncoder(w).Encode(fc)
}

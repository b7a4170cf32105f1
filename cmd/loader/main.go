package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/sheetmap/internal/config"
	"github.com/woozymasta/sheetmap/internal/feed"
	"github.com/woozymasta/sheetmap/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"     env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Output     string        `short:"o" long:"out"        env:"OUTPUT_DIR"     description:"Directory for generated GeoJSON" default:"data"`
	Points     string        `short:"P" long:"points"     env:"POINTS_URL"     description:"Points CSV feed, overrides config"`
	Geometries string        `short:"G" long:"geometries" env:"GEOMETRIES_URL" description:"Geometries CSV feed, overrides config"`
	Timeout    time.Duration `short:"t" long:"timeout"    env:"FETCH_TIMEOUT"  description:"Feed download timeout" default:"15s"`
	Force      bool          `short:"f" long:"force"      description:"Force overwrite of existing files"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Points != "" {
		cfg.Feeds.Points = opts.Points
	}
	if opts.Geometries != "" {
		cfg.Feeds.Geometries = opts.Geometries
	}

	log.Info().
		Str("points", cfg.Feeds.Points).
		Str("geometries", cfg.Feeds.Geometries).
		Str("out", opts.Output).
		Msg("Starting loader")

	client := &http.Client{Timeout: opts.Timeout}

	layers, err := feed.Load(context.Background(), client, cfg.Feeds, cfg.Markers.Color)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load feeds")
	}

	if err := feed.Save(opts.Output, layers, opts.Force); err != nil {
		log.Fatal().Err(err).Msg("Failed to write GeoJSON")
	}

	log.Info().Msg("Loader finished successfully")
}

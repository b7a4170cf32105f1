package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/sheetmap/internal/config"
	"github.com/woozymasta/sheetmap/internal/logger"
	"github.com/woozymasta/sheetmap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"     env:"CONFIG_FILE"     description:"Path to configuration file" default:"config.yaml"`
	Addr       string        `short:"a" long:"addr"       env:"LISTEN_ADDRESS"  description:"Address to listen on"       default:"0.0.0.0"`
	Port       int           `short:"p" long:"port"       env:"LISTEN_PORT"     description:"Port to listen on"          default:"8080"`
	Points     string        `short:"P" long:"points"     env:"POINTS_URL"      description:"Points CSV feed, overrides config"`
	Geometries string        `short:"G" long:"geometries" env:"GEOMETRIES_URL"  description:"Geometries CSV feed, overrides config"`
	Refresh    time.Duration `short:"r" long:"refresh"    env:"REFRESH"         description:"Feed refresh interval, overrides config (negative disables)"`
	Timeout    time.Duration `short:"t" long:"timeout"    env:"FETCH_TIMEOUT"   description:"Feed download timeout"      default:"15s"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
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
	if opts.Refresh != 0 {
		cfg.Refresh = opts.Refresh
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCtx := server.NewServerContext(cfg, &http.Client{Timeout: opts.Timeout})

	if err := srvCtx.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("Initial feed load failed, serving without layers until next refresh")
	}
	go srvCtx.Run(ctx)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Dur("refresh", cfg.Refresh).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}

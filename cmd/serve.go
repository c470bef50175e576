package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecard/internal/badge"
	"github.com/desertthunder/tunecard/internal/repositories"
	"github.com/desertthunder/tunecard/internal/server"
	"github.com/desertthunder/tunecard/internal/shared"
	"github.com/desertthunder/tunecard/internal/spotify"
	"github.com/desertthunder/tunecard/internal/tokens"
	"github.com/urfave/cli/v3"
)

// Serve wires the badge service together and runs the HTTP server until
// interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	client, err := spotify.NewClient(spotify.ClientOpts{
		ClientID:     config.Credentials.Spotify.ClientID,
		ClientSecret: config.Credentials.Spotify.ClientSecret,
		RecentLimit:  config.Badge.RecentlyPlayed,
	})
	if err != nil {
		return err
	}

	manager := tokens.NewManager(tokens.ManagerOpts{
		Cache:     tokens.NewCache(),
		Store:     repositories.NewTokenRepository(db),
		Refresher: client,
		Logger:    r.logger,
	})

	selector := badge.NewSelector(badge.SelectorOpts{
		Tokens: manager,
		API:    client,
		Logger: r.logger,
	})

	images, err := badge.NewFetcher(badge.FetcherOpts{
		CacheSize: config.Badge.ImageCacheSize,
		RateLimit: config.Badge.ImageRateLimit,
	})
	if err != nil {
		return err
	}

	builder, err := badge.NewBuilder(badge.BuilderOpts{
		Images: images,
		Logger: r.logger,
	})
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(server.NewBadgeHandler(selector, builder, r.logger))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.NewServer(config.Server, router, r.logger).Start(ctx)
}

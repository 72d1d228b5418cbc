package main

import (
	"context"
	"database/sql"
	"errors"

	"speedrun-browser/internal/config"
	"speedrun-browser/internal/constants"
	"speedrun-browser/internal/domain"
	fxmodules "speedrun-browser/internal/fx"
	"speedrun-browser/internal/logger"
	"speedrun-browser/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// Thin startup wiring: construct the core, populate the game cache on
// first run and keep the settings-driven refresher alive. A UI layer would
// consume the same services and subscriptions.
func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(run),
	).Run()
}

func run(
	lc fx.Lifecycle,
	cfg *config.Config,
	db *sql.DB,
	games *service.GameService,
	refresher *service.Refresher,
	log zerolog.Logger,
) {
	log = logger.WithLevel(log, cfg.LogLevel)

	refresher.OnResult(func(res service.RefreshResult) {
		log.Info().
			Str("game", res.Game.Name).
			Int("categories", len(res.Game.Categories)).
			Int("runs", len(res.Runs)).
			Msg("view data refreshed")
	})
	refresher.OnError(func(settings domain.Settings, err error) {
		log.Error().Err(err).Str("game_id", settings.SelectedGameID).Msg("refresh failed")
	})

	bg, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(bg)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			g.Go(func() error {
				if err := games.CacheGamesIfNeeded(gctx, func(p service.CacheProgress) {
					log.Info().Msg(p.String())
				}); err != nil {
					log.Error().Err(err).Msg("game cache population failed")
					return err
				}
				return nil
			})
			g.Go(func() error {
				err := refresher.Run(gctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()

			ctx, stop := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer stop()
			done := make(chan error, 1)
			go func() { done <- g.Wait() }()
			select {
			case err := <-done:
				if err != nil {
					log.Warn().Err(err).Msg("background worker exited with error")
				}
			case <-ctx.Done():
				log.Warn().Msg("timed out waiting for background workers")
			}
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing local cache")
			}
			log.Info().Msg("stopped")
			return nil
		},
	})
}

package fx

import (
	"speedrun-browser/internal/api"
	"speedrun-browser/internal/config"
	"speedrun-browser/internal/database"
	"speedrun-browser/internal/logger"
	"speedrun-browser/internal/service"
	"speedrun-browser/internal/store"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(store.New),
	// api client
	fx.Provide(api.NewClient),
	// svc
	fx.Provide(service.NewGameService),
	fx.Provide(service.NewRunService),
	fx.Provide(service.NewRefresher),
)

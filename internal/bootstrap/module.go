package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"riskwatch/internal/bootstrap/config"
	"riskwatch/internal/bootstrap/database"
	"riskwatch/internal/bootstrap/logging"
	oracleinfra "riskwatch/internal/infrastructure/oracle"
	sqliterepo "riskwatch/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "riskwatch/internal/infrastructure/persistence/sqlite/uow"
	"riskwatch/internal/ports"
	"riskwatch/internal/usecase/observations"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideOracle),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewObservationRepository,
			fx.As(new(ports.ObservationRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(observations.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideOracle(ctx context.Context, cfg config.Config) ports.TextOracle {
	return oracleinfra.New(ctx, cfg.Oracle)
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

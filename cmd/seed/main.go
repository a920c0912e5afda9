// Command seed writes the default plan catalog. It is safe to run repeatedly:
// existing plans only get their prices corrected.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"subscribely/internal/config"
	"subscribely/internal/infra"
	"subscribely/internal/repositories"
	"subscribely/internal/services"
	"subscribely/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log := logger.New(cfg.AppEnv)

	err = run(cfg, log)
	_ = log.Sync()
	if err != nil {
		log.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if cfg.PostgresURL == "" {
		return errors.New("POSTGRES_URL is required")
	}

	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		return err
	}
	defer infra.ClosePostgresql(db, log)

	// seeding needs the tables regardless of DB_AUTO_MIGRATE
	if err := infra.Migrate(db); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	plans := services.NewPlanService(repositories.NewPlanRepository(db), log)
	results, err := plans.SeedPlans(ctx, services.DefaultPlans())
	if err != nil {
		return err
	}

	for _, r := range results {
		log.Info("plan seeded",
			zap.String("plan", r.Name),
			zap.Bool("created", r.Created),
			zap.Bool("updated", r.Updated))
	}
	return nil
}

package config_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"subscribely/internal/config"
	"subscribely/pkg/logger"
)

var Module = fx.Provide(provideConfig, provideLogger)

func provideConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideLogger(lc fx.Lifecycle, cfg config.Config) *zap.Logger {
	log := logger.New(cfg.AppEnv).With(zap.String("app", cfg.AppName))
	lc.Append(fx.StopHook(func() {
		_ = log.Sync()
	}))
	return log
}

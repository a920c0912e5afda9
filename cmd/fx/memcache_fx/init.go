package memcache_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"subscribely/internal/config"
	"subscribely/internal/infra"
	mem "subscribely/pkg/memcache"
)

var Module = fx.Provide(provideDeliveryStore)

// provideDeliveryStore shares webhook claims through redis when REDIS_URL is
// set and keeps them in process otherwise.
func provideDeliveryStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (mem.DeliveryStore, error) {
	if cfg.RedisURL == "" {
		log.Info("webhook delivery claims kept in memory")
		return mem.NewDeliveryClaims(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := infra.ConnectRedis(ctx, cfg.RedisURL, 3, time.Second)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(client.Close))

	log.Info("webhook delivery claims kept in redis")
	return mem.NewRedisDeliveryClaims(client), nil
}

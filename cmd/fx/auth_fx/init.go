package auth_fx

import (
	"go.uber.org/fx"
	"subscribely/internal/config"
	"subscribely/pkg/utils"
)

var Module = fx.Provide(provideAuthenticator)

func provideAuthenticator(cfg config.Config) utils.TokenAuthenticator {
	return utils.NewHMACTokenAuthenticator(cfg.JWTSecret)
}

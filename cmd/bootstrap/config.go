package bootstrap

import (
	"rayproxy/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.MpesaConfig { return cfg.Mpesa },
		func(cfg config.Config) config.AllocatorConfig { return cfg.Allocator },
	),
)

package components

import (
	"rayproxy/internal/infra/mpesa"
	"rayproxy/internal/usecase/shared"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			mpesa.NewClient,
			fx.As(new(shared.PaymentGateway)),
		),
	),
)

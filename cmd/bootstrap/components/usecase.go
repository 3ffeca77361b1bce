package components

import (
	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/usecase/commands"
	"rayproxy/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewOrderUseCase,
		commands.NewEmailOrderUseCase,
		commands.NewTopUpUseCase,
		commands.NewSettlementUseCase,
		commands.NewInventoryUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAvailabilityQueries,
		queries.NewPurchaseQueries,
		queries.NewOrderQueries,
		queries.NewUserQueries,
		queries.NewAdminQueries,
	),
)

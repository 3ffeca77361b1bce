package components

import (
	"rayproxy/internal/infra/readstore"
	"rayproxy/internal/infra/uow"
	"rayproxy/internal/usecase/queries"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	readstoreModule,
	repositoryModule,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewAvailabilityReadStore,
			fx.As(new(queries.AvailabilityReadStore)),
		),
		fx.Annotate(
			readstore.NewPurchaseReadStore,
			fx.As(new(queries.PurchaseReadStore)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			readstore.NewAdminReadStore,
			fx.As(new(queries.AdminReadStore)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// Write side goes through the unit of work; repositories are
		// constructed per transaction, not injected here.
		uow.NewPostgresUoW,
	),
)

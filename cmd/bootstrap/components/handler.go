package components

import (
	"rayproxy/internal/handler"
	"rayproxy/internal/handler/api"
	"rayproxy/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewOrderHandler,
		api.NewEmailOrderHandler,
		api.NewTopUpHandler,
		api.NewPaymentHandler,
		api.NewAvailabilityHandler,
		api.NewUserHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		newHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func newHandlers(
	auth *api.AuthHandler,
	order *api.OrderHandler,
	emailOrder *api.EmailOrderHandler,
	topUp *api.TopUpHandler,
	payment *api.PaymentHandler,
	availability *api.AvailabilityHandler,
	user *api.UserHandler,
	admin *api.AdminHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:         auth,
		Order:        order,
		EmailOrder:   emailOrder,
		TopUp:        topUp,
		Payment:      payment,
		Availability: availability,
		User:         user,
		Admin:        admin,
	}
}

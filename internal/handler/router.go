package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rayproxy/internal/domain/user"
	"rayproxy/internal/handler/api"
	"rayproxy/internal/handler/middleware"
	"rayproxy/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth         *api.AuthHandler
	Order        *api.OrderHandler
	EmailOrder   *api.EmailOrderHandler
	TopUp        *api.TopUpHandler
	Payment      *api.PaymentHandler
	Availability *api.AvailabilityHandler
	User         *api.UserHandler
	Admin        *api.AdminHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		// Public storefront
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/proxies/available", Handler: h.Availability.ListCountries},
			{Method: http.MethodGet, Path: "/proxies/available/:country", Handler: h.Availability.GetCountry},
			{Method: http.MethodGet, Path: "/emails/available", Handler: h.Availability.ListEmailDomains},
		})

		// Provider callback; rate limited, never authenticated.
		callbackLimiter := middleware.NewRateLimiter(60, time.Minute)
		apiGroup.POST("/payments/mpesa/callback", callbackLimiter.Middleware(), h.Payment.MpesaCallback)

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Order.Create},
				{Method: http.MethodGet, Path: "", Handler: h.Order.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Order.GetStatus},
			})
		}

		emailOrders := apiGroup.Group("/email-orders")
		emailOrders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(emailOrders, []route{
				{Method: http.MethodPost, Path: "", Handler: h.EmailOrder.Create},
				{Method: http.MethodGet, Path: "", Handler: h.EmailOrder.List},
			})
		}

		topups := apiGroup.Group("/topups")
		topups.Use(authMiddleware.RequireAuth())
		{
			addRoutes(topups, []route{
				{Method: http.MethodPost, Path: "", Handler: h.TopUp.Create},
				{Method: http.MethodGet, Path: "", Handler: h.TopUp.List},
			})
		}

		userGroup := apiGroup.Group("/user")
		userGroup.Use(authMiddleware.RequireAuth())
		{
			addRoutes(userGroup, []route{
				{Method: http.MethodGet, Path: "/purchases", Handler: h.User.ListProxies},
				{Method: http.MethodGet, Path: "/email-purchases", Handler: h.User.ListEmails},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/proxies", Handler: h.Admin.ListProxies},
				{Method: http.MethodPost, Path: "/proxies", Handler: h.Admin.CreateProxy},
				{Method: http.MethodPost, Path: "/proxies/bulk", Handler: h.Admin.BulkCreateProxies},
				{Method: http.MethodPatch, Path: "/proxies/:id", Handler: h.Admin.UpdateProxy},
				{Method: http.MethodDelete, Path: "/proxies/:id", Handler: h.Admin.DeleteProxy},

				{Method: http.MethodGet, Path: "/orders", Handler: h.Admin.ListOrders},
				{Method: http.MethodPatch, Path: "/orders/:id", Handler: h.Admin.UpdateOrderStatus},

				{Method: http.MethodGet, Path: "/emails", Handler: h.Admin.ListEmails},
				{Method: http.MethodPost, Path: "/emails/bulk", Handler: h.Admin.BulkCreateEmails},
				{Method: http.MethodDelete, Path: "/emails/:id", Handler: h.Admin.DeleteEmail},

				{Method: http.MethodGet, Path: "/email-domains", Handler: h.Admin.ListEmailDomains},
				{Method: http.MethodPost, Path: "/email-domains", Handler: h.Admin.CreateEmailDomain},
				{Method: http.MethodPatch, Path: "/email-domains/:id", Handler: h.Admin.UpdateEmailDomain},
				{Method: http.MethodDelete, Path: "/email-domains/:id", Handler: h.Admin.DeleteEmailDomain},

				{Method: http.MethodPost, Path: "/email-pricing", Handler: h.Admin.CreateEmailPricing},
				{Method: http.MethodPatch, Path: "/email-pricing/:id", Handler: h.Admin.UpdateEmailPricing},
				{Method: http.MethodDelete, Path: "/email-pricing/:id", Handler: h.Admin.DeleteEmailPricing},

				{Method: http.MethodGet, Path: "/pricing", Handler: h.Admin.ListPricing},
				{Method: http.MethodPost, Path: "/pricing", Handler: h.Admin.CreatePricing},
				{Method: http.MethodPatch, Path: "/pricing/:id", Handler: h.Admin.UpdatePricing},
				{Method: http.MethodDelete, Path: "/pricing/:id", Handler: h.Admin.DeletePricing},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

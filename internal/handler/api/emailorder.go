package api

import (
	"errors"
	"net/http"

	"rayproxy/internal/domain/user"
	reqdto "rayproxy/internal/handler/dto/request"
	resdto "rayproxy/internal/handler/dto/response"
	"rayproxy/internal/handler/middleware"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/commands"
	"rayproxy/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type EmailOrderHandler struct {
	emailOrderCommands commands.EmailOrderCommands
	orderQueries       queries.OrderQueries
}

func NewEmailOrderHandler(emailOrderCommands commands.EmailOrderCommands, orderQueries queries.OrderQueries) *EmailOrderHandler {
	return &EmailOrderHandler{
		emailOrderCommands: emailOrderCommands,
		orderQueries:       orderQueries,
	}
}

// @Summary Create email order
// @Description Buy a batch of email accounts; all-or-nothing on stock
// @Tags email-orders
// @Accept json
// @Produce json
// @Param request body reqdto.CreateEmailOrderRequest true "Email order request"
// @Success 201 {object} resdto.CreateEmailOrderResponse
// @Failure 409 {object} resdto.InsufficientStockResponse
// @Router /email-orders [post]
func (h *EmailOrderHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req reqdto.CreateEmailOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.emailOrderCommands.CreateEmailOrder(c.Request.Context(), userID, req)
	if err != nil {
		if stock, ok := errs.IsInsufficientStock(err); ok {
			c.JSON(http.StatusConflict, resdto.InsufficientStockResponse{
				Error:     "Not enough emails available",
				Requested: stock.Requested,
				Available: stock.Available,
			})
			return
		}
		switch {
		case errors.Is(err, errs.ErrEmailDomainNotFound), errors.Is(err, errs.ErrEmailPricingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Email domain not available"})
		case errors.Is(err, errs.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient balance"})
		case errors.Is(err, user.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		case errors.Is(err, errs.ErrPaymentInitiation):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment initiation failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	resp := resdto.CreateEmailOrderResponse{
		OrderID:           result.OrderID,
		Status:            result.Status,
		TotalPrice:        result.TotalPrice,
		CheckoutRequestID: result.CheckoutRequestID,
		PurchaseID:        result.PurchaseID,
	}
	if result.CheckoutRequestID != "" {
		resp.Message = "STK Push sent. Please check your phone."
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EmailOrderHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	views, err := h.orderQueries.ListEmailOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, views)
}

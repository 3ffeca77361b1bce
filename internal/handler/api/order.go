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
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderCommands commands.OrderCommands
	orderQueries  queries.OrderQueries
}

func NewOrderHandler(orderCommands commands.OrderCommands, orderQueries queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orderCommands: orderCommands,
		orderQueries:  orderQueries,
	}
}

// @Summary Create proxy order
// @Description Buy a proxy slot with balance or via M-Pesa STK push
// @Tags orders
// @Accept json
// @Produce json
// @Param request body reqdto.CreateProxyOrderRequest true "Order request"
// @Success 201 {object} resdto.CreateProxyOrderResponse
// @Failure 400 {object} map[string]string
// @Failure 402 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req reqdto.CreateProxyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.orderCommands.CreateProxyOrder(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrCountryNotAvailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "Country not available"})
		case errors.Is(err, errs.ErrNoProxyAvailable):
			c.JSON(http.StatusConflict, gin.H{"error": "No proxies available for this country"})
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

	resp := resdto.CreateProxyOrderResponse{
		OrderID:           result.OrderID,
		Status:            result.Status,
		Price:             result.Price,
		CheckoutRequestID: result.CheckoutRequestID,
		PurchaseID:        result.PurchaseID,
	}
	if result.CheckoutRequestID != "" {
		resp.Message = "STK Push sent. Please check your phone."
	}
	c.JSON(http.StatusCreated, resp)
}

// GetStatus backs the client's pending-payment polling loop.
func (h *OrderHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	view, err := h.orderQueries.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	views, err := h.orderQueries.ListOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, views)
}

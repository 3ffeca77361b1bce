package api

import (
	"errors"
	"net/http"

	"rayproxy/internal/domain/order"
	"rayproxy/internal/domain/user"
	reqdto "rayproxy/internal/handler/dto/request"
	resdto "rayproxy/internal/handler/dto/response"
	"rayproxy/internal/handler/middleware"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/commands"
	"rayproxy/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type TopUpHandler struct {
	topUpCommands commands.TopUpCommands
	orderQueries  queries.OrderQueries
}

func NewTopUpHandler(topUpCommands commands.TopUpCommands, orderQueries queries.OrderQueries) *TopUpHandler {
	return &TopUpHandler{
		topUpCommands: topUpCommands,
		orderQueries:  orderQueries,
	}
}

func (h *TopUpHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req reqdto.CreateTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.topUpCommands.CreateTopUp(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrTopUpBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Minimum top-up amount is KES 10"})
		case errors.Is(err, user.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		case errors.Is(err, errs.ErrPaymentInitiation):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment initiation failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.CreateTopUpResponse{
		TopUpID:           result.TopUpID,
		Amount:            result.Amount,
		CheckoutRequestID: result.CheckoutRequestID,
		Message:           "STK Push sent. Please check your phone.",
	})
}

func (h *TopUpHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	views, err := h.orderQueries.ListTopUpsByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, views)
}

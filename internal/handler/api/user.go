package api

import (
	"net/http"

	"rayproxy/internal/handler/middleware"
	"rayproxy/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	purchaseQueries queries.PurchaseQueries
}

func NewUserHandler(purchaseQueries queries.PurchaseQueries) *UserHandler {
	return &UserHandler{purchaseQueries: purchaseQueries}
}

// ListProxies returns the buyer's leases, active and expired.
func (h *UserHandler) ListProxies(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	view, err := h.purchaseQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) ListEmails(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	views, err := h.purchaseQueries.ListEmailPurchasesByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, views)
}

package api

import (
	"errors"
	"net/http"

	reqdto "rayproxy/internal/handler/dto/request"
	resdto "rayproxy/internal/handler/dto/response"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/commands"
	"rayproxy/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	inventoryCommands commands.InventoryCommands
	adminQueries      queries.AdminQueries
}

func NewAdminHandler(inventoryCommands commands.InventoryCommands, adminQueries queries.AdminQueries) *AdminHandler {
	return &AdminHandler{
		inventoryCommands: inventoryCommands,
		adminQueries:      adminQueries,
	}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminHandler) adminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrProxyNotFound),
		errors.Is(err, errs.ErrOrderNotFound),
		errors.Is(err, errs.ErrEmailNotFound),
		errors.Is(err, errs.ErrEmailDomainNotFound),
		errors.Is(err, errs.ErrEmailPricingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, errs.ErrInvalidOrderState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ListProxies sweeps expired stock first so the listing reflects reality.
func (h *AdminHandler) ListProxies(c *gin.Context) {
	if _, err := h.inventoryCommands.SweepExpired(c.Request.Context()); err != nil {
		h.adminError(c, err)
		return
	}
	views, err := h.adminQueries.ListProxies(c.Request.Context())
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) CreateProxy(c *gin.Context) {
	var req reqdto.CreateProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	id, err := h.inventoryCommands.CreateProxy(c.Request.Context(), req)
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

func (h *AdminHandler) BulkCreateProxies(c *gin.Context) {
	var req reqdto.BulkCreateProxiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	created, err := h.inventoryCommands.BulkCreateProxies(c.Request.Context(), req)
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.BulkCreatedResponse{Requested: len(req.Proxies), Created: created})
}

func (h *AdminHandler) UpdateProxy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.inventoryCommands.UpdateProxy(c.Request.Context(), id, req); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteProxy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventoryCommands.DeleteProxy(c.Request.Context(), id); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	views, err := h.adminQueries.ListOrders(c.Request.Context())
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.inventoryCommands.UpdateOrderStatus(c.Request.Context(), id, req); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListEmails(c *gin.Context) {
	var domainID *uuid.UUID
	if raw := c.Query("domain_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
			return
		}
		domainID = &id
	}
	views, err := h.adminQueries.ListEmails(c.Request.Context(), domainID)
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) BulkCreateEmails(c *gin.Context) {
	var req reqdto.BulkCreateEmailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	created, err := h.inventoryCommands.BulkCreateEmails(c.Request.Context(), req)
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.BulkCreatedResponse{Requested: len(req.Emails), Created: created})
}

func (h *AdminHandler) DeleteEmail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventoryCommands.DeleteEmail(c.Request.Context(), id); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListEmailDomains(c *gin.Context) {
	views, err := h.adminQueries.ListEmailDomains(c.Request.Context())
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) CreateEmailDomain(c *gin.Context) {
	var req reqdto.CreateEmailDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	id, err := h.inventoryCommands.CreateEmailDomain(c.Request.Context(), req)
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

func (h *AdminHandler) UpdateEmailDomain(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateEmailDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.inventoryCommands.UpdateEmailDomain(c.Request.Context(), id, req); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteEmailDomain(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventoryCommands.DeleteEmailDomain(c.Request.Context(), id); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) CreateEmailPricing(c *gin.Context) {
	var req reqdto.CreateEmailPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	id, err := h.inventoryCommands.CreateEmailPricing(c.Request.Context(), req)
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

func (h *AdminHandler) UpdateEmailPricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateEmailPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.inventoryCommands.UpdateEmailPricing(c.Request.Context(), id, req); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteEmailPricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventoryCommands.DeleteEmailPricing(c.Request.Context(), id); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListPricing(c *gin.Context) {
	views, err := h.adminQueries.ListPricing(c.Request.Context())
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) CreatePricing(c *gin.Context) {
	var req reqdto.CreatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	id, err := h.inventoryCommands.CreatePricing(c.Request.Context(), req)
	if err != nil {
		h.adminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreatedResponse{ID: id})
}

func (h *AdminHandler) UpdatePricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reqdto.UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.inventoryCommands.UpdatePricing(c.Request.Context(), id, req); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeletePricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventoryCommands.DeletePricing(c.Request.Context(), id); err != nil {
		h.adminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

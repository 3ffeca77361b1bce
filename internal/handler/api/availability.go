package api

import (
	"errors"
	"net/http"

	"rayproxy/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityQueries queries.AvailabilityQueries
}

func NewAvailabilityHandler(availabilityQueries queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityQueries: availabilityQueries}
}

// @Summary List proxy availability per country
// @Tags availability
// @Produce json
// @Success 200 {array} queries.CountryAvailabilityView
// @Router /proxies/available [get]
func (h *AvailabilityHandler) ListCountries(c *gin.Context) {
	views, err := h.availabilityQueries.ListCountries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AvailabilityHandler) GetCountry(c *gin.Context) {
	view, err := h.availabilityQueries.GetCountry(c.Request.Context(), c.Param("country"))
	if err != nil {
		if errors.Is(err, queries.ErrCountryNotOnSale) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Country not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AvailabilityHandler) ListEmailDomains(c *gin.Context) {
	views, err := h.availabilityQueries.ListEmailDomains(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, views)
}

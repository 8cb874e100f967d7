package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elakbay/elakbay/internal/catalog"
	"github.com/elakbay/elakbay/internal/dto"
	"github.com/elakbay/elakbay/internal/session"
)

// CatalogHandler serves destination and product listings and the
// authenticated content actions on them
type CatalogHandler struct {
	catalog     *catalog.Service
	coordinator *session.Coordinator
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *catalog.Service, coordinator *session.Coordinator) *CatalogHandler {
	return &CatalogHandler{
		catalog:     catalog,
		coordinator: coordinator,
	}
}

// ListDestinations returns all destinations, newest first
func (h *CatalogHandler) ListDestinations(c *gin.Context) {
	items, err := h.catalog.ListDestinations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, items)
}

// ListProducts returns all products, newest first
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	items, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, items)
}

// ListMunicipalities returns the municipality profiles, newest first
func (h *CatalogHandler) ListMunicipalities(c *gin.Context) {
	items, err := h.catalog.ListMunicipalities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, items)
}

// CreateDestination inserts a destination owned by the signed-in user
func (h *CatalogHandler) CreateDestination(c *gin.Context) {
	h.createItem(c, h.catalog.CreateDestination)
}

// CreateProduct inserts a product owned by the signed-in user
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	h.createItem(c, h.catalog.CreateProduct)
}

// RateDestination records the signed-in user's rating of a destination
func (h *CatalogHandler) RateDestination(c *gin.Context) {
	h.rateItem(c, h.catalog.SubmitDestinationRating)
}

// RateProduct records the signed-in user's rating of a product
func (h *CatalogHandler) RateProduct(c *gin.Context) {
	h.rateItem(c, h.catalog.SubmitProductRating)
}

func (h *CatalogHandler) createItem(c *gin.Context, create func(context.Context, catalog.CreateItemInput) error) {
	user := h.coordinator.CurrentUser()
	if user == nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Sign in to upload content.",
		})
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	input := catalog.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURLs:   req.ImageURLs,
		UserID:      user.ID,
	}
	if err := create(c.Request.Context(), input); err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{Message: "Created."})
}

func (h *CatalogHandler) rateItem(c *gin.Context, submit func(ctx context.Context, targetID, userID string, value float64) error) {
	user := h.coordinator.CurrentUser()
	if user == nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Sign in to rate.",
		})
		return
	}

	var req dto.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if err := submit(c.Request.Context(), c.Param("id"), user.ID, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Rating saved."})
}

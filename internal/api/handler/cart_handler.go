package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/api/middleware"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	cartService service.ICartService
	logger      *zap.Logger
}

func NewCartHandler(cartService service.ICartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	summary, err := h.cartService.GetCart(c.Request.Context(), middleware.AuthUserID(c))
	if err != nil {
		h.logger.Error("Failed to get cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	c.JSON(http.StatusOK, dto.ConvertCartToResponse(summary))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	summary, err := h.cartService.AddItem(c.Request.Context(), middleware.AuthUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, service.ErrProductNotAvailable):
			c.JSON(http.StatusConflict, gin.H{"error": "product is not available"})
		default:
			h.logger.Error("Failed to add cart item", zap.Uint("product_id", req.ProductID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add cart item"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ConvertCartToResponse(summary))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, err := parseUintParam(c, "product_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	summary, err := h.cartService.UpdateItem(c.Request.Context(), middleware.AuthUserID(c), productID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("Failed to update cart item", zap.Uint("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart item"})
		return
	}

	c.JSON(http.StatusOK, dto.ConvertCartToResponse(summary))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := parseUintParam(c, "product_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), middleware.AuthUserID(c), productID); err != nil {
		h.logger.Error("Failed to remove cart item", zap.Uint("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove cart item"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), middleware.AuthUserID(c)); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}

	c.Status(http.StatusNoContent)
}

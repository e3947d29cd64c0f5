package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/api/middleware"
	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/gateway"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	checkoutService service.ICheckoutService
	orderService    service.IOrderService
	paymentService  service.IPaymentService
	logger          *zap.Logger
}

func NewOrderHandler(
	checkoutService service.ICheckoutService,
	orderService service.IOrderService,
	paymentService service.IPaymentService,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		paymentService:  paymentService,
		logger:          logger,
	}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	userID := middleware.AuthUserID(c)
	result, err := h.checkoutService.Checkout(c.Request.Context(), userID, service.ShippingDetails{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Notes:    req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		case errors.Is(err, service.ErrInvalidShipping):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipping details"})
		case errors.Is(err, service.ErrUserNotExist):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment service is currently unavailable. Please try again later."})
		default:
			h.logger.Error("Checkout failed", zap.Uint("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ConvertCheckoutResultToResponse(result))
}

// Callback 用戶付款後從hosted payment page跳轉回來的落地點
func (h *OrderHandler) Callback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference is required"})
		return
	}

	payment, err := h.paymentService.ConfirmByCallback(c.Request.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment verification is currently unavailable. Please try again later."})
		default:
			h.logger.Error("Payment callback failed", zap.String("reference", reference), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, convertPaymentToResponse(payment))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), middleware.AuthUserID(c), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotExist):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this order"})
		default:
			h.logger.Error("Failed to get order", zap.String("order_id", orderID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), middleware.AuthUserID(c))
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) ListSoldItems(c *gin.Context) {
	items, err := h.orderService.ListSoldItems(c.Request.Context(), middleware.AuthUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUserNotExist):
			c.JSON(http.StatusForbidden, gin.H{"error": "only sellers can view sold items"})
		default:
			h.logger.Error("Failed to list sold items", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sold items"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func convertPaymentToResponse(payment *model.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		Reference: payment.Reference,
		OrderID:   payment.OrderID.String(),
		Status:    string(payment.Status),
		Amount:    payment.Amount.StringFixed(2),
		Currency:  payment.Currency,
	}
	if payment.PaidAt != nil {
		resp.PaidAt = payment.PaidAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

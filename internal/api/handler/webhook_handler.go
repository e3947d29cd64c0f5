package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/api/middleware"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/gateway"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	paymentService service.IPaymentService
	gateway        gateway.IPaymentGateway
	logger         *zap.Logger
}

func NewWebhookHandler(paymentService service.IPaymentService, paymentGateway gateway.IPaymentGateway, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		gateway:        paymentGateway,
		logger:         logger,
	}
}

// HandlePaystack 簽名驗證必須用原始body, 先讀再解析
// 驗不過直接401, 不做任何狀態變更
func (h *WebhookHandler) HandlePaystack(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	signature := c.GetHeader(gateway.SignatureHeader)
	if !h.gateway.VerifyWebhookSignature(body, signature) {
		h.logger.Warn("Webhook signature verification failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event gateway.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.paymentService.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		// 回500讓gateway重送
		h.logger.Error("Failed to handle webhook event",
			zap.String("event", event.Event),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.String(http.StatusOK, "OK")
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/gateway"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"go.uber.org/zap"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

type IPaymentService interface {
	ConfirmByCallback(ctx context.Context, reference string) (*model.Payment, error)
	HandleWebhookEvent(ctx context.Context, event gateway.WebhookEvent) error
	GetPaymentByReference(ctx context.Context, reference string) (*model.Payment, error)
}

// PaymentService webhook push與callback pull兩條路都走這裡
// 狀態轉移靠repo層的CAS, 重複通知天然冪等
type PaymentService struct {
	paymentRepo db.IPaymentRepository
	orderRepo   db.IOrderRepository
	gateway     gateway.IPaymentGateway
	events      producer.IOrderEventProducer
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo db.IPaymentRepository,
	orderRepo db.IOrderRepository,
	paymentGateway gateway.IPaymentGateway,
	events producer.IOrderEventProducer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		gateway:     paymentGateway,
		events:      events,
		logger:      logger,
	}
}

func (s *PaymentService) GetPaymentByReference(ctx context.Context, reference string) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetPaymentByReference(ctx, reference)
	if errors.Is(err, db.ErrPaymentNotFound) {
		return nil, ErrPaymentNotFound
	}
	return payment, err
}

// ConfirmByCallback 用戶從hosted payment page跳轉回來
// 不信任redirect本身, 主動跟gateway verify一次
func (s *PaymentService) ConfirmByCallback(ctx context.Context, reference string) (*model.Payment, error) {
	payment, err := s.GetPaymentByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	data, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	if data.IsSuccess() {
		if err := s.applySuccess(ctx, payment, data.GatewayRef, data.Raw); err != nil {
			return nil, err
		}
	} else {
		if err := s.applyFailure(ctx, payment, data.Raw); err != nil {
			return nil, err
		}
	}

	return s.GetPaymentByReference(ctx, reference)
}

// HandleWebhookEvent 已驗過簽名的入站通知
// 未知reference直接略過, gateway可能送來不相關的事件
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, event gateway.WebhookEvent) error {
	if event.Event != gateway.EventChargeSuccess {
		s.logger.Info("Ignoring webhook event", zap.String("event", event.Event))
		return nil
	}

	var charge gateway.ChargeData
	if err := json.Unmarshal(event.Data, &charge); err != nil {
		return err
	}
	if charge.Reference == "" {
		return nil
	}

	payment, err := s.GetPaymentByReference(ctx, charge.Reference)
	if errors.Is(err, ErrPaymentNotFound) {
		s.logger.Info("Webhook for unknown reference, ignoring",
			zap.String("reference", charge.Reference))
		return nil
	}
	if err != nil {
		return err
	}

	return s.applySuccess(ctx, payment, charge.Reference, event.Data)
}

func (s *PaymentService) applySuccess(ctx context.Context, payment *model.Payment, gatewayRef string, raw json.RawMessage) error {
	applied, err := s.paymentRepo.ConfirmPaymentSuccess(ctx, payment.Reference, gatewayRef, raw, time.Now().UTC())
	if err != nil {
		return err
	}
	if !applied {
		// 另一條路已經處理過了
		s.logger.Info("Payment already confirmed, skipping",
			zap.String("reference", payment.Reference))
		return nil
	}

	order, err := s.orderRepo.GetOrderByID(ctx, payment.OrderID)
	if err != nil {
		s.logger.Error("Failed to load order after payment confirmation",
			zap.String("order_id", payment.OrderID.String()),
			zap.Error(err))
		return nil
	}

	if err := s.events.PublishPaymentSucceeded(ctx, order.OrderID.String(), order.CustomerID, payment.Reference, payment.Amount); err != nil {
		s.logger.Error("Failed to publish payment succeeded event",
			zap.String("reference", payment.Reference),
			zap.Error(err))
	}

	s.logger.Info("Payment confirmed",
		zap.String("reference", payment.Reference),
		zap.String("order_id", payment.OrderID.String()))
	return nil
}

func (s *PaymentService) applyFailure(ctx context.Context, payment *model.Payment, raw json.RawMessage) error {
	applied, err := s.paymentRepo.ConfirmPaymentFailure(ctx, payment.Reference, raw)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	var customerID uint
	if order, err := s.orderRepo.GetOrderByID(ctx, payment.OrderID); err == nil {
		customerID = order.CustomerID
	}
	if err := s.events.PublishPaymentFailed(ctx, payment.OrderID.String(), customerID, payment.Reference); err != nil {
		s.logger.Error("Failed to publish payment failed event",
			zap.String("reference", payment.Reference),
			zap.Error(err))
	}

	s.logger.Info("Payment marked failed",
		zap.String("reference", payment.Reference),
		zap.String("order_id", payment.OrderID.String()))
	return nil
}

var _ IPaymentService = (*PaymentService)(nil)

package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/gateway"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/marketplace/internal/pkg/util"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrInvalidShipping = errors.New("invalid shipping details")
	ErrUserNotExist    = errors.New("user is not exist")
)

// ShippingDetails 結帳時收的配送資訊
type ShippingDetails struct {
	FullName string
	Phone    string
	Address  string
	Notes    string
}

func (d *ShippingDetails) validate() error {
	if d.FullName == "" || d.Phone == "" || d.Address == "" {
		return ErrInvalidShipping
	}
	return nil
}

// CheckoutResult 結帳成功後回給caller, 由上層redirect到AuthorizationURL
type CheckoutResult struct {
	Order            *model.Order
	Payment          *model.Payment
	AuthorizationURL string
}

type ICheckoutService interface {
	Checkout(ctx context.Context, userID uint, shipping ShippingDetails) (*CheckoutResult, error)
}

// CheckoutService 整個結帳流程的協調者
// 訂單+明細+扣庫存一個事務, gateway失敗則補償刪單, Payment留著人工對帳
type CheckoutService struct {
	cartService ICartService
	cartRepo    redis_repo.ICartRepository
	userRepo    db.IUserRepository
	orderRepo   db.IOrderRepository
	paymentRepo db.IPaymentRepository
	gateway     gateway.IPaymentGateway
	events      producer.IOrderEventProducer
	callbackURL string
	logger      *zap.Logger
}

func NewCheckoutService(
	cartService ICartService,
	cartRepo redis_repo.ICartRepository,
	userRepo db.IUserRepository,
	orderRepo db.IOrderRepository,
	paymentRepo db.IPaymentRepository,
	paymentGateway gateway.IPaymentGateway,
	events producer.IOrderEventProducer,
	callbackURL string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		cartService: cartService,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     paymentGateway,
		events:      events,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, userID uint, shipping ShippingDetails) (*CheckoutResult, error) {
	if err := shipping.validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotExist
	}

	summary, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(summary.Lines) == 0 {
		return nil, ErrCartEmpty
	}

	// 訂單總額鎖定在此刻的購物車總價, 之後商品改價不影響
	order := &model.Order{
		OrderID:         util.GenerateOrderID(),
		CustomerID:      userID,
		Status:          model.OrderStatusPending,
		TotalAmount:     summary.TotalPrice,
		DeliveryAddress: shipping.Address,
		DeliveryPhone:   shipping.Phone,
		PaymentMethod:   "paystack",
		Notes:           shipping.Notes,
	}
	for _, line := range summary.Lines {
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			OrderID:      order.OrderID,
			ProductID:    line.Product.ProductID,
			ProductName:  line.Product.Name,
			ProductPrice: line.Product.Price,
			Quantity:     line.Quantity,
			SellerID:     line.Product.SellerID,
		})
	}

	// 單一事務: 建單 + 快照明細 + 條件更新扣庫存
	if err := s.orderRepo.PlaceOrder(ctx, order); err != nil {
		return nil, err
	}

	reference := util.GeneratePaymentReference(order.OrderID)
	payment := &model.Payment{
		PaymentID:     util.GenerateOrderID(),
		Reference:     reference,
		OrderID:       order.OrderID,
		Amount:        order.TotalAmount,
		Status:        model.PaymentStatusPending,
		CustomerEmail: user.UserEmail,
		CustomerPhone: shipping.Phone,
	}
	if err := s.paymentRepo.CreatePayment(ctx, payment); err != nil {
		s.compensateOrder(ctx, order, "payment record creation failed")
		return nil, err
	}

	initData, err := s.gateway.InitializeTransaction(ctx, gateway.InitializeRequest{
		Email:       user.UserEmail,
		Amount:      toMinorUnits(order.TotalAmount),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata: map[string]interface{}{
			"order_id":      order.OrderID.String(),
			"customer_id":   user.UserID,
			"customer_name": user.UserName,
		},
	})
	if err != nil {
		// 補償刪單, Payment不動, 留給人工對帳
		s.compensateOrder(ctx, order, "gateway initialization failed")
		return nil, err
	}

	// gateway初始化成功才清購物車, 失敗時購物車保持原樣讓用戶重試
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.Uint("user_id", userID),
			zap.String("order_id", order.OrderID.String()),
			zap.Error(err))
	}

	if err := s.events.PublishOrderCreated(ctx, order.OrderID.String(), userID, order.TotalAmount); err != nil {
		s.logger.Error("Failed to publish order created event",
			zap.String("order_id", order.OrderID.String()),
			zap.Error(err))
	}

	s.logger.Info("Checkout initialized",
		zap.String("order_id", order.OrderID.String()),
		zap.String("reference", reference),
		zap.String("amount", order.TotalAmount.String()))

	return &CheckoutResult{
		Order:            order,
		Payment:          payment,
		AuthorizationURL: initData.AuthorizationURL,
	}, nil
}

func (s *CheckoutService) compensateOrder(ctx context.Context, order *model.Order, reason string) {
	if err := s.orderRepo.HardDeleteOrder(ctx, order.OrderID); err != nil {
		s.logger.Error("Failed to compensate order",
			zap.String("order_id", order.OrderID.String()),
			zap.Error(err))
		return
	}
	if err := s.events.PublishOrderCompensated(ctx, order.OrderID.String(), order.CustomerID, reason); err != nil {
		s.logger.Error("Failed to publish compensation event",
			zap.String("order_id", order.OrderID.String()),
			zap.Error(err))
	}
}

// gateway收最小貨幣單位 (NGN -> kobo), 金額 x 100
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

var _ ICheckoutService = (*CheckoutService)(nil)

package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/google/uuid"
)

var (
	ErrOrderNotExist = errors.New("order is not exist")
)

type IOrderService interface {
	GetOrder(ctx context.Context, userID uint, orderID uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]model.Order, error)
	ListSoldItems(ctx context.Context, sellerID uint) ([]model.OrderItem, error)
}

type OrderService struct {
	orderRepo db.IOrderRepository
	userRepo  db.IUserRepository
}

func NewOrderService(orderRepo db.IOrderRepository, userRepo db.IUserRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, userRepo: userRepo}
}

// GetOrder 只能看自己的訂單
func (s *OrderService) GetOrder(ctx context.Context, userID uint, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if errors.Is(err, db.ErrOrderNotFound) {
		return nil, ErrOrderNotExist
	}
	if err != nil {
		return nil, err
	}
	if order.CustomerID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	return s.orderRepo.GetOrdersByCustomerID(ctx, userID)
}

// ListSoldItems 賣家視角的已售出明細, OrderItem上冗餘的seller_id就是為了這裡
func (s *OrderService) ListSoldItems(ctx context.Context, sellerID uint) ([]model.OrderItem, error) {
	user, err := s.userRepo.GetUserByID(ctx, sellerID)
	if err != nil {
		return nil, ErrUserNotExist
	}
	if !user.IsSeller() {
		return nil, ErrForbidden
	}
	return s.orderRepo.GetOrderItemsBySellerID(ctx, sellerID)
}

var _ IOrderService = (*OrderService)(nil)

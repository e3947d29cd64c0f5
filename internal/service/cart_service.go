package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/redis_repo"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product is not available")
)

type ICartService interface {
	GetCart(ctx context.Context, userID uint) (*model.CartSummary, error)
	AddItem(ctx context.Context, userID uint, productID uint, quantity int) (*model.CartSummary, error)
	UpdateItem(ctx context.Context, userID uint, productID uint, quantity int) (*model.CartSummary, error)
	RemoveItem(ctx context.Context, userID uint, productID uint) error
	ClearCart(ctx context.Context, userID uint) error
}

type CartService struct {
	cartRepo    redis_repo.ICartRepository
	productRepo db.IProductRepository
}

func NewCartService(cartRepo redis_repo.ICartRepository, productRepo db.IProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart 每次讀取重算總計, 商品已下架或被刪除的明細直接略過
func (s *CartService) GetCart(ctx context.Context, userID uint) (*model.CartSummary, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &model.CartSummary{
		UserID:     userID,
		TotalPrice: decimal.Zero,
	}
	for _, item := range cart.Items {
		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if errors.Is(err, db.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		summary.Lines = append(summary.Lines, model.CartLine{
			Product:   *product,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		summary.TotalItems += item.Quantity
		summary.TotalPrice = summary.TotalPrice.Add(lineTotal)
	}

	return summary, nil
}

// AddItem 加入購物車, 已存在就合併數量
// 超過庫存不報錯, 夾到庫存上限 (政策如此, 調整前先確認)
func (s *CartService) AddItem(ctx context.Context, userID uint, productID uint, quantity int) (*model.CartSummary, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if errors.Is(err, db.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable() {
		return nil, ErrProductNotAvailable
	}

	if _, err := s.cartRepo.AddQuantity(ctx, userID, productID, quantity, int(product.Stock)); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateItem 數量<=0 等同移除, 其餘夾到庫存上限
func (s *CartService) UpdateItem(ctx context.Context, userID uint, productID uint, quantity int) (*model.CartSummary, error) {
	if quantity <= 0 {
		if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if errors.Is(err, db.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity, int(product.Stock)); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID uint, productID uint) error {
	return s.cartRepo.Remove(ctx, userID, productID)
}

func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	return s.cartRepo.Clear(ctx, userID)
}

var _ ICartService = (*CartService)(nil)

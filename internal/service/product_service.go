package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

var (
	// ErrForbidden 非賣家或非商品擁有者
	ErrForbidden = errors.New("forbidden")
)

type IProductService interface {
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	ListProducts(ctx context.Context, filter db.ListFilter) ([]model.Product, int64, error)
	CreateProduct(ctx context.Context, sellerID uint, params ProductParams) (*model.Product, error)
	UpdateProduct(ctx context.Context, sellerID uint, productID uint, params ProductParams) (*model.Product, error)
	DeleteProduct(ctx context.Context, sellerID uint, productID uint) error
}

type ProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       uint
	Status      model.ProductStatus
	CategoryID  *uint
	Featured    bool
}

type ProductService struct {
	productRepo db.IProductRepository
	userRepo    db.IUserRepository
}

func NewProductService(productRepo db.IProductRepository, userRepo db.IUserRepository) *ProductService {
	return &ProductService{productRepo: productRepo, userRepo: userRepo}
}

func (s *ProductService) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if errors.Is(err, db.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *ProductService) ListProducts(ctx context.Context, filter db.ListFilter) ([]model.Product, int64, error) {
	return s.productRepo.ListProducts(ctx, filter)
}

// CreateProduct 授權檢查放在操作開頭, 回傳typed error而不是在handler包裝
func (s *ProductService) CreateProduct(ctx context.Context, sellerID uint, params ProductParams) (*model.Product, error) {
	user, err := s.userRepo.GetUserByID(ctx, sellerID)
	if err != nil {
		return nil, ErrUserNotExist
	}
	if !user.IsSeller() {
		return nil, ErrForbidden
	}

	product := &model.Product{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Stock:       params.Stock,
		Status:      params.Status,
		CategoryID:  params.CategoryID,
		Featured:    params.Featured,
		SellerID:    sellerID,
	}
	if product.Status == "" {
		product.Status = model.ProductStatusActive
	}
	normalizeStockStatus(product)

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, sellerID uint, productID uint, params ProductParams) (*model.Product, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, ErrForbidden
	}

	product.Name = params.Name
	product.Description = params.Description
	product.Price = params.Price
	product.Stock = params.Stock
	if params.Status != "" {
		product.Status = params.Status
	}
	product.CategoryID = params.CategoryID
	product.Featured = params.Featured
	normalizeStockStatus(product)

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, sellerID uint, productID uint) error {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.SellerID != sellerID {
		return ErrForbidden
	}
	return s.productRepo.DeleteProduct(ctx, productID)
}

// 維持 status=sold <=> stock=0 的不變量
func normalizeStockStatus(product *model.Product) {
	if product.Stock == 0 {
		product.Status = model.ProductStatusSold
	} else if product.Status == model.ProductStatusSold {
		product.Status = model.ProductStatusActive
	}
}

var _ IProductService = (*ProductService)(nil)

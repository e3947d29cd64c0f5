package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足
	ErrProductStockNotEnough = errors.New("product stock not enough")
)

type ProductRepo struct {
	dbDao *DbDao
}

func NewProductRepo(dbDao *DbDao) *ProductRepo {
	return &ProductRepo{dbDao: dbDao}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.dbDao.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.dbDao.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListFilter 目錄查詢條件，零值代表不過濾
type ListFilter struct {
	CategoryID uint
	SellerID   uint
	Status     model.ProductStatus
	Page       int
	PageSize   int
}

// 分頁查詢商品
func (s *ProductRepo) ListProducts(ctx context.Context, filter ListFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := s.dbDao.WithContext(ctx).Model(&model.Product{})
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error
	return products, total, err
}

func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.dbDao.WithContext(ctx).Save(product).Error
}

// Delete - 軟刪除商品
func (s *ProductRepo) DeleteProduct(ctx context.Context, productID uint) error {
	return s.dbDao.WithContext(ctx).Delete(&model.Product{}, productID).Error
}

func (s *ProductRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return int(product.Stock), nil
}

// AddProductStock 補庫存, 之前賣完標記sold的商品重新上架
func (s *ProductRepo) AddProductStock(ctx context.Context, productID uint, quantity uint) error {
	return s.dbDao.Transaction(func(tx *gorm.DB) error {
		return restoreProductStockTx(tx.WithContext(ctx), productID, quantity)
	})
}

func restoreProductStockTx(tx *gorm.DB, productID uint, quantity uint) error {
	if err := tx.Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error; err != nil {
		return err
	}
	return tx.Model(&model.Product{}).
		Where("product_id = ? AND status = ?", productID, model.ProductStatusSold).
		Update("status", model.ProductStatusActive).Error
}

// DeductProductStock 條件更新扣庫存, 用 stock >= ? 擋同時下單超賣
// 扣到0時一併標記為sold
func (s *ProductRepo) DeductProductStock(ctx context.Context, productID uint, quantity uint) error {
	return s.dbDao.Transaction(func(tx *gorm.DB) error {
		return deductProductStockTx(tx.WithContext(ctx), productID, quantity)
	})
}

func deductProductStockTx(tx *gorm.DB, productID uint, quantity uint) error {
	result := tx.Model(&model.Product{}).
		Where("product_id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 分不出是不存在還是庫存不足，再查一次
		var count int64
		if err := tx.Model(&model.Product{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrProductStockNotEnough
	}

	return tx.Model(&model.Product{}).
		Where("product_id = ? AND stock = 0", productID).
		Update("status", model.ProductStatusSold).Error
}

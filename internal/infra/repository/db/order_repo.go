package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
)

type OrderRepo struct {
	dbDao *DbDao
}

func NewOrderRepo(dbDao *DbDao) *OrderRepo {
	return &OrderRepo{dbDao: dbDao}
}

// PlaceOrder 建立訂單 + 明細快照 + 扣庫存，單一事務
// 任一商品庫存不足則整筆回滾
func (s *OrderRepo) PlaceOrder(ctx context.Context, order *model.Order) error {
	return s.dbDao.Transaction(func(tx *gorm.DB) error {
		txc := tx.WithContext(ctx)
		if err := txc.Create(order).Error; err != nil {
			return err
		}
		for _, item := range order.OrderItems {
			if err := deductProductStockTx(txc, item.ProductID, uint(item.Quantity)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := s.dbDao.WithContext(ctx).Preload("OrderItems").First(&order, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 根據用戶ID查詢訂單
func (s *OrderRepo) GetOrdersByCustomerID(ctx context.Context, customerID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.dbDao.WithContext(ctx).Preload("OrderItems").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// MarkOrderPaid CAS pending -> paid, 重複通知時第二次是no-op
func (s *OrderRepo) MarkOrderPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) (bool, error) {
	result := s.dbDao.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", id, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":            model.OrderStatusPaid,
			"payment_reference": reference,
			"paid_at":           paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkOrderCancelled CAS pending -> cancelled
func (s *OrderRepo) MarkOrderCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	result := s.dbDao.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", id, model.OrderStatusPending).
		Update("status", model.OrderStatusCancelled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HardDeleteOrder gateway初始化失敗的補償動作
// 連同明細一起刪並把已扣的庫存加回去, 級聯刪除是業務規則，不依賴db constraint
func (s *OrderRepo) HardDeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.dbDao.Transaction(func(tx *gorm.DB) error {
		txc := tx.WithContext(ctx)

		var items []model.OrderItem
		if err := txc.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := restoreProductStockTx(txc, item.ProductID, uint(item.Quantity)); err != nil {
				return err
			}
		}

		if err := txc.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return txc.Unscoped().Where("order_id = ?", id).Delete(&model.Order{}).Error
	})
}

// 分頁查詢訂單
func (s *OrderRepo) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	offset := (page - 1) * pageSize

	if err := s.dbDao.WithContext(ctx).Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.dbDao.WithContext(ctx).Preload("OrderItems").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// 賣家視角的已售出明細
func (s *OrderRepo) GetOrderItemsBySellerID(ctx context.Context, sellerID uint) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := s.dbDao.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

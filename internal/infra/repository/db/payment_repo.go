package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrPaymentNotFound 查無付款紀錄
	ErrPaymentNotFound = errors.New("payment not found")
)

type PaymentRepo struct {
	dbDao *DbDao
}

func NewPaymentRepo(dbDao *DbDao) *PaymentRepo {
	return &PaymentRepo{dbDao: dbDao}
}

// CreatePayment 建立付款紀錄並寫入第一筆pending history
func (s *PaymentRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return s.dbDao.Transaction(func(tx *gorm.DB) error {
		txc := tx.WithContext(ctx)
		if err := txc.Create(payment).Error; err != nil {
			return err
		}
		return txc.Create(&model.PaymentHistory{
			PaymentID: payment.PaymentID,
			Status:    payment.Status,
			Notes:     "payment created",
		}).Error
	})
}

func (s *PaymentRepo) GetPaymentByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var payment model.Payment
	err := s.dbDao.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentRepo) GetPaymentsByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := s.dbDao.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (s *PaymentRepo) GetPaymentHistories(ctx context.Context, reference string) ([]model.PaymentHistory, error) {
	payment, err := s.GetPaymentByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	var histories []model.PaymentHistory
	err = s.dbDao.WithContext(ctx).
		Where("payment_id = ?", payment.PaymentID).
		Order("created_at ASC, id ASC").
		Find(&histories).Error
	return histories, err
}

// ConfirmPaymentSuccess webhook與callback都會走這裡, 必須冪等
// CAS擋掉重複通知: 已經是successful就什麼都不做, 回傳 applied=false
// 套用成功時同一事務內補history並把訂單轉成paid
func (s *PaymentRepo) ConfirmPaymentSuccess(ctx context.Context, reference string, gatewayReference string, gatewayResponse json.RawMessage, paidAt time.Time) (bool, error) {
	applied := false
	err := s.dbDao.Transaction(func(tx *gorm.DB) error {
		txc := tx.WithContext(ctx)

		result := txc.Model(&model.Payment{}).
			Where("reference = ? AND status <> ?", reference, model.PaymentStatusSuccessful).
			Updates(map[string]interface{}{
				"status":            model.PaymentStatusSuccessful,
				"gateway_reference": gatewayReference,
				"gateway_response":  gatewayResponse,
				"paid_at":           paidAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 不存在或者已經成功過
			var count int64
			if err := txc.Model(&model.Payment{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrPaymentNotFound
			}
			return nil
		}
		applied = true

		var payment model.Payment
		if err := txc.Where("reference = ?", reference).First(&payment).Error; err != nil {
			return err
		}
		if err := txc.Create(&model.PaymentHistory{
			PaymentID: payment.PaymentID,
			Status:    model.PaymentStatusSuccessful,
			Notes:     "gateway confirmed charge success",
		}).Error; err != nil {
			return err
		}

		return txc.Model(&model.Order{}).
			Where("order_id = ? AND status = ?", payment.OrderID, model.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":            model.OrderStatusPaid,
				"payment_reference": reference,
				"paid_at":           paidAt,
			}).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// ConfirmPaymentFailure pending -> failed, 訂單轉cancelled
func (s *PaymentRepo) ConfirmPaymentFailure(ctx context.Context, reference string, gatewayResponse json.RawMessage) (bool, error) {
	applied := false
	err := s.dbDao.Transaction(func(tx *gorm.DB) error {
		txc := tx.WithContext(ctx)

		result := txc.Model(&model.Payment{}).
			Where("reference = ? AND status = ?", reference, model.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":           model.PaymentStatusFailed,
				"gateway_response": gatewayResponse,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := txc.Model(&model.Payment{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrPaymentNotFound
			}
			return nil
		}
		applied = true

		var payment model.Payment
		if err := txc.Where("reference = ?", reference).First(&payment).Error; err != nil {
			return err
		}
		if err := txc.Create(&model.PaymentHistory{
			PaymentID: payment.PaymentID,
			Status:    model.PaymentStatusFailed,
			Notes:     "gateway reported charge failure",
		}).Error; err != nil {
			return err
		}

		return txc.Model(&model.Order{}).
			Where("order_id = ? AND status = ?", payment.OrderID, model.OrderStatusPending).
			Update("status", model.OrderStatusCancelled).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

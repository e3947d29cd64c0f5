package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Payment 一張訂單可以有多次付款嘗試, reference 為gateway冪等鍵，全域唯一
type Payment struct {
	PaymentID        uuid.UUID       `gorm:"primaryKey;type:uuid" json:"payment_id"`
	Reference        string          `gorm:"not null;type:varchar(100);uniqueIndex" json:"reference"`
	OrderID          uuid.UUID       `gorm:"not null;type:uuid;index" json:"order_id"` // 外鍵，關聯到 Order
	Amount           decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	Currency         string          `gorm:"not null;type:varchar(3);default:'NGN'" json:"currency"`
	Status           PaymentStatus   `gorm:"not null;type:varchar(20);default:'pending';index" json:"status"`
	GatewayReference string          `gorm:"type:varchar(100)" json:"gateway_reference"`
	GatewayResponse  json.RawMessage `gorm:"type:jsonb" json:"gateway_response,omitempty"`
	CustomerEmail    string          `gorm:"not null;type:varchar(100)" json:"customer_email"`
	CustomerPhone    string          `gorm:"type:varchar(20)" json:"customer_phone"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	Histories        []PaymentHistory `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE" json:"-"` // 一對多，級聯刪除
	BaseModel
}

func (p *Payment) IsSuccessful() bool {
	return p.Status == PaymentStatusSuccessful
}

func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// PaymentHistory 狀態異動紀錄，只新增不修改
type PaymentHistory struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	PaymentID uuid.UUID     `gorm:"not null;type:uuid;index" json:"payment_id"`
	Status    PaymentStatus `gorm:"not null;type:varchar(20)" json:"status"`
	Notes     string        `gorm:"type:text" json:"notes"`
	CreatedAt time.Time     `gorm:"not null;default:now()" json:"created_at"`
}

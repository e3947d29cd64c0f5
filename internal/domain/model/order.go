package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

type Order struct {
	OrderID          uuid.UUID       `gorm:"primaryKey;type:uuid" json:"order_id"`
	CustomerID       uint            `gorm:"not null;index" json:"customer_id"` // 外鍵，關聯到 User
	Status           OrderStatus     `gorm:"not null;type:varchar(20);default:'pending';index" json:"status"`
	TotalAmount      decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_amount"`
	DeliveryAddress  string          `gorm:"not null;type:text" json:"delivery_address"`
	DeliveryPhone    string          `gorm:"not null;type:varchar(20)" json:"delivery_phone"`
	PaymentMethod    string          `gorm:"not null;type:varchar(50);default:'paystack'" json:"payment_method"`
	PaymentReference string          `gorm:"type:varchar(100)" json:"payment_reference"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	Notes            string          `gorm:"type:text" json:"notes"`
	OrderItems       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"` // 一對多，級聯刪除
	BaseModel
}

func (o *Order) IsPaid() bool {
	switch o.Status {
	case OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

// OrderItem 下單當下的商品快照，商品之後改價不影響
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"not null;type:uuid;index" json:"order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	ProductName  string          `gorm:"not null;type:varchar(200)" json:"product_name"`
	ProductPrice decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"product_price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	SellerID     uint            `gorm:"not null;index" json:"seller_id"` // 冗餘欄位，賣家報表用
	CreatedAt    time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

func (i *OrderItem) TotalPrice() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

package model

import (
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusSold     ProductStatus = "sold"
)

type Category struct {
	CategoryID  uint   `gorm:"primaryKey" json:"category_id"`
	Name        string `gorm:"not null;type:varchar(100);unique" json:"name"`
	Slug        string `gorm:"not null;type:varchar(100);unique" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	BaseModel
}

type Product struct {
	ProductID   uint            `gorm:"primaryKey" json:"product_id"`
	Name        string          `gorm:"not null;type:varchar(200)" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock       uint            `gorm:"not null;type:int" json:"stock"`
	Status      ProductStatus   `gorm:"not null;type:varchar(10);default:'active'" json:"status"`
	Featured    bool            `gorm:"not null;default:false" json:"featured"`
	SellerID    uint            `gorm:"not null;index" json:"seller_id"` // 外鍵，關聯到 User
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	OrderItems  []OrderItem     `gorm:"foreignKey:ProductID" json:"-"`
	BaseModel
}

// 可購買: 上架中且還有庫存
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive && p.Stock > 0
}

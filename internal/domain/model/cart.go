package model

import (
	"github.com/shopspring/decimal"
)

// 購物車只存在redis, 不落db
type Cart struct {
	UserID uint       `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartLine 帶商品資訊的購物車明細，每次讀取重算，不做快取
type CartLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartSummary struct {
	UserID     uint            `json:"user_id"`
	Lines      []CartLine      `json:"lines"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

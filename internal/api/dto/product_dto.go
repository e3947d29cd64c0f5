package dto

import (
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       uint            `json:"stock"`
	Status      string          `json:"status" binding:"omitempty,oneof=active inactive sold"`
	CategoryID  *uint           `json:"category_id"`
	Featured    bool            `json:"featured"`
}

type ListProductsQuery struct {
	CategoryID uint   `form:"category_id"`
	SellerID   uint   `form:"seller_id"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive sold"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
}

type ListProductsResponse struct {
	Products interface{} `json:"products"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

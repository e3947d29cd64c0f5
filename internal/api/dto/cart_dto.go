package dto

import (
	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
)

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartLineResponse struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"line_total"`
}

type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	TotalPrice string             `json:"total_price"`
}

func ConvertCartToResponse(summary *model.CartSummary) CartResponse {
	resp := CartResponse{
		Lines:      make([]CartLineResponse, 0, len(summary.Lines)),
		TotalItems: summary.TotalItems,
		TotalPrice: summary.TotalPrice.StringFixed(2),
	}
	for _, line := range summary.Lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			ProductID:   line.Product.ProductID,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price.StringFixed(2),
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal.StringFixed(2),
		})
	}
	return resp
}

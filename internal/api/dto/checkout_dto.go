package dto

import (
	"github.com/RoyceAzure/lab/marketplace/internal/service"
)

type CheckoutRequest struct {
	FullName string `json:"full_name" binding:"required,max=100"`
	Phone    string `json:"phone" binding:"required,max=20"`
	Address  string `json:"address" binding:"required"`
	Notes    string `json:"notes"`
}

type CheckoutResponse struct {
	OrderID          string `json:"order_id"`
	Reference        string `json:"reference"`
	TotalAmount      string `json:"total_amount"`
	AuthorizationURL string `json:"authorization_url"`
}

func ConvertCheckoutResultToResponse(result *service.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		OrderID:          result.Order.OrderID.String(),
		Reference:        result.Payment.Reference,
		TotalAmount:      result.Order.TotalAmount.StringFixed(2),
		AuthorizationURL: result.AuthorizationURL,
	}
}

type PaymentResponse struct {
	Reference   string `json:"reference"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	PaidAt      string `json:"paid_at,omitempty"`
	OrderStatus string `json:"order_status,omitempty"`
}

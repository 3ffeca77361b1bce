package response

import "github.com/google/uuid"

type CreateProxyOrderResponse struct {
	OrderID           uuid.UUID  `json:"order_id"`
	Status            string     `json:"status"`
	Price             int64      `json:"price"`
	CheckoutRequestID string     `json:"checkout_request_id,omitempty"`
	PurchaseID        *uuid.UUID `json:"purchase_id,omitempty"`
	Message           string     `json:"message,omitempty"`
}

type CreateEmailOrderResponse struct {
	OrderID           uuid.UUID  `json:"order_id"`
	Status            string     `json:"status"`
	TotalPrice        int64      `json:"total_price"`
	CheckoutRequestID string     `json:"checkout_request_id,omitempty"`
	PurchaseID        *uuid.UUID `json:"purchase_id,omitempty"`
	Message           string     `json:"message,omitempty"`
}

type CreateTopUpResponse struct {
	TopUpID           uuid.UUID `json:"topup_id"`
	Amount            int64     `json:"amount"`
	CheckoutRequestID string    `json:"checkout_request_id"`
	Message           string    `json:"message"`
}

// InsufficientStockResponse tells the buyer how many accounts are actually
// purchasable right now.
type InsufficientStockResponse struct {
	Error     string `json:"error"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

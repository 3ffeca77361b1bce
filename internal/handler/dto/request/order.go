package request

import "github.com/google/uuid"

type CreateProxyOrderRequest struct {
	Country       string `json:"country" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=mpesa balance"`
	PhoneNumber   string `json:"phone_number,omitempty"`
}

type CreateEmailOrderRequest struct {
	DomainID      uuid.UUID `json:"domain_id" binding:"required"`
	Quantity      int       `json:"quantity" binding:"required,min=1,max=100"`
	PaymentMethod string    `json:"payment_method" binding:"required,oneof=mpesa balance"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
}

type CreateTopUpRequest struct {
	Amount      int64  `json:"amount" binding:"required,min=10"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

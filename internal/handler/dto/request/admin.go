package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateProxyRequest struct {
	IP          string    `json:"ip" binding:"required"`
	Port        int       `json:"port" binding:"required,min=1,max=65535"`
	Username    string    `json:"username" binding:"required"`
	Password    string    `json:"password" binding:"required"`
	Country     string    `json:"country" binding:"required"`
	CountryCode string    `json:"country_code" binding:"required"`
	MaxUsage    int32     `json:"max_usage" binding:"required,min=1"`
	ExpiresAt   time.Time `json:"expires_at" binding:"required"`
}

type BulkCreateProxiesRequest struct {
	Proxies []CreateProxyRequest `json:"proxies" binding:"required,min=1,dive"`
}

type UpdateProxyRequest struct {
	MaxUsage  *int32     `json:"max_usage,omitempty" binding:"omitempty,min=1"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	Status    *string    `json:"status,omitempty" binding:"omitempty,oneof=available expired dead"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending paid failed cancelled expired"`
}

type EmailCredential struct {
	Address  string `json:"address" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type BulkCreateEmailsRequest struct {
	DomainID uuid.UUID         `json:"domain_id" binding:"required"`
	Emails   []EmailCredential `json:"emails" binding:"required,min=1,dive"`
}

type CreateEmailDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
	Kind   string `json:"kind" binding:"required,oneof=gmail rayproxy"`
	Server string `json:"server,omitempty"`
}

type UpdateEmailDomainRequest struct {
	IsEnabled *bool   `json:"is_enabled,omitempty"`
	Server    *string `json:"server,omitempty"`
}

type CreateEmailPricingRequest struct {
	DomainID      uuid.UUID `json:"domain_id" binding:"required"`
	PricePerEmail int64     `json:"price_per_email" binding:"required,min=1"`
}

type UpdateEmailPricingRequest struct {
	PricePerEmail *int64 `json:"price_per_email,omitempty" binding:"omitempty,min=1"`
	IsEnabled     *bool  `json:"is_enabled,omitempty"`
}

type CreatePricingRequest struct {
	Country     string `json:"country" binding:"required"`
	CountryCode string `json:"country_code" binding:"required"`
	Daily       int64  `json:"daily" binding:"required,min=1"`
}

type UpdatePricingRequest struct {
	Daily     *int64 `json:"daily,omitempty" binding:"omitempty,min=1"`
	IsEnabled *bool  `json:"is_enabled,omitempty"`
}
